package dto

type SiteStatsResponse struct {
	TotalUsers    int64 `json:"total_users"`
	TotalBlogs    int64 `json:"total_blogs"`
	TotalPosts    int64 `json:"total_posts"`
	TotalComments int64 `json:"total_comments"`
	TotalTags     int64 `json:"total_tags"`
}
