package server

import (
	"net/http"
	"time"

	"anoa.com/blogspace/internal/config"
	"anoa.com/blogspace/internal/middleware"
	"anoa.com/blogspace/pkg/ratelimiter"
	"anoa.com/blogspace/pkg/session"
	"anoa.com/blogspace/pkg/storage"

	adminHttp "anoa.com/blogspace/internal/modules/admin/delivery/http"
	adminService "anoa.com/blogspace/internal/modules/admin/service"

	attachmentHttp "anoa.com/blogspace/internal/modules/attachment/delivery/http"
	attachmentRepo "anoa.com/blogspace/internal/modules/attachment/repository"
	attachmentService "anoa.com/blogspace/internal/modules/attachment/service"

	blogHttp "anoa.com/blogspace/internal/modules/blog/delivery/http"
	blogRepo "anoa.com/blogspace/internal/modules/blog/repository"
	blogService "anoa.com/blogspace/internal/modules/blog/service"

	commentHttp "anoa.com/blogspace/internal/modules/comment/delivery/http"
	commentRepo "anoa.com/blogspace/internal/modules/comment/repository"
	commentService "anoa.com/blogspace/internal/modules/comment/service"

	likeHttp "anoa.com/blogspace/internal/modules/like/delivery/http"
	likeRepo "anoa.com/blogspace/internal/modules/like/repository"
	likeService "anoa.com/blogspace/internal/modules/like/service"

	postHttp "anoa.com/blogspace/internal/modules/post/delivery/http"
	postRepo "anoa.com/blogspace/internal/modules/post/repository"
	postService "anoa.com/blogspace/internal/modules/post/service"

	profileHttp "anoa.com/blogspace/internal/modules/profile/delivery/http"
	profileService "anoa.com/blogspace/internal/modules/profile/service"

	statHttp "anoa.com/blogspace/internal/modules/stat/delivery/http"
	statRepo "anoa.com/blogspace/internal/modules/stat/repository"
	statService "anoa.com/blogspace/internal/modules/stat/service"

	subscriptionHttp "anoa.com/blogspace/internal/modules/subscription/delivery/http"
	subscriptionRepo "anoa.com/blogspace/internal/modules/subscription/repository"
	subscriptionService "anoa.com/blogspace/internal/modules/subscription/service"

	tagHttp "anoa.com/blogspace/internal/modules/tag/delivery/http"
	tagRepo "anoa.com/blogspace/internal/modules/tag/repository"
	tagService "anoa.com/blogspace/internal/modules/tag/service"

	userHttp "anoa.com/blogspace/internal/modules/user/delivery/http"
	userRepo "anoa.com/blogspace/internal/modules/user/repository"
	userService "anoa.com/blogspace/internal/modules/user/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps are the long-lived resources the server is built on. Redis and
// Images may be nil: sessions then live in the database, rate limiting is
// off and avatar uploads are rejected.
type Deps struct {
	Config *config.Config
	DB     *gorm.DB
	Redis  *redis.Client
	Files  storage.FileStorage
	Images storage.ImageStorage
}

type Server struct {
	engine *gin.Engine
	db     *gorm.DB
}

func NewServer(deps Deps) *Server {
	cfg := deps.Config
	db := deps.DB

	var sessions session.Store
	if deps.Redis != nil {
		sessions = session.NewRedisStore(deps.Redis)
	} else {
		sessions = session.NewDBStore(db)
	}
	limiter := ratelimiter.New(deps.Redis)

	userRepository := userRepo.NewUserRepository(db)
	blogRepository := blogRepo.NewBlogRepository(db)
	tagRepository := tagRepo.NewTagRepository(db)
	postRepository := postRepo.NewPostRepository(db)
	commentRepository := commentRepo.NewCommentRepository(db)
	likeRepository := likeRepo.NewLikeRepository(db)
	subscriptionRepository := subscriptionRepo.NewSubscriptionRepository(db)
	attachmentRepository := attachmentRepo.NewAttachmentRepository(db)

	authSvc := userService.NewAuthService(userRepository, sessions, userService.Options{
		Secret:     cfg.SessionSecret,
		SessionTTL: cfg.SessionTTL,
	})
	authHandler := userHttp.NewAuthHandler(authSvc, !cfg.IsDevelopment())

	attachmentSvc := attachmentService.NewAttachmentService(attachmentRepository, postRepository, deps.Files)
	attachmentHandler := attachmentHttp.NewAttachmentHandler(attachmentSvc)

	postSvc := postService.NewPostService(
		postRepository,
		blogRepository,
		tagRepository,
		commentRepository,
		likeRepository,
		attachmentSvc,
		limiter,
		postService.Options{RateLimit: cfg.RateLimitPost},
	)
	postHandler := postHttp.NewPostHandler(postSvc)

	blogSvc := blogService.NewBlogService(blogRepository, subscriptionRepository, postSvc, attachmentSvc)
	blogHandler := blogHttp.NewBlogHandler(blogSvc)

	tagSvc := tagService.NewTagService(tagRepository)
	tagHandler := tagHttp.NewTagHandler(tagSvc)

	commentSvc := commentService.NewCommentService(commentRepository, postRepository, userRepository, limiter, cfg.RateLimitComment)
	commentHandler := commentHttp.NewCommentHandler(commentSvc)

	likeSvc := likeService.NewLikeService(likeRepository, postRepository)
	likeHandler := likeHttp.NewLikeHandler(likeSvc)

	subscriptionSvc := subscriptionService.NewSubscriptionService(subscriptionRepository, blogRepository)
	subscriptionHandler := subscriptionHttp.NewSubscriptionHandler(subscriptionSvc)

	profileSvc := profileService.NewProfileService(userRepository, blogSvc, deps.Images)
	profileHandler := profileHttp.NewProfileHandler(profileSvc)

	statHandler := statHttp.NewStatHandler(statService.NewStatService(statRepo.NewStatRepository(db)))

	adminSvc := adminService.NewAdminService(userRepository, sessions, attachmentSvc, deps.Images)
	adminHandler := adminHttp.NewAdminHandler(adminSvc)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	setupCORS(router, cfg.Origins())

	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger("/healthz"))
	router.Use(middleware.BodyLimit(cfg.MaxUploadBytes))

	authMiddleware := middleware.NewAuthMiddleware(authSvc)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/uploads/:filename", attachmentHandler.ServeFile)

	api := router.Group("/api")

	// Public routes; the principal is resolved when a token is present
	public := api.Group("")
	public.Use(authMiddleware.OptionalAuth())
	{
		public.POST("/auth/register", authHandler.Register)
		public.POST("/auth/login", authHandler.Login)

		public.GET("/blogs", blogHandler.ListBlogs)
		public.GET("/blogs/:blog_id", blogHandler.GetBlog)
		public.GET("/posts/:post_id", postHandler.GetPost)
		public.GET("/posts/:post_id/comments", commentHandler.ListComments)
		public.GET("/tags", tagHandler.ListTags)
		public.GET("/tags/:name/posts", postHandler.ListPostsByTag)
		public.GET("/profile/:username", profileHandler.GetProfileByUsername)
		public.GET("/stats", statHandler.GetSiteStats)
	}

	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		protected.POST("/auth/logout", authHandler.Logout)
		protected.PUT("/auth/password", authHandler.ChangePassword)

		protected.POST("/blogs", blogHandler.CreateBlog)
		protected.PUT("/blogs/:blog_id", blogHandler.UpdateBlog)
		protected.DELETE("/blogs/:blog_id", blogHandler.DeleteBlog)
		protected.POST("/blogs/:blog_id/subscription", subscriptionHandler.ToggleSubscription)
		protected.POST("/blogs/:blog_id/posts", postHandler.CreatePost)

		protected.PUT("/posts/:post_id", postHandler.UpdatePost)
		protected.DELETE("/posts/:post_id", postHandler.DeletePost)
		protected.POST("/posts/:post_id/like", likeHandler.ToggleLike)
		protected.POST("/posts/:post_id/comments", commentHandler.CreateComment)
		protected.POST("/posts/:post_id/attachments", attachmentHandler.UploadAttachment)
		protected.DELETE("/comments/:comment_id", commentHandler.DeleteComment)
		protected.DELETE("/attachments/:attachment_id", attachmentHandler.DeleteAttachment)

		protected.GET("/profile/me", profileHandler.GetCurrentProfile)
		protected.PUT("/profile", profileHandler.UpdateProfile)
		protected.GET("/subscriptions", subscriptionHandler.ListSubscriptions)

		adminGroup := protected.Group("/admin")
		adminGroup.Use(authMiddleware.RequireAdmin())
		{
			adminGroup.GET("/users", adminHandler.ListUsers)
			adminGroup.DELETE("/users/:user_id", adminHandler.DeleteUser)
		}
	}

	return &Server{
		engine: router,
		db:     db,
	}
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func setupCORS(router *gin.Engine, origins []string) {
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
