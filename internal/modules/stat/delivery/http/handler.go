package handler

import (
	"net/http"

	stat "anoa.com/blogspace/internal/modules/stat/service"
	"anoa.com/blogspace/pkg/response"
	"github.com/gin-gonic/gin"
)

type StatHandler struct {
	statService stat.StatService
}

func NewStatHandler(statService stat.StatService) *StatHandler {
	return &StatHandler{
		statService: statService,
	}
}

func (h *StatHandler) GetSiteStats(c *gin.Context) {
	stats, err := h.statService.GetSiteStats(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
