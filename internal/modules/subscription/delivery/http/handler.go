package handler

import (
	"net/http"

	"anoa.com/blogspace/internal/middleware"
	subscription "anoa.com/blogspace/internal/modules/subscription/service"
	"anoa.com/blogspace/pkg/response"
	"github.com/gin-gonic/gin"
)

type SubscriptionHandler struct {
	service subscription.SubscriptionService
}

func NewSubscriptionHandler(service subscription.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{service: service}
}

func (h *SubscriptionHandler) ToggleSubscription(c *gin.Context) {
	blogID, err := response.ParseUUIDParam(c, "blog_id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	resp, err := h.service.ToggleSubscription(c.Request.Context(), middleware.GetPrincipal(c), blogID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *SubscriptionHandler) ListSubscriptions(c *gin.Context) {
	subs, err := h.service.ListSubscriptions(c.Request.Context(), middleware.GetPrincipal(c))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": subs})
}
