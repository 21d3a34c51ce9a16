package handler

import (
	"net/http"

	"anoa.com/blogspace/internal/middleware"
	admin "anoa.com/blogspace/internal/modules/admin/service"
	commonDto "anoa.com/blogspace/pkg/dto"
	"anoa.com/blogspace/pkg/response"
	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	adminService admin.AdminService
}

func NewAdminHandler(adminService admin.AdminService) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
	}
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	var query commonDto.PageQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.ValidationError(c, err)
		return
	}

	res, err := h.adminService.ListUsers(c.Request.Context(), middleware.GetPrincipal(c), query)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *AdminHandler) DeleteUser(c *gin.Context) {
	userID, err := response.ParseUUIDParam(c, "user_id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.adminService.DeleteUser(c.Request.Context(), middleware.GetPrincipal(c), userID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
}
