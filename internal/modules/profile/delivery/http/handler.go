package handler

import (
	"errors"
	"net/http"

	"anoa.com/blogspace/internal/middleware"
	profileDto "anoa.com/blogspace/internal/modules/profile/dto"
	profile "anoa.com/blogspace/internal/modules/profile/service"
	commonDto "anoa.com/blogspace/pkg/dto"
	"anoa.com/blogspace/pkg/response"
	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	profileService profile.ProfileService
}

func NewProfileHandler(profileService profile.ProfileService) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
	}
}

func (h *ProfileHandler) GetProfileByUsername(c *gin.Context) {
	profile, err := h.profileService.GetProfileByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *ProfileHandler) GetCurrentProfile(c *gin.Context) {
	profile, err := h.profileService.GetCurrentProfile(c.Request.Context(), middleware.GetPrincipal(c))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	var input profileDto.UpdateProfileInput
	if err := c.ShouldBind(&input); err != nil {
		response.ValidationError(c, err)
		return
	}

	var avatar *commonDto.UploadFile
	if c.ContentType() == gin.MIMEMultipartPOSTForm {
		header, err := c.FormFile("avatar")
		switch {
		case errors.Is(err, http.ErrMissingFile):
		case err != nil:
			response.ValidationError(c, err)
			return
		default:
			file, closeFile, err := commonDto.OpenUpload(header)
			if err != nil {
				response.ResponseError(c, err)
				return
			}
			defer closeFile()
			avatar = file
		}
	}

	res, err := h.profileService.UpdateProfile(c.Request.Context(), middleware.GetPrincipal(c), input, avatar)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}
