package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cloud-drive/internal/middleware"
	"cloud-drive/internal/schemas"
	"cloud-drive/internal/services"
	"cloud-drive/internal/utils"
)

type ProfileHdl interface {
	GetProfile(c *gin.Context)
	UpdateProfile(c *gin.Context)
	ChangePassword(c *gin.Context)
	ChangeAvatar(c *gin.Context)
}

type ProfileHandler struct {
	ProfileService *services.ProfileService
}

func NewProfileHandler(profileService *services.ProfileService) ProfileHdl {
	return &ProfileHandler{ProfileService: profileService}
}

func (handler *ProfileHandler) GetProfile(c *gin.Context) {
	id, ok := accountId(c)
	if !ok {
		return
	}

	user, err := handler.ProfileService.Get(c, id)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.WriteAndLogResponse(c, user, http.StatusOK)
}

func (handler *ProfileHandler) UpdateProfile(c *gin.Context) {
	id, ok := accountId(c)
	if !ok {
		return
	}
	request, ok := middleware.Payload[schemas.UpdateProfileRequest](c)
	if !ok {
		return
	}

	user, err := handler.ProfileService.UpdateName(c, id, request.FullName)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.WriteAndLogResponse(c, user, http.StatusOK)
}

func (handler *ProfileHandler) ChangePassword(c *gin.Context) {
	id, ok := accountId(c)
	if !ok {
		return
	}
	request, ok := middleware.Payload[schemas.ChangePasswordRequest](c)
	if !ok {
		return
	}

	if err := handler.ProfileService.ChangePassword(c, id, request.Password); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.WriteAndLogResponse(c, &schemas.OkDTO{Ok: true}, http.StatusOK)
}

// ChangeAvatar replaces the avatar with the image in the "avatar" form field.
func (handler *ProfileHandler) ChangeAvatar(c *gin.Context) {
	id, ok := accountId(c)
	if !ok {
		return
	}

	upload, file, ok := openUpload(c, utils.AvatarFormKey)
	if !ok {
		return
	}
	defer file.Close()

	user, err := handler.ProfileService.ChangeAvatar(c, id, upload)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.WriteAndLogResponse(c, user, http.StatusOK)
}
