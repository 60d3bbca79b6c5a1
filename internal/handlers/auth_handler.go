// Package handlers translates HTTP requests into service calls and writes the envelope.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cloud-drive/internal/middleware"
	"cloud-drive/internal/schemas"
	"cloud-drive/internal/services"
	"cloud-drive/internal/utils"
)

type AuthHdl interface {
	Signup(c *gin.Context)
	Login(c *gin.Context)
	ForgotPassword(c *gin.Context)
	ResetPassword(c *gin.Context)
}

type AuthHandler struct {
	AuthService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) AuthHdl {
	return &AuthHandler{AuthService: authService}
}

// Signup creates an account and returns a session for it.
func (handler *AuthHandler) Signup(c *gin.Context) {
	request, ok := middleware.Payload[schemas.SignupRequest](c)
	if !ok {
		return
	}

	auth, err := handler.AuthService.Signup(c, request)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.WriteAndLogResponse(c, auth, http.StatusCreated)
}

// Login returns a session for valid credentials.
func (handler *AuthHandler) Login(c *gin.Context) {
	request, ok := middleware.Payload[schemas.LoginRequest](c)
	if !ok {
		return
	}

	auth, err := handler.AuthService.Login(c, request)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.WriteAndLogResponse(c, auth, http.StatusOK)
}

// ForgotPassword issues a reset code for the account of the given email.
func (handler *AuthHandler) ForgotPassword(c *gin.Context) {
	request, ok := middleware.Payload[schemas.ForgotPasswordRequest](c)
	if !ok {
		return
	}

	if err := handler.AuthService.ForgotPassword(c, request); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.WriteAndLogResponse(c, &schemas.MessageDTO{Message: "A reset code has been sent to your email."}, http.StatusOK)
}

// ResetPassword sets a new password if the reset code is valid.
func (handler *AuthHandler) ResetPassword(c *gin.Context) {
	request, ok := middleware.Payload[schemas.ResetPasswordRequest](c)
	if !ok {
		return
	}

	if err := handler.AuthService.ResetPassword(c, request); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.WriteAndLogResponse(c, &schemas.MessageDTO{Message: "Your password has been reset."}, http.StatusOK)
}
