// Package routing assembles the gin engine: common middleware, the API routes and the
// static route serving uploaded files.
package routing

import (
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"cloud-drive/internal/config"
	"cloud-drive/internal/handlers"
	"cloud-drive/internal/managers"
	"cloud-drive/internal/middleware"
	"cloud-drive/internal/schemas"
	"cloud-drive/internal/services"
	"cloud-drive/internal/storage"
	"cloud-drive/internal/stores"
	"cloud-drive/internal/utils"
)

const serviceName = "cloud-drive"

// Dependencies are the long-lived collaborators the routes are built from.
type Dependencies struct {
	Config      *config.Config
	DatabaseMgr managers.DatabaseMgr
	MailMgr     managers.MailMgr
	JWTMgr      managers.JWTMgr
	PasswordMgr managers.PasswordMgr
	Storage     storage.BlobStorage
}

func InitRouter(deps *Dependencies) *gin.Engine {
	// Initialize router with logging and recovery middleware
	router := gin.New()
	// Initialize middleware
	setupCommonMiddleware(router, deps.Config)
	// Setup routes
	setupRoutes(router, deps)

	return router
}

func setupCommonMiddleware(router *gin.Engine, cfg *config.Config) {
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.InjectTrace())
	router.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.CorsOrigins,
		AllowMethods:  []string{"GET", "PATCH", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Accept", "Authorization", "Content-Type", "Origin"},
		ExposeHeaders: []string{"Content-Length", "Content-Type", "X-Trace-Id"},
		MaxAge:        12 * time.Hour,
	}))
	router.Use(middleware.SanitizePath())
	router.Use(middleware.LogRequest())
}

func setupRoutes(router *gin.Engine, deps *Dependencies) {
	pool := deps.DatabaseMgr.GetPool()

	// Set up version route
	router.GET("/", func(c *gin.Context) {
		apiVersion := os.Getenv("PR_NUMBER")
		if apiVersion == "" {
			apiVersion = "main:latest"
		} else {
			apiVersion = "PR-" + apiVersion
		}
		metadata := &schemas.MetadataDTO{
			ApiVersion: apiVersion,
			ApiName:    "Cloud Drive",
		}
		utils.WriteAndLogResponse(c, metadata, http.StatusOK)
	})

	// Set up health route
	router.GET("/health", func(c *gin.Context) {
		if err := pool.Ping(c); err != nil {
			utils.WriteAndLogError(c, schemas.DatabaseError, err)
			return
		}
		health := &schemas.HealthDTO{
			Ok:      true,
			Service: serviceName,
			Time:    time.Now().UTC().Format(time.RFC3339),
		}
		utils.WriteAndLogResponse(c, health, http.StatusOK)
	})

	// Uploaded bytes are public under their unguessable key
	router.StaticFS("/uploads", filesOnly{deps.Storage.FileSystem()})

	accountStore := stores.NewAccountStore(pool)
	fileStore := stores.NewFileStore(pool)

	authService := services.NewAuthService(accountStore, deps.PasswordMgr, deps.JWTMgr, deps.MailMgr, deps.Config)
	profileService := services.NewProfileService(accountStore, deps.PasswordMgr, deps.Storage)
	fileService := services.NewFileService(fileStore, deps.Storage)

	// Set up API routes
	apiRouter := router.Group("/api")
	{
		authRouter := apiRouter.Group("/auth")
		authRoutes(authRouter, handlers.NewAuthHandler(authService))

		profileRouter := apiRouter.Group("/profile")
		profileRouter.Use(deps.JWTMgr.JWTMiddleware())
		profileRoutes(profileRouter, handlers.NewProfileHandler(profileService), deps.Config.MaxUploadBytes)

		fileRouter := apiRouter.Group("/files")
		fileRouter.Use(deps.JWTMgr.JWTMiddleware())
		fileRoutes(fileRouter, handlers.NewFileHandler(fileService), deps.Config.MaxUploadBytes)
	}
}

func authRoutes(authRouter *gin.RouterGroup, authHdl handlers.AuthHdl) {
	authRouter.POST("/signup", middleware.ValidateAndSanitizeStruct[schemas.SignupRequest](), authHdl.Signup)
	authRouter.POST("/login", middleware.ValidateAndSanitizeStruct[schemas.LoginRequest](), authHdl.Login)
	authRouter.POST("/forgot-password", middleware.ValidateAndSanitizeStruct[schemas.ForgotPasswordRequest](), authHdl.ForgotPassword)
	authRouter.POST("/reset-password", middleware.ValidateAndSanitizeStruct[schemas.ResetPasswordRequest](), authHdl.ResetPassword)
}

func profileRoutes(profileRouter *gin.RouterGroup, profileHdl handlers.ProfileHdl, maxUploadBytes int64) {
	profileRouter.GET("", profileHdl.GetProfile)
	profileRouter.PATCH("", middleware.ValidateAndSanitizeStruct[schemas.UpdateProfileRequest](), profileHdl.UpdateProfile)
	profileRouter.PUT("/password", middleware.ValidateAndSanitizeStruct[schemas.ChangePasswordRequest](), profileHdl.ChangePassword)
	profileRouter.PUT("/avatar", middleware.LimitBody(maxUploadBytes), profileHdl.ChangeAvatar)
}

func fileRoutes(fileRouter *gin.RouterGroup, fileHdl handlers.FileHdl, maxUploadBytes int64) {
	fileRouter.GET("", fileHdl.ListFiles)
	fileRouter.POST("", middleware.LimitBody(maxUploadBytes), fileHdl.UploadFile)
	fileRouter.GET("/stats", fileHdl.GetStats)
	fileRouter.GET("/:"+utils.FileIdParamKey+"/download", fileHdl.GetDownloadLocation)
	fileRouter.DELETE("/:"+utils.FileIdParamKey, fileHdl.DeleteFile)
}
