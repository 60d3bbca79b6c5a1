package internal

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"cloud-drive/internal/config"
	"cloud-drive/internal/database"
	"cloud-drive/internal/managers"
	"cloud-drive/internal/routing"
	"cloud-drive/internal/storage"
)

const shutdownTimeout = 10 * time.Second

func Init() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Error loading configuration: ", err)
	}

	setLogLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to database
	if err := cfg.ValidateDatabase(); err != nil {
		log.Fatal(err)
	}
	pool, err := database.Connect(ctx, cfg)
	if err != nil {
		log.Fatal("Error connecting to database: ", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		log.Fatal("Error migrating database: ", err)
	}

	// Initialize managers
	databaseMgr := managers.NewDatabaseManager(pool)
	mailMgr := managers.NewMailManager(cfg)

	jwtMgr, err := managers.NewJWTManagerFromFile(cfg.KeyPairPath, cfg.TokenValidity)
	if err != nil {
		log.Fatal("Error initializing JWT manager: ", err)
	}

	passwordMgr, err := managers.NewPasswordManager(cfg.BcryptCost)
	if err != nil {
		log.Fatal("Error initializing password manager: ", err)
	}

	blobs, err := storage.NewDiskStorage(afero.NewOsFs(), cfg.UploadDir, cfg.PublicBaseURL+"/uploads")
	if err != nil {
		log.Fatal("Error initializing storage: ", err)
	}

	// Initialize router
	r := routing.InitRouter(&routing.Dependencies{
		Config:      cfg,
		DatabaseMgr: databaseMgr,
		MailMgr:     mailMgr,
		JWTMgr:      jwtMgr,
		PasswordMgr: passwordMgr,
		Storage:     blobs,
	})
	log.Info("Initialized router")

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		log.Info("Server shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down server: ", err)
		}
	}()

	// Start server on the specified port
	log.Infof("Starting server on port %s...", cfg.Port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("Error starting server: ", err)
	}
	log.Info("Server stopped")
}

func setLogLevel(logLevel string) {
	switch logLevel {
	case "DEBUG":
		log.SetLevel(log.DebugLevel)
	case "INFO":
		log.SetLevel(log.InfoLevel)
	case "WARN":
		log.SetLevel(log.WarnLevel)
	case "ERROR":
		log.SetLevel(log.ErrorLevel)
	case "FATAL":
		log.SetLevel(log.FatalLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}

	log.SetReportCaller(true)

	log.SetOutput(os.Stdout)
}
