package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"filevault/config"
	"filevault/database"
	"filevault/middleware"
	"filevault/realtime"
	"filevault/routes"
	"filevault/storage"
	"filevault/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	app, err := NewApplication()
	if err != nil {
		logrus.Fatalf("Failed to initialize application: %v", err)
	}

	if err := app.Start(); err != nil {
		logrus.Fatalf("Failed to start application: %v", err)
	}
}

// Application wires configuration, storage, the realtime hub, and the
// HTTP server together.
type Application struct {
	config *config.Config
	router *gin.Engine
	server *http.Server
	hub    *realtime.Hub
}

func NewApplication() (*Application, error) {
	cfg := config.LoadConfig()
	if err := cfg.ValidateConfig(); err != nil {
		return nil, err
	}

	utils.ConfigureJWT(cfg.JWTSecret, cfg.AccessTokenTTL)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := setupRouter(cfg)

	return &Application{
		config: cfg,
		router: router,
		hub:    realtime.NewHub(),
		server: &http.Server{
			Addr:         cfg.GetServerAddress(),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}, nil
}

func (app *Application) Start() error {
	logrus.Infof("Starting %s v%s in %s mode",
		app.config.AppName,
		app.config.AppVersion,
		app.config.Environment)

	if err := app.initializeDatabase(); err != nil {
		return err
	}

	if err := storage.Init(app.config); err != nil {
		return err
	}
	logrus.Infof("Storage provider %q ready", app.config.StorageProvider)

	routes.SetupRoutes(app.router, app.hub)

	go func() {
		logrus.Infof("Server listening on %s", app.server.Addr)
		if err := app.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	app.waitForShutdown()
	return nil
}

func (app *Application) initializeDatabase() error {
	if err := database.Connect(app.config.MongoURI, app.config.DBName); err != nil {
		return err
	}

	if err := database.EnsureIndexes(); err != nil {
		return err
	}

	logrus.Info("Database ready")
	return nil
}

func setupRouter(cfg *config.Config) *gin.Engine {
	router := gin.New()
	router.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.CORSAllowedOrigins))

	router.MaxMultipartMemory = cfg.MaxUploadSize

	// Serves the URLs the local blob store hands out; harmless when
	// the S3 provider is active.
	router.Static("/uploads", cfg.UploadPath)

	return router
}

func (app *Application) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logrus.Info("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	if err := database.Disconnect(); err != nil {
		logrus.Errorf("Error closing database: %v", err)
	}

	logrus.Info("Server shutdown complete")
}
