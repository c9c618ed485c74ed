package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"loan-portal-api/internal/client"
	"loan-portal-api/internal/config"
	"loan-portal-api/internal/database"
	"loan-portal-api/internal/job"
	"loan-portal-api/internal/metrics"
	"loan-portal-api/internal/repository"
	"loan-portal-api/internal/router"
)

func main() {
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg.Logger.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Info("Starting loan portal API",
		zap.String("port", cfg.Server.Port),
		zap.String("mode", cfg.Server.Mode),
		zap.String("base_path", cfg.Server.BasePath),
	)

	dbConfig := database.Config{
		DSN:             cfg.Database.GetDSN(),
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}

	db, err := database.New(dbConfig)
	if err != nil {
		logger.Warn("Failed to connect to database on startup, will retry in background", zap.Error(err))
		database.NewAsync(dbConfig, 5*time.Second)
	} else {
		logger.Info("Database connected successfully")
		if err := database.SafeAutoMigrate(db, logger); err != nil {
			logger.Warn("Failed to run database migrations", zap.Error(err))
		} else {
			logger.Info("Database migrations completed")
			if err := database.SeedTaskTemplates(db, logger); err != nil {
				logger.Warn("Failed to seed task templates", zap.Error(err))
			}
		}
	}

	if err := database.InitRedis(cfg, logger); err != nil {
		logger.Warn("Failed to connect to Redis, lead dedup falls back to the database", zap.Error(err))
	}

	m := metrics.NewWithLogger(logger)

	var storage client.StorageClient
	if cfg.S3.Bucket != "" && cfg.S3.Region != "" {
		s3Client, err := client.NewS3Client(&cfg.S3)
		if err != nil {
			logger.Warn("Failed to initialize S3 client, attachment features may be limited", zap.Error(err))
		} else {
			storage = s3Client
			logger.Info("S3 client initialized",
				zap.String("bucket", cfg.S3.Bucket),
				zap.String("region", cfg.S3.Region),
			)
		}
	} else {
		logger.Warn("S3 configuration incomplete, attachment features disabled")
	}

	emailClient, err := client.NewEmailClient(&cfg.SMTP)
	if err != nil {
		logger.Warn("SMTP not configured, invite and reset emails will fail", zap.Error(err))
	}

	r := router.Setup(router.Config{
		DB:            db,
		Redis:         database.GetRedis(),
		Logger:        logger,
		Metrics:       m,
		JWTSecret:     cfg.JWT.Secret,
		WebhookSecret: cfg.Webhook.Secret,
		BasePath:      cfg.Server.BasePath,
		FrontendURL:   cfg.Server.FrontendURL,
		Storage:       storage,
		Email:         emailClient,
		S3:            cfg.S3,
	})

	// Background jobs only make sense with a live DB connection
	var scheduler *cron.Cron
	var collector *metrics.BusinessMetricsCollector
	if db != nil {
		scheduler = cron.New()
		cleanup := job.NewCleanupJob(
			repository.NewAttachmentRepository(db),
			repository.NewTokenRepository(db),
			storage,
			logger,
		)
		if _, err := scheduler.AddJob(cfg.Cleanup.Schedule, cleanup); err != nil {
			logger.Warn("Failed to schedule cleanup job", zap.Error(err))
		} else {
			scheduler.Start()
			logger.Info("Cleanup job scheduled", zap.String("schedule", cfg.Cleanup.Schedule))
		}

		collector = metrics.NewBusinessMetricsCollector(db, m, logger)
		collector.Start()
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("Loan portal API started", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	if scheduler != nil {
		scheduler.Stop()
	}
	if collector != nil {
		collector.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited gracefully")
}

// initLogger initializes the zap logger with the specified level
func initLogger(level string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      zapLevel == zapcore.DebugLevel,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return config.Build()
}
