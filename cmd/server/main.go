package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/hrsuite/travel-approval/internal/api"
	"github.com/hrsuite/travel-approval/internal/config"
	domain "github.com/hrsuite/travel-approval/internal/domain/workflow"
	"github.com/hrsuite/travel-approval/internal/infrastructure/persistence/repository"
	"github.com/hrsuite/travel-approval/internal/infrastructure/worker"
	"github.com/hrsuite/travel-approval/internal/report"
	"github.com/hrsuite/travel-approval/internal/workflow"
	"github.com/hrsuite/travel-approval/pkg/database"
	"github.com/hrsuite/travel-approval/pkg/utils"
)

func main() {
	// Load configuration
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting travel approval workflow service",
		zap.Int("port", cfg.Server.Port))

	// Initialize database
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0755); err != nil {
		logger.Fatal("Failed to create data directory", zap.Error(err))
	}
	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Initialize repositories and engine
	requestRepo := repository.NewRequestRepository(db.DB, logger)
	auditRepo := repository.NewAuditRepository(db.DB, logger)
	engine := workflow.NewEngine(requestRepo, auditRepo, db, logger)
	exporter := report.NewExporter(requestRepo, auditRepo, logger)
	reconciler := workflow.NewReconciler(requestRepo, auditRepo, logger)

	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	// Background workers
	escalationWorker := worker.NewEscalationWorker(worker.EscalationConfig{
		ScanInterval: cfg.Workflow.EscalationScanInterval,
		StageSLAs: map[domain.Stage]time.Duration{
			domain.StageManagerApproval: cfg.Workflow.ManagerApprovalSLA,
			domain.StageFinanceApproval: cfg.Workflow.FinanceApprovalSLA,
		},
	}, requestRepo, engine, logger)

	workers := worker.NewManager(logger)
	workers.Register(escalationWorker)
	if err := workers.StartAll(rootCtx); err != nil {
		logger.Fatal("Failed to start workers", zap.Error(err))
	}

	// Scheduled reconciliation pass
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.Workflow.ReconcileSchedule, func() {
		if _, err := reconciler.Run(rootCtx); err != nil {
			logger.Error("Reconciliation pass failed", zap.Error(err))
		}
	}); err != nil {
		logger.Fatal("Invalid reconcile schedule", zap.Error(err))
	}
	scheduler.Start()

	// Set Gin mode based on logger level
	if cfg.Logger.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize HTTP router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(loggingMiddleware(logger))
	router.Use(corsMiddleware())

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "travel-approval",
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	handler := api.NewHandler(engine, requestRepo, auditRepo, exporter, logger)
	handler.RegisterRoutes(router)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	<-scheduler.Stop().Done()
	if err := workers.StopAll(); err != nil {
		logger.Error("Failed to stop workers", zap.Error(err))
	}
	rootCancel()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("ip", c.ClientIP()),
		)
	}
}

// corsMiddleware adds CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Actor-Id, X-Actor-Role")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
