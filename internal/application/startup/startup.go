// Package startup prepares the application server
package startup

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BizOSaaS/brain-go/internal/application/container"
	"github.com/BizOSaaS/brain-go/internal/application/scheduler"
	"github.com/BizOSaaS/brain-go/internal/infrastructure/caching/cleanup"
	"github.com/BizOSaaS/brain-go/internal/infrastructure/observability/logging"
	"github.com/BizOSaaS/brain-go/internal/infrastructure/observability/performance"
	"github.com/BizOSaaS/brain-go/internal/infrastructure/tenant"
	"github.com/BizOSaaS/brain-go/internal/presentation/http/server"
	"github.com/BizOSaaS/brain-go/pkg/config"
	"github.com/gin-gonic/gin"
)

// Initialize performs the complete multi-tenant startup sequence
func Initialize() error {
	setupLogging()

	start := time.Now().UTC()

	ctx, cancelBackgroundTasks := context.WithCancel(context.Background())
	defer cancelBackgroundTasks()

	log.Println("BizOSaaS Brain analytics core starting...")

	// Step 1: Initialize observability
	logger, err := logging.NewChanneledLogger(nil)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	perfTracker := performance.NewTracker()

	// Step 2: Initialize tenant system
	logger.Startup().Info("Initializing tenant system")
	tenantManager := tenant.NewManager(logger)

	// Step 3: Load tenant registry to discover all tenants
	registry, err := tenant.LoadTenantRegistry()
	if err != nil {
		return fmt.Errorf("failed to load tenant registry: %w", err)
	}
	logger.Startup().Info("Tenant registry loaded", "tenants", len(registry.Tenants))

	// Step 4: Pre-activate registered tenants
	if err := tenantManager.PreActivateAllTenants(); err != nil {
		// Individual tenants can fail activation (missing config, bad
		// credentials) without blocking the rest of the fleet.
		logger.Startup().Warn("Tenant pre-activation finished with errors", "error", err.Error())
	}
	activeTenants := tenantManager.GetActiveTenantIDs()
	logger.Startup().Info("Tenant pre-activation complete", "activeTenants", len(activeTenants))

	// Step 5: Create dependency injection container
	appContainer := container.NewContainer(tenantManager, logger, perfTracker)
	logger.Startup().Info("Dependency injection container created with singleton services")

	// Step 6: Start batch scheduler
	batchScheduler, err := scheduler.NewScheduler(
		tenantManager,
		appContainer.AggregationService,
		appContainer.InsightService,
		appContainer.RetentionService,
		logger,
	)
	if err != nil {
		return fmt.Errorf("failed to initialize scheduler: %w", err)
	}
	batchScheduler.Start()

	// Step 7: Start background cache cleanup worker
	cleanupWorker := cleanup.NewWorker(appContainer.CacheManager, cleanup.NewConfig(), logger)
	go cleanupWorker.Start(ctx)
	logger.Startup().Info("Background cleanup worker started")

	// Step 8: Start HTTP server
	port := config.Port
	httpServer := server.New(port, appContainer)

	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.System().Info("Starting HTTP server", "address", ":"+port)
		if err := httpServer.Start(); err != nil {
			logger.System().Error("HTTP server failed", "error", err.Error())
		}
	}()

	logger.Startup().Info("Application startup complete",
		"totalDuration", time.Since(start),
		"activeTenants", len(activeTenants),
		"port", port)

	// Wait for shutdown signal
	<-gracefulShutdown
	logger.Shutdown().Info("Shutdown signal received, starting graceful shutdown...")

	shutdownStart := time.Now()

	cancelBackgroundTasks()
	batchScheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Shutdown().Error("Error during server shutdown", "error", err.Error())
	} else {
		logger.Shutdown().Info("HTTP server stopped successfully")
	}

	if err := tenantManager.Close(); err != nil {
		logger.Shutdown().Error("Error closing tenant manager", "error", err.Error())
	} else {
		logger.Shutdown().Info("Tenant manager closed successfully")
	}

	logger.Shutdown().Info("Application shutdown complete",
		"totalUptime", time.Since(start),
		"shutdownDuration", time.Since(shutdownStart))

	return nil
}

// setupLogging configures application logging
func setupLogging() {
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}
