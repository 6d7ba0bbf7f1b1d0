// Package cleanup provides the background cache eviction worker
package cleanup

import (
	"context"
	"time"

	"github.com/BizOSaaS/brain-go/internal/infrastructure/caching/interfaces"
	"github.com/BizOSaaS/brain-go/internal/infrastructure/observability/logging"
	"github.com/BizOSaaS/brain-go/internal/infrastructure/tenant"
)

// Worker handles background cache cleanup operations
type Worker struct {
	cache  interfaces.Cache
	config *Config
	logger *logging.ChanneledLogger
}

// NewWorker creates a new cleanup worker with injected configuration
func NewWorker(cache interfaces.Cache, config *Config, logger *logging.ChanneledLogger) *Worker {
	return &Worker{
		cache:  cache,
		config: config,
		logger: logger,
	}
}

// Start begins the cleanup worker routine, using the configured interval
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.config.CleanupInterval)
	defer ticker.Stop()

	w.logger.Cache().Info("Cache cleanup worker started", "interval", w.config.CleanupInterval)

	for {
		select {
		case <-ctx.Done():
			w.logger.Cache().Info("Cache cleanup worker stopping")
			return
		case <-ticker.C:
			w.performCleanup(ctx)
		}
	}
}

// performCleanup executes TTL eviction for all active tenants
func (w *Worker) performCleanup(ctx context.Context) {
	start := time.Now()

	tenants, err := w.getActiveTenants()
	if err != nil {
		w.logger.Cache().Error("Cache cleanup failed to get active tenants", "error", err.Error())
		return
	}

	var totalPurged int
	for _, tenantID := range tenants {
		select {
		case <-ctx.Done():
			return
		default:
			totalPurged += w.cache.PurgeExpiredBins(tenantID)
		}
	}

	if totalPurged > 0 {
		w.logger.Cache().Info("Cache cleanup finished",
			"purged", totalPurged, "tenants", len(tenants), "duration", time.Since(start))
	}
}

// getActiveTenants loads the tenant registry and returns active tenant IDs
func (w *Worker) getActiveTenants() ([]string, error) {
	registry, err := tenant.LoadTenantRegistry()
	if err != nil {
		return nil, err
	}

	activeTenants := make([]string, 0)
	for tenantID, tenantInfo := range registry.Tenants {
		if tenantInfo.Status == "active" {
			activeTenants = append(activeTenants, tenantID)
		}
	}

	return activeTenants, nil
}
