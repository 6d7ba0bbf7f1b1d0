// Package stores provides concrete cache store implementations
package stores

import (
	"sync"
	"time"

	"github.com/BizOSaaS/brain-go/internal/domain/analytics"
	"github.com/BizOSaaS/brain-go/internal/infrastructure/caching/types"
	"github.com/BizOSaaS/brain-go/internal/infrastructure/observability/logging"
	"github.com/BizOSaaS/brain-go/pkg/config"
)

// AnalyticsStore implements analytics caching operations with tenant isolation
type AnalyticsStore struct {
	tenantCaches map[string]*types.TenantAnalyticsCache
	mu           sync.RWMutex
	logger       *logging.ChanneledLogger
}

// NewAnalyticsStore creates a new analytics cache store
func NewAnalyticsStore(logger *logging.ChanneledLogger) *AnalyticsStore {
	return &AnalyticsStore{
		tenantCaches: make(map[string]*types.TenantAnalyticsCache),
		logger:       logger,
	}
}

// InitializeTenant creates cache structures for a tenant
func (as *AnalyticsStore) InitializeTenant(tenantID string) {
	as.mu.Lock()
	defer as.mu.Unlock()

	if as.tenantCaches[tenantID] == nil {
		as.tenantCaches[tenantID] = &types.TenantAnalyticsCache{
			DashboardBins: make(map[string]*types.DashboardBin),
			PlatformBins:  make(map[string]*types.PlatformMetricsBin),
			Insights:      nil,
			LastUpdated:   time.Now().UTC(),
		}
	}
}

// RemoveTenant drops all cached state for a tenant
func (as *AnalyticsStore) RemoveTenant(tenantID string) {
	as.mu.Lock()
	defer as.mu.Unlock()
	delete(as.tenantCaches, tenantID)
}

// GetTenantCache safely retrieves a tenant's analytics cache
func (as *AnalyticsStore) GetTenantCache(tenantID string) (*types.TenantAnalyticsCache, bool) {
	as.mu.RLock()
	defer as.mu.RUnlock()
	cache, exists := as.tenantCaches[tenantID]
	return cache, exists
}

func (as *AnalyticsStore) ensureTenantCache(tenantID string) *types.TenantAnalyticsCache {
	cache, exists := as.GetTenantCache(tenantID)
	if !exists {
		as.InitializeTenant(tenantID)
		cache, _ = as.GetTenantCache(tenantID)
	}
	return cache
}

// GetDashboard retrieves a cached dashboard for a timeframe
func (as *AnalyticsStore) GetDashboard(tenantID, timeframe string) (*analytics.Dashboard, bool) {
	cache, exists := as.GetTenantCache(tenantID)
	if !exists {
		return nil, false
	}

	cache.Mu.RLock()
	defer cache.Mu.RUnlock()

	bin, exists := cache.DashboardBins[timeframe]
	if !exists || bin.IsExpired() {
		return nil, false
	}
	return bin.Data, true
}

// SetDashboard stores a computed dashboard for a timeframe
func (as *AnalyticsStore) SetDashboard(tenantID, timeframe string, dashboard *analytics.Dashboard) {
	cache := as.ensureTenantCache(tenantID)

	cache.Mu.Lock()
	defer cache.Mu.Unlock()

	cache.DashboardBins[timeframe] = &types.DashboardBin{
		Data:       dashboard,
		ComputedAt: time.Now().UTC(),
		TTL:        config.DashboardTTL,
	}
	cache.LastUpdated = time.Now().UTC()
}

// GetPlatformMetrics retrieves cached per-platform metrics
func (as *AnalyticsStore) GetPlatformMetrics(tenantID string, platform analytics.Platform, timeframe string) (*analytics.PlatformMetrics, bool) {
	cache, exists := as.GetTenantCache(tenantID)
	if !exists {
		return nil, false
	}

	cache.Mu.RLock()
	defer cache.Mu.RUnlock()

	bin, exists := cache.PlatformBins[platformBinKey(platform, timeframe)]
	if !exists || bin.IsExpired() {
		return nil, false
	}
	return bin.Data, true
}

// SetPlatformMetrics stores computed per-platform metrics
func (as *AnalyticsStore) SetPlatformMetrics(tenantID string, platform analytics.Platform, timeframe string, metrics *analytics.PlatformMetrics) {
	cache := as.ensureTenantCache(tenantID)

	cache.Mu.Lock()
	defer cache.Mu.Unlock()

	cache.PlatformBins[platformBinKey(platform, timeframe)] = &types.PlatformMetricsBin{
		Data:       metrics,
		ComputedAt: time.Now().UTC(),
		TTL:        config.PlatformMetricsTTL,
	}
	cache.LastUpdated = time.Now().UTC()
}

// GetInsights retrieves the cached current insight generation
func (as *AnalyticsStore) GetInsights(tenantID string) (*types.InsightBin, bool) {
	cache, exists := as.GetTenantCache(tenantID)
	if !exists {
		return nil, false
	}

	cache.Mu.RLock()
	defer cache.Mu.RUnlock()

	if cache.Insights == nil || cache.Insights.IsExpired() {
		return nil, false
	}
	return cache.Insights, true
}

// SetInsights stores the current insight generation
func (as *AnalyticsStore) SetInsights(tenantID, generationID string, insights []*analytics.CrossPlatformInsight) {
	cache := as.ensureTenantCache(tenantID)

	cache.Mu.Lock()
	defer cache.Mu.Unlock()

	cache.Insights = &types.InsightBin{
		GenerationID: generationID,
		Insights:     insights,
		ComputedAt:   time.Now().UTC(),
		TTL:          config.InsightCacheTTL,
	}
	cache.LastUpdated = time.Now().UTC()
}

// InvalidateAnalytics clears all computed entries for a tenant.
// Called after ingestion and after each aggregation run so reads
// never serve stale rollups.
func (as *AnalyticsStore) InvalidateAnalytics(tenantID string) {
	cache, exists := as.GetTenantCache(tenantID)
	if !exists {
		return
	}

	cache.Mu.Lock()
	defer cache.Mu.Unlock()

	cache.DashboardBins = make(map[string]*types.DashboardBin)
	cache.PlatformBins = make(map[string]*types.PlatformMetricsBin)
	cache.Insights = nil
	cache.LastUpdated = time.Now().UTC()

	if as.logger != nil {
		as.logger.Cache().Debug("Analytics cache invalidated", "tenantId", tenantID)
	}
}

// PurgeExpiredBins removes expired entries and returns the count removed
func (as *AnalyticsStore) PurgeExpiredBins(tenantID string) int {
	cache, exists := as.GetTenantCache(tenantID)
	if !exists {
		return 0
	}

	cache.Mu.Lock()
	defer cache.Mu.Unlock()

	purged := 0
	for key, bin := range cache.DashboardBins {
		if bin.IsExpired() {
			delete(cache.DashboardBins, key)
			purged++
		}
	}
	for key, bin := range cache.PlatformBins {
		if bin.IsExpired() {
			delete(cache.PlatformBins, key)
			purged++
		}
	}
	if cache.Insights != nil && cache.Insights.IsExpired() {
		cache.Insights = nil
		purged++
	}

	if purged > 0 {
		cache.LastUpdated = time.Now().UTC()
	}
	return purged
}

// GetAnalyticsSummary returns cache status summary for debugging
func (as *AnalyticsStore) GetAnalyticsSummary(tenantID string) map[string]any {
	cache, exists := as.GetTenantCache(tenantID)
	if !exists {
		return map[string]any{
			"exists": false,
		}
	}

	cache.Mu.RLock()
	defer cache.Mu.RUnlock()

	return map[string]any{
		"exists":        true,
		"dashboardBins": len(cache.DashboardBins),
		"platformBins":  len(cache.PlatformBins),
		"hasInsights":   cache.Insights != nil,
		"lastUpdated":   cache.LastUpdated,
	}
}

func platformBinKey(platform analytics.Platform, timeframe string) string {
	return string(platform) + ":" + timeframe
}
