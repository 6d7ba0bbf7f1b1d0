// Package manager provides centralized cache operations with proper tenant isolation
package manager

import (
	"fmt"
	"sync"
	"time"

	"github.com/BizOSaaS/brain-go/internal/domain/analytics"
	"github.com/BizOSaaS/brain-go/internal/infrastructure/caching/interfaces"
	"github.com/BizOSaaS/brain-go/internal/infrastructure/caching/stores"
	"github.com/BizOSaaS/brain-go/internal/infrastructure/caching/types"
	"github.com/BizOSaaS/brain-go/internal/infrastructure/observability/logging"
)

var _ interfaces.Cache = (*Manager)(nil)

// Manager provides centralized cache operations with proper tenant isolation
// by delegating to specialized stores.
type Manager struct {
	Mu             sync.RWMutex
	LastAccessed   map[string]time.Time
	analyticsStore *stores.AnalyticsStore
	logger         *logging.ChanneledLogger
}

func NewManager(logger *logging.ChanneledLogger) *Manager {
	if logger != nil {
		logger.Cache().Info("Initializing cache manager", "stores", []string{"analytics"})
	}

	return &Manager{
		LastAccessed:   make(map[string]time.Time),
		analyticsStore: stores.NewAnalyticsStore(logger),
		logger:         logger,
	}
}

func (m *Manager) GetTenantAnalyticsCache(tenantID string) (*types.TenantAnalyticsCache, error) {
	cache, exists := m.analyticsStore.GetTenantCache(tenantID)
	if !exists {
		return nil, fmt.Errorf("tenant %s analytics cache not initialized", tenantID)
	}
	return cache, nil
}

func (m *Manager) updateTenantAccessTime(tenantID string) {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.LastAccessed[tenantID] = time.Now().UTC()
}

func (m *Manager) InitializeTenant(tenantID string) {
	start := time.Now()
	if m.logger != nil {
		m.logger.Cache().Debug("Initializing tenant cache", "tenantId", tenantID)
	}

	m.analyticsStore.InitializeTenant(tenantID)
	m.updateTenantAccessTime(tenantID)

	if m.logger != nil {
		m.logger.Cache().Info("Tenant cache initialized", "tenantId", tenantID, "duration", time.Since(start))
	}
}

func (m *Manager) RemoveTenant(tenantID string) {
	m.analyticsStore.RemoveTenant(tenantID)

	m.Mu.Lock()
	delete(m.LastAccessed, tenantID)
	m.Mu.Unlock()
}

func (m *Manager) GetDashboard(tenantID, timeframe string) (*analytics.Dashboard, bool) {
	m.updateTenantAccessTime(tenantID)
	return m.analyticsStore.GetDashboard(tenantID, timeframe)
}

func (m *Manager) SetDashboard(tenantID, timeframe string, dashboard *analytics.Dashboard) {
	m.updateTenantAccessTime(tenantID)
	m.analyticsStore.SetDashboard(tenantID, timeframe, dashboard)
}

func (m *Manager) GetPlatformMetrics(tenantID string, platform analytics.Platform, timeframe string) (*analytics.PlatformMetrics, bool) {
	m.updateTenantAccessTime(tenantID)
	return m.analyticsStore.GetPlatformMetrics(tenantID, platform, timeframe)
}

func (m *Manager) SetPlatformMetrics(tenantID string, platform analytics.Platform, timeframe string, metrics *analytics.PlatformMetrics) {
	m.updateTenantAccessTime(tenantID)
	m.analyticsStore.SetPlatformMetrics(tenantID, platform, timeframe, metrics)
}

func (m *Manager) GetInsights(tenantID string) (*types.InsightBin, bool) {
	m.updateTenantAccessTime(tenantID)
	return m.analyticsStore.GetInsights(tenantID)
}

func (m *Manager) SetInsights(tenantID, generationID string, insights []*analytics.CrossPlatformInsight) {
	m.updateTenantAccessTime(tenantID)
	m.analyticsStore.SetInsights(tenantID, generationID, insights)
}

func (m *Manager) InvalidateAnalytics(tenantID string) {
	m.analyticsStore.InvalidateAnalytics(tenantID)
}

func (m *Manager) PurgeExpiredBins(tenantID string) int {
	return m.analyticsStore.PurgeExpiredBins(tenantID)
}

func (m *Manager) GetAnalyticsSummary(tenantID string) map[string]any {
	return m.analyticsStore.GetAnalyticsSummary(tenantID)
}

// GetKnownTenants returns every tenant with cached state
func (m *Manager) GetKnownTenants() []string {
	m.Mu.RLock()
	defer m.Mu.RUnlock()

	tenants := make([]string, 0, len(m.LastAccessed))
	for tenantID := range m.LastAccessed {
		tenants = append(tenants, tenantID)
	}
	return tenants
}
