// Package types defines cache entry structures for multi-tenant analytics caching.
package types

import (
	"sync"
	"time"

	"github.com/BizOSaaS/brain-go/internal/domain/analytics"
)

// DashboardBin contains a computed dashboard for one timeframe
type DashboardBin struct {
	Data       *analytics.Dashboard `json:"data"`
	ComputedAt time.Time            `json:"computedAt"`
	TTL        time.Duration        `json:"ttl"`
}

// IsExpired reports whether the bin has outlived its TTL
func (b *DashboardBin) IsExpired() bool {
	return time.Since(b.ComputedAt) > b.TTL
}

// PlatformMetricsBin contains computed per-platform metrics for one platform and range
type PlatformMetricsBin struct {
	Data       *analytics.PlatformMetrics `json:"data"`
	ComputedAt time.Time                  `json:"computedAt"`
	TTL        time.Duration              `json:"ttl"`
}

// IsExpired reports whether the bin has outlived its TTL
func (b *PlatformMetricsBin) IsExpired() bool {
	return time.Since(b.ComputedAt) > b.TTL
}

// InsightBin contains the current insight generation for a tenant
type InsightBin struct {
	GenerationID string                            `json:"generationId"`
	Insights     []*analytics.CrossPlatformInsight `json:"insights"`
	ComputedAt   time.Time                         `json:"computedAt"`
	TTL          time.Duration                     `json:"ttl"`
}

// IsExpired reports whether the bin has outlived its TTL
func (b *InsightBin) IsExpired() bool {
	return time.Since(b.ComputedAt) > b.TTL
}

// TenantAnalyticsCache holds all cached analytics state for a single tenant.
// Each tenant gets its own instance; there is no shared keyspace.
type TenantAnalyticsCache struct {
	Mu            sync.RWMutex
	DashboardBins map[string]*DashboardBin       // key: timeframe ("7d", "30d", "90d")
	PlatformBins  map[string]*PlatformMetricsBin // key: platform + ":" + timeframe
	Insights      *InsightBin
	LastUpdated   time.Time
}
