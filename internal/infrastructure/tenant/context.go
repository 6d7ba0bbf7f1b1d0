// Package tenant provides tenant context management for multi-tenant support.
package tenant

import (
	"github.com/BizOSaaS/brain-go/internal/domain/analytics"
	"github.com/BizOSaaS/brain-go/internal/domain/entitlement"
	"github.com/BizOSaaS/brain-go/internal/infrastructure/caching/manager"
	"github.com/BizOSaaS/brain-go/internal/infrastructure/observability/logging"
	persistenceAnalytics "github.com/BizOSaaS/brain-go/internal/infrastructure/persistence/analytics"
	"github.com/BizOSaaS/brain-go/internal/infrastructure/persistence/database"
)

// Context holds tenant-specific request context
type Context struct {
	TenantID     string
	Config       *Config
	Database     *Database
	Status       string
	CacheManager *manager.Manager
	Logger       *logging.ChanneledLogger
}

// Close cleans up the tenant context
func (ctx *Context) Close() error {
	if ctx.Database != nil {
		return ctx.Database.Close()
	}
	return nil
}

// GetTenantID returns the tenant ID for this context
func (ctx *Context) GetTenantID() string {
	return ctx.TenantID
}

// GetConfig returns the tenant configuration
func (ctx *Context) GetConfig() *Config {
	return ctx.Config
}

// GetDatabase returns the tenant database connection
func (ctx *Context) GetDatabase() *Database {
	return ctx.Database
}

// GetStatus returns the tenant status
func (ctx *Context) GetStatus() string {
	return ctx.Status
}

// GetCacheManager returns the cache manager
func (ctx *Context) GetCacheManager() *manager.Manager {
	return ctx.CacheManager
}

// IsActive returns true if the tenant is active
func (ctx *Context) IsActive() bool {
	return ctx.Status == "active"
}

// SubscriptionTier returns the tenant's normalized entitlement tier
func (ctx *Context) SubscriptionTier() entitlement.Tier {
	return entitlement.Normalize(ctx.Config.SubscriptionTier)
}

// HasFeature reports whether the tenant's tier includes a feature
func (ctx *Context) HasFeature(feature entitlement.Feature) bool {
	return entitlement.HasFeature(ctx.SubscriptionTier(), feature)
}

// GetDatabaseInfo returns database connection information for logging
func (ctx *Context) GetDatabaseInfo() string {
	if ctx.Database != nil {
		return ctx.Database.GetConnectionInfo()
	}
	return "no database connection"
}

// =============================================================================
// Repository Factory Methods
// =============================================================================

// DataPointRepo returns a data point repository bound to this tenant's database.
// It returns the interface type from the domain layer.
func (ctx *Context) DataPointRepo() analytics.DataPointRepository {
	db := &database.DB{DB: ctx.Database.Conn}
	return persistenceAnalytics.NewSQLDataPointRepository(db, ctx.Logger)
}

// AggregateRepo returns an aggregate repository bound to this tenant's database.
// It returns the interface type from the domain layer.
func (ctx *Context) AggregateRepo() analytics.AggregateRepository {
	db := &database.DB{DB: ctx.Database.Conn}
	return persistenceAnalytics.NewSQLAggregateRepository(db, ctx.Logger)
}

// InsightRepo returns an insight repository bound to this tenant's database.
// It returns the interface type from the domain layer.
func (ctx *Context) InsightRepo() analytics.InsightRepository {
	db := &database.DB{DB: ctx.Database.Conn}
	return persistenceAnalytics.NewSQLInsightRepository(db, ctx.Logger)
}
