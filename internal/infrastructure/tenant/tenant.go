// Package tenant manages tenant-specific configurations and context,
// isolating multi-tenancy logic from the rest of the application.
package tenant

import (
	"fmt"
	"sync"

	"github.com/BizOSaaS/brain-go/internal/infrastructure/caching/manager"
	"github.com/BizOSaaS/brain-go/internal/infrastructure/observability/logging"
	"github.com/BizOSaaS/brain-go/internal/infrastructure/persistence/database"
	"github.com/gin-gonic/gin"
)

// Manager coordinates tenant detection and context creation
type Manager struct {
	detector       *Detector
	cacheManager   *manager.Manager
	tableCreator   *database.TableCreator
	contexts       map[string]*Context
	contextMutexes sync.Map // Per-tenant mutexes for fine-grained locking
	globalMutex    sync.RWMutex
	logger         *logging.ChanneledLogger
}

// NewManager creates and initializes a new tenant manager.
func NewManager(logger *logging.ChanneledLogger) *Manager {
	detector, err := NewDetector(logger)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize tenant detector: %v", err))
	}

	cacheManager := manager.NewManager(logger)

	return &Manager{
		detector:     detector,
		cacheManager: cacheManager,
		tableCreator: database.NewTableCreator(),
		contexts:     make(map[string]*Context),
		logger:       logger,
	}
}

// GetContext creates or retrieves a tenant context for the request
func (m *Manager) GetContext(c *gin.Context) (*Context, error) {
	tenantID, err := m.detector.DetectTenant(c)
	if err != nil {
		return nil, fmt.Errorf("tenant detection failed: %w", err)
	}

	m.globalMutex.RLock()
	if ctx, exists := m.contexts[tenantID]; exists {
		m.globalMutex.RUnlock()
		if ctx.Database != nil && ctx.Database.Conn != nil {
			return ctx, nil
		}
	} else {
		m.globalMutex.RUnlock()
	}

	tenantMutexInterface, _ := m.contextMutexes.LoadOrStore(tenantID, &sync.Mutex{})
	tenantMutex := tenantMutexInterface.(*sync.Mutex)

	tenantMutex.Lock()
	defer tenantMutex.Unlock()

	m.globalMutex.RLock()
	if ctx, exists := m.contexts[tenantID]; exists {
		m.globalMutex.RUnlock()
		if ctx.Database != nil && ctx.Database.Conn != nil {
			return ctx, nil
		}
	} else {
		m.globalMutex.RUnlock()
	}

	return m.createContext(tenantID)
}

// NewContextFromID creates a new tenant context from a tenant ID string.
func (m *Manager) NewContextFromID(tenantID string) (*Context, error) {
	m.globalMutex.RLock()
	if ctx, exists := m.contexts[tenantID]; exists {
		m.globalMutex.RUnlock()
		if ctx.Database != nil && ctx.Database.Conn != nil {
			return ctx, nil
		}
	} else {
		m.globalMutex.RUnlock()
	}

	return m.createContext(tenantID)
}

// createContext creates a new tenant context
func (m *Manager) createContext(tenantID string) (*Context, error) {
	config, err := LoadTenantConfig(tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tenant config: %w", err)
	}

	db, err := NewDatabase(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection: %w", err)
	}

	if err := m.tableCreator.CreateSchema(db.Conn); err != nil {
		return nil, fmt.Errorf("failed to create tenant schema: %w", err)
	}

	status := m.detector.GetTenantStatus(tenantID)
	m.cacheManager.InitializeTenant(tenantID)

	ctx := &Context{
		TenantID:     tenantID,
		Config:       config,
		Database:     db,
		Status:       status,
		CacheManager: m.cacheManager,
		Logger:       m.logger,
	}

	m.globalMutex.Lock()
	m.contexts[tenantID] = ctx
	m.globalMutex.Unlock()

	return ctx, nil
}

// ProvisionTenant writes a new tenant's config, registers it, and activates
// its database. The caller supplies a config with secrets already prepared.
func (m *Manager) ProvisionTenant(cfg *Config) (*Context, error) {
	if cfg.TenantID == "" {
		return nil, fmt.Errorf("tenant id is required")
	}

	if err := SaveTenantConfig(cfg); err != nil {
		return nil, err
	}
	if err := RegisterTenant(cfg.TenantID); err != nil {
		return nil, err
	}
	if err := m.detector.RefreshRegistry(); err != nil {
		return nil, err
	}

	ctx, err := m.createContext(cfg.TenantID)
	if err != nil {
		return nil, err
	}

	dbType := "sqlite3"
	if ctx.Database.UseTurso {
		dbType = "turso"
	}
	m.detector.UpdateTenantStatus(cfg.TenantID, "active", dbType)
	if err := m.persistRegistryStatus(cfg.TenantID, "active", dbType); err != nil {
		return nil, err
	}
	ctx.Status = "active"

	m.logger.Tenant().Info("Tenant provisioned",
		"tenantId", cfg.TenantID, "tier", cfg.SubscriptionTier, "database", dbType)
	return ctx, nil
}

// persistRegistryStatus updates one tenant's entry in the on-disk registry
func (m *Manager) persistRegistryStatus(tenantID, status, dbType string) error {
	registry, err := LoadTenantRegistry()
	if err != nil {
		return err
	}
	info, exists := registry.Tenants[tenantID]
	if !exists {
		info = TenantInfo{TenantID: tenantID, Domains: []string{"*"}}
	}
	info.Status = status
	if dbType != "" {
		info.DatabaseType = dbType
	}
	registry.Tenants[tenantID] = info
	return SaveTenantRegistry(registry)
}

// PreActivateAllTenants activates all tenants in the registry during startup
func (m *Manager) PreActivateAllTenants() error {
	registry, err := LoadTenantRegistry()
	if err != nil {
		return fmt.Errorf("failed to load tenant registry for pre-activation: %w", err)
	}

	if len(registry.Tenants) == 0 {
		return nil
	}

	var failedTenants []string

	for tenantID := range registry.Tenants {
		if err := m.preActivateSingleTenant(tenantID); err != nil {
			m.logger.Tenant().Warn("Tenant pre-activation failed",
				"tenantId", tenantID, "error", err.Error())
			failedTenants = append(failedTenants, tenantID)
			continue
		}
	}

	if err := m.detector.RefreshRegistry(); err != nil {
		return fmt.Errorf("failed to refresh detector registry: %w", err)
	}

	if len(failedTenants) > 0 {
		return fmt.Errorf("pre-activation failed for tenants: %v", failedTenants)
	}

	return nil
}

// preActivateSingleTenant activates a single tenant during startup
func (m *Manager) preActivateSingleTenant(tenantID string) error {
	ctx, err := m.createContext(tenantID)
	if err != nil {
		return fmt.Errorf("failed to create context for tenant %s: %w", tenantID, err)
	}

	if err := ctx.Database.Conn.Ping(); err != nil {
		return fmt.Errorf("database connection test failed for tenant %s: %w", tenantID, err)
	}

	dbType := "sqlite3"
	if ctx.Database.UseTurso {
		dbType = "turso"
	}
	m.detector.UpdateTenantStatus(tenantID, "active", dbType)

	return nil
}

// GetActiveTenantIDs returns the IDs of all active tenants
func (m *Manager) GetActiveTenantIDs() []string {
	registry := m.detector.GetRegistry()

	ids := make([]string, 0, len(registry.Tenants))
	for tenantID, tenantInfo := range registry.Tenants {
		if tenantInfo.Status == "active" {
			ids = append(ids, tenantID)
		}
	}
	return ids
}

// GetCacheManager returns the cache manager for external access
func (m *Manager) GetCacheManager() *manager.Manager {
	return m.cacheManager
}

// GetDetector returns the detector for external access (needed by startup code)
func (m *Manager) GetDetector() *Detector {
	return m.detector
}

// Close cleans up all tenant contexts
func (m *Manager) Close() error {
	m.globalMutex.Lock()
	defer m.globalMutex.Unlock()

	for _, ctx := range m.contexts {
		if err := ctx.Close(); err != nil {
			continue
		}
	}

	m.contexts = make(map[string]*Context)
	return nil
}

// GetLogger returns the logger for middleware access
func (m *Manager) GetLogger() *logging.ChanneledLogger {
	return m.logger
}
