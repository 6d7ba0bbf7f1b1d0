package handlers

import (
	"net/http"
	"time"

	"github.com/BizOSaaS/brain-go/internal/infrastructure/tenant"
	"github.com/BizOSaaS/brain-go/internal/presentation/http/middleware"
	"github.com/gin-gonic/gin"
)

// HealthHandlers contains the liveness and status handlers
type HealthHandlers struct {
	tenantManager *tenant.Manager
	startedAt     time.Time
}

// NewHealthHandlers creates health handlers with injected dependencies
func NewHealthHandlers(tenantManager *tenant.Manager) *HealthHandlers {
	return &HealthHandlers{
		tenantManager: tenantManager,
		startedAt:     time.Now().UTC(),
	}
}

// GetHealth handles GET /api/v1/health - liveness plus tenant summary
func (h *HealthHandlers) GetHealth(c *gin.Context) {
	activeTenants := h.tenantManager.GetActiveTenantIDs()

	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"uptime":        time.Since(h.startedAt).String(),
		"activeTenants": len(activeTenants),
	})
}

// GetTenantStatus handles GET /api/v1/health/tenant - per-tenant storage status
func (h *HealthHandlers) GetTenantStatus(c *gin.Context) {
	tenantCtx, exists := middleware.GetTenantContext(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "tenant context not found"})
		return
	}

	pointCount, err := tenantCtx.DataPointRepo().CountForTenant(tenantCtx.TenantID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tenantId":   tenantCtx.TenantID,
		"status":     tenantCtx.Status,
		"tier":       tenantCtx.SubscriptionTier(),
		"database":   tenantCtx.GetDatabaseInfo(),
		"dataPoints": pointCount,
		"pool":       tenant.GetPoolStats(),
	})
}
