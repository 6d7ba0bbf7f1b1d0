package handlers

import (
	"net/http"

	"github.com/BizOSaaS/brain-go/internal/application/services"
	"github.com/BizOSaaS/brain-go/internal/infrastructure/observability/logging"
	"github.com/BizOSaaS/brain-go/internal/infrastructure/observability/performance"
	"github.com/BizOSaaS/brain-go/internal/presentation/http/middleware"
	"github.com/gin-gonic/gin"
)

// TenantHandlers contains tenant provisioning and authentication handlers
type TenantHandlers struct {
	registrationService *services.RegistrationService
	logger              *logging.ChanneledLogger
	perfTracker         *performance.Tracker
}

// NewTenantHandlers creates tenant handlers with injected dependencies
func NewTenantHandlers(registrationService *services.RegistrationService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *TenantHandlers {
	return &TenantHandlers{
		registrationService: registrationService,
		logger:              logger,
		perfTracker:         perfTracker,
	}
}

// PostRegister handles POST /api/v1/tenant/register - provisions a new
// tenant with isolated storage. This route sits outside tenant middleware.
func (h *TenantHandlers) PostRegister(c *gin.Context) {
	marker := h.perfTracker.StartOperation("post_register_tenant_request", "system")
	defer marker.Complete()

	var req services.RegisterTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}

	result, err := h.registrationService.Register(&req)
	if err != nil {
		marker.SetError(err)
		respondError(c, err)
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusCreated, result)
}

// PostLogin handles POST /api/v1/auth/login - tenant admin authentication
func (h *TenantHandlers) PostLogin(c *gin.Context) {
	tenantCtx, exists := middleware.GetTenantContext(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "tenant context not found"})
		return
	}

	marker := h.perfTracker.StartOperation("post_login_request", tenantCtx.TenantID)
	defer marker.Complete()

	var req struct {
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}

	token, expiresAt, err := h.registrationService.Authenticate(tenantCtx, req.Password)
	if err != nil {
		marker.SetSuccess(false)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, gin.H{"token": token, "expiresAt": expiresAt})
}
