package handlers

import (
	"net/http"
	"strings"

	"github.com/BizOSaaS/brain-go/internal/domain/analytics"
	"github.com/BizOSaaS/brain-go/internal/domain/entitlement"
	"github.com/BizOSaaS/brain-go/internal/infrastructure/messaging"
	"github.com/BizOSaaS/brain-go/internal/infrastructure/observability/logging"
	"github.com/BizOSaaS/brain-go/internal/infrastructure/security"
	"github.com/BizOSaaS/brain-go/internal/infrastructure/tenant"
	"github.com/BizOSaaS/brain-go/internal/presentation/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin enforcement happens in the CORS and domain middleware
	CheckOrigin: func(r *http.Request) bool { return true },
}

// LiveHandlers contains the live feed WebSocket handlers
type LiveHandlers struct {
	broadcaster *messaging.LiveFeedBroadcaster
	logger      *logging.ChanneledLogger
}

// NewLiveHandlers creates live feed handlers with injected dependencies
func NewLiveHandlers(broadcaster *messaging.LiveFeedBroadcaster, logger *logging.ChanneledLogger) *LiveHandlers {
	return &LiveHandlers{
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// authenticateClient validates the token on an upgrade request the same
// way AuthMiddleware does for regular routes. Browsers cannot set headers
// on WebSocket upgrades, so the token query param is the primary carrier.
func (h *LiveHandlers) authenticateClient(c *gin.Context, tenantCtx *tenant.Context) bool {
	tokenString := c.Query("token")
	if tokenString == "" {
		if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
			tokenString = strings.TrimPrefix(auth, "Bearer ")
		}
	}
	if tokenString == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token required"})
		return false
	}

	claims, err := security.ValidateJWT(tokenString, tenantCtx.Config.JWTSecret)
	if err != nil {
		h.logger.Auth().Warn("Live feed token validation failed",
			"tenantId", tenantCtx.TenantID, "error", err.Error())
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return false
	}

	tokenClaims, err := security.GetTokenClaims(claims)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token claims"})
		return false
	}

	if tokenClaims.TenantID != tenantCtx.TenantID {
		h.logger.Auth().Warn("Live feed token tenant mismatch",
			"tokenTenant", tokenClaims.TenantID, "requestTenant", tenantCtx.TenantID)
		c.JSON(http.StatusForbidden, gin.H{"error": "token not valid for this tenant"})
		return false
	}
	return true
}

// GetLiveFeed handles GET /api/v1/live - upgrades to a tenant-scoped
// WebSocket stream of analytics events. Requires a token whose tenant
// claim matches the resolved tenant. Entitled tiers only.
func (h *LiveHandlers) GetLiveFeed(c *gin.Context) {
	tenantCtx, exists := middleware.GetTenantContext(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "tenant context not found"})
		return
	}

	if !h.authenticateClient(c, tenantCtx) {
		return
	}

	if !tenantCtx.HasFeature(entitlement.FeatureLiveFeed) {
		err := analytics.NewEntitlementError(string(entitlement.FeatureLiveFeed), string(tenantCtx.SubscriptionTier()))
		respondError(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.LiveFeed().Warn("WebSocket upgrade failed",
			"tenantId", tenantCtx.TenantID, "error", err.Error())
		return
	}

	if err := h.broadcaster.AddClient(tenantCtx.TenantID, conn); err != nil {
		h.logger.LiveFeed().Warn("Live feed client rejected",
			"tenantId", tenantCtx.TenantID, "error", err.Error())
	}
}

// GetLiveStatus handles GET /api/v1/live/status - connection count
func (h *LiveHandlers) GetLiveStatus(c *gin.Context) {
	tenantCtx, exists := middleware.GetTenantContext(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "tenant context not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tenantId":    tenantCtx.TenantID,
		"connections": h.broadcaster.ConnectionCount(tenantCtx.TenantID),
	})
}
