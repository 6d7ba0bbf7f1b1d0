package middleware

import (
	"net/http"
	"strings"

	"github.com/BizOSaaS/brain-go/internal/infrastructure/observability/logging"
	"github.com/BizOSaaS/brain-go/internal/infrastructure/security"
	"github.com/gin-gonic/gin"
)

// AuthMiddleware validates the bearer token against the tenant's JWT secret.
// The token's tenant claim must match the resolved tenant context; a token
// minted for one tenant never opens another tenant's data.
func AuthMiddleware(logger *logging.ChanneledLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantCtx, exists := GetTenantContext(c)
		if !exists {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "tenant context not found"})
			c.Abort()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "bearer token required"})
			c.Abort()
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := security.ValidateJWT(tokenString, tenantCtx.Config.JWTSecret)
		if err != nil {
			logger.Auth().Warn("Token validation failed",
				"tenantId", tenantCtx.TenantID, "error", err.Error())
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		tokenClaims, err := security.GetTokenClaims(claims)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token claims"})
			c.Abort()
			return
		}

		if tokenClaims.TenantID != tenantCtx.TenantID {
			logger.Auth().Warn("Token tenant mismatch",
				"tokenTenant", tokenClaims.TenantID, "requestTenant", tenantCtx.TenantID)
			c.JSON(http.StatusForbidden, gin.H{"error": "token not valid for this tenant"})
			c.Abort()
			return
		}

		c.Set("claims", tokenClaims)
		c.Next()
	}
}

// AdminOnlyMiddleware requires an authenticated admin role
func AdminOnlyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := GetClaims(c)
		if !ok || claims.Role != "admin" {
			c.JSON(http.StatusForbidden, gin.H{"error": "admin role required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetClaims retrieves the validated token claims from gin context.
func GetClaims(c *gin.Context) (*security.TokenClaims, bool) {
	raw, exists := c.Get("claims")
	if !exists {
		return nil, false
	}
	claims, ok := raw.(*security.TokenClaims)
	return claims, ok
}
