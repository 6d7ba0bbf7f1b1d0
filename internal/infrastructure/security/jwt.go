// Package security provides JWT token utilities
package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// TokenClaims carries the tenant-scoped identity embedded in API tokens
type TokenClaims struct {
	TenantID string
	Role     string
	Tier     string
}

// ValidateJWT validates a JWT token and returns the claims
func ValidateJWT(tokenString, jwtSecret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

// GetTokenClaims extracts tenant identity from JWT claims
func GetTokenClaims(claims jwt.MapClaims) (*TokenClaims, error) {
	tenantID, ok := claims["tenantId"].(string)
	if !ok || tenantID == "" {
		return nil, errors.New("token missing tenant claim")
	}

	role, _ := claims["role"].(string)
	tier, _ := claims["tier"].(string)

	return &TokenClaims{
		TenantID: tenantID,
		Role:     role,
		Tier:     tier,
	}, nil
}

// GenerateTenantToken creates a signed API token scoped to one tenant
func GenerateTenantToken(tc *TokenClaims, jwtSecret string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"tenantId": tc.TenantID,
		"role":     tc.Role,
		"tier":     tc.Tier,
		"iat":      time.Now().UTC().Unix(),
		"exp":      time.Now().UTC().Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtSecret))
}
