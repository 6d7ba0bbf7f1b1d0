package services

import (
	"fmt"
	"time"

	"github.com/BizOSaaS/brain-go/internal/domain/analytics"
	"github.com/BizOSaaS/brain-go/internal/domain/entitlement"
	"github.com/BizOSaaS/brain-go/internal/infrastructure/observability/logging"
	"github.com/BizOSaaS/brain-go/internal/infrastructure/security"
	"github.com/BizOSaaS/brain-go/internal/infrastructure/tenant"
	"github.com/BizOSaaS/brain-go/pkg/config"
)

// RegisterTenantRequest is the provisioning payload for a new tenant
type RegisterTenantRequest struct {
	TenantID         string   `json:"tenantId"`
	Domains          []string `json:"domains,omitempty"`
	SubscriptionTier string   `json:"subscriptionTier,omitempty"`
	AdminPassword    string   `json:"adminPassword"`
	AlertEmail       string   `json:"alertEmail,omitempty"`
	RetentionDays    int      `json:"retentionDays,omitempty"`
	TursoDatabase    string   `json:"tursoDatabaseUrl,omitempty"`
	TursoToken       string   `json:"tursoAuthToken,omitempty"`
}

// RegisterTenantResult returns the provisioned tenant's identity and an
// initial admin token. The JWT secret itself never leaves the server.
type RegisterTenantResult struct {
	TenantID         string `json:"tenantId"`
	SubscriptionTier string `json:"subscriptionTier"`
	Status           string `json:"status"`
	AdminToken       string `json:"adminToken"`
}

// RegistrationService provisions new tenants with isolated storage
type RegistrationService struct {
	logger        *logging.ChanneledLogger
	tenantManager *tenant.Manager
}

// NewRegistrationService creates the registration service singleton
func NewRegistrationService(logger *logging.ChanneledLogger, tenantManager *tenant.Manager) *RegistrationService {
	return &RegistrationService{
		logger:        logger,
		tenantManager: tenantManager,
	}
}

// Register provisions a tenant: secrets are generated and hashed here, the
// tenant manager handles config persistence and database activation.
func (s *RegistrationService) Register(req *RegisterTenantRequest) (*RegisterTenantResult, error) {
	if req.TenantID == "" {
		return nil, analytics.NewValidationError("tenantId", "tenant id is required")
	}
	if len(req.AdminPassword) < 8 {
		return nil, analytics.NewValidationError("adminPassword", "admin password must be at least 8 characters")
	}

	passwordHash, err := security.HashPassword(req.AdminPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to hash admin password: %w", err)
	}

	jwtSecret, err := security.GenerateSecureKey(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tenant secret: %w", err)
	}

	tier := entitlement.Normalize(req.SubscriptionTier)
	domains := req.Domains
	if len(domains) == 0 {
		domains = []string{"*"}
	}
	retentionDays := req.RetentionDays
	if retentionDays <= 0 {
		retentionDays = config.DefaultRetentionDays
	}

	cfg := &tenant.Config{
		TenantID:         req.TenantID,
		Domains:          domains,
		Status:           "active",
		SubscriptionTier: string(tier),
		JWTSecret:        jwtSecret,
		AdminPassword:    passwordHash,
		RetentionDays:    retentionDays,
		AlertEmail:       req.AlertEmail,
		TursoDatabase:    req.TursoDatabase,
		TursoToken:       req.TursoToken,
		TursoEnabled:     req.TursoDatabase != "" && req.TursoToken != "",
	}

	ctx, err := s.tenantManager.ProvisionTenant(cfg)
	if err != nil {
		return nil, err
	}

	token, err := security.GenerateTenantToken(&security.TokenClaims{
		TenantID: req.TenantID,
		Role:     "admin",
		Tier:     string(tier),
	}, jwtSecret, config.AdminTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to issue admin token: %w", err)
	}

	s.logger.Tenant().Info("Tenant registered",
		"tenantId", req.TenantID, "tier", tier, "retentionDays", retentionDays)

	return &RegisterTenantResult{
		TenantID:         req.TenantID,
		SubscriptionTier: string(tier),
		Status:           ctx.Status,
		AdminToken:       token,
	}, nil
}

// Authenticate checks the tenant admin password and issues a fresh token.
func (s *RegistrationService) Authenticate(tenantCtx *tenant.Context, password string) (string, time.Time, error) {
	if tenantCtx.Config.AdminPassword == "" {
		return "", time.Time{}, fmt.Errorf("tenant has no admin credentials configured")
	}
	if !security.CheckPassword(tenantCtx.Config.AdminPassword, password) {
		s.logger.Auth().Warn("Admin authentication failed", "tenantId", tenantCtx.TenantID)
		return "", time.Time{}, fmt.Errorf("invalid credentials")
	}

	expiresAt := time.Now().Add(config.AdminTokenTTL)
	token, err := security.GenerateTenantToken(&security.TokenClaims{
		TenantID: tenantCtx.TenantID,
		Role:     "admin",
		Tier:     string(tenantCtx.SubscriptionTier()),
	}, tenantCtx.Config.JWTSecret, config.AdminTokenTTL)
	if err != nil {
		return "", time.Time{}, err
	}

	s.logger.Auth().Info("Admin token issued", "tenantId", tenantCtx.TenantID)
	return token, expiresAt, nil
}
