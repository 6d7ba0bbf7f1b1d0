// Package tenant handles loading and providing tenant-specific configurations.
package tenant

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BizOSaaS/brain-go/pkg/config"
)

// Config represents the structure of a single tenant's configuration
type Config struct {
	TenantID         string   `json:"tenantId"`
	Domains          []string `json:"domains"`
	Status           string   `json:"status"`
	DatabaseType     string   `json:"databaseType"`
	SubscriptionTier string   `json:"SUBSCRIPTION_TIER"`
	TursoDatabase    string   `json:"TURSO_DATABASE_URL"`
	TursoToken       string   `json:"TURSO_AUTH_TOKEN"`
	TursoEnabled     bool     `json:"TURSO_ENABLED"`
	JWTSecret        string   `json:"JWT_SECRET"`
	AdminPassword    string   `json:"ADMIN_PASSWORD,omitempty"`
	RetentionDays    int      `json:"RETENTION_DAYS,omitempty"`
	AlertEmail       string   `json:"ALERT_EMAIL,omitempty"`
	SQLitePath       string   `json:"-"`
}

// baseDir returns the root of the server's on-disk state
func baseDir() (string, error) {
	if dir := os.Getenv("BRAIN_HOME"); dir != "" {
		return dir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not find user home directory: %w", err)
	}
	return filepath.Join(homeDir, "brain-go-server"), nil
}

// LoadTenantConfig loads configuration for a specific tenant from its env.json file.
func LoadTenantConfig(tenantID string) (*Config, error) {
	base, err := baseDir()
	if err != nil {
		return nil, err
	}

	configPath := filepath.Join(base, "config", tenantID, "env.json")
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("tenant config file not found at %s", configPath)
	}

	configFile, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("could not read tenant config file: %w", err)
	}

	var tenantConfig Config
	if err := json.Unmarshal(configFile, &tenantConfig); err != nil {
		return nil, fmt.Errorf("could not parse tenant config json: %w", err)
	}

	tenantConfig.TenantID = tenantID
	tenantConfig.SQLitePath = filepath.Join(base, "db", tenantID, "analytics.db")
	if tenantConfig.SubscriptionTier == "" {
		tenantConfig.SubscriptionTier = "standard"
	}
	if tenantConfig.RetentionDays <= 0 {
		tenantConfig.RetentionDays = config.DefaultRetentionDays
	}

	return &tenantConfig, nil
}

// SaveTenantConfig writes a tenant's env.json, creating the directory if needed.
func SaveTenantConfig(cfg *Config) error {
	base, err := baseDir()
	if err != nil {
		return err
	}

	configDir := filepath.Join(base, "config", cfg.TenantID)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create tenant config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal tenant config: %w", err)
	}

	configPath := filepath.Join(configDir, "env.json")
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write tenant config: %w", err)
	}
	return nil
}

// TenantRegistry holds the global tenant configuration
type TenantRegistry struct {
	Tenants map[string]TenantInfo `json:"tenants"`
}

// TenantInfo holds tenant metadata
type TenantInfo struct {
	TenantID     string   `json:"tenantId"`
	Domains      []string `json:"domains"`
	Status       string   `json:"status"`       // "unknown", "inactive", "active"
	DatabaseType string   `json:"databaseType"` // "turso", "sqlite3"
}

func registryPath() (string, error) {
	base, err := baseDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "config", "brain", "tenants.json"), nil
}

// LoadTenantRegistry loads the global tenant registry
func LoadTenantRegistry() (*TenantRegistry, error) {
	path, err := registryPath()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		// Create default registry if it doesn't exist
		defaultRegistry := &TenantRegistry{
			Tenants: map[string]TenantInfo{
				"default": {
					TenantID:     "default",
					Domains:      []string{"*"},
					Status:       "inactive",
					DatabaseType: "",
				},
			},
		}
		return defaultRegistry, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tenant registry: %w", err)
	}

	var registry TenantRegistry
	if err := json.Unmarshal(data, &registry); err != nil {
		return nil, fmt.Errorf("failed to parse tenant registry: %w", err)
	}

	return &registry, nil
}

// SaveTenantRegistry persists the registry to disk
func SaveTenantRegistry(registry *TenantRegistry) error {
	path, err := registryPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create registry directory: %w", err)
	}

	data, err := json.MarshalIndent(registry, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write registry: %w", err)
	}
	return nil
}

// RegisterTenant adds a new tenant to the registry
func RegisterTenant(tenantID string) error {
	registry, err := LoadTenantRegistry()
	if err != nil {
		return err
	}

	if _, exists := registry.Tenants[tenantID]; exists {
		return nil
	}

	registry.Tenants[tenantID] = TenantInfo{
		TenantID:     tenantID,
		Domains:      []string{"*"},
		Status:       "inactive",
		DatabaseType: "",
	}

	return SaveTenantRegistry(registry)
}
