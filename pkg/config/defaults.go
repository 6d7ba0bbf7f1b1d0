// Package config provides centralized default values for the Brain analytics core
package config

import (
	"bufio"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

var envLoaded sync.Once

func loadEnvFile() {
	envLoaded.Do(func() {
		file, err := os.Open(".env")
		if err != nil {
			return
		}
		defer file.Close()

		log.Println("Loading configuration overrides from .env file...")
		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())

			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}

			parts := strings.SplitN(line, "=", 2)
			if len(parts) != 2 {
				continue
			}

			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])

			if os.Getenv(key) == "" {
				os.Setenv(key, value)
			}
		}
	})
}

func getEnvInt(key string, defaultValue int) int {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.Atoi(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%d (default: %d)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.ParseFloat(valStr, 64); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%g (default: %g)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvString(key string, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		if val != defaultValue {
			log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
		}
		return val
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.ParseBool(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%t (default: %t)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := time.ParseDuration(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

var (
	// Server Configuration
	Port               string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	ServerIdleTimeout  time.Duration

	// Database Pool
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeMinutes int
	DBConnMaxIdleMinutes     int
	SlowQueryThreshold       time.Duration

	// Cache TTL Configuration
	DashboardTTL       time.Duration
	PlatformMetricsTTL time.Duration
	InsightCacheTTL    time.Duration
	CleanupInterval    time.Duration

	// Scheduler Configuration
	AggregationSchedule string
	InsightSchedule     string
	RetentionSchedule   string
	BatchRetryAttempts  int
	BatchRetryBackoff   time.Duration

	// Retention
	DefaultRetentionDays int

	// Insight Scoring (tunable; thresholds documented in DESIGN.md)
	TrendThresholdPct     float64
	AnomalySigma          float64
	BaselineWindowDays    int
	ConfidenceSamplePrior float64
	DivergenceMinShiftPct float64

	// Prediction
	PredictionHorizonDays int

	// Auth
	AdminTokenTTL time.Duration

	// Live Feed
	LiveFeedBufferSize      int
	LiveFeedWriteTimeout    time.Duration
	MaxLiveClientsPerTenant int
)

func init() {
	loadEnvFile()

	// Server Configuration
	Port = getEnvString("PORT", "8080")
	ServerReadTimeout = getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second)
	ServerWriteTimeout = getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second)
	ServerIdleTimeout = getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second)

	// Database Pool
	DBMaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", 10)
	DBMaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", 3)
	DBConnMaxLifetimeMinutes = getEnvInt("DB_CONN_MAX_LIFETIME_MINUTES", 30)
	DBConnMaxIdleMinutes = getEnvInt("DB_CONN_MAX_IDLE_MINUTES", 3)
	SlowQueryThreshold = getEnvDuration("SLOW_QUERY_THRESHOLD", 250*time.Millisecond)

	// Cache TTL Configuration
	DashboardTTL = time.Duration(getEnvInt("DASHBOARD_TTL_MINUTES", 10)) * time.Minute
	PlatformMetricsTTL = time.Duration(getEnvInt("PLATFORM_METRICS_TTL_MINUTES", 15)) * time.Minute
	InsightCacheTTL = time.Duration(getEnvInt("INSIGHT_CACHE_TTL_MINUTES", 30)) * time.Minute
	CleanupInterval = time.Duration(getEnvInt("CACHE_CLEANUP_INTERVAL_MINUTES", 30)) * time.Minute

	// Scheduler
	AggregationSchedule = getEnvString("AGGREGATION_SCHEDULE", "0 2 * * *")
	InsightSchedule = getEnvString("INSIGHT_SCHEDULE", "30 2 * * *")
	RetentionSchedule = getEnvString("RETENTION_SCHEDULE", "0 4 * * 0")
	BatchRetryAttempts = getEnvInt("BATCH_RETRY_ATTEMPTS", 3)
	BatchRetryBackoff = getEnvDuration("BATCH_RETRY_BACKOFF", 5*time.Second)

	// Retention
	DefaultRetentionDays = getEnvInt("RETENTION_DAYS", 365)

	// Insight Scoring
	TrendThresholdPct = getEnvFloat("INSIGHT_TREND_THRESHOLD_PCT", 0.20)
	AnomalySigma = getEnvFloat("INSIGHT_ANOMALY_SIGMA", 2.5)
	BaselineWindowDays = getEnvInt("INSIGHT_BASELINE_WINDOW_DAYS", 14)
	ConfidenceSamplePrior = getEnvFloat("INSIGHT_CONFIDENCE_SAMPLE_PRIOR", 20)
	DivergenceMinShiftPct = getEnvFloat("INSIGHT_DIVERGENCE_MIN_SHIFT_PCT", 0.10)

	// Prediction
	PredictionHorizonDays = getEnvInt("PREDICTION_HORIZON_DAYS", 7)

	// Auth
	AdminTokenTTL = getEnvDuration("ADMIN_TOKEN_TTL", 24*time.Hour)

	// Live Feed
	LiveFeedBufferSize = getEnvInt("LIVE_FEED_BUFFER_SIZE", 32)
	LiveFeedWriteTimeout = getEnvDuration("LIVE_FEED_WRITE_TIMEOUT", 10*time.Second)
	MaxLiveClientsPerTenant = getEnvInt("MAX_LIVE_CLIENTS_PER_TENANT", 50)
}
