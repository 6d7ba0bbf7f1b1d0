// Package analytics defines the core entities and repository contracts for
// cross-platform analytics: immutable data points, derived aggregates, and
// generated insights. Every entity is owned by exactly one tenant.
package analytics

import (
	"fmt"
	"math"
	"time"
)

// Platform identifies one of the fixed set of source systems contributing
// analytics facts. Unregistered platforms are rejected at the write boundary.
type Platform string

const (
	PlatformBizoholic  Platform = "bizoholic"  // Marketing automation
	PlatformCoreldove  Platform = "coreldove"  // E-commerce
	PlatformDirectory  Platform = "directory"  // Business directory
	PlatformThrillring Platform = "thrillring" // Gaming
	PlatformQuanttrade Platform = "quanttrade" // Trading
)

// RegisteredPlatforms returns the closed set of known platforms.
func RegisteredPlatforms() []Platform {
	return []Platform{
		PlatformBizoholic,
		PlatformCoreldove,
		PlatformDirectory,
		PlatformThrillring,
		PlatformQuanttrade,
	}
}

// IsRegisteredPlatform reports whether p is a known source system.
func IsRegisteredPlatform(p Platform) bool {
	switch p {
	case PlatformBizoholic, PlatformCoreldove, PlatformDirectory, PlatformThrillring, PlatformQuanttrade:
		return true
	}
	return false
}

// MetricType classifies a metric and binds it to an aggregation rule.
type MetricType string

const (
	MetricTypeRevenue     MetricType = "revenue"
	MetricTypeConversions MetricType = "conversions"
	MetricTypeEngagement  MetricType = "engagement"
	MetricTypePerformance MetricType = "performance"
	MetricTypeOccurrence  MetricType = "occurrence"
)

// AggregationRule is the reduction applied to a day's data points for one
// metric name. The rule is a pure function of the metric type.
type AggregationRule string

const (
	RuleSum     AggregationRule = "sum"
	RuleAverage AggregationRule = "average"
	RuleCount   AggregationRule = "count"
)

// RuleFor returns the aggregation rule bound to a metric type.
func RuleFor(mt MetricType) (AggregationRule, error) {
	switch mt {
	case MetricTypeRevenue, MetricTypeConversions:
		return RuleSum, nil
	case MetricTypeEngagement, MetricTypePerformance:
		return RuleAverage, nil
	case MetricTypeOccurrence:
		return RuleCount, nil
	}
	return "", fmt.Errorf("no aggregation rule for metric type %q", mt)
}

// IsValidMetricType reports whether mt is part of the closed metric taxonomy.
func IsValidMetricType(mt MetricType) bool {
	_, err := RuleFor(mt)
	return err == nil
}

// Dimensions is a typed slicing bag on a data point. Values are restricted
// to a closed set of scalar types (string, float64, bool) so aggregation
// rules stay well defined.
type Dimensions map[string]any

// Validate rejects non-scalar dimension values.
func (d Dimensions) Validate() error {
	for key, value := range d {
		switch value.(type) {
		case string, float64, bool:
		case int:
			// JSON decoding never produces int, but direct callers may.
			d[key] = float64(value.(int))
		default:
			return NewValidationError("dimensions", fmt.Sprintf("dimension %q has unsupported type %T", key, value))
		}
	}
	return nil
}

// AnalyticsDataPoint is an immutable fact recorded by a platform collector.
// Once written it is never mutated or deleted outside retention cleanup.
type AnalyticsDataPoint struct {
	ID         string     `json:"id"`
	TenantID   string     `json:"tenantId"`
	Platform   Platform   `json:"platform"`
	MetricType MetricType `json:"metricType"`
	MetricName string     `json:"metricName"`
	Value      float64    `json:"value"`
	Dimensions Dimensions `json:"dimensions,omitempty"`
	RecordedAt time.Time  `json:"recordedAt"`
}

// Validate enforces the write-boundary constraints from the ingestion
// contract: non-empty tenant, registered platform, known metric type,
// finite value, scalar dimensions.
func (p *AnalyticsDataPoint) Validate() error {
	if p.TenantID == "" {
		return NewValidationError("tenantId", "tenant id is required")
	}
	if !IsRegisteredPlatform(p.Platform) {
		return NewValidationError("platform", fmt.Sprintf("unregistered platform %q", p.Platform))
	}
	if !IsValidMetricType(p.MetricType) {
		return NewValidationError("metricType", fmt.Sprintf("unknown metric type %q", p.MetricType))
	}
	if p.MetricName == "" {
		return NewValidationError("metricName", "metric name is required")
	}
	if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
		return NewValidationError("value", "value must be a finite number")
	}
	if p.Dimensions != nil {
		if err := p.Dimensions.Validate(); err != nil {
			return err
		}
	}
	return nil
}
