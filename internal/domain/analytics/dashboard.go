package analytics

import "time"

// KPISummary contains scalar rollups computed purely from the
// platform_metrics rows in the same Dashboard response. The summary is
// always derivable by recomputing from the detail rows it ships with.
type KPISummary struct {
	TotalRevenue          float64  `json:"totalRevenue"`
	AvgEngagementScore    float64  `json:"avgEngagementScore"`
	AvgConversionRate     float64  `json:"avgConversionRate"`
	TopPerformingPlatform Platform `json:"topPerformingPlatform"`
	ActivePlatforms       int      `json:"activePlatforms"`
}

// PlatformPrediction is a projected metric path for one platform.
type PlatformPrediction struct {
	Platform        Platform  `json:"platform"`
	MetricName      string    `json:"metricName"`
	HorizonDays     int       `json:"horizonDays"`
	ProjectedValues []float64 `json:"projectedValues"`
	DailySlope      float64   `json:"dailySlope"`
	Confidence      float64   `json:"confidence"`
}

// Dashboard is the transient response object assembled by the query
// façade. Predictions is a nil pointer (and absent from JSON) when the
// tenant's tier lacks predictive analytics: field presence is the signal
// that distinguishes "not entitled" from "no data yet".
type Dashboard struct {
	TenantID              string                        `json:"tenantId"`
	TimeRange             TimeRange                     `json:"timeRange"`
	PlatformMetrics       map[Platform]*PlatformMetrics `json:"platformMetrics"`
	CrossPlatformInsights []*CrossPlatformInsight       `json:"crossPlatformInsights"`
	AIRecommendations     []string                      `json:"aiRecommendations"`
	KPISummary            KPISummary                    `json:"kpiSummary"`
	SubscriptionTier      string                        `json:"subscriptionTier"`
	Predictions           *[]PlatformPrediction         `json:"predictions,omitempty"`
	GeneratedAt           time.Time                     `json:"generatedAt"`
}

// ExportFormat names a dashboard serialization target.
type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportXLSX ExportFormat = "xlsx"
	ExportJSON ExportFormat = "json"
)

// IsValidExportFormat reports whether f is a supported export target.
func IsValidExportFormat(f ExportFormat) bool {
	switch f {
	case ExportCSV, ExportXLSX, ExportJSON:
		return true
	}
	return false
}
