package services

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BizOSaaS/brain-go/internal/domain/analytics"
	"github.com/BizOSaaS/brain-go/internal/domain/entitlement"
	"github.com/BizOSaaS/brain-go/internal/infrastructure/observability/logging"
	"github.com/BizOSaaS/brain-go/internal/infrastructure/observability/performance"
	"github.com/BizOSaaS/brain-go/internal/infrastructure/tenant"
	"github.com/xuri/excelize/v2"
)

// Export is a serialized dashboard ready for download
type Export struct {
	Data        []byte
	ContentType string
	Filename    string
}

// ExportService serializes dashboard snapshots into downloadable files
type ExportService struct {
	logger       *logging.ChanneledLogger
	perfTracker  *performance.Tracker
	dashboardSvc *DashboardService
}

// NewExportService creates the export service singleton
func NewExportService(logger *logging.ChanneledLogger, perfTracker *performance.Tracker, dashboardSvc *DashboardService) *ExportService {
	return &ExportService{
		logger:       logger,
		perfTracker:  perfTracker,
		dashboardSvc: dashboardSvc,
	}
}

// Export builds the dashboard for the range and serializes it in the
// requested format. The serialized rows are the same platform metric rows
// the dashboard response carries.
func (s *ExportService) Export(tenantCtx *tenant.Context, platforms []analytics.Platform, tr analytics.TimeRange, format analytics.ExportFormat) (*Export, error) {
	if !tenantCtx.HasFeature(entitlement.FeatureExport) {
		return nil, analytics.NewEntitlementError(string(entitlement.FeatureExport), string(tenantCtx.SubscriptionTier()))
	}
	if !analytics.IsValidExportFormat(format) {
		return nil, analytics.NewValidationError("format", fmt.Sprintf("unsupported export format %q", format))
	}

	marker := s.perfTracker.StartOperation("export_dashboard", tenantCtx.TenantID)
	defer marker.Complete()

	dashboard, err := s.dashboardSvc.Build(tenantCtx, platforms, tr, false)
	if err != nil {
		marker.SetError(err)
		return nil, err
	}

	stamp := time.Now().UTC().Format("20060102-150405")
	filename := fmt.Sprintf("analytics-%s-%s.%s", tenantCtx.TenantID, stamp, format)

	var export *Export
	switch format {
	case analytics.ExportCSV:
		export, err = exportCSV(dashboard, filename)
	case analytics.ExportXLSX:
		export, err = exportXLSX(dashboard, filename)
	case analytics.ExportJSON:
		export, err = exportJSON(dashboard, filename)
	}
	if err != nil {
		marker.SetError(err)
		return nil, err
	}

	marker.SetSuccess(true)
	s.logger.Analytics().Info("Dashboard exported",
		"tenantId", tenantCtx.TenantID, "format", format, "bytes", len(export.Data), "duration", marker.Duration)
	return export, nil
}

var exportHeader = []string{
	"platform", "total_revenue", "active_users", "conversion_rate",
	"engagement_score", "performance_index", "growth_rate", "sample_count",
}

// orderedMetrics returns the dashboard's platform rows sorted by platform
// so exports of the same snapshot are byte-identical.
func orderedMetrics(dashboard *analytics.Dashboard) []*analytics.PlatformMetrics {
	rows := make([]*analytics.PlatformMetrics, 0, len(dashboard.PlatformMetrics))
	for _, metrics := range dashboard.PlatformMetrics {
		rows = append(rows, metrics)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Platform < rows[j].Platform })
	return rows
}

func metricsRow(m *analytics.PlatformMetrics) []string {
	return []string{
		string(m.Platform),
		strconv.FormatFloat(m.TotalRevenue, 'f', 2, 64),
		strconv.Itoa(m.ActiveUsers),
		strconv.FormatFloat(m.ConversionRate, 'f', 4, 64),
		strconv.FormatFloat(m.EngagementScore, 'f', 4, 64),
		strconv.FormatFloat(m.PerformanceIndex, 'f', 4, 64),
		strconv.FormatFloat(m.GrowthRate, 'f', 4, 64),
		strconv.Itoa(m.SampleCount),
	}
}

func exportCSV(dashboard *analytics.Dashboard, filename string) (*Export, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(exportHeader); err != nil {
		return nil, err
	}
	for _, metrics := range orderedMetrics(dashboard) {
		if err := writer.Write(metricsRow(metrics)); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}

	return &Export{Data: buf.Bytes(), ContentType: "text/csv", Filename: filename}, nil
}

func exportXLSX(dashboard *analytics.Dashboard, filename string) (*Export, error) {
	file := excelize.NewFile()
	defer file.Close()

	const sheet = "Platform Metrics"
	file.SetSheetName("Sheet1", sheet)

	for col, name := range exportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := file.SetCellValue(sheet, cell, name); err != nil {
			return nil, err
		}
	}

	for rowIdx, metrics := range orderedMetrics(dashboard) {
		values := []any{
			string(metrics.Platform), metrics.TotalRevenue, metrics.ActiveUsers,
			metrics.ConversionRate, metrics.EngagementScore, metrics.PerformanceIndex,
			metrics.GrowthRate, metrics.SampleCount,
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, rowIdx+2)
			if err != nil {
				return nil, err
			}
			if err := file.SetCellValue(sheet, cell, value); err != nil {
				return nil, err
			}
		}
	}

	// A second sheet carries the insight generation alongside the metrics.
	const insightSheet = "Insights"
	if _, err := file.NewSheet(insightSheet); err != nil {
		return nil, err
	}
	insightHeader := []string{"type", "title", "priority", "impact_score", "confidence", "platforms"}
	for col, name := range insightHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := file.SetCellValue(insightSheet, cell, name); err != nil {
			return nil, err
		}
	}
	for rowIdx, insight := range dashboard.CrossPlatformInsights {
		platformNames := make([]string, len(insight.AffectedPlatforms))
		for i, platform := range insight.AffectedPlatforms {
			platformNames[i] = string(platform)
		}
		values := []any{
			string(insight.InsightType), insight.Title, string(insight.Priority),
			insight.ImpactScore, insight.Confidence, strings.Join(platformNames, ","),
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, rowIdx+2)
			if err != nil {
				return nil, err
			}
			if err := file.SetCellValue(insightSheet, cell, value); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := file.Write(&buf); err != nil {
		return nil, err
	}
	return &Export{
		Data:        buf.Bytes(),
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Filename:    filename,
	}, nil
}

func exportJSON(dashboard *analytics.Dashboard, filename string) (*Export, error) {
	data, err := json.MarshalIndent(dashboard, "", "  ")
	if err != nil {
		return nil, err
	}
	return &Export{Data: data, ContentType: "application/json", Filename: filename}, nil
}
