// Package container provides dependency injection for all singleton services
package container

import (
	"os"

	"github.com/BizOSaaS/brain-go/internal/application/services"
	"github.com/BizOSaaS/brain-go/internal/infrastructure/caching/manager"
	"github.com/BizOSaaS/brain-go/internal/infrastructure/email"
	"github.com/BizOSaaS/brain-go/internal/infrastructure/messaging"
	"github.com/BizOSaaS/brain-go/internal/infrastructure/observability/logging"
	"github.com/BizOSaaS/brain-go/internal/infrastructure/observability/performance"
	"github.com/BizOSaaS/brain-go/internal/infrastructure/tenant"
)

// Container holds all singleton services and infrastructure dependencies
type Container struct {
	// Application Services (stateless singletons)
	IngestionService    *services.IngestionService
	AggregationService  *services.AggregationService
	InsightService      *services.InsightService
	PredictionService   *services.PredictionService
	DashboardService    *services.DashboardService
	ExportService       *services.ExportService
	RetentionService    *services.RetentionService
	RegistrationService *services.RegistrationService

	// Infrastructure Dependencies
	TenantManager *tenant.Manager
	CacheManager  *manager.Manager
	Broadcaster   *messaging.LiveFeedBroadcaster
	EmailService  email.Service
	Logger        *logging.ChanneledLogger
	PerfTracker   *performance.Tracker
}

// NewContainer creates and wires all singleton services
func NewContainer(tenantManager *tenant.Manager, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *Container {
	broadcaster := messaging.NewLiveFeedBroadcaster(logger)

	// Alert email delivery is optional; without an API key the conflict
	// and isolation paths still log, they just don't mail.
	var emailSvc email.Service
	if os.Getenv("RESEND_API_KEY") != "" {
		svc, err := email.NewService()
		if err != nil {
			logger.System().Warn("Email service unavailable", "error", err.Error())
		} else {
			emailSvc = svc
		}
	}

	insightSvc := services.NewInsightService(logger, perfTracker, broadcaster)
	predictionSvc := services.NewPredictionService(logger, perfTracker)
	dashboardSvc := services.NewDashboardService(logger, perfTracker, insightSvc, predictionSvc)

	return &Container{
		IngestionService:    services.NewIngestionService(logger, perfTracker, broadcaster),
		AggregationService:  services.NewAggregationService(logger, perfTracker, broadcaster, emailSvc),
		InsightService:      insightSvc,
		PredictionService:   predictionSvc,
		DashboardService:    dashboardSvc,
		ExportService:       services.NewExportService(logger, perfTracker, dashboardSvc),
		RetentionService:    services.NewRetentionService(logger, perfTracker),
		RegistrationService: services.NewRegistrationService(logger, tenantManager),

		TenantManager: tenantManager,
		CacheManager:  tenantManager.GetCacheManager(),
		Broadcaster:   broadcaster,
		EmailService:  emailSvc,
		Logger:        logger,
		PerfTracker:   perfTracker,
	}
}
