// Package scheduler runs the periodic aggregation, insight generation, and
// retention jobs across all active tenants.
package scheduler

import (
	"fmt"
	"time"

	"github.com/BizOSaaS/brain-go/internal/application/services"
	"github.com/BizOSaaS/brain-go/internal/domain/analytics"
	"github.com/BizOSaaS/brain-go/internal/infrastructure/observability/logging"
	"github.com/BizOSaaS/brain-go/internal/infrastructure/tenant"
	"github.com/BizOSaaS/brain-go/pkg/config"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentTenants bounds per-tenant parallelism inside one job run
const maxConcurrentTenants = 4

// Scheduler owns the cron instance and fans each job out over tenants
type Scheduler struct {
	cron           *cron.Cron
	tenantManager  *tenant.Manager
	aggregationSvc *services.AggregationService
	insightSvc     *services.InsightService
	retentionSvc   *services.RetentionService
	logger         *logging.ChanneledLogger
}

// NewScheduler creates the scheduler with all batch jobs registered.
func NewScheduler(
	tenantManager *tenant.Manager,
	aggregationSvc *services.AggregationService,
	insightSvc *services.InsightService,
	retentionSvc *services.RetentionService,
	logger *logging.ChanneledLogger,
) (*Scheduler, error) {
	s := &Scheduler{
		cron:           cron.New(),
		tenantManager:  tenantManager,
		aggregationSvc: aggregationSvc,
		insightSvc:     insightSvc,
		retentionSvc:   retentionSvc,
		logger:         logger,
	}

	if _, err := s.cron.AddFunc(config.AggregationSchedule, s.runDailyAggregation); err != nil {
		return nil, fmt.Errorf("invalid aggregation schedule %q: %w", config.AggregationSchedule, err)
	}
	if _, err := s.cron.AddFunc(config.InsightSchedule, s.runInsightGeneration); err != nil {
		return nil, fmt.Errorf("invalid insight schedule %q: %w", config.InsightSchedule, err)
	}
	if _, err := s.cron.AddFunc(config.RetentionSchedule, s.runRetentionCleanup); err != nil {
		return nil, fmt.Errorf("invalid retention schedule %q: %w", config.RetentionSchedule, err)
	}

	return s, nil
}

// Start launches the cron loop in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Scheduler().Info("Scheduler started",
		"aggregation", config.AggregationSchedule,
		"insights", config.InsightSchedule,
		"retention", config.RetentionSchedule)
}

// Stop halts the cron loop and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Scheduler().Info("Scheduler stopped")
}

// forEachActiveTenant runs fn for every active tenant with bounded
// parallelism. One tenant's failure does not stop the others; the first
// error is reported after all tenants have been attempted.
func (s *Scheduler) forEachActiveTenant(jobName string, fn func(tenantCtx *tenant.Context) error) {
	tenantIDs := s.tenantManager.GetActiveTenantIDs()
	if len(tenantIDs) == 0 {
		return
	}

	started := time.Now()
	var group errgroup.Group
	group.SetLimit(maxConcurrentTenants)

	for _, tenantID := range tenantIDs {
		tenantID := tenantID
		group.Go(func() error {
			tenantCtx, err := s.tenantManager.NewContextFromID(tenantID)
			if err != nil {
				s.logger.Scheduler().Error("Failed to acquire tenant context for job",
					"job", jobName, "tenantId", tenantID, "error", err.Error())
				return err
			}
			return s.withRetry(jobName, tenantID, func() error { return fn(tenantCtx) })
		})
	}

	if err := group.Wait(); err != nil {
		s.logger.Scheduler().Error("Scheduled job finished with errors",
			"job", jobName, "tenants", len(tenantIDs), "error", err.Error(), "duration", time.Since(started))
		return
	}
	s.logger.Scheduler().Info("Scheduled job completed",
		"job", jobName, "tenants", len(tenantIDs), "duration", time.Since(started))
}

// withRetry retries transient per-tenant failures with a fixed backoff
func (s *Scheduler) withRetry(jobName, tenantID string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= config.BatchRetryAttempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		s.logger.Scheduler().Warn("Job attempt failed",
			"job", jobName, "tenantId", tenantID, "attempt", attempt, "error", err.Error())
		if attempt < config.BatchRetryAttempts {
			time.Sleep(config.BatchRetryBackoff)
		}
	}
	return fmt.Errorf("job %s failed for tenant %s after %d attempts: %w",
		jobName, tenantID, config.BatchRetryAttempts, err)
}

// runDailyAggregation rolls up the previous day for every tenant.
func (s *Scheduler) runDailyAggregation() {
	yesterday := time.Now().UTC().AddDate(0, 0, -1).Truncate(24 * time.Hour)
	s.forEachActiveTenant("daily_aggregation", func(tenantCtx *tenant.Context) error {
		_, err := s.aggregationSvc.AggregateTenantDay(tenantCtx, yesterday)
		return err
	})
}

// runInsightGeneration regenerates the insight set for every tenant. The
// insight window trails the aggregation job so it reads fresh rollups.
func (s *Scheduler) runInsightGeneration() {
	end := time.Now().UTC().Truncate(24 * time.Hour)
	tr := analytics.TimeRange{Start: end.AddDate(0, 0, -config.BaselineWindowDays*2), End: end}
	s.forEachActiveTenant("insight_generation", func(tenantCtx *tenant.Context) error {
		_, err := s.insightSvc.Generate(tenantCtx, tr)
		return err
	})
}

// runRetentionCleanup prunes expired facts and aggregates per tenant.
func (s *Scheduler) runRetentionCleanup() {
	s.forEachActiveTenant("retention_cleanup", func(tenantCtx *tenant.Context) error {
		_, err := s.retentionSvc.Cleanup(tenantCtx)
		return err
	})
}
