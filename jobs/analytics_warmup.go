package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/stocklens/stocklens/internal/analytics"
	"github.com/stocklens/stocklens/internal/shared"
)

// AnalyticsWarmupJob pre-populates the summary and rollup caches so the first
// dashboard request of the day is served warm.
type AnalyticsWarmupJob struct {
	Analytics *analytics.Service
	Logger    *slog.Logger
	clock     func() time.Time
}

// NewAnalyticsWarmupJob wires dependencies for the warmup handler.
func NewAnalyticsWarmupJob(analyticsSvc *analytics.Service, logger *slog.Logger) *AnalyticsWarmupJob {
	return &AnalyticsWarmupJob{
		Analytics: analyticsSvc,
		Logger:    logger,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes analytics warmup tasks.
func (j *AnalyticsWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Analytics == nil {
		return errors.New("analytics warmup: handler not configured")
	}
	var payload AnalyticsWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if len(payload.Periods) == 0 {
		payload.Periods = []string{shared.PeriodWeekly, shared.PeriodMonthly}
	}

	logger := j.logger()
	logger.Info("starting analytics warmup", slog.Int("periods", len(payload.Periods)))

	now := j.now()
	for _, periodType := range payload.Periods {
		period, err := shared.ResolvePeriod(periodType, time.Time{}, time.Time{}, now)
		if err != nil {
			logger.Warn("skip warmup period", slog.String("period", periodType), slog.Any("error", err))
			continue
		}
		// Bound each window so a slow scope cannot stall the whole job.
		warmCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
		req := analytics.EvaluationRequest{Period: period, Now: now}
		if _, err := j.Analytics.GetSummary(warmCtx, req); err != nil {
			cancel()
			logger.Error("warm summary", slog.String("period", periodType), slog.Any("error", err))
			return err
		}
		if _, err := j.Analytics.GetAgingRollups(warmCtx, req); err != nil {
			cancel()
			logger.Error("warm aging rollups", slog.String("period", periodType), slog.Any("error", err))
			return err
		}
		cancel()
	}

	logger.Info("completed analytics warmup", slog.Duration("duration", time.Since(now)))
	return nil
}

func (j *AnalyticsWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskAnalyticsWarmup))
	}
	return slog.Default().With(slog.String("job", TaskAnalyticsWarmup))
}

func (j *AnalyticsWarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
