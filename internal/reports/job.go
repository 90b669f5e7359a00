package reports

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/stocklens/stocklens/jobs"
)

// GenerateJob processes queued report generations.
type GenerateJob struct {
	service *Service
	logger  *slog.Logger
}

// NewGenerateJob constructs a job handler.
func NewGenerateJob(service *Service, logger *slog.Logger) *GenerateJob {
	return &GenerateJob{service: service, logger: logger}
}

// Handle fulfils the asynq.HandlerFunc contract.
func (j *GenerateJob) Handle(ctx context.Context, task *asynq.Task) error {
	var payload jobs.ReportGeneratePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	id, err := uuid.Parse(payload.ReportID)
	if err != nil {
		return asynq.SkipRetry
	}
	if err := j.service.Process(ctx, id); err != nil {
		if j.logger != nil {
			j.logger.Error("report generate", slog.String("report_id", payload.ReportID), slog.Any("error", err))
		}
		return err
	}
	return nil
}
