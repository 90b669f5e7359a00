// Package jobs wires asynq task definitions, the worker loop, and the client
// used by the API to enqueue work.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskReportGenerate runs the report pipeline for a queued report.
	TaskReportGenerate = "reports:generate"
	// TaskAnalyticsWarmup pre-populates the analytics caches.
	TaskAnalyticsWarmup = "analytics:warmup"
)

// ReportGeneratePayload identifies the report to process.
type ReportGeneratePayload struct {
	ReportID string `json:"report_id"`
}

// NewReportGenerateTask constructs an Asynq task for one report.
func NewReportGenerateTask(reportID string) (*asynq.Task, error) {
	data, err := json.Marshal(ReportGeneratePayload{ReportID: reportID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportGenerate, data), nil
}

// AnalyticsWarmupPayload selects which period windows to warm.
type AnalyticsWarmupPayload struct {
	Periods []string `json:"periods"`
}

// NewAnalyticsWarmupTask constructs the warmup task.
func NewAnalyticsWarmupTask(periods ...string) (*asynq.Task, error) {
	data, err := json.Marshal(AnalyticsWarmupPayload{Periods: periods})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAnalyticsWarmup, data), nil
}
