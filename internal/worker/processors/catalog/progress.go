package catalog

import (
	"context"

	"catalogimport/internal/logger"
	"catalogimport/internal/models"
)

// tracker reports one job's lifecycle to the sink. Intermediate progress is
// best-effort; the start and end transitions are not.
type tracker struct {
	sink   ProgressSink
	jobID  string
	logger *logger.Logger
}

func (t *tracker) processing(ctx context.Context) error {
	return t.sink.Processing(ctx, t.jobID)
}

func (t *tracker) update(ctx context.Context, processed, total int, step string) {
	progress := models.ImportProgress{Processed: processed, Total: total, Step: step}
	if err := t.sink.UpdateProgress(ctx, t.jobID, progress); err != nil {
		t.logger.Error("Failed to record progress %d/%d: %v", processed, total, err)
	}
}

func (t *tracker) complete(ctx context.Context, stats models.ImportStats) error {
	return t.sink.Complete(ctx, t.jobID, stats)
}

func (t *tracker) fail(ctx context.Context, message string) {
	if err := t.sink.Fail(ctx, t.jobID, message); err != nil {
		t.logger.Error("Failed to mark job failed: %v", err)
	}
}
