package processors

import (
	"context"
	"fmt"

	"catalogimport/internal/logger"
	"catalogimport/internal/services/queue"
	"catalogimport/internal/worker/processors/catalog"
)

// ImportRunner runs one catalog import to completion.
type ImportRunner interface {
	Run(ctx context.Context, req catalog.Request) error
}

type EventProcessor struct {
	logger   *logger.Logger
	importer ImportRunner
}

func NewEventProcessor(importer ImportRunner, logger *logger.Logger) *EventProcessor {
	return &EventProcessor{
		logger:   logger,
		importer: importer,
	}
}

// Process dispatches an event by type. Unknown types are logged and dropped.
func (ep *EventProcessor) Process(ctx context.Context, event queue.Event) error {
	switch event.Type {
	case queue.TypeImportRequested:
		if event.Import == nil {
			return fmt.Errorf("event for job %s carries no import request", event.JobID)
		}
		ep.logger.Info("Starting import %s", event.JobID)
		return ep.importer.Run(ctx, *event.Import)
	default:
		ep.logger.Warn("Ignoring event of unknown type %q", event.Type)
		return nil
	}
}
