package worker

import (
	"context"
	"time"

	"catalogimport/internal/config"
	"catalogimport/internal/logger"
	"catalogimport/internal/services/queue"
	"catalogimport/internal/worker/processors"

	"github.com/segmentio/kafka-go"
)

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Worker struct {
	logger    *logger.Logger
	reader    messageReader
	processor *processors.EventProcessor
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
}

func New(cfg *config.Config, logger *logger.Logger, processor *processors.EventProcessor) *Worker {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  queue.Brokers(cfg.KafkaBrokers),
		GroupID:  cfg.ImportGroupID,
		Topic:    cfg.ImportTopic,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
		MaxWait:  time.Second,
	})

	return newWorker(reader, processor, logger)
}

func newWorker(reader messageReader, processor *processors.EventProcessor, logger *logger.Logger) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		logger:    logger,
		reader:    reader,
		processor: processor,
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
}

// Start consumes import requests one at a time until Stop is called.
// A message is committed once its import finished, successfully or not.
func (w *Worker) Start() {
	defer close(w.done)
	w.logger.Info("Worker started, listening for import requests...")

	for {
		message, err := w.reader.FetchMessage(w.ctx)
		if err != nil {
			if w.ctx.Err() != nil {
				return
			}
			w.logger.Error("Failed to read message: %v", err)
			time.Sleep(time.Second)
			continue
		}

		w.logger.Debug("Received message: %s", string(message.Value))

		event, err := queue.Decode(message)
		if err != nil {
			w.logger.Error("Dropping message at offset %d: %v", message.Offset, err)
		} else if err := w.processor.Process(w.ctx, event); err != nil {
			w.logger.Error("Failed to process event %s: %v", event.JobID, err)
		}

		// the import itself ignores cancellation, so commit even when stopping
		if err := w.reader.CommitMessages(context.Background(), message); err != nil {
			w.logger.Error("Failed to commit offset %d: %v", message.Offset, err)
		}
	}
}

// Stop waits for the import in progress to finish, then closes the reader.
// Start must have been called.
func (w *Worker) Stop() {
	w.logger.Info("Stopping worker...")
	w.cancel()
	<-w.done
	if err := w.reader.Close(); err != nil {
		w.logger.Error("Failed to close reader: %v", err)
	}
}
