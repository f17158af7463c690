package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"catalogimport/internal/worker/processors/catalog"
)

// TypeImportRequested asks a worker to run one catalog import.
const TypeImportRequested = "catalog.import.requested"

type Event struct {
	Type      string           `json:"type"`
	JobID     string           `json:"job_id"`
	Import    *catalog.Request `json:"import,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

// Brokers splits a comma-separated broker list.
func Brokers(list string) []string {
	var out []string
	for _, b := range strings.Split(list, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

// ImportMessage wraps req in an event keyed by job, so redeliveries of one
// job land on the same partition.
func ImportMessage(req catalog.Request, at time.Time) (kafka.Message, error) {
	event := Event{
		Type:      TypeImportRequested,
		JobID:     req.JobID,
		Import:    &req,
		Timestamp: at,
	}
	value, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{Key: []byte(req.JobID), Value: value}, nil
}

// Decode parses a message produced by ImportMessage.
func Decode(msg kafka.Message) (Event, error) {
	var event Event
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return Event{}, fmt.Errorf("failed to parse event: %w", err)
	}
	return event, nil
}

type Publisher struct {
	writer *kafka.Writer
}

func NewPublisher(brokers, topic string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(Brokers(brokers)...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
			WriteTimeout:           10 * time.Second,
		},
	}
}

func (p *Publisher) PublishImport(ctx context.Context, req catalog.Request) error {
	msg, err := ImportMessage(req, time.Now().UTC())
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish import %s: %w", req.JobID, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
