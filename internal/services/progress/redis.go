package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"catalogimport/internal/logger"
	"catalogimport/internal/models"
)

const latestTTL = 24 * time.Hour

// Sink is the lifecycle surface the importer reports to.
type Sink interface {
	Processing(ctx context.Context, jobID string) error
	UpdateProgress(ctx context.Context, jobID string, progress models.ImportProgress) error
	Complete(ctx context.Context, jobID string, stats models.ImportStats) error
	Fail(ctx context.Context, jobID string, message string) error
}

// Update is what subscribers receive on a job's channel.
type Update struct {
	JobID    string                 `json:"job_id"`
	Status   models.ImportStatus    `json:"status"`
	Progress *models.ImportProgress `json:"progress,omitempty"`
	Stats    *models.ImportStats    `json:"stats,omitempty"`
	Error    string                 `json:"error,omitempty"`
	At       time.Time              `json:"at"`
}

func Channel(jobID string) string {
	return "catalog-import:" + jobID
}

func latestKey(jobID string) string {
	return Channel(jobID) + ":latest"
}

// RedisSink forwards every call to the durable sink and, once that
// succeeded, pushes the update to Redis. Push failures are logged and
// swallowed.
type RedisSink struct {
	next   Sink
	client *redis.Client
	logger *logger.Logger
}

func NewRedisSink(next Sink, client *redis.Client, log *logger.Logger) *RedisSink {
	return &RedisSink{next: next, client: client, logger: log}
}

// NewRedisClient parses redisURL and checks the connection.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

func (s *RedisSink) Processing(ctx context.Context, jobID string) error {
	if err := s.next.Processing(ctx, jobID); err != nil {
		return err
	}
	s.push(ctx, Update{JobID: jobID, Status: models.ImportStatusProcessing})
	return nil
}

func (s *RedisSink) UpdateProgress(ctx context.Context, jobID string, p models.ImportProgress) error {
	if err := s.next.UpdateProgress(ctx, jobID, p); err != nil {
		return err
	}
	s.push(ctx, Update{JobID: jobID, Status: models.ImportStatusProcessing, Progress: &p})
	return nil
}

func (s *RedisSink) Complete(ctx context.Context, jobID string, stats models.ImportStats) error {
	if err := s.next.Complete(ctx, jobID, stats); err != nil {
		return err
	}
	s.push(ctx, Update{JobID: jobID, Status: models.ImportStatusCompleted, Stats: &stats})
	return nil
}

func (s *RedisSink) Fail(ctx context.Context, jobID string, message string) error {
	if err := s.next.Fail(ctx, jobID, message); err != nil {
		return err
	}
	s.push(ctx, Update{JobID: jobID, Status: models.ImportStatusFailed, Error: message})
	return nil
}

func (s *RedisSink) push(ctx context.Context, u Update) {
	u.At = time.Now().UTC()
	payload, err := json.Marshal(u)
	if err != nil {
		s.logger.Error("Failed to encode progress for %s: %v", u.JobID, err)
		return
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, latestKey(u.JobID), payload, latestTTL)
		pipe.Publish(ctx, Channel(u.JobID), payload)
		return nil
	})
	if err != nil {
		s.logger.Warn("Failed to push progress for %s: %v", u.JobID, err)
	}
}

// ErrNoUpdate is returned by Latest when nothing was pushed for the job or
// the snapshot expired.
var ErrNoUpdate = errors.New("no progress update")

// Reader fetches the last pushed update of a job.
type Reader struct {
	client *redis.Client
}

func NewReader(client *redis.Client) *Reader {
	return &Reader{client: client}
}

func (r *Reader) Latest(ctx context.Context, jobID string) (*Update, error) {
	payload, err := r.client.Get(ctx, latestKey(jobID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoUpdate
	}
	if err != nil {
		return nil, err
	}

	var u Update
	if err := json.Unmarshal(payload, &u); err != nil {
		return nil, fmt.Errorf("corrupt progress snapshot: %w", err)
	}
	return &u, nil
}
