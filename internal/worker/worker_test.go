package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalogimport/internal/logger"
	"catalogimport/internal/services/queue"
	"catalogimport/internal/worker/processors"
	"catalogimport/internal/worker/processors/catalog"
)

type chanReader struct {
	messages chan kafka.Message

	mu        sync.Mutex
	committed []int64
	closed    bool
}

func (r *chanReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case msg := <-r.messages:
		return msg, nil
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	}
}

func (r *chanReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *chanReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *chanReader) commits() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.committed...)
}

type recordingRunner struct {
	mu   sync.Mutex
	jobs []string
}

func (r *recordingRunner) Run(_ context.Context, req catalog.Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs = append(r.jobs, req.JobID)
	return nil
}

func TestWorker_ProcessesAndCommits(t *testing.T) {
	reader := &chanReader{messages: make(chan kafka.Message, 3)}
	runner := &recordingRunner{}
	w := newWorker(reader, processors.NewEventProcessor(runner, logger.Discard()), logger.Discard())

	msg, err := queue.ImportMessage(catalog.Request{JobID: "job-1", ProductsPath: "/tmp/p.csv"}, time.Now())
	require.NoError(t, err)
	msg.Offset = 1
	reader.messages <- msg
	reader.messages <- kafka.Message{Offset: 2, Value: []byte(`{"type":"something.else"}`)}
	reader.messages <- kafka.Message{Offset: 3, Value: []byte(`not json`)}

	go w.Start()

	require.Eventually(t, func() bool { return len(reader.commits()) == 3 }, 2*time.Second, 10*time.Millisecond)
	w.Stop()

	assert.Equal(t, []int64{1, 2, 3}, reader.commits())
	assert.Equal(t, []string{"job-1"}, runner.jobs)
	assert.True(t, reader.closed)
}

func TestEventProcessor_RejectsEmptyImport(t *testing.T) {
	p := processors.NewEventProcessor(&recordingRunner{}, logger.Discard())

	err := p.Process(context.Background(), queue.Event{Type: queue.TypeImportRequested, JobID: "job"})
	assert.Error(t, err)
}
