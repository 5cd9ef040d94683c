package consumer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vtagz/recommendations/internal/metrics"
	"github.com/vtagz/recommendations/pkg/graph"
	"github.com/vtagz/recommendations/pkg/processor"
)

// stubEngine implements only the operations the test messages reach; user
// messages without geo fields touch UpsertUser alone.
type stubEngine struct {
	processor.Engine

	mu      sync.Mutex
	users   []int64
	failIDs map[int64]error
}

func (s *stubEngine) UpsertUser(ctx context.Context, user graph.UserAttrs, bookmarks neo4j.Bookmarks) (*graph.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.failIDs[user.VtagzID]; ok {
		return nil, err
	}
	s.users = append(s.users, user.VtagzID)
	return &graph.Result{}, nil
}

type fakeQueue struct {
	mu         sync.Mutex
	batches    [][]types.Message
	receiveErr error
	deleteErr  error
	receives   int
	deletes    []*sqs.DeleteMessageBatchInput
}

func (q *fakeQueue) ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.receives++
	if q.receiveErr != nil {
		return nil, q.receiveErr
	}
	if len(q.batches) == 0 {
		return &sqs.ReceiveMessageOutput{}, nil
	}
	batch := q.batches[0]
	q.batches = q.batches[1:]
	return &sqs.ReceiveMessageOutput{Messages: batch}, nil
}

func (q *fakeQueue) DeleteMessageBatch(ctx context.Context, params *sqs.DeleteMessageBatchInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageBatchOutput, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.deletes = append(q.deletes, params)
	if q.deleteErr != nil {
		return nil, q.deleteErr
	}
	return &sqs.DeleteMessageBatchOutput{}, nil
}

func (q *fakeQueue) deletedReceipts() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	var receipts []string
	for _, in := range q.deletes {
		for _, entry := range in.Entries {
			receipts = append(receipts, aws.ToString(entry.ReceiptHandle))
		}
	}
	return receipts
}

func queueMessage(id, receipt, body string) types.Message {
	return types.Message{
		MessageId:     aws.String(id),
		ReceiptHandle: aws.String(receipt),
		Body:          aws.String(body),
	}
}

func newTestConsumer(t *testing.T, queue QueueAPI, engine processor.Engine) *Consumer {
	t.Helper()
	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	registry := processor.NewRegistry(processor.New(engine, logger))
	m := metrics.NewConsumer(prometheus.NewRegistry())
	return NewWithConfig(ConsumerConfig{
		QueueURL:        "http://localhost:4566/000000000000/changes",
		MaxMessages:     10,
		WaitTimeSeconds: 0,
	}, queue, registry, logger, m)
}

func TestPollOnce_DeletesProcessedMessages(t *testing.T) {
	engine := &stubEngine{}
	queue := &fakeQueue{batches: [][]types.Message{{
		queueMessage("m1", "r1", `{"type": "upsertUser", "vtagzId": 1}`),
		queueMessage("m2", "r2", `{"type": "upsertUser", "vtagzId": 2}`),
	}}}
	c := newTestConsumer(t, queue, engine)

	c.PollOnce(context.Background())

	assert.ElementsMatch(t, []int64{1, 2}, engine.users)
	assert.ElementsMatch(t, []string{"r1", "r2"}, queue.deletedReceipts())
}

func TestPollOnce_FailureIsolation(t *testing.T) {
	engine := &stubEngine{failIDs: map[int64]error{2: errors.New("boom")}}
	queue := &fakeQueue{batches: [][]types.Message{{
		queueMessage("m1", "r1", `{"type": "upsertUser", "vtagzId": 1}`),
		queueMessage("m2", "r2", `{"type": "upsertUser", "vtagzId": 2}`),
		queueMessage("m3", "r3", `{"type": "upsertUser", "vtagzId": 3}`),
	}}}
	c := newTestConsumer(t, queue, engine)

	c.PollOnce(context.Background())

	assert.ElementsMatch(t, []int64{1, 3}, engine.users)
	assert.ElementsMatch(t, []string{"r1", "r3"}, queue.deletedReceipts())
}

func TestPollOnce_UnsupportedNotDeleted(t *testing.T) {
	engine := &stubEngine{}
	queue := &fakeQueue{batches: [][]types.Message{{
		queueMessage("m1", "r1", `{"type": "deleteUser", "vtagzId": 1}`),
		queueMessage("m2", "r2", `not even json`),
		queueMessage("m3", "r3", `{"type": "upsertUser", "vtagzId": 3}`),
	}}}
	c := newTestConsumer(t, queue, engine)

	c.PollOnce(context.Background())

	assert.Equal(t, []int64{3}, engine.users)
	assert.Equal(t, []string{"r3"}, queue.deletedReceipts())
}

func TestPollOnce_InvalidMessageNotDeleted(t *testing.T) {
	engine := &stubEngine{}
	queue := &fakeQueue{batches: [][]types.Message{{
		queueMessage("m1", "r1", `{"type": "upsertUser"}`),
		queueMessage("m2", "r2", `{"type": "upsertUser", "vtagzId": 2}`),
	}}}
	c := newTestConsumer(t, queue, engine)

	c.PollOnce(context.Background())

	assert.Equal(t, []int64{2}, engine.users)
	assert.Equal(t, []string{"r2"}, queue.deletedReceipts())
}

func TestPollOnce_ReceiveError(t *testing.T) {
	engine := &stubEngine{}
	queue := &fakeQueue{receiveErr: errors.New("queue unreachable")}
	c := newTestConsumer(t, queue, engine)

	c.PollOnce(context.Background())

	assert.Empty(t, engine.users)
	assert.Empty(t, queue.deletes)
}

func TestPollOnce_EmptyBatchDoesNotDelete(t *testing.T) {
	engine := &stubEngine{}
	queue := &fakeQueue{}
	c := newTestConsumer(t, queue, engine)

	c.PollOnce(context.Background())

	assert.Empty(t, queue.deletes)
}

func TestPollOnce_DeleteErrorTolerated(t *testing.T) {
	engine := &stubEngine{}
	queue := &fakeQueue{
		deleteErr: errors.New("batch delete failed"),
		batches: [][]types.Message{{
			queueMessage("m1", "r1", `{"type": "upsertUser", "vtagzId": 1}`),
		}},
	}
	c := newTestConsumer(t, queue, engine)

	c.PollOnce(context.Background())

	assert.Equal(t, []int64{1}, engine.users)
	require.Len(t, queue.deletes, 1)
}

// blockingEngine parks inside UpsertUser until released, recording the
// context state the write finished under.
type blockingEngine struct {
	stubEngine

	writeStarted chan struct{}
	release      chan struct{}
	ctxErr       error
}

func (e *blockingEngine) UpsertUser(ctx context.Context, user graph.UserAttrs, bookmarks neo4j.Bookmarks) (*graph.Result, error) {
	close(e.writeStarted)
	<-e.release
	e.ctxErr = ctx.Err()
	return &graph.Result{}, nil
}

func TestStopWaitsForInFlightBatch(t *testing.T) {
	engine := &blockingEngine{
		writeStarted: make(chan struct{}),
		release:      make(chan struct{}),
	}
	queue := &fakeQueue{batches: [][]types.Message{{
		queueMessage("m1", "r1", `{"type": "upsertUser", "vtagzId": 1}`),
	}}}
	c := newTestConsumer(t, queue, engine)

	c.Start(context.Background())
	<-engine.writeStarted

	stopped := make(chan struct{})
	go func() {
		c.Stop()
		close(stopped)
	}()

	// The stop is honored between batches; with a write still in flight it
	// must not return yet.
	select {
	case <-stopped:
		t.Fatal("Stop returned while a batch was still in flight")
	case <-time.After(100 * time.Millisecond):
	}

	close(engine.release)

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return after the batch finished")
	}

	assert.NoError(t, engine.ctxErr, "an in-flight write must not be cancelled by a stop request")
	assert.Equal(t, []string{"r1"}, queue.deletedReceipts())
}

func TestStartStop(t *testing.T) {
	engine := &stubEngine{}
	queue := &fakeQueue{batches: [][]types.Message{{
		queueMessage("m1", "r1", `{"type": "upsertUser", "vtagzId": 1}`),
	}}}
	c := newTestConsumer(t, queue, engine)

	c.Start(context.Background())

	require.Eventually(t, func() bool {
		queue.mu.Lock()
		defer queue.mu.Unlock()
		return len(queue.deletes) > 0
	}, 2*time.Second, 10*time.Millisecond)

	c.Stop()

	queue.mu.Lock()
	receivesAtStop := queue.receives
	queue.mu.Unlock()

	time.Sleep(50 * time.Millisecond)

	queue.mu.Lock()
	assert.Equal(t, receivesAtStop, queue.receives)
	queue.mu.Unlock()

	assert.True(t, c.Health())
}
