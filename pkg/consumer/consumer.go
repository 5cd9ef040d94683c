// Package consumer polls the change-event queue and drives the operation
// registry. One poll is active at a time; within a batch every supported
// message is processed concurrently and failure-isolated, and only the
// messages that were successfully applied are deleted from the queue.
package consumer

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"github.com/vtagz/recommendations/config"
	"github.com/vtagz/recommendations/internal/metrics"
	"github.com/vtagz/recommendations/internal/tracing"
	"github.com/vtagz/recommendations/pkg/models"
	"github.com/vtagz/recommendations/pkg/processor"
)

// ConsumerConfig holds queue consumer configuration
type ConsumerConfig struct {
	QueueURL                 string
	MaxMessages              int32
	VisibilityTimeoutSeconds int32
	WaitTimeSeconds          int32
}

// Consumer handles queue message consumption
type Consumer struct {
	client   QueueAPI
	cfg      ConsumerConfig
	registry *processor.Registry
	logger   ectologger.Logger
	metrics  *metrics.Consumer
	wg       sync.WaitGroup
	cancel   context.CancelFunc
}

// New creates a new queue consumer from the service configuration.
func New(cfg config.Config, client QueueAPI, registry *processor.Registry, logger ectologger.Logger, m *metrics.Consumer) *Consumer {
	return NewWithConfig(ConsumerConfig{
		QueueURL:                 cfg.SQSQueueURL,
		MaxMessages:              cfg.SQSMaxMessages,
		VisibilityTimeoutSeconds: cfg.SQSVisibilityTimeoutSeconds,
		WaitTimeSeconds:          cfg.SQSWaitTimeSeconds,
	}, client, registry, logger, m)
}

// NewWithConfig creates a new queue consumer with explicit config.
func NewWithConfig(cfg ConsumerConfig, client QueueAPI, registry *processor.Registry, logger ectologger.Logger, m *metrics.Consumer) *Consumer {
	return &Consumer{
		client:   client,
		cfg:      cfg,
		registry: registry,
		logger:   logger,
		metrics:  m,
	}
}

// Start begins consuming messages.
func (c *Consumer) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	c.wg.Add(1)
	go c.run(ctx)

	c.logger.WithContext(ctx).WithFields(map[string]any{
		"queue_url": c.cfg.QueueURL,
	}).Info("Queue consumer started")
}

// Stop requests a stop and waits for the in-flight batch to finish. The
// stop is honored between batches, never mid-batch.
func (c *Consumer) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()
}

// Health returns the consumer health status
func (c *Consumer) Health() bool {
	return c.client != nil
}

func (c *Consumer) run(ctx context.Context) {
	defer c.wg.Done()

	for {
		select {
		case <-ctx.Done():
			c.logger.WithContext(ctx).Info("Consumer loop stopping")
			return
		default:
			c.PollOnce(ctx)
		}
	}
}

type outcome struct {
	message *models.Message
	err     error
}

type task struct {
	message *models.Message
	handler processor.Handler
}

// PollOnce runs a single receive/process/acknowledge iteration. Exported so
// tests can drive the loop one batch at a time.
func (c *Consumer) PollOnce(ctx context.Context) {
	ctx, span := tracing.StartSpan(ctx, "consumer.Consumer.PollOnce")
	defer span.End()

	log := c.logger.WithContext(ctx)

	received, err := c.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:              aws.String(c.cfg.QueueURL),
		MaxNumberOfMessages:   c.cfg.MaxMessages,
		VisibilityTimeout:     c.cfg.VisibilityTimeoutSeconds,
		WaitTimeSeconds:       c.cfg.WaitTimeSeconds,
		AttributeNames:        []types.QueueAttributeName{types.QueueAttributeNameAll},
		MessageAttributeNames: []string{"All"},
	})
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		c.metrics.ReceiveErrors.Inc()
		log.WithError(err).Error("Failed to receive messages")
		return
	}

	if len(received.Messages) == 0 {
		return
	}

	// The batch stages run on a detached context: a stop request is honored
	// between batches and must never abort an in-flight write or the
	// acknowledge, or processed messages would be redelivered.
	batchCtx := context.WithoutCancel(ctx)

	start := time.Now()
	defer func() {
		c.metrics.BatchDuration.Observe(time.Since(start).Seconds())
	}()

	c.metrics.Received.Add(float64(len(received.Messages)))

	// Partition the batch by whether the declared type has a transformer.
	var supported []task
	var unsupported []*models.Message
	for _, raw := range received.Messages {
		msg := models.NewMessage(
			aws.ToString(raw.MessageId),
			aws.ToString(raw.ReceiptHandle),
			[]byte(aws.ToString(raw.Body)),
		)
		if handler, ok := c.registry.Lookup(msg.Type); ok {
			supported = append(supported, task{message: msg, handler: handler})
		} else {
			unsupported = append(unsupported, msg)
		}
	}

	// Unsupported messages are logged once and left for redelivery or the
	// queue's own dead-letter policy.
	if len(unsupported) > 0 {
		c.metrics.Unsupported.Add(float64(len(unsupported)))
		ids := make([]string, 0, len(unsupported))
		for _, msg := range unsupported {
			ids = append(ids, msg.MessageID)
		}
		log.WithFields(map[string]any{
			"message_ids": ids,
		}).Error("Received unsupported messages")
	}

	outcomes := c.dispatch(batchCtx, supported)

	var succeeded []*models.Message
	for _, result := range outcomes {
		if result.err != nil {
			c.metrics.Failed.Inc()
			log.WithError(result.err).WithFields(map[string]any{
				"message_id":   result.message.MessageID,
				"message_type": result.message.Type,
			}).Error("Failed to process message")
			continue
		}
		c.metrics.Processed.Inc()
		succeeded = append(succeeded, result.message)
	}

	c.deleteMessages(batchCtx, succeeded)
}

// dispatch runs every supported message's transformer concurrently and
// waits for all of them to settle. A failing message never cancels or
// blocks its siblings.
func (c *Consumer) dispatch(ctx context.Context, tasks []task) []outcome {
	outcomes := make([]outcome, len(tasks))

	var wg sync.WaitGroup
	for i, t := range tasks {
		wg.Add(1)
		go func(i int, t task) {
			defer wg.Done()
			outcomes[i] = outcome{message: t.message, err: t.handler(ctx, t.message)}
		}(i, t)
	}
	wg.Wait()

	return outcomes
}

// deleteMessages acknowledges exactly the successfully applied messages.
// A delete failure is logged and the loop carries on; the queue redelivers
// anything left unacknowledged after its visibility timeout.
func (c *Consumer) deleteMessages(ctx context.Context, messages []*models.Message) {
	if len(messages) == 0 {
		return
	}

	entries := make([]types.DeleteMessageBatchRequestEntry, 0, len(messages))
	for i, msg := range messages {
		entries = append(entries, types.DeleteMessageBatchRequestEntry{
			Id:            aws.String(strconv.Itoa(i)),
			ReceiptHandle: aws.String(msg.ReceiptHandle),
		})
	}

	_, err := c.client.DeleteMessageBatch(ctx, &sqs.DeleteMessageBatchInput{
		QueueUrl: aws.String(c.cfg.QueueURL),
		Entries:  entries,
	})
	if err != nil {
		c.metrics.DeleteErrors.Inc()
		c.logger.WithContext(ctx).WithError(err).Error("Failed to delete processed messages")
		return
	}

	c.metrics.Deleted.Add(float64(len(messages)))
}
