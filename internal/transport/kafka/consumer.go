package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/IBM/sarama"

	"dorm-delivery/internal/domain"
	"dorm-delivery/internal/logx"
)

// HandleFunc processes one task event. Returning a Permanent error skips the
// message; any other error leaves it uncommitted for redelivery.
type HandleFunc func(context.Context, domain.TaskEvent) error

var newConsumerGroup = sarama.NewConsumerGroup

// rejoinDelay is how long Run waits before rejoining after a failed session.
var rejoinDelay = time.Second

var errMissingTaskID = errors.New("missing task_id")

// Consumer reads task events through a consumer group.
type Consumer struct {
	group   sarama.ConsumerGroup
	topic   string
	logger  logx.Logger
	handler HandleFunc
}

// NewConsumer creates a Consumer. It returns nil, nil when Kafka is not configured.
func NewConsumer(logger logx.Logger, brokers []string, groupID, topic string, h HandleFunc) (*Consumer, error) {
	if len(brokers) == 0 || strings.TrimSpace(topic) == "" || strings.TrimSpace(groupID) == "" {
		return nil, nil
	}

	cfg := sarama.NewConfig()
	cfg.Consumer.Offsets.Initial = sarama.OffsetOldest

	group, err := newConsumerGroup(brokers, groupID, cfg)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer group %q: %w", groupID, err)
	}
	return &Consumer{group: group, topic: topic, logger: logger.With(logx.String("topic", topic)), handler: h}, nil
}

// Run consumes until ctx is done, rejoining the group after each session.
func (c *Consumer) Run(ctx context.Context) error {
	if c == nil {
		return nil
	}

	for {
		err := c.group.Consume(ctx, []string{c.topic}, c)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err == nil {
			continue
		}
		c.logger.Error("task event session ended", logx.Err(err))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(rejoinDelay):
		}
	}
}

// Close leaves the group.
func (c *Consumer) Close() error {
	if c == nil {
		return nil
	}
	return c.group.Close()
}

// Setup implements sarama.ConsumerGroupHandler.
func (c *Consumer) Setup(sarama.ConsumerGroupSession) error { return nil }

// Cleanup implements sarama.ConsumerGroupHandler.
func (c *Consumer) Cleanup(sarama.ConsumerGroupSession) error { return nil }

// ConsumeClaim implements sarama.ConsumerGroupHandler. Undecodable and
// permanently failing messages are marked and skipped; a transient failure
// ends the session without marking, so the message comes back.
func (c *Consumer) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for msg := range claim.Messages() {
		ev, err := decodeEvent(msg.Value)
		if err != nil {
			c.logger.Warn("task event dropped", logx.Int64("offset", msg.Offset), logx.Err(err))
			sess.MarkMessage(msg, "")
			continue
		}

		err = c.handler(sess.Context(), ev)
		switch {
		case err == nil:
		case IsPermanent(err):
			c.logger.Error("task event rejected", logx.TaskID(ev.TaskID), logx.Action(ev.Action), logx.Err(err))
		default:
			c.logger.Warn("task event will be redelivered", logx.TaskID(ev.TaskID), logx.Action(ev.Action), logx.Err(err))
			return err
		}
		sess.MarkMessage(msg, "")
	}
	return nil
}

func decodeEvent(b []byte) (domain.TaskEvent, error) {
	var dto TaskEventDTO
	if err := json.Unmarshal(b, &dto); err != nil {
		return domain.TaskEvent{}, fmt.Errorf("decode task event: %w", err)
	}
	if dto.TaskID <= 0 {
		return domain.TaskEvent{}, errMissingTaskID
	}
	return ToDomain(dto), nil
}
