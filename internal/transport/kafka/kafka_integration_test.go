//go:build integration

package kafka

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"dorm-delivery/internal/domain"
	testlog "dorm-delivery/internal/testutil"
)

func TestKafka_PublishThenConsume(t *testing.T) {
	ctx := context.Background()

	ctr, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("dorm-delivery"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = ctr.Terminate(context.Background()) })

	brokers, err := ctr.Brokers(ctx)
	require.NoError(t, err)

	const topic = "task-events-it"
	pub, err := NewPublisher(brokers, topic)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pub.Close() })

	sent := domain.TaskEvent{
		TaskID:        42,
		Action:        "fail",
		Status:        domain.StatusFailed,
		PaymentStatus: domain.PaymentHeld,
		ActorID:       7,
		OccurredAt:    time.Now().UTC().Truncate(time.Millisecond),
	}
	require.NoError(t, pub.Publish(ctx, sent))

	runCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	got := make(chan domain.TaskEvent, 1)
	c, err := NewConsumer(testlog.New().Logger(), brokers, "it-group", topic, func(_ context.Context, e domain.TaskEvent) error {
		select {
		case got <- e:
		default:
		}
		cancel()
		return nil
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	_ = c.Run(runCtx)

	select {
	case e := <-got:
		require.Equal(t, sent.TaskID, e.TaskID)
		require.Equal(t, sent.Action, e.Action)
		require.Equal(t, sent.PaymentStatus, e.PaymentStatus)
		require.True(t, sent.OccurredAt.Equal(e.OccurredAt))
	default:
		t.Fatal("no event consumed")
	}
}
