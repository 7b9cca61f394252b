package rabbitmq

import (
	"context"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tripnotify/internal/accounts"
	"tripnotify/internal/config"
	"tripnotify/internal/domain"
	"tripnotify/internal/mail"
	"tripnotify/internal/realtime"
	"tripnotify/internal/service/notify"
	"tripnotify/internal/store/memory"
)

type ackMock struct {
	acked   int
	nacked  int
	requeue bool
}

func (a *ackMock) Ack(_ uint64, _ bool) error {
	a.acked++
	return nil
}

func (a *ackMock) Nack(_ uint64, _ bool, requeue bool) error {
	a.nacked++
	a.requeue = requeue
	return nil
}

func (a *ackMock) Reject(_ uint64, _ bool) error {
	return nil
}

func newTestConsumer(t *testing.T) (*Consumer, *memory.Store) {
	t.Helper()
	cfg := &config.Config{DefaultPageSize: 20, MaxPageSize: 100, FanOutParallelism: 4}
	store := memory.New(zap.NewNop())
	hub := realtime.NewHub()
	mailer, err := mail.New(cfg, zap.NewNop())
	require.NoError(t, err)
	svc := notify.NewService(cfg, store, realtime.NewPublisher(hub, zap.NewNop()), mailer, accounts.NewMemoryDirectory(), zap.NewNop())
	coordinator := notify.NewCoordinator(cfg, svc, zap.NewNop())
	return &Consumer{coordinator: coordinator, logger: zap.NewNop()}, store
}

func TestConsumerHandleMessage(t *testing.T) {
	t.Run("invalid json", func(t *testing.T) {
		consumer, store := newTestConsumer(t)
		ack := &ackMock{}

		msg := amqp.Delivery{
			Body:         []byte("{bad json"),
			Acknowledger: ack,
		}

		err := consumer.handleMessage(context.Background(), msg)
		require.NoError(t, err)
		require.Equal(t, 1, ack.acked)
		require.Equal(t, 0, ack.nacked)

		_, total, err := store.ListByRecipient(context.Background(), "a", 1, 10)
		require.NoError(t, err)
		require.Zero(t, total)
	})

	t.Run("invalid kind", func(t *testing.T) {
		consumer, store := newTestConsumer(t)
		ack := &ackMock{}

		msg := amqp.Delivery{
			Body:         []byte(`{"event_id":"e1","kind":"bad","recipient_ids":["a"],"trip_id":1,"trip_title":"T"}`),
			Acknowledger: ack,
		}

		err := consumer.handleMessage(context.Background(), msg)
		require.NoError(t, err)
		require.Equal(t, 1, ack.acked)

		_, total, err := store.ListByRecipient(context.Background(), "a", 1, 10)
		require.NoError(t, err)
		require.Zero(t, total)
	})

	t.Run("no recipients", func(t *testing.T) {
		consumer, _ := newTestConsumer(t)
		ack := &ackMock{}

		msg := amqp.Delivery{
			Body:         []byte(`{"event_id":"e2","kind":"trip_update","recipient_ids":[],"trip_id":1,"trip_title":"T"}`),
			Acknowledger: ack,
		}

		err := consumer.handleMessage(context.Background(), msg)
		require.NoError(t, err)
		require.Equal(t, 1, ack.acked)
	})

	t.Run("fans out to every recipient", func(t *testing.T) {
		consumer, store := newTestConsumer(t)
		ack := &ackMock{}

		msg := amqp.Delivery{
			Body: []byte(`{
				"event_id": "e3",
				"kind": "trip_delete",
				"recipient_ids": ["a", "b", "c"],
				"actor_id": "organizer",
				"actor_name": "Olga",
				"trip_id": 12,
				"trip_title": "Mountain Week"
			}`),
			Acknowledger: ack,
		}

		err := consumer.handleMessage(context.Background(), msg)
		require.NoError(t, err)
		require.Equal(t, 1, ack.acked)
		require.Equal(t, 0, ack.nacked)

		for _, recipientID := range []string{"a", "b", "c"} {
			items, total, err := store.ListByRecipient(context.Background(), recipientID, 1, 10)
			require.NoError(t, err)
			require.Equal(t, int64(1), total)

			n := items[0]
			require.Equal(t, domain.KindTripDelete, n.Kind)
			require.Equal(t, "Mountain Week", n.Context.TripTitle)
			require.Contains(t, n.Body, "Olga")
		}
	})
}
