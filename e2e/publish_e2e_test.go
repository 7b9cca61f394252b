//go:build integration

package e2e

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"tripnotify/internal/accounts"
	httpserver "tripnotify/internal/http"
	"tripnotify/internal/http/controller"
	"tripnotify/internal/http/dto"
	"tripnotify/internal/mail"
	"tripnotify/internal/queue/rabbitmq"
	"tripnotify/internal/realtime"
	"tripnotify/internal/service/notify"
	"tripnotify/internal/store/memory"
)

func TestPublishFlow(t *testing.T) {
	ginTestMode()

	ctx := context.Background()
	amqpURL, cleanup := setupRabbitMQContainer(t, ctx)
	defer cleanup()

	cfg := baseConfig()
	cfg.RabbitMQURL = amqpURL
	cfg.RabbitExchange = "trip-events"
	cfg.RabbitQueue = "trip-events.notifications"
	cfg.RabbitRoutingKey = "trip.*"
	cfg.RabbitConsumerTag = "notification-fanout"
	cfg.RabbitPublishPrefix = "trip"

	logger := zap.NewNop()
	store := memory.New(logger)
	hub := realtime.NewHub()
	publisher := realtime.NewPublisher(hub, logger)
	mailer, err := mail.New(cfg, logger)
	require.NoError(t, err)
	directory := accounts.NewMemoryDirectory()

	svc := notify.NewService(cfg, store, publisher, mailer, directory, logger)
	coordinator := notify.NewCoordinator(cfg, svc, logger)
	queuePublisher := rabbitmq.NewPublisher(cfg, logger)
	consumer := rabbitmq.NewConsumer(cfg, coordinator, logger)

	consumeCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	errCh := make(chan error, 1)
	go func() {
		errCh <- consumer.Start(consumeCtx)
	}()

	require.NoError(t, waitForConsumer(ctx, amqpURL, cfg.RabbitQueue, 5*time.Second))

	handler := controller.NewHandler(cfg, svc, coordinator, hub, logger, queuePublisher)
	router := httpserver.NewRouter(cfg, handler, logger)

	server := httptest.NewServer(router)
	defer server.Close()

	aliceStream := openStream(t, server.URL, "alice", "?limit=0")
	defer func() { _ = aliceStream.Body.Close() }()
	require.Equal(t, http.StatusOK, aliceStream.StatusCode)

	publishResp := doJSON(t, http.MethodPost, server.URL+"/events/publish", "svc-trips", dto.TripEventRequest{
		Kind:         "trip_join",
		RecipientIDs: []string{"alice", "bob"},
		ActorID:      "carol",
		ActorName:    "Carol",
		TripID:       7,
		TripTitle:    "Lisbon",
	})
	defer func() { _ = publishResp.Body.Close() }()
	require.Equal(t, http.StatusAccepted, publishResp.StatusCode)

	data, err := readSSEData(aliceStream.Body, 5*time.Second)
	require.NoError(t, err)
	require.Contains(t, data, "\"kind\":\"trip_join\"")
	require.Contains(t, data, "Lisbon")

	require.Eventually(t, func() bool {
		items, _, err := svc.List(ctx, "bob", 1, 10)
		return err == nil && len(items) == 1
	}, 5*time.Second, 100*time.Millisecond)

	cancel()
	select {
	case <-time.After(3 * time.Second):
		t.Fatalf("consumer did not stop")
	case <-errCh:
	}
}

func waitForConsumer(ctx context.Context, amqpURL, queue string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			conn, err := amqp.Dial(amqpURL)
			if err != nil {
				continue
			}
			ch, err := conn.Channel()
			if err != nil {
				_ = conn.Close()
				continue
			}
			q, err := ch.QueueInspect(queue)
			_ = ch.Close()
			_ = conn.Close()
			if err != nil {
				continue
			}
			if q.Consumers > 0 {
				return nil
			}
		}
	}
}

func setupRabbitMQContainer(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()

	req := testcontainers.ContainerRequest{
		Image:        "rabbitmq:3.12-alpine",
		ExposedPorts: []string{"5672/tcp"},
		WaitingFor:   wait.ForListeningPort("5672/tcp").WithStartupTimeout(2 * time.Minute),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5672/tcp")
	require.NoError(t, err)

	amqpURL := "amqp://guest:guest@" + host + ":" + port.Port() + "/"

	cleanup := func() {
		_ = container.Terminate(ctx)
	}
	return amqpURL, cleanup
}
