package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"tripnotify/internal/config"
	"tripnotify/internal/model"
	"tripnotify/internal/telemetry"
)

const perRecipientTimeout = 10 * time.Second

// Coordinator expands one domain event into independent per-recipient
// create calls. One recipient failing never touches another recipient's
// already-created notification; there is no rollback.
type Coordinator struct {
	svc         *Service
	parallelism int
	log         *zap.Logger
}

func NewCoordinator(cfg *config.Config, svc *Service, logger *zap.Logger) *Coordinator {
	parallelism := cfg.FanOutParallelism
	if parallelism < 1 {
		parallelism = 1
	}
	return &Coordinator{svc: svc, parallelism: parallelism, log: logger}
}

type FanOutInput struct {
	RecipientIDs []string
	Kind         string
	Title        string
	Body         string
	Context      model.EventContext
	WantsEmail   bool
}

type RecipientFailure struct {
	RecipientID string
	Err         error
}

// Result is informational. Callers must not treat failures here as a
// reason to abort the domain operation that triggered the fan-out.
type Result struct {
	Succeeded []string
	Failed    []RecipientFailure
}

func (c *Coordinator) FanOut(ctx context.Context, in FanOutInput) Result {
	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		result Result
	)
	sem := make(chan struct{}, c.parallelism)

	for _, recipientID := range in.RecipientIDs {
		wg.Add(1)
		sem <- struct{}{}
		go func(recipientID string) {
			defer wg.Done()
			defer func() { <-sem }()

			// Every create carries its own bound; the coordinator itself
			// imposes no global deadline.
			createCtx, cancel := context.WithTimeout(ctx, perRecipientTimeout)
			defer cancel()

			_, err := c.svc.Create(createCtx, CreateInput{
				RecipientID: recipientID,
				Kind:        in.Kind,
				Title:       in.Title,
				Body:        in.Body,
				Context:     in.Context,
				WantsEmail:  in.WantsEmail,
			})

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed = append(result.Failed, RecipientFailure{RecipientID: recipientID, Err: err})
				return
			}
			result.Succeeded = append(result.Succeeded, recipientID)
		}(recipientID)
	}
	wg.Wait()

	if len(result.Failed) > 0 {
		telemetry.FanOutFailures.Add(float64(len(result.Failed)))
		fields := []zap.Field{
			zap.String("kind", in.Kind),
			zap.Int("recipients", len(in.RecipientIDs)),
			zap.Int("failed", len(result.Failed)),
		}
		for _, failure := range result.Failed {
			fields = append(fields, zap.NamedError("recipient_"+failure.RecipientID, failure.Err))
		}
		c.log.Warn("fan-out completed with failures", fields...)
	}
	return result
}
