package mail

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	gomail "github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"tripnotify/internal/config"
	"tripnotify/internal/model"
)

// Dispatcher mirrors a notification to email. It never retries and
// never queues: a failed send is reported once and forgotten, the
// durable record already exists.
type Dispatcher interface {
	Enabled() bool
	Send(ctx context.Context, n model.Notification, address string) error
}

// New returns the SMTP dispatcher, or the disabled one when no SMTP
// host is configured. Disabled sends are deterministic no-op successes;
// callers check Enabled before reading anything into that.
func New(cfg *config.Config, logger *zap.Logger) (Dispatcher, error) {
	if cfg.SMTPHost == "" {
		return disabledDispatcher{}, nil
	}

	options := []gomail.Option{
		gomail.WithPort(cfg.SMTPPort),
		gomail.WithTimeout(cfg.EmailTimeout),
	}
	if cfg.SMTPUsername != "" {
		options = append(options,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.SMTPUsername),
			gomail.WithPassword(cfg.SMTPPassword),
		)
	}
	client, err := gomail.NewClient(cfg.SMTPHost, options...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}

	return &smtpDispatcher{
		client:  client,
		from:    cfg.SMTPFrom,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		timeout: cfg.EmailTimeout,
		log:     logger,
	}, nil
}

type disabledDispatcher struct{}

func (disabledDispatcher) Enabled() bool { return false }

func (disabledDispatcher) Send(context.Context, model.Notification, string) error { return nil }

type smtpDispatcher struct {
	client  *gomail.Client
	from    string
	baseURL string
	timeout time.Duration
	log     *zap.Logger
}

func (d *smtpDispatcher) Enabled() bool { return true }

func (d *smtpDispatcher) Send(ctx context.Context, n model.Notification, address string) error {
	msg := gomail.NewMsg()
	if err := msg.From(d.from); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := msg.To(address); err != nil {
		return fmt.Errorf("mail to: %w", err)
	}
	msg.Subject(n.Title)
	msg.SetBodyString(gomail.TypeTextPlain, renderBody(n, d.baseURL))

	// The send is bounded on its own so a stalled relay cannot eat the
	// caller's whole request budget.
	sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	if err := d.client.DialAndSendWithContext(sendCtx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// renderBody is deterministic: same notification, same bytes.
func renderBody(n model.Notification, baseURL string) string {
	var b strings.Builder
	b.WriteString(n.Title)
	b.WriteString("\n\n")
	b.WriteString(n.Body)
	b.WriteString("\n")
	if n.Context.TripID != nil && baseURL != "" {
		b.WriteString("\nView the trip: ")
		b.WriteString(baseURL)
		b.WriteString("/trips/")
		b.WriteString(strconv.FormatInt(*n.Context.TripID, 10))
		b.WriteString("\n")
	}
	return b.String()
}
