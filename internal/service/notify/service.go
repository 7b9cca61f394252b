package notify

import (
	"context"

	"go.uber.org/zap"

	"tripnotify/internal/accounts"
	"tripnotify/internal/config"
	"tripnotify/internal/domain"
	"tripnotify/internal/mail"
	"tripnotify/internal/model"
	"tripnotify/internal/realtime"
	"tripnotify/internal/repository"
	"tripnotify/internal/telemetry"
)

// Service orchestrates the notification pipeline: durable insert,
// best-effort realtime push, optional email mirror. Only the insert is
// load-bearing for a create call.
type Service struct {
	cfg       *config.Config
	store     repository.NotificationStore
	publisher *realtime.Publisher
	mailer    mail.Dispatcher
	directory accounts.Directory
	log       *zap.Logger
}

func NewService(
	cfg *config.Config,
	store repository.NotificationStore,
	publisher *realtime.Publisher,
	mailer mail.Dispatcher,
	directory accounts.Directory,
	logger *zap.Logger,
) *Service {
	return &Service{
		cfg:       cfg,
		store:     store,
		publisher: publisher,
		mailer:    mailer,
		directory: directory,
		log:       logger,
	}
}

type CreateInput struct {
	RecipientID string
	Kind        string
	Title       string
	Body        string
	Context     model.EventContext
	WantsEmail  bool
}

type Pagination struct {
	Page        int   `json:"page"`
	PageSize    int   `json:"page_size"`
	TotalCount  int64 `json:"total_count"`
	HasNextPage bool  `json:"has_next_page"`
	HasPrevPage bool  `json:"has_prev_page"`
}

func (s *Service) Create(ctx context.Context, in CreateInput) (model.Notification, error) {
	if err := domain.ValidateNew(in.Kind, in.Title, in.Body); err != nil {
		return model.Notification{}, err
	}

	created, err := s.store.Insert(ctx, model.Notification{
		RecipientID: in.RecipientID,
		Kind:        in.Kind,
		Title:       in.Title,
		Body:        in.Body,
		Context:     in.Context,
	})
	if err != nil {
		s.log.Error("store insert notification failed",
			zap.String("recipient_id", in.RecipientID),
			zap.String("kind", in.Kind),
			zap.Error(err),
		)
		return model.Notification{}, err
	}
	telemetry.NotificationsCreated.WithLabelValues(created.Kind).Inc()

	s.publisher.Publish(created)

	if in.WantsEmail && s.mailer.Enabled() {
		s.mirrorToEmail(ctx, created)
	}
	return created, nil
}

// mirrorToEmail never fails the create: every error on this path is
// logged and dropped.
func (s *Service) mirrorToEmail(ctx context.Context, n model.Notification) {
	address, ok, err := s.directory.ResolveEmail(ctx, n.RecipientID)
	if err != nil {
		s.log.Warn("resolve recipient email failed",
			zap.String("recipient_id", n.RecipientID),
			zap.Int64("notification_id", n.ID),
			zap.Error(err),
		)
		telemetry.EmailDispatches.WithLabelValues("resolve_failed").Inc()
		return
	}
	if !ok {
		s.log.Debug("recipient has no email address on file",
			zap.String("recipient_id", n.RecipientID),
		)
		telemetry.EmailDispatches.WithLabelValues("no_address").Inc()
		return
	}

	if err := s.mailer.Send(ctx, n, address); err != nil {
		s.log.Warn("email mirror dispatch failed",
			zap.String("recipient_id", n.RecipientID),
			zap.Int64("notification_id", n.ID),
			zap.Error(err),
		)
		telemetry.EmailDispatches.WithLabelValues("failed").Inc()
		return
	}

	if err := s.store.MarkEmailMirrored(ctx, n.ID); err != nil {
		s.log.Warn("mark email mirrored failed",
			zap.Int64("notification_id", n.ID),
			zap.Error(err),
		)
		return
	}
	telemetry.EmailDispatches.WithLabelValues("sent").Inc()
}

func (s *Service) List(ctx context.Context, recipientID string, page, pageSize int) ([]model.Notification, Pagination, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > s.cfg.MaxPageSize {
		pageSize = s.cfg.DefaultPageSize
	}

	items, total, err := s.store.ListByRecipient(ctx, recipientID, page, pageSize)
	if err != nil {
		s.log.Error("store list notifications failed", zap.String("recipient_id", recipientID), zap.Error(err))
		return nil, Pagination{}, err
	}

	return items, Pagination{
		Page:        page,
		PageSize:    pageSize,
		TotalCount:  total,
		HasNextPage: int64(page)*int64(pageSize) < total,
		HasPrevPage: page > 1,
	}, nil
}

func (s *Service) UnreadCount(ctx context.Context, recipientID string) (int64, error) {
	count, err := s.store.CountUnread(ctx, recipientID)
	if err != nil {
		s.log.Error("store count unread failed", zap.String("recipient_id", recipientID), zap.Error(err))
		return 0, err
	}
	return count, nil
}

func (s *Service) MarkRead(ctx context.Context, recipientID string, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return s.store.MarkRead(ctx, recipientID, ids)
}

func (s *Service) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	return s.store.MarkAllRead(ctx, recipientID)
}

func (s *Service) Delete(ctx context.Context, recipientID string, id int64) error {
	deleted, err := s.store.DeleteOwned(ctx, recipientID, id)
	if err != nil {
		s.log.Error("store delete notification failed",
			zap.String("recipient_id", recipientID),
			zap.Int64("id", id),
			zap.Error(err),
		)
		return err
	}
	if !deleted {
		return domain.ErrNotFound
	}
	return nil
}
