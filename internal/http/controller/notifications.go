package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tripnotify/internal/config"
	"tripnotify/internal/domain"
	"tripnotify/internal/http/dto"
	"tripnotify/internal/http/middleware"
	"tripnotify/internal/http/resp"
	"tripnotify/internal/model"
	"tripnotify/internal/queue"
	"tripnotify/internal/realtime"
	"tripnotify/internal/service/notify"
	"tripnotify/internal/telemetry"
)

type Handler struct {
	cfg         *config.Config
	svc         *notify.Service
	coordinator *notify.Coordinator
	hub         *realtime.Hub
	log         *zap.Logger
	pub         queue.Publisher
}

func NewHandler(
	cfg *config.Config,
	svc *notify.Service,
	coordinator *notify.Coordinator,
	hub *realtime.Hub,
	logger *zap.Logger,
	publisher queue.Publisher,
) *Handler {
	return &Handler{
		cfg:         cfg,
		svc:         svc,
		coordinator: coordinator,
		hub:         hub,
		log:         logger,
		pub:         publisher,
	}
}

func (h *Handler) ListNotifications(c *gin.Context) {
	recipientID := middleware.RecipientID(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "0"))

	items, pagination, err := h.svc.List(c.Request.Context(), recipientID, page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Code: resp.CodeInternalError, Message: "failed to list notifications"})
		return
	}
	if items == nil {
		items = []model.Notification{}
	}
	c.JSON(http.StatusOK, dto.ListNotificationsResponse{Items: items, Pagination: pagination})
}

func (h *Handler) UnreadCount(c *gin.Context) {
	count, err := h.svc.UnreadCount(c.Request.Context(), middleware.RecipientID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Code: resp.CodeInternalError, Message: "failed to count unread notifications"})
		return
	}
	c.JSON(http.StatusOK, dto.UnreadCountResponse{Count: count})
}

func (h *Handler) MarkRead(c *gin.Context) {
	var req dto.MarkReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: resp.CodeBadRequest, Message: "invalid json"})
		return
	}
	if len(req.IDs) == 0 {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: resp.CodeBadRequest, Message: "ids are required"})
		return
	}

	updated, err := h.svc.MarkRead(c.Request.Context(), middleware.RecipientID(c), req.IDs)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Code: resp.CodeNotFound, Message: "notification not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Code: resp.CodeInternalError, Message: "failed to mark notifications read"})
		return
	}
	c.JSON(http.StatusOK, dto.UpdatedResponse{Updated: updated})
}

func (h *Handler) MarkAllRead(c *gin.Context) {
	updated, err := h.svc.MarkAllRead(c.Request.Context(), middleware.RecipientID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Code: resp.CodeInternalError, Message: "failed to mark notifications read"})
		return
	}
	c.JSON(http.StatusOK, dto.UpdatedResponse{Updated: updated})
}

func (h *Handler) DeleteNotification(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: resp.CodeBadRequest, Message: "invalid id"})
		return
	}

	if err := h.svc.Delete(c.Request.Context(), middleware.RecipientID(c), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Code: resp.CodeNotFound, Message: "notification not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Code: resp.CodeInternalError, Message: "failed to delete notification"})
		return
	}
	c.Status(http.StatusNoContent)
}

// CreateNotification records a single-recipient notification. The trip
// service calls this for events with one interested party; multi
// recipient events go through fan-out.
func (h *Handler) CreateNotification(c *gin.Context) {
	var req dto.CreateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: resp.CodeBadRequest, Message: "invalid json"})
		return
	}
	recipientID := req.RecipientID
	if recipientID == "" {
		recipientID = middleware.RecipientID(c)
	}

	created, err := h.svc.Create(c.Request.Context(), notify.CreateInput{
		RecipientID: recipientID,
		Kind:        req.Kind,
		Title:       req.Title,
		Body:        req.Body,
		Context:     req.Context,
		WantsEmail:  req.WantsEmail,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidKind) || errors.Is(err, domain.ErrEmptyTitle) || errors.Is(err, domain.ErrEmptyBody) {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: resp.CodeBadRequest, Message: err.Error()})
			return
		}
		h.log.Error("create notification failed",
			zap.String("recipient_id", recipientID),
			zap.String("kind", req.Kind),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Code: resp.CodeInternalError, Message: "notification could not be recorded"})
		return
	}
	c.JSON(http.StatusCreated, created)
}

// FanOut expands a trip event to all its recipients synchronously. The
// result is informational; a trip deletion that triggered this has
// already happened and is never undone by delivery failures.
func (h *Handler) FanOut(c *gin.Context) {
	req, ok := bindTripEvent(c)
	if !ok {
		return
	}

	title, body, eventCtx, err := notify.BuildTripEvent(notify.TripEvent{
		Kind:      req.Kind,
		ActorID:   req.ActorID,
		ActorName: req.ActorName,
		TripID:    req.TripID,
		TripTitle: req.TripTitle,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: resp.CodeBadRequest, Message: err.Error()})
		return
	}

	result := h.coordinator.FanOut(c.Request.Context(), notify.FanOutInput{
		RecipientIDs: req.RecipientIDs,
		Kind:         req.Kind,
		Title:        title,
		Body:         body,
		Context:      eventCtx,
		WantsEmail:   req.WantsEmail,
	})

	response := dto.FanOutResponse{Succeeded: result.Succeeded, Failed: []dto.FanOutFailure{}}
	if response.Succeeded == nil {
		response.Succeeded = []string{}
	}
	for _, failure := range result.Failed {
		response.Failed = append(response.Failed, dto.FanOutFailure{
			RecipientID: failure.RecipientID,
			Error:       failure.Err.Error(),
		})
	}
	c.JSON(http.StatusOK, response)
}

// PublishEvent enqueues a trip event for asynchronous fan-out.
func (h *Handler) PublishEvent(c *gin.Context) {
	req, ok := bindTripEvent(c)
	if !ok {
		return
	}

	event := queue.TripEventMessage{
		Kind:         req.Kind,
		RecipientIDs: req.RecipientIDs,
		ActorID:      req.ActorID,
		ActorName:    req.ActorName,
		TripID:       req.TripID,
		TripTitle:    req.TripTitle,
		WantsEmail:   req.WantsEmail,
	}
	event.Stamp()

	payload, err := json.Marshal(event)
	if err != nil {
		h.log.Error("publish payload marshal failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Code: resp.CodeInternalError, Message: "failed to publish event"})
		return
	}

	prefix := h.cfg.RabbitPublishPrefix
	if prefix == "" {
		prefix = "trip"
	}
	routingKey := prefix + "." + req.Kind
	if err := h.pub.Publish(c.Request.Context(), payload, routingKey); err != nil {
		h.log.Error("publish event failed",
			zap.String("event_id", event.EventID),
			zap.String("kind", req.Kind),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Code: resp.CodeInternalError, Message: "failed to publish event"})
		return
	}

	c.JSON(http.StatusAccepted, dto.StatusResponse{Code: resp.CodeQueued, Message: "queued"})
}

func bindTripEvent(c *gin.Context) (dto.TripEventRequest, bool) {
	var req dto.TripEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: resp.CodeBadRequest, Message: "invalid json"})
		return req, false
	}
	if !domain.IsValidKind(req.Kind) {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: resp.CodeBadRequest, Message: "unrecognized event kind"})
		return req, false
	}
	if len(req.RecipientIDs) == 0 {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: resp.CodeBadRequest, Message: "recipient_ids are required"})
		return req, false
	}
	return req, true
}

// Stream is the live notification channel. Delivery here is best
// effort; the durable record is always retrievable by polling, so a
// dropped or raced payload is never lost, only late.
func (h *Handler) Stream(c *gin.Context) {
	recipientID := middleware.RecipientID(c)

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		h.log.Error("streaming unsupported", zap.String("recipient_id", recipientID))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Code: resp.CodeInternalError, Message: "streaming unsupported"})
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	limit := h.cfg.HistoryLimit
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			limit = n
		}
	}

	if limit > 0 {
		history, _, err := h.svc.List(c.Request.Context(), recipientID, 1, limit)
		if err != nil {
			h.log.Error("stream replay failed", zap.String("recipient_id", recipientID), zap.Error(err))
		} else {
			for i := len(history) - 1; i >= 0; i-- {
				if err := writePush(c.Writer, model.PushPayloadOf(history[i])); err != nil {
					h.log.Error("stream replay write failed", zap.String("recipient_id", recipientID), zap.Error(err))
					return
				}
			}
			flusher.Flush()
		}
	}

	client := &realtime.Client{
		RecipientID: recipientID,
		Ch:          make(chan model.PushPayload, 16),
	}
	h.hub.Register(client)
	telemetry.StreamClients.Inc()
	defer func() {
		h.hub.Unregister(client)
		telemetry.StreamClients.Dec()
	}()

	heartbeat := time.NewTicker(h.cfg.SSEHeartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case <-heartbeat.C:
			if _, err := fmt.Fprint(c.Writer, ": ping\n\n"); err != nil {
				h.log.Debug("heartbeat write failed", zap.String("recipient_id", recipientID), zap.Error(err))
				return
			}
			flusher.Flush()
		case payload, ok := <-client.Ch:
			if !ok {
				return
			}
			if err := writePush(c.Writer, payload); err != nil {
				h.log.Debug("stream write failed", zap.String("recipient_id", recipientID), zap.Error(err))
				return
			}
			flusher.Flush()
		}
	}
}

func writePush(w http.ResponseWriter, payload model.PushPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	// SSE frame mapping:
	// - id: notification id (event id)
	// - event: "notification" (JS uses addEventListener("notification", ...))
	// - data: the public notification fields as JSON
	_, err = fmt.Fprintf(w, "id: %d\nevent: notification\ndata: %s\n\n", payload.ID, data)
	return err
}
