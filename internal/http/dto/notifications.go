package dto

import (
	"tripnotify/internal/model"
	"tripnotify/internal/service/notify"
)

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type StatusResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreateNotificationRequest struct {
	RecipientID string             `json:"recipient_id"`
	Kind        string             `json:"kind"`
	Title       string             `json:"title"`
	Body        string             `json:"body"`
	Context     model.EventContext `json:"context"`
	WantsEmail  bool               `json:"wants_email"`
}

type ListNotificationsResponse struct {
	Items      []model.Notification `json:"items"`
	Pagination notify.Pagination    `json:"pagination"`
}

type UnreadCountResponse struct {
	Count int64 `json:"count"`
}

type MarkReadRequest struct {
	IDs []int64 `json:"ids"`
}

type UpdatedResponse struct {
	Updated int64 `json:"updated"`
}

type TripEventRequest struct {
	Kind         string   `json:"kind"`
	RecipientIDs []string `json:"recipient_ids"`
	ActorID      string   `json:"actor_id"`
	ActorName    string   `json:"actor_name"`
	TripID       int64    `json:"trip_id"`
	TripTitle    string   `json:"trip_title"`
	WantsEmail   bool     `json:"wants_email"`
}

type FanOutFailure struct {
	RecipientID string `json:"recipient_id"`
	Error       string `json:"error"`
}

type FanOutResponse struct {
	Succeeded []string        `json:"succeeded"`
	Failed    []FanOutFailure `json:"failed"`
}
