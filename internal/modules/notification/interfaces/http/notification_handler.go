package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/adityaraina/pulsefeed/internal/gateway/middleware"
	"github.com/adityaraina/pulsefeed/internal/modules/notification/application"
	"github.com/adityaraina/pulsefeed/internal/modules/notification/domain"
	"github.com/adityaraina/pulsefeed/internal/modules/notification/infrastructure/websocket"
	"github.com/adityaraina/pulsefeed/internal/shared/utils"
)

type NotificationHandler struct {
	service *application.NotificationService
	hub     *websocket.Hub
}

func NewNotificationHandler(service *application.NotificationService, hub *websocket.Hub) *NotificationHandler {
	return &NotificationHandler{service: service, hub: hub}
}

// Subscribe upgrades the request to a websocket stream for the authenticated
// user. Unauthenticated requests are rejected before the hub is touched.
func (h *NotificationHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.ContextKeyUserID).(uuid.UUID)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	websocket.ServeWs(h.hub, w, r, userID)
}

// Stats reports aggregate connection diagnostics. No per-user data is exposed.
func (h *NotificationHandler) Stats(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"connections": h.hub.ConnectionCount(),
		"users":       h.hub.ConnectedUserCount(),
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.ContextKeyUserID).(uuid.UUID)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	limit := 20
	offset := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 {
			limit = v
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if v, err := strconv.Atoi(o); err == nil && v >= 0 {
			offset = v
		}
	}

	notifications, err := h.service.List(r.Context(), userID, limit, offset)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "failed to fetch notifications", nil)
		return
	}
	if notifications == nil {
		notifications = []domain.Notification{}
	}

	utils.WriteJSON(w, http.StatusOK, map[string]any{"data": notifications})
}

func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.ContextKeyUserID).(uuid.UUID)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	count, err := h.service.UnreadCount(r.Context(), userID)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "failed to get unread count", nil)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]int{"count": count})
}

func (h *NotificationHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.ContextKeyUserID).(uuid.UUID)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	notificationID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid notification id", nil)
		return
	}

	notification, err := h.service.MarkAsRead(r.Context(), notificationID, userID)
	if err != nil {
		h.writeMutationError(w, err, "failed to mark notification as read")
		return
	}

	utils.WriteJSON(w, http.StatusOK, notification)
}

func (h *NotificationHandler) MarkAllAsRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.ContextKeyUserID).(uuid.UUID)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	updated, err := h.service.MarkAllAsRead(r.Context(), userID)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "failed to mark all notifications as read", nil)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]int64{"updated": updated})
}

func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.ContextKeyUserID).(uuid.UUID)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	notificationID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid notification id", nil)
		return
	}

	notification, err := h.service.Delete(r.Context(), notificationID, userID)
	if err != nil {
		h.writeMutationError(w, err, "failed to delete notification")
		return
	}

	utils.WriteJSON(w, http.StatusOK, notification)
}

func (h *NotificationHandler) writeMutationError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, domain.ErrNotificationNotFound):
		utils.WriteError(w, http.StatusNotFound, "notification not found", nil)
	case errors.Is(err, domain.ErrNotOwner):
		utils.WriteError(w, http.StatusForbidden, "forbidden", nil)
	default:
		utils.WriteError(w, http.StatusInternalServerError, fallback, nil)
	}
}
