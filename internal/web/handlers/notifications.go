package handlers

import (
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/kozaktomas/adproof/internal/constants"
	"github.com/kozaktomas/adproof/internal/database"
	"github.com/kozaktomas/adproof/internal/web/middleware"
)

// NotificationsHandler serves the acting user's in-app notifications.
type NotificationsHandler struct {
	log zerolog.Logger
}

// NewNotificationsHandler creates a new notifications handler
func NewNotificationsHandler(log zerolog.Logger) *NotificationsHandler {
	return &NotificationsHandler{log: log}
}

// userStore resolves the acting user and the store; both are required.
func (h *NotificationsHandler) userStore(w http.ResponseWriter, r *http.Request) (string, database.NotificationStore, bool) {
	userID := middleware.GetUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusBadRequest, middleware.UserIDHeader+" header is required")
		return "", nil, false
	}
	store, err := database.GetNotificationStore(r.Context())
	if err != nil {
		respondStoreError(w, h.log, err)
		return "", nil, false
	}
	return userID, store, true
}

// List returns the newest notifications, ?limit= capped at MaxHandlerPageSize
func (h *NotificationsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := constants.DefaultNotificationLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, constants.MaxHandlerPageSize)
	}

	userID, store, ok := h.userStore(w, r)
	if !ok {
		return
	}
	list, err := store.ListNotifications(r.Context(), userID, limit)
	if err != nil {
		respondInternal(w, h.log, "failed to list notifications", err)
		return
	}
	if list == nil {
		list = []database.Notification{}
	}
	respondJSON(w, http.StatusOK, list)
}

// UnreadCount returns the number of unread notifications
func (h *NotificationsHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	userID, store, ok := h.userStore(w, r)
	if !ok {
		return
	}
	count, err := store.UnreadCount(r.Context(), userID)
	if err != nil {
		respondInternal(w, h.log, "failed to count notifications", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"count": count})
}

// MarkRead marks one notification as read
func (h *NotificationsHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID, store, ok := h.userStore(w, r)
	if !ok {
		return
	}
	if err := store.MarkRead(r.Context(), userID, urlID(r)); err != nil {
		if isNotFound(err) {
			respondError(w, http.StatusNotFound, "notification not found")
			return
		}
		respondInternal(w, h.log, "failed to mark notification read", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// MarkAllRead marks every notification of the user as read
func (h *NotificationsHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID, store, ok := h.userStore(w, r)
	if !ok {
		return
	}
	if err := store.MarkAllRead(r.Context(), userID); err != nil {
		respondInternal(w, h.log, "failed to mark notifications read", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}
