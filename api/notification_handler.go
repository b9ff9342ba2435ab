package api

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/m-im-ha/turbo-blog-practice/pagination"
	"github.com/m-im-ha/turbo-blog-practice/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type notificationHandler struct {
	responder     Responder
	logger        zerolog.Logger
	notifications *services.Notifications
}

func newNotificationHandler(notifications *services.Notifications) notificationHandler {
	logger := log.With().Str("handlerName", "notificationHandler").Logger()

	return notificationHandler{
		responder:     NewResponder(logger),
		logger:        logger,
		notifications: notifications,
	}
}

type feedMeta struct {
	Pagination  pagination.Meta `json:"pagination"`
	UnreadCount int64           `json:"unreadCount"`
	Filter      feedFilter      `json:"filter"`
}

type feedFilter struct {
	UnreadOnly bool `json:"unreadOnly"`
}

type unreadMeta struct {
	UnreadCount int64 `json:"unreadCount"`
}

// getNotifications lists the caller's notifications newest first
// @Summary List notifications
// @Tags Notifications
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size, at most 50"
// @Param unreadOnly query bool false "Only unread notifications"
// @Success 200 {object} envelope "Notifications with pagination and the unread count"
// @Router /api/blog/notifications [get]
func (h notificationHandler) getNotifications() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, _ := ctxGetPrincipal(r.Context())
		query := r.URL.Query()
		page := pagination.Notifications.Parse(query.Get("page"), query.Get("limit"))

		feed, err := h.notifications.List(r.Context(), principal.ID, page, query.Get("unreadOnly") == "true")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteMeta(w, "", feed.Notifications, feedMeta{
			Pagination:  feed.Pagination,
			UnreadCount: feed.UnreadCount,
			Filter:      feedFilter{UnreadOnly: feed.UnreadOnly},
		})
	}
}

type readState struct {
	ID   uuid.UUID `json:"id"`
	Read bool      `json:"read"`
}

func (h notificationHandler) markRead() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, _ := ctxGetPrincipal(r.Context())

		id, err := pathUUID(r, "id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		result, err := h.notifications.MarkRead(r.Context(), principal.ID, id)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if result.AlreadyRead {
			h.responder.WriteData(w, "Notification already marked as read", readState{ID: id, Read: true})
			return
		}
		h.responder.WriteMeta(w, "Notification marked as read", result.Notification, unreadMeta{UnreadCount: result.UnreadCount})
	}
}

func (h notificationHandler) markManyRead() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, _ := ctxGetPrincipal(r.Context())

		var req notificationIDsRequest
		if err := decodeAndValidate(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		ids, err := req.ids()
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		result, err := h.notifications.MarkManyRead(r.Context(), principal.ID, ids)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		message := fmt.Sprintf("%d notifications marked as read", result.NewlyMarked)
		if result.NewlyMarked == 0 {
			message = "All specified notifications are already marked as read"
		}
		h.responder.WriteData(w, message, result)
	}
}

func (h notificationHandler) markAllRead() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, _ := ctxGetPrincipal(r.Context())

		result, err := h.notifications.MarkAllRead(r.Context(), principal.ID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		message := fmt.Sprintf("All %d notifications marked as read", result.MarkedCount)
		if result.MarkedCount == 0 {
			message = "No unread notifications to mark"
		}
		h.responder.WriteData(w, message, result)
	}
}

func (h notificationHandler) deleteNotification() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, _ := ctxGetPrincipal(r.Context())

		id, err := pathUUID(r, "id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		result, err := h.notifications.Delete(r.Context(), principal.ID, id)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteData(w, "Notification deleted successfully", result)
	}
}

func (h notificationHandler) deleteManyNotifications() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, _ := ctxGetPrincipal(r.Context())

		var req notificationIDsRequest
		if err := decodeAndValidate(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		ids, err := req.ids()
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		result, err := h.notifications.DeleteMany(r.Context(), principal.ID, ids)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteData(w, fmt.Sprintf("%d notifications deleted successfully", result.DeletedCount), result)
	}
}

func (h notificationHandler) deleteAllNotifications() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, _ := ctxGetPrincipal(r.Context())

		result, err := h.notifications.DeleteAll(r.Context(), principal.ID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		message := fmt.Sprintf("All %d notifications deleted successfully", result.DeletedCount)
		if result.DeletedCount == 0 {
			message = "No notifications to delete"
		}
		h.responder.WriteData(w, message, result)
	}
}
