package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmitrymomot/clubnotify/pkg/notifications"
)

type createRequest struct {
	UserID     uuid.UUID `json:"user_id"`
	Category   string    `json:"category"`
	Args       []string  `json:"args"`
	TargetType string    `json:"target_type"`
	TargetID   string    `json:"target_id"`
}

type createResponse struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	PushSent  bool      `json:"push_sent"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *Handler) createNotification(r *http.Request) Response {
	var req createRequest
	if err := decodeBody(r, &req); err != nil {
		return h.fail(r, err)
	}

	args := make([]any, len(req.Args))
	for i, a := range req.Args {
		args[i] = a
	}
	var opts []notifications.CreateOption
	if req.TargetType != "" || req.TargetID != "" {
		opts = append(opts, notifications.WithTarget(req.TargetType, req.TargetID))
	}

	n, err := h.svc.Create(r.Context(), req.UserID, notifications.Category(req.Category), args, opts...)
	if err != nil {
		return h.fail(r, err)
	}
	return JSON(createResponse{
		ID:        n.ID,
		Content:   n.Content,
		PushSent:  n.PushSent,
		CreatedAt: n.CreatedAt,
	}, WithStatus(http.StatusCreated))
}

func (h *Handler) listNotifications(r *http.Request) Response {
	q := r.URL.Query()
	cursor, err := notifications.ParsePageCursor(q.Get("cursor"))
	if err != nil {
		return h.fail(r, err)
	}
	size := 0
	if raw := q.Get("size"); raw != "" {
		if size, err = strconv.Atoi(raw); err != nil || size < 0 {
			return h.fail(r, ErrInvalidPageSize)
		}
	}

	page, err := h.svc.ListPage(r.Context(), userFromContext(r.Context()), cursor, size)
	if err != nil {
		return h.fail(r, err)
	}
	return JSON(page)
}

func (h *Handler) getNotification(r *http.Request) Response {
	id, err := notificationID(r)
	if err != nil {
		return h.fail(r, err)
	}
	n, err := h.svc.Get(r.Context(), id, userFromContext(r.Context()))
	if err != nil {
		return h.fail(r, err)
	}
	return JSON(n)
}

func (h *Handler) unreadCount(r *http.Request) Response {
	count, err := h.svc.UnreadCount(r.Context(), userFromContext(r.Context()))
	if err != nil {
		return h.fail(r, err)
	}
	return JSON(map[string]int{"count": count})
}

func (h *Handler) markRead(r *http.Request) Response {
	id, err := notificationID(r)
	if err != nil {
		return h.fail(r, err)
	}
	if err := h.svc.MarkAsRead(r.Context(), id, userFromContext(r.Context())); err != nil {
		return h.fail(r, err)
	}
	return JSON(map[string]any{"id": id, "is_read": true})
}

func (h *Handler) markAllRead(r *http.Request) Response {
	updated, err := h.svc.MarkAllAsRead(r.Context(), userFromContext(r.Context()))
	if err != nil {
		return h.fail(r, err)
	}
	return JSON(map[string]int64{"updated": updated})
}

func (h *Handler) deleteNotification(r *http.Request) Response {
	id, err := notificationID(r)
	if err != nil {
		return h.fail(r, err)
	}
	if err := h.svc.Delete(r.Context(), userFromContext(r.Context()), id); err != nil {
		return h.fail(r, err)
	}
	return NoContent()
}

func notificationID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}

const maxBodyBytes = 64 << 10

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Join(ErrInvalidBody, err)
	}
	return nil
}
