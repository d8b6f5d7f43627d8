package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dmitrymomot/clubnotify/pkg/logger"
	"github.com/dmitrymomot/clubnotify/pkg/stream"
)

// stream holds an SSE response open until the client leaves, the connection
// is superseded or times out, or the server shuts down.
func (h *Handler) stream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := userFromContext(ctx)

	lastEventID := r.Header.Get("Last-Event-ID")
	if lastEventID == "" {
		lastEventID = r.URL.Query().Get("last_event_id")
	}

	conn := stream.NewSSEConn(w, r, stream.WithWriteTimeout(h.streamWriteTimeout))
	if err := h.streams.Connect(ctx, userID, conn, lastEventID); err != nil {
		// headers are already out; the client sees the stream end
		h.logger.LogAttrs(ctx, slog.LevelWarn, "stream connect failed",
			logger.UserID(userID),
			logger.Error(err),
		)
		return
	}

	select {
	case <-conn.Done():
	case <-ctx.Done():
	}
	h.streams.Disconnect(userID, conn)
}

func (h *Handler) streamStatus(r *http.Request) Response {
	return JSON(h.streams.Status(r.Context(), userFromContext(r.Context())))
}

type broadcastRequest struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

func (h *Handler) broadcast(r *http.Request) Response {
	var req broadcastRequest
	if err := decodeBody(r, &req); err != nil {
		return h.fail(r, err)
	}
	req.Event = strings.TrimSpace(req.Event)
	if req.Event == "" {
		return h.fail(r, errors.Join(ErrInvalidBody, errors.New("event is required")))
	}
	return JSON(h.streams.Broadcast(r.Context(), req.Event, req.Data))
}
