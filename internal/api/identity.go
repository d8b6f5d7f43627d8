package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// UserIDHeader carries the authenticated caller.
const UserIDHeader = "X-User-ID"

type userKey struct{}

// userFromContext returns the caller set by requireUser.
func userFromContext(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(userKey{}).(uuid.UUID)
	return id
}

func (h *Handler) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(r.Header.Get(UserIDHeader))
		if raw == "" {
			h.render(w, r, JSONError(ErrMissingIdentity))
			return
		}
		id, err := uuid.Parse(raw)
		if err != nil || id == uuid.Nil {
			h.render(w, r, JSONError(ErrInvalidIdentity))
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey{}, id)))
	})
}
