package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrymomot/clubnotify/pkg/notifications"
	"github.com/dmitrymomot/clubnotify/pkg/stream"
)

// Response renders itself to an http.ResponseWriter.
type Response interface {
	Render(w http.ResponseWriter, r *http.Request) error
}

// JSONResponse is the envelope of every JSON answer.
type JSONResponse struct {
	Data  any            `json:"data,omitempty"`
	Meta  map[string]any `json:"meta,omitempty"`
	Error *ErrorDetail   `json:"error,omitempty"`
}

// ErrorDetail describes a failed request.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type jsonResponse struct {
	status int
	body   JSONResponse
}

func (j jsonResponse) Render(w http.ResponseWriter, _ *http.Request) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(j.status)
	return json.NewEncoder(w).Encode(j.body)
}

// JSONOption configures a JSON response.
type JSONOption func(*jsonResponse)

func WithStatus(status int) JSONOption {
	return func(r *jsonResponse) { r.status = status }
}

func WithMeta(meta map[string]any) JSONOption {
	return func(r *jsonResponse) { r.body.Meta = meta }
}

// JSON wraps v as the data of a 200 response.
func JSON(v any, opts ...JSONOption) Response {
	r := &jsonResponse{status: http.StatusOK, body: JSONResponse{Data: v}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// JSONError maps err to a status and error code.
func JSONError(err error) Response {
	status, code := classify(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = http.StatusText(status)
	}
	return &jsonResponse{
		status: status,
		body:   JSONResponse{Error: &ErrorDetail{Code: code, Message: msg}},
	}
}

type emptyResponse struct{ status int }

func (e emptyResponse) Render(w http.ResponseWriter, _ *http.Request) error {
	w.WriteHeader(e.status)
	return nil
}

// NoContent answers 204.
func NoContent() Response {
	return emptyResponse{status: http.StatusNoContent}
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrMissingIdentity), errors.Is(err, ErrInvalidIdentity):
		return http.StatusUnauthorized, "unauthenticated"
	case errors.Is(err, ErrInvalidID), errors.Is(err, ErrInvalidBody),
		errors.Is(err, ErrInvalidPageSize), errors.Is(err, notifications.ErrInvalidCursor):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, notifications.ErrValidation):
		return http.StatusUnprocessableEntity, "validation_error"
	case errors.Is(err, notifications.ErrFormat):
		return http.StatusUnprocessableEntity, "format_error"
	case errors.Is(err, notifications.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, stream.ErrConnectionFailed):
		return http.StatusServiceUnavailable, "connection_failed"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
