// Package api exposes the notification service over HTTP.
//
// Routes live under /v1 and speak JSON in a {data, meta, error} envelope,
// except the event stream, which is served as server-sent events. Callers are
// identified by the X-User-ID header, set by the gateway in front of the
// service after authentication.
package api
