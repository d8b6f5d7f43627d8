// Package requestid tags every HTTP request with a correlation id.
//
// Middleware keeps a client supplied X-Request-ID when it is at most 128
// characters of [a-zA-Z0-9_-], otherwise it assigns a UUIDv7. The id is
// echoed in the response header and stored in the request context, where
// LoggerExtractor picks it up for structured logs:
//
//	log := logger.New(logger.WithContextExtractors(requestid.LoggerExtractor()))
//	r := chi.NewRouter()
//	r.Use(requestid.Middleware)
package requestid
