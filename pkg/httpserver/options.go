package httpserver

import (
	"log/slog"
	"time"
)

// Option configures the HTTP server.
type Option func(*config)

// WithAddr sets the listen address. ":0" picks a free port, see Server.Addr.
func WithAddr(addr string) Option {
	if addr == "" {
		panic("WithAddr: addr cannot be empty")
	}
	return func(c *config) { c.addr = addr }
}

// Timeouts must be positive; zero values come from Config, not options.
func positive(name string, d time.Duration, set func(*config)) Option {
	if d <= 0 {
		panic(name + ": duration must be > 0")
	}
	return func(c *config) { set(c) }
}

func WithReadHeaderTimeout(d time.Duration) Option {
	return positive("WithReadHeaderTimeout", d, func(c *config) { c.readHeaderTimeout = d })
}

func WithReadTimeout(d time.Duration) Option {
	return positive("WithReadTimeout", d, func(c *config) { c.readTimeout = d })
}

// WithWriteTimeout also bounds stream responses, so leave it unset when the
// server carries SSE.
func WithWriteTimeout(d time.Duration) Option {
	return positive("WithWriteTimeout", d, func(c *config) { c.writeTimeout = d })
}

func WithIdleTimeout(d time.Duration) Option {
	return positive("WithIdleTimeout", d, func(c *config) { c.idleTimeout = d })
}

// WithShutdownTimeout bounds how long Shutdown waits for in-flight requests
// before closing connections.
func WithShutdownTimeout(d time.Duration) Option {
	return positive("WithShutdownTimeout", d, func(c *config) { c.shutdownTimeout = d })
}

// WithLogger sets the server logger. Nil keeps the discarding default.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithShutdownHook registers fn to run as soon as shutdown begins, before
// in-flight requests are awaited. Long-lived stream handlers use it to end
// their responses so the drain can finish.
func WithShutdownHook(fn func()) Option {
	if fn == nil {
		panic("WithShutdownHook: nil hook")
	}
	return func(c *config) { c.shutdownHooks = append(c.shutdownHooks, fn) }
}
