package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/starfederation/datastar-go/datastar"
)

// Conn is a live, server-to-client event channel for one user.
type Conn interface {
	// Send writes one event. It must be safe for concurrent use.
	Send(ctx context.Context, e Event) error
	// Close ends the connection; calling it more than once is fine.
	Close() error
	// Done is closed when the connection has ended.
	Done() <-chan struct{}
}

// SSEConn is a Conn writing server-sent events through the datastar SSE generator.
type SSEConn struct {
	mu           sync.Mutex
	sse          *datastar.ServerSentEventGenerator
	rc           *http.ResponseController
	writeTimeout time.Duration
	done         chan struct{}
	closeOnce    sync.Once
}

// SSEOption configures an SSEConn.
type SSEOption func(*SSEConn)

// WithWriteTimeout bounds each event write. Zero disables the deadline.
func WithWriteTimeout(d time.Duration) SSEOption {
	return func(c *SSEConn) { c.writeTimeout = d }
}

// NewSSEConn starts an SSE response on w. The connection ends when Close is
// called or the request context is done.
func NewSSEConn(w http.ResponseWriter, r *http.Request, opts ...SSEOption) *SSEConn {
	c := &SSEConn{
		sse:  datastar.NewSSE(w, r),
		rc:   http.NewResponseController(w),
		done: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	go func() {
		select {
		case <-r.Context().Done():
			_ = c.Close()
		case <-c.done:
		}
	}()
	return c
}

func (c *SSEConn) Send(ctx context.Context, e Event) error {
	select {
	case <-c.done:
		return ErrConnectionClosed
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	data, err := json.Marshal(e.Data)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", e.Name, err)
	}

	var opts []datastar.SSEEventOption
	if e.ID != "" {
		opts = append(opts, datastar.WithSSEEventId(e.ID))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Close may have won the lock while this send was waiting.
	select {
	case <-c.done:
		return ErrConnectionClosed
	default:
	}

	if c.writeTimeout > 0 {
		// not every ResponseWriter supports deadlines
		if err := c.rc.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil && !errors.Is(err, http.ErrNotSupported) {
			return err
		}
	}
	return c.sse.Send(datastar.EventType(e.Name), []string{string(data)}, opts...)
}

// Close waits for an in-flight write, bounded by the write timeout, so that
// once Done fires nothing touches the ResponseWriter again.
func (c *SSEConn) Close() error {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		close(c.done)
	})
	return nil
}

func (c *SSEConn) Done() <-chan struct{} {
	return c.done
}
