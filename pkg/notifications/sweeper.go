package notifications

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrymomot/clubnotify/pkg/logger"
)

// PushSweeper periodically retries push delivery for rows whose push_sent
// flag is still unset after a grace period.
type PushSweeper struct {
	dispatcher *Dispatcher
	interval   time.Duration
	grace      time.Duration
	batchSize  int
	now        func() time.Time
	logger     *slog.Logger
}

// SweeperOption configures a PushSweeper.
type SweeperOption func(*PushSweeper)

// WithSweeperLogger sets the logger for the PushSweeper.
func WithSweeperLogger(l *slog.Logger) SweeperOption {
	return func(s *PushSweeper) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSweeperClock overrides the time source.
func WithSweeperClock(now func() time.Time) SweeperOption {
	return func(s *PushSweeper) {
		if now != nil {
			s.now = now
		}
	}
}

// NewPushSweeper creates a sweeper that retries through dispatcher's push channel.
func NewPushSweeper(dispatcher *Dispatcher, cfg Config, opts ...SweeperOption) *PushSweeper {
	s := &PushSweeper{
		dispatcher: dispatcher,
		interval:   cfg.SweepInterval,
		grace:      cfg.SweepGrace,
		batchSize:  cfg.SweepBatchSize,
		now:        time.Now,
		logger:     slog.Default(),
	}
	if s.batchSize <= 0 {
		s.batchSize = 100
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run sweeps every interval until ctx is cancelled. A zero interval disables it.
func (s *PushSweeper) Run(ctx context.Context) error {
	if s.interval <= 0 || s.dispatcher.push == nil {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil {
				s.logger.LogAttrs(ctx, slog.LevelError, "push sweep failed",
					logger.Component("push_sweeper"),
					logger.Error(err),
				)
			}
		}
	}
}

// Sweep makes one retry pass and returns the number of rows delivered.
func (s *PushSweeper) Sweep(ctx context.Context) (int, error) {
	categories := s.dispatcher.registry.PushCategories()
	if len(categories) == 0 || s.dispatcher.push == nil {
		return 0, nil
	}

	rows, err := s.dispatcher.storage.ListPushPending(ctx, categories, s.now().Add(-s.grace), s.batchSize)
	if err != nil {
		return 0, err
	}

	delivered := 0
	for _, n := range rows {
		if ctx.Err() != nil {
			break
		}
		if err := s.dispatcher.deliverPush(ctx, n); err == nil {
			delivered++
		}
	}

	if len(rows) > 0 {
		s.logger.LogAttrs(ctx, slog.LevelInfo, "push sweep finished",
			logger.Component("push_sweeper"),
			logger.Count(delivered),
			slog.Int("pending", len(rows)),
		)
	}
	return delivered, nil
}
