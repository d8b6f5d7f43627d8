package txhook

import (
	"context"
	"sync"
)

// Hook runs after the enclosing unit of work has committed.
type Hook func(ctx context.Context)

// Transactor runs fn as one atomic unit of work. Hooks registered with
// AfterCommit inside fn run only if the unit commits.
type Transactor interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type scopeKey struct{}

// Scope collects hooks for a single unit of work.
type Scope struct {
	mu       sync.Mutex
	hooks    []Hook
	finished bool
}

// Begin opens a commit scope. If ctx already carries one, it is reused and
// owner is false: only the outermost owner may Commit or Discard.
func Begin(ctx context.Context) (_ context.Context, scope *Scope, owner bool) {
	if s, ok := ctx.Value(scopeKey{}).(*Scope); ok && s != nil {
		return ctx, s, false
	}
	s := &Scope{}
	return context.WithValue(ctx, scopeKey{}, s), s, true
}

// InScope reports whether ctx carries an open commit scope.
func InScope(ctx context.Context) bool {
	s, ok := ctx.Value(scopeKey{}).(*Scope)
	if !ok || s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.finished
}

// AfterCommit registers fn on the scope carried by ctx. Without an open
// scope there is nothing to wait for and fn runs immediately.
func AfterCommit(ctx context.Context, fn Hook) {
	if fn == nil {
		return
	}
	if s, ok := ctx.Value(scopeKey{}).(*Scope); ok && s != nil {
		s.mu.Lock()
		if !s.finished {
			s.hooks = append(s.hooks, fn)
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()
	}
	fn(ctx)
}

// Commit closes the scope and runs the collected hooks in registration order.
// Subsequent calls are no-ops.
func (s *Scope) Commit(ctx context.Context) {
	s.mu.Lock()
	if s.finished {
		s.mu.Unlock()
		return
	}
	s.finished = true
	hooks := s.hooks
	s.hooks = nil
	s.mu.Unlock()

	for _, h := range hooks {
		h(ctx)
	}
}

// Discard closes the scope and drops the collected hooks.
func (s *Scope) Discard() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finished = true
	s.hooks = nil
}

// Len returns the number of pending hooks.
func (s *Scope) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.hooks)
}

// Detach returns a context that keeps ctx's values, ignores its cancellation
// and drops its commit scope, so AfterCommit calls made with it run directly.
func Detach(ctx context.Context) context.Context {
	return context.WithValue(context.WithoutCancel(ctx), scopeKey{}, (*Scope)(nil))
}

// LocalTransactor provides commit-scope semantics for stores without real
// transactions (in-memory storage, tests). The unit commits when fn returns nil.
type LocalTransactor struct{}

func (LocalTransactor) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	txCtx, scope, owner := Begin(ctx)
	if err := fn(txCtx); err != nil {
		if owner {
			scope.Discard()
		}
		return err
	}
	if owner {
		scope.Commit(Detach(ctx))
	}
	return nil
}
