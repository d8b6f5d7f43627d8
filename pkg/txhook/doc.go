// Package txhook carries a list of post-commit callbacks in a context.Context.
//
// A transactor opens a Scope with Begin before running a unit of work. Code
// inside the unit calls AfterCommit to defer side effects (publishing events,
// pushing to live connections) until the data they describe is durable. The
// transactor calls Commit after a successful commit, or Discard after a
// rollback, so hooks never observe uncommitted state.
//
//	err := tx.WithTx(ctx, func(ctx context.Context) error {
//	    if err := store.Create(ctx, &n); err != nil {
//	        return err
//	    }
//	    txhook.AfterCommit(ctx, func(ctx context.Context) {
//	        bus.Publish(ctx, NotificationCreated{Notification: n})
//	    })
//	    return nil
//	})
//
// LocalTransactor gives the same semantics to stores without transactions.
package txhook
