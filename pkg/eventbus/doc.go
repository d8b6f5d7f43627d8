// Package eventbus provides an in-process, commit-scoped publish/subscribe bus.
//
// Subscribers register typed handlers with Subscribe. Publish hands the event
// to txhook.AfterCommit, so when it is called inside a transactor's unit of
// work the handlers fire only after the unit commits, and never if it rolls
// back. Handler errors and panics are logged and do not reach the publisher.
//
//	bus := eventbus.New(eventbus.WithLogger(log))
//	eventbus.Subscribe(bus, func(ctx context.Context, e notifications.NotificationCreated) error {
//	    return dispatcher.HandleCreated(ctx, e)
//	})
//	defer bus.Close()
package eventbus
