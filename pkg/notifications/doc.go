// Package notifications implements the notification core: the type catalog,
// the persisted notification record, the service that creates, lists and
// mutates notifications, and the dispatcher that fans committed notifications
// out to live streams and the push gateway.
//
// # Catalog
//
// A Registry maps each Category to a NotificationType holding a fmt-style
// template and a DeliveryPolicy (PUSH_ONLY, STREAM_ONLY or BOTH). It is built
// once, optionally from a YAML file, and is read-only afterwards:
//
//	types, err := notifications.LoadRegistryFile("configs/notification_types.yaml")
//	types, err = typeStorage.SyncTypes(ctx, types) // assigns stable IDs
//	registry, err := notifications.NewRegistry(types...)
//
// # Creating and reading
//
//	svc := notifications.NewService(storage, registry, users,
//	    notifications.WithTransactor(pg.NewTransactor(pool)),
//	    notifications.WithPublisher(bus),
//	)
//	n, err := svc.Create(ctx, userID, notifications.CategoryLike, []any{"Alice"})
//
// Create fails with ErrUserNotFound, ErrTypeNotFound, ErrFormat or
// ErrValidation before anything is written. NotificationCreated is published
// through the commit hook, so subscribers never see rolled back rows.
//
// ListPage pages by id, newest first. Reading the first page marks all of the
// user's notifications as read. MarkAsRead and Delete report
// ErrNotificationNotFound both for missing rows and for rows of other users.
//
// # Delivery
//
// Dispatcher subscribes to the event bus. Stream and push delivery are
// independent; push success sets push_sent, failures leave it for PushSweeper.
//
// # Stream event ids
//
// Every stream event carries EventID(n) = CATEGORY_ID_UNIXMILLI. ParseEventID
// turns it back into a Cursor for replay after reconnecting; an id that does
// not parse yields ErrInvalidCursor and callers skip replay.
//
// # Storage
//
// MemoryStorage serves tests and development. PostgresStorage uses pgx and
// joins the transaction carried in the context by pg.Transactor.
package notifications
