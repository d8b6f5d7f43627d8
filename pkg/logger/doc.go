// Package logger builds the service's *slog.Logger and holds the attribute
// helpers every component logs with, so keys such as user_id,
// notification_id and component stay consistent across packages.
//
//	log := logger.FromConfig(cfg.Log,
//		logger.WithContextExtractors(requestid.LoggerExtractor()),
//	)
//	logger.SetAsDefault(log)
//
//	log.LogAttrs(ctx, slog.LevelInfo, "notification created",
//		logger.NotificationID(n.ID),
//		logger.UserID(n.UserID),
//		logger.Category(n.Category),
//	)
//
// Context extractors run for every record, which is how the request id set
// by the requestid middleware reaches log lines written deep inside a
// request.
package logger
