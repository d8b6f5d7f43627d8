// Package httpserver runs the service's HTTP listener with graceful shutdown
// and health probes.
//
//	srv := httpserver.NewFromConfig(cfg,
//		httpserver.WithLogger(log),
//		httpserver.WithShutdownHook(streams.Close),
//	)
//	if err := srv.Run(ctx, router); err != nil {
//		return err
//	}
//
// Run returns when ctx is cancelled, SIGINT or SIGTERM arrives, or the
// listener fails. Shutdown hooks run as soon as shutdown begins, which lets
// the stream registry end open event streams instead of holding the drain
// until the timeout.
//
// LivenessHandler and ReadinessHandler serve JSON health reports. Readiness
// answers 503 when any named Check fails.
package httpserver
