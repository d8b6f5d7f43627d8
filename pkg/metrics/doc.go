// Package metrics exposes Prometheus instrumentation for notification
// delivery.
//
// A Collector owns its own registry and plugs into the rest of the system
// through narrow interfaces: it records delivery outcomes for the
// dispatcher, tracks live stream connections for the stream registry, and
// counts created notifications per category from the event bus.
//
//	m := metrics.New()
//	m.Register(bus)
//	dispatcher := notifications.NewDispatcher(reg, store, streams, pusher,
//		notifications.WithDeliveryRecorder(m))
//	streams := stream.NewRegistry(svc, stream.WithObserver(m))
//	router.Handle("/metrics", m.Handler())
package metrics
