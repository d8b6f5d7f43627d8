// Package kafka publishes committed notifications to a Kafka topic.
//
// Producer implements notifications.Sink, so it plugs straight into a
// notifications.Exporter subscribed to the event bus. Messages are keyed by
// recipient so that a user's records land on one partition in creation
// order.
//
//	producer, err := kafka.NewProducer(cfg, kafka.WithLogger(log))
//	if err != nil {
//		return err
//	}
//	defer producer.Close()
//	notifications.NewExporter(producer).Register(bus)
package kafka
