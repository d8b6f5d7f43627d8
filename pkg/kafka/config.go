package kafka

import "time"

// Config holds the export producer settings. An empty broker list disables
// the export.
type Config struct {
	Brokers      []string      `env:"KAFKA_BROKERS" envSeparator:","`
	Topic        string        `env:"KAFKA_NOTIFICATIONS_TOPIC" envDefault:"notifications.created"`
	BatchTimeout time.Duration `env:"KAFKA_BATCH_TIMEOUT" envDefault:"50ms"`
	WriteTimeout time.Duration `env:"KAFKA_WRITE_TIMEOUT" envDefault:"10s"`
	AutoCreate   bool          `env:"KAFKA_AUTO_CREATE_TOPIC" envDefault:"true"`
}

// Enabled reports whether any broker is configured.
func (c Config) Enabled() bool {
	return len(c.Brokers) > 0
}
