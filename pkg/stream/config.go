package stream

import "time"

// Config holds live connection settings.
type Config struct {
	ConnectionTimeout time.Duration `env:"STREAM_CONNECTION_TIMEOUT" envDefault:"30m"` // Lifetime of one stream connection.
	HeartbeatInterval time.Duration `env:"STREAM_HEARTBEAT_INTERVAL" envDefault:"30s"` // Interval between keep-alive heartbeats.
	WriteTimeout      time.Duration `env:"STREAM_WRITE_TIMEOUT" envDefault:"10s"`      // Deadline for a single event write.
	PresenceTTL       time.Duration `env:"STREAM_PRESENCE_TTL" envDefault:"90s"`       // TTL of the cross-instance presence key.
	InstanceID        string        `env:"STREAM_INSTANCE_ID"`                         // Presence owner id; random when empty.
}
