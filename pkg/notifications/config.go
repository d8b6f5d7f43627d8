package notifications

import "time"

// Config holds the notification service and push sweeper settings.
type Config struct {
	TypesFile       string `env:"NOTIFICATION_TYPES_FILE"`                        // YAML catalog; empty uses DefaultTypes.
	DefaultPageSize int    `env:"NOTIFICATION_DEFAULT_PAGE_SIZE" envDefault:"20"` // Page size when the client sends none.
	MaxPageSize     int    `env:"NOTIFICATION_MAX_PAGE_SIZE" envDefault:"100"`    // Upper bound for page size.
	ReplayLimit     int    `env:"NOTIFICATION_REPLAY_LIMIT" envDefault:"500"`     // Max rows replayed on reconnect.

	SweepInterval  time.Duration `env:"PUSH_SWEEP_INTERVAL" envDefault:"1m"`    // How often unsent pushes are retried; 0 disables.
	SweepGrace     time.Duration `env:"PUSH_SWEEP_GRACE" envDefault:"2m"`       // Minimum row age before a retry.
	SweepBatchSize int           `env:"PUSH_SWEEP_BATCH_SIZE" envDefault:"100"` // Rows per sweep.
}
