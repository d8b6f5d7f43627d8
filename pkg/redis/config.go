package redis

import "time"

// Config describes the Redis connection used for cross-instance presence.
// An empty ConnectionURL means presence stays local to the process.
type Config struct {
	ConnectionURL  string        `env:"REDIS_URL"`                              // redis://:password@localhost:6379/0
	PoolSize       int           `env:"REDIS_POOL_SIZE" envDefault:"10"`        // Maximum socket connections.
	RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`    // Connection attempts before giving up.
	RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"2s"`   // Pause between attempts.
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"15s"` // Upper bound for the whole connect phase.
	PingTimeout    time.Duration `env:"REDIS_PING_TIMEOUT" envDefault:"2s"`     // Healthcheck ping budget.
}

// Enabled reports whether a connection URL is configured.
func (c Config) Enabled() bool {
	return c.ConnectionURL != ""
}
