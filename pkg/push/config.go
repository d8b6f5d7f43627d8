package push

import "time"

// Provider names accepted in Config.Provider.
const (
	ProviderLog = "log"
	ProviderSNS = "sns"
)

// Config selects and configures the push gateway.
type Config struct {
	Provider    string        `env:"PUSH_PROVIDER" envDefault:"log"`     // "log" or "sns".
	Region      string        `env:"PUSH_AWS_REGION"`                    // AWS region of the SNS platform applications.
	AccessKeyID string        `env:"PUSH_AWS_ACCESS_KEY_ID"`             // Static credentials; default chain when empty.
	SecretKey   string        `env:"PUSH_AWS_SECRET_ACCESS_KEY"`         // Static credentials; default chain when empty.
	Endpoint    string        `env:"PUSH_AWS_ENDPOINT"`                  // Custom endpoint, e.g. localstack.
	SendTimeout time.Duration `env:"PUSH_SEND_TIMEOUT" envDefault:"10s"` // Timeout for one gateway call.
}
