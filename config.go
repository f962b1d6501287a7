package assembly

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// UnknownJobPolicy controls what the Consumer does with a message whose job
// attribute names neither an active nor a retired job.
type UnknownJobPolicy string

const (
	// UnknownJobRedeliver leaves the message unacknowledged so the channel's
	// redelivery timeout applies. This is the default: a message for a job
	// this process has not yet registered should not be silently lost.
	UnknownJobRedeliver UnknownJobPolicy = "redeliver"

	// UnknownJobDrop acknowledges and discards the message. Appropriate when
	// a single assembling process owns every job on the channel, so an
	// unknown job ID can only mean garbage.
	UnknownJobDrop UnknownJobPolicy = "drop"
)

// Config tunes the Consumer's polling loop.
//
// All duration fields accept standard Go duration strings like "20s" in YAML.
type Config struct {
	// ReceiveWait is how long one Fetch blocks waiting for messages before
	// the loop comes around again (long-poll pattern).
	// Default: 20 seconds.
	ReceiveWait time.Duration `yaml:"receiveWait"`

	// ReceiveBatchSize is the maximum number of messages per Fetch.
	// Default: 10.
	ReceiveBatchSize int `yaml:"receiveBatchSize"`

	// RetryBackoff is the fixed sleep after a transient channel error before
	// the loop retries. Transient errors are retried indefinitely.
	// Default: 30 seconds.
	RetryBackoff time.Duration `yaml:"retryBackoff"`

	// UnknownJobPolicy selects handling of messages for unknown jobs.
	// Default: UnknownJobRedeliver.
	UnknownJobPolicy UnknownJobPolicy `yaml:"unknownJobPolicy"`
}

// SetDefaults fills unset fields with production defaults.
func (c *Config) SetDefaults() {
	if c.ReceiveWait == 0 {
		c.ReceiveWait = 20 * time.Second
	}
	if c.ReceiveBatchSize == 0 {
		c.ReceiveBatchSize = 10
	}
	if c.RetryBackoff == 0 {
		c.RetryBackoff = 30 * time.Second
	}
	if c.UnknownJobPolicy == "" {
		c.UnknownJobPolicy = UnknownJobRedeliver
	}
}

// Validate rejects nonsensical settings. Call after SetDefaults.
func (c *Config) Validate() error {
	if c.ReceiveWait <= 0 {
		return fmt.Errorf("%w: receiveWait must be positive, got %v", ErrInvalidConfig, c.ReceiveWait)
	}
	if c.ReceiveBatchSize <= 0 {
		return fmt.Errorf("%w: receiveBatchSize must be positive, got %d", ErrInvalidConfig, c.ReceiveBatchSize)
	}
	if c.RetryBackoff <= 0 {
		return fmt.Errorf("%w: retryBackoff must be positive, got %v", ErrInvalidConfig, c.RetryBackoff)
	}
	switch c.UnknownJobPolicy {
	case UnknownJobRedeliver, UnknownJobDrop:
	default:
		return fmt.Errorf("%w: unknown job policy %q", ErrInvalidConfig, c.UnknownJobPolicy)
	}

	return nil
}

// LoadConfig reads a YAML config file, applies defaults, and validates.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: parsing %q: %v", ErrInvalidConfig, path, err)
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
