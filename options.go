package md5vault

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// MemoryPath opens a store that lives only as long as the process.
	MemoryPath = ":memory:"

	// DefaultMaxUsernameLength is the longest username accepted by default,
	// counted in characters.
	DefaultMaxUsernameLength = 32
)

// storeConfig holds configuration for the store.
type storeConfig struct {
	path              string
	logger            *zap.Logger
	registerer        prometheus.Registerer
	loginLimit        rate.Limit
	loginBurst        int
	maxUsernameLength int
	clock             func() time.Time
}

func defaultStoreConfig() *storeConfig {
	return &storeConfig{
		path:              MemoryPath,
		logger:            zap.NewNop(),
		loginLimit:        rate.Inf,
		maxUsernameLength: DefaultMaxUsernameLength,
		clock:             time.Now,
	}
}

// Option configures the store.
type Option func(*storeConfig)

// WithPath sets the database file. [MemoryPath] keeps everything in memory.
func WithPath(path string) Option {
	return func(c *storeConfig) {
		c.path = path
	}
}

// WithLogger sets the logger. A nil logger disables logging.
func WithLogger(logger *zap.Logger) Option {
	return func(c *storeConfig) {
		if logger == nil {
			logger = zap.NewNop()
		}
		c.logger = logger
	}
}

// WithRegisterer registers the store's metrics with reg. Without it the
// metrics are still collected but not exported.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(c *storeConfig) {
		c.registerer = reg
	}
}

// WithLoginRateLimit limits Validate calls to r per second with the given
// burst. Calls over the limit fail with ErrRateLimited instead of waiting.
func WithLoginRateLimit(r rate.Limit, burst int) Option {
	return func(c *storeConfig) {
		c.loginLimit = r
		c.loginBurst = burst
	}
}

// WithMaxUsernameLength sets the longest accepted username in characters.
// Zero or a negative value removes the limit.
func WithMaxUsernameLength(n int) Option {
	return func(c *storeConfig) {
		c.maxUsernameLength = n
	}
}

// WithClock sets the time source used for export timestamps and the login
// rate limiter.
func WithClock(now func() time.Time) Option {
	return func(c *storeConfig) {
		if now != nil {
			c.clock = now
		}
	}
}
