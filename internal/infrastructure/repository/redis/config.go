package redis

import "time"

type Config struct {
	// URL is the Redis connection URL, e.g. redis://localhost:6379/0.
	URL string

	PoolSize     int
	MinIdleConns int

	// SessionTTL is refreshed on every save. Zero keeps sessions forever.
	SessionTTL time.Duration

	// LockTTL bounds how long a crashed holder can keep a session locked.
	// It must exceed the slowest lineup submission.
	LockTTL time.Duration

	// LockWait is how long Lock retries, every LockInterval, before giving up.
	LockWait     time.Duration
	LockInterval time.Duration
}

func DefaultConfig() Config {
	return Config{
		URL:          "redis://localhost:6379",
		PoolSize:     10,
		MinIdleConns: 2,
		SessionTTL:   2 * time.Hour,
		LockTTL:      30 * time.Second,
		LockWait:     20 * time.Second,
		LockInterval: 25 * time.Millisecond,
	}
}

func (c Config) withLockDefaults() Config {
	defaults := DefaultConfig()
	if c.LockTTL <= 0 {
		c.LockTTL = defaults.LockTTL
	}
	if c.LockWait <= 0 {
		c.LockWait = defaults.LockWait
	}
	if c.LockInterval <= 0 {
		c.LockInterval = defaults.LockInterval
	}
	return c
}
