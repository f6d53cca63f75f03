package redis

import "time"

type Config struct {
	ConnectionURL  string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"` // Format: redis://:password@localhost:6379/0
	RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"5s"`
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"`
	LockPrefix     string        `env:"REDIS_LOCK_PREFIX" envDefault:"lock:"`     // LockPrefix namespaces keys written by Locker.
	LockRetryDelay time.Duration `env:"REDIS_LOCK_RETRY_DELAY" envDefault:"25ms"` // LockRetryDelay is the poll interval of a blocking Acquire.
}
