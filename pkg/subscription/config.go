package subscription

import (
	"errors"
	"fmt"
	"time"
)

// Config holds engine tunables, loaded from the environment.
type Config struct {
	Timezone           string        `env:"SUBSCRIPTION_TIMEZONE" envDefault:"UTC"`
	ExpiryWarningDays  int           `env:"SUBSCRIPTION_EXPIRY_WARNING_DAYS" envDefault:"3"`
	LockTTL            time.Duration `env:"SUBSCRIPTION_LOCK_TTL" envDefault:"10s"`
	SweepConcurrency   int           `env:"SUBSCRIPTION_SWEEP_CONCURRENCY" envDefault:"8"`
	ExpirationInterval time.Duration `env:"SUBSCRIPTION_EXPIRATION_INTERVAL" envDefault:"1h"`
	WarningHour        int           `env:"SUBSCRIPTION_WARNING_HOUR" envDefault:"9"`
	ReconcileHour      int           `env:"SUBSCRIPTION_RECONCILE_HOUR" envDefault:"3"`
	PlansFile          string        `env:"SUBSCRIPTION_PLANS_FILE"`
}

// DefaultConfig mirrors the envDefault tags.
func DefaultConfig() Config {
	return Config{
		Timezone:           "UTC",
		ExpiryWarningDays:  3,
		LockTTL:            10 * time.Second,
		SweepConcurrency:   8,
		ExpirationInterval: time.Hour,
		WarningHour:        9,
		ReconcileHour:      3,
	}
}

func (c Config) Validate() error {
	var errs []error
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	if c.ExpiryWarningDays < 1 {
		errs = append(errs, errors.New("expiry warning days must be at least 1"))
	}
	if c.LockTTL <= 0 {
		errs = append(errs, errors.New("lock ttl must be positive"))
	}
	if c.SweepConcurrency < 1 {
		errs = append(errs, errors.New("sweep concurrency must be at least 1"))
	}
	if c.ExpirationInterval <= 0 {
		errs = append(errs, errors.New("expiration interval must be positive"))
	}
	if c.WarningHour < 0 || c.WarningHour > 23 || c.ReconcileHour < 0 || c.ReconcileHour > 23 {
		errs = append(errs, errors.New("schedule hours must be within 0-23"))
	}
	return errors.Join(errs...)
}

// Location resolves Timezone, which decides where calendar days start.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
