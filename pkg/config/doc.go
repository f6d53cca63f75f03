// Package config loads typed configuration from environment variables.
//
// It wraps github.com/joho/godotenv (for .env files) and
// github.com/caarlos0/env/v11 (for struct tag parsing). Every configuration
// type is parsed once and cached for the lifetime of the process; Reset
// clears the cache in tests.
//
// Structs that implement Validator are validated after parsing:
//
//	type Config struct {
//		WarningDays int `env:"SUBSCRIPTION_EXPIRY_WARNING_DAYS" envDefault:"3"`
//	}
//
//	func (c Config) Validate() error {
//		if c.WarningDays < 1 {
//			return errors.New("warning days must be positive")
//		}
//		return nil
//	}
package config
