package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Validator is implemented by configuration structs that check their own
// values after parsing.
type Validator interface {
	Validate() error
}

var (
	mu       sync.Mutex
	cache    = map[reflect.Type]any{}
	dotenvMu sync.Once
)

// LoadEnv reads one or more .env files into the process environment.
// Files listed later override earlier ones. Variables already set in the
// environment are overwritten, so call LoadEnv before Load.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	if err := godotenv.Overload(paths...); err != nil {
		return errors.Join(ErrLoadingEnvFile, err)
	}
	return nil
}

// Load parses environment variables into v using `env` struct tags.
// A default .env file in the working directory is read once per process if present.
// Each configuration type is parsed once; later calls get the cached copy.
// If *T implements Validator, Validate runs before the value is cached.
//
//	type Config struct {
//		Timezone string `env:"SUBSCRIPTION_TIMEZONE" envDefault:"UTC"`
//	}
//
//	var cfg Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
func Load[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}
	dotenvMu.Do(func() {
		// the default .env file is optional
		_ = godotenv.Load()
	})

	key := reflect.TypeOf(v).Elem()

	mu.Lock()
	defer mu.Unlock()

	if cached, ok := cache[key]; ok {
		*v = cached.(T)
		return nil
	}

	var parsed T
	if err := env.Parse(&parsed); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	if val, ok := any(&parsed).(Validator); ok {
		if err := val.Validate(); err != nil {
			return errors.Join(ErrInvalidConfig, err)
		}
	}

	cache[key] = parsed
	*v = parsed
	return nil
}

// MustLoad works like Load but panics if configuration loading fails.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
}

// Reset drops all cached configurations. Intended for tests.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	cache = map[reflect.Type]any{}
}
