package subscription

import (
	"context"
	"errors"

	"github.com/Seeom6/Daraa-Hub-sub000/pkg/feature"
)

// FlagSubscriptions is the feature flag holding the system toggle. Its
// Value, when positive, overrides the expiry-warning horizon in days.
const FlagSubscriptions = "subscriptions"

// SystemSettings is read once per operation and passed down explicitly.
type SystemSettings struct {
	Enabled           bool
	ExpiryWarningDays int
}

// SettingsProvider returns the current settings, or ErrSettingsNotFound
// when none are stored. Missing settings mean the system is disabled.
type SettingsProvider interface {
	Settings(ctx context.Context) (SystemSettings, error)
}

// StaticSettings always returns itself.
type StaticSettings SystemSettings

func (s StaticSettings) Settings(context.Context) (SystemSettings, error) {
	return SystemSettings(s), nil
}

// FlagSettings reads the toggle from a feature flag provider.
type FlagSettings struct {
	provider feature.Provider
	flag     string
}

func NewFlagSettings(provider feature.Provider) *FlagSettings {
	if provider == nil {
		panic("subscription: feature provider is required")
	}
	return &FlagSettings{provider: provider, flag: FlagSubscriptions}
}

func (f *FlagSettings) Settings(ctx context.Context) (SystemSettings, error) {
	flag, err := f.provider.GetFlag(ctx, f.flag)
	if errors.Is(err, feature.ErrFlagNotFound) {
		return SystemSettings{}, ErrSettingsNotFound
	}
	if err != nil {
		return SystemSettings{}, err
	}
	return SystemSettings{Enabled: flag.Enabled, ExpiryWarningDays: flag.Value}, nil
}

// loadSettings resolves the settings for one operation.
func loadSettings(ctx context.Context, p SettingsProvider) (SystemSettings, error) {
	s, err := p.Settings(ctx)
	if errors.Is(err, ErrSettingsNotFound) {
		return SystemSettings{}, nil
	}
	return s, err
}
