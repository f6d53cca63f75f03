package feature

import (
	"context"
	"time"
)

// Flag is a named on/off switch with an optional integer setting attached
// (for example a horizon in days).
type Flag struct {
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Enabled     bool      `json:"enabled"`
	Value       int       `json:"value,omitempty"`
	UpdatedAt   time.Time `json:"updated_at,omitzero"`
}

// Provider is implemented by flag stores.
type Provider interface {
	// IsEnabled reports the flag state. A missing flag returns false and ErrFlagNotFound.
	IsEnabled(ctx context.Context, name string) (bool, error)

	// GetFlag returns the flag. A missing flag returns nil and ErrFlagNotFound.
	GetFlag(ctx context.Context, name string) (*Flag, error)

	// SetFlag creates or replaces a flag.
	SetFlag(ctx context.Context, flag *Flag) error

	// DeleteFlag removes a flag. A missing flag returns ErrFlagNotFound.
	DeleteFlag(ctx context.Context, name string) error
}
