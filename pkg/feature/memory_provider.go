package feature

import (
	"context"
	"errors"
	"sync"
	"time"
)

// MemoryProvider keeps flags in a map. Useful for tests and single-process runs.
type MemoryProvider struct {
	flags map[string]Flag
	now   func() time.Time
	mu    sync.RWMutex
}

// NewMemoryProvider creates a provider seeded with the given flags.
func NewMemoryProvider(initial ...Flag) (*MemoryProvider, error) {
	m := &MemoryProvider{flags: make(map[string]Flag), now: time.Now}
	for _, f := range initial {
		if err := m.SetFlag(context.Background(), &f); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *MemoryProvider) IsEnabled(ctx context.Context, name string) (bool, error) {
	f, err := m.GetFlag(ctx, name)
	if err != nil {
		return false, err
	}
	return f.Enabled, nil
}

func (m *MemoryProvider) GetFlag(_ context.Context, name string) (*Flag, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	f, ok := m.flags[name]
	if !ok {
		return nil, ErrFlagNotFound
	}
	return &f, nil
}

func (m *MemoryProvider) SetFlag(_ context.Context, flag *Flag) error {
	if flag == nil {
		return errors.Join(ErrInvalidFlag, errors.New("flag cannot be nil"))
	}
	if flag.Name == "" {
		return errors.Join(ErrInvalidFlag, errors.New("flag name cannot be empty"))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	f := *flag
	if f.UpdatedAt.IsZero() {
		f.UpdatedAt = m.now()
	}
	m.flags[f.Name] = f
	return nil
}

func (m *MemoryProvider) DeleteFlag(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.flags[name]; !ok {
		return ErrFlagNotFound
	}
	delete(m.flags, name)
	return nil
}
