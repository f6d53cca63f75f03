package subscription

import (
	"log/slog"
	"time"
)

// Option configures NewService and NewCatalog.
type Option func(*options)

type options struct {
	log       *slog.Logger
	now       func() time.Time
	loc       *time.Location
	publisher Publisher
	locker    Locker
	tx        TxRunner
	cfg       Config
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithLocation sets the timezone in which calendar days are counted.
// It takes precedence over Config.Timezone.
func WithLocation(loc *time.Location) Option {
	return func(o *options) {
		if loc != nil {
			o.loc = loc
		}
	}
}

func WithPublisher(p Publisher) Option {
	return func(o *options) {
		if p != nil {
			o.publisher = p
		}
	}
}

// WithLocker sets the lock used to serialise activation and quota
// consumption per store. Defaults to an in-process LocalLocker.
func WithLocker(l Locker) Option {
	return func(o *options) {
		if l != nil {
			o.locker = l
		}
	}
}

// WithTxRunner sets the transaction runner for multi-document writes.
// Defaults to running writes sequentially.
func WithTxRunner(tx TxRunner) Option {
	return func(o *options) {
		if tx != nil {
			o.tx = tx
		}
	}
}

func WithConfig(cfg Config) Option {
	return func(o *options) {
		o.cfg = cfg
	}
}

func newOptions(opts []Option) *options {
	o := &options{
		log:       slog.Default(),
		now:       time.Now,
		publisher: NopPublisher,
		tx:        noTx{},
		cfg:       DefaultConfig(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.locker == nil {
		o.locker = NewLocalLocker()
	}
	if o.loc == nil {
		loc, err := o.cfg.Location()
		if err != nil {
			o.log.Warn("invalid subscription timezone, falling back to UTC", slog.String("timezone", o.cfg.Timezone))
			loc = time.UTC
		}
		o.loc = loc
	}
	if o.cfg.SweepConcurrency < 1 {
		o.cfg.SweepConcurrency = 1
	}
	if o.cfg.ExpiryWarningDays < 1 {
		o.cfg.ExpiryWarningDays = 3
	}
	if o.cfg.LockTTL <= 0 {
		o.cfg.LockTTL = 10 * time.Second
	}
	return o
}

type clock struct {
	now func() time.Time
	loc *time.Location
}

func (c clock) Now() time.Time {
	return c.now()
}

// Day returns the ledger key of t in the reference timezone.
func (c clock) Day(t time.Time) string {
	return t.In(c.loc).Format(DayLayout)
}
