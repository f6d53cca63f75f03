package scheduler

import (
	"log/slog"
	"time"
)

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithCheckInterval sets how often the scheduler looks for due jobs.
func WithCheckInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.interval = d
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithLocation evaluates schedules in loc. Defaults to UTC.
func WithLocation(loc *time.Location) Option {
	return func(s *Scheduler) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithLocker makes every run take a lock named after the job, so that only
// one replica executes a given run.
func WithLocker(l Locker) Option {
	return func(s *Scheduler) {
		s.locker = l
	}
}

// WithClock overrides time.Now. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

// JobOption configures a single job.
type JobOption func(*job)

// WithTimeout bounds a single run of the job.
func WithTimeout(d time.Duration) JobOption {
	return func(j *job) {
		if d > 0 {
			j.timeout = d
		}
	}
}

// WithRunOnStart makes the job run on the first check after Start instead
// of waiting for its first scheduled time.
func WithRunOnStart() JobOption {
	return func(j *job) {
		j.runOnStart = true
	}
}
