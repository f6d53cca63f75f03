package scheduler

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Seeom6/Daraa-Hub-sub000/pkg/correlation"
	"github.com/Seeom6/Daraa-Hub-sub000/pkg/logger"
)

// JobFunc is the work executed on every run.
type JobFunc func(ctx context.Context) error

// Locker provides cross-process exclusion for job runs.
type Locker interface {
	TryAcquire(ctx context.Context, key string, ttl time.Duration) (release func(), acquired bool, err error)
}

type job struct {
	name       string
	schedule   Schedule
	fn         JobFunc
	timeout    time.Duration
	runOnStart bool
	nextRun    time.Time
	running    atomic.Bool
}

// JobInfo describes a registered job.
type JobInfo struct {
	Name     string    `json:"name"`
	Schedule string    `json:"schedule"`
	NextRun  time.Time `json:"nextRun"`
}

// Scheduler runs registered jobs in process according to their schedules.
// A job never overlaps with itself: a run that comes due while the previous
// one is still executing is skipped.
type Scheduler struct {
	jobs     map[string]*job
	mu       sync.Mutex
	wg       sync.WaitGroup
	interval time.Duration
	logger   *slog.Logger
	locker   Locker
	loc      *time.Location
	now      func() time.Time
}

func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		jobs:     make(map[string]*job),
		interval: 30 * time.Second,
		logger:   slog.Default(),
		loc:      time.UTC,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddJob registers fn under name.
func (s *Scheduler) AddJob(name string, schedule Schedule, fn JobFunc, opts ...JobOption) error {
	if name == "" || schedule == nil || fn == nil {
		return ErrInvalidJob
	}

	j := &job{name: name, schedule: schedule, fn: fn, timeout: time.Hour}
	for _, opt := range opts {
		opt(j)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[name]; exists {
		return ErrJobAlreadyRegistered
	}
	s.jobs[name] = j

	s.logger.Info("registered scheduled job",
		logger.Job(name),
		slog.String("schedule", schedule.String()))
	return nil
}

// Start checks for due jobs every check interval until ctx is done, then
// waits for running jobs to return.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	count := len(s.jobs)
	s.mu.Unlock()
	if count == 0 {
		return ErrSchedulerNotConfigured
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler shutting down")
			s.wg.Wait()
			return nil
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// Run adapts Start to errgroup.Group.Go.
func (s *Scheduler) Run(ctx context.Context) func() error {
	return func() error {
		return s.Start(ctx)
	}
}

// RunNow executes the named job synchronously, outside its schedule.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.Lock()
	j, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return ErrJobNotFound
	}
	if !j.running.CompareAndSwap(false, true) {
		return ErrJobRunning
	}
	defer j.running.Store(false)
	return s.execute(ctx, j)
}

// Jobs lists registered jobs ordered by name.
func (s *Scheduler) Jobs() []JobInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]JobInfo, 0, len(s.jobs))
	for _, j := range s.jobs {
		out = append(out, JobInfo{Name: j.name, Schedule: j.schedule.String(), NextRun: j.nextRun})
	}
	slices.SortFunc(out, func(a, b JobInfo) int { return cmp.Compare(a.Name, b.Name) })
	return out
}

func (s *Scheduler) tick(ctx context.Context) {
	now := s.now().In(s.loc)

	s.mu.Lock()
	due := make([]*job, 0, len(s.jobs))
	for _, j := range s.jobs {
		if j.nextRun.IsZero() {
			if !j.runOnStart {
				j.nextRun = j.schedule.Next(now)
				continue
			}
			j.nextRun = now
		}
		if now.Before(j.nextRun) {
			continue
		}
		j.nextRun = j.schedule.Next(now)
		due = append(due, j)
	}
	s.mu.Unlock()

	for _, j := range due {
		if !j.running.CompareAndSwap(false, true) {
			s.logger.Warn("skipping scheduled job, previous run still in progress", logger.Job(j.name))
			continue
		}
		s.wg.Add(1)
		go func(j *job) {
			defer s.wg.Done()
			defer j.running.Store(false)
			_ = s.execute(ctx, j)
		}(j)
	}
}

func (s *Scheduler) execute(ctx context.Context, j *job) error {
	ctx, cancel := context.WithTimeout(correlation.Ensure(ctx), j.timeout)
	defer cancel()

	if s.locker != nil {
		release, ok, err := s.locker.TryAcquire(ctx, "scheduler:"+j.name, j.timeout)
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to acquire job lock", logger.Job(j.name), logger.Error(err))
			return err
		}
		if !ok {
			s.logger.DebugContext(ctx, "job is running on another instance", logger.Job(j.name))
			return nil
		}
		defer release()
	}

	start := s.now()
	err := s.safeRun(ctx, j)
	if err != nil {
		s.logger.ErrorContext(ctx, "scheduled job failed",
			logger.Job(j.name),
			logger.Duration(s.now().Sub(start)),
			logger.Error(err))
		return err
	}
	s.logger.InfoContext(ctx, "scheduled job finished",
		logger.Job(j.name),
		logger.Duration(s.now().Sub(start)))
	return nil
}

func (s *Scheduler) safeRun(ctx context.Context, j *job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Job: j.name, Value: r}
		}
	}()
	return j.fn(ctx)
}
