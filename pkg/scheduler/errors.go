package scheduler

import (
	"errors"
	"fmt"
)

var (
	ErrJobAlreadyRegistered   = errors.New("scheduler: job already registered")
	ErrJobNotFound            = errors.New("scheduler: job not found")
	ErrJobRunning             = errors.New("scheduler: job is already running")
	ErrInvalidJob             = errors.New("scheduler: job requires a name, a schedule and a function")
	ErrSchedulerNotConfigured = errors.New("scheduler: no jobs registered")
)

// PanicError is returned when a job panics.
type PanicError struct {
	Job   string
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("scheduler: job %s panicked: %v", e.Job, e.Value)
}
