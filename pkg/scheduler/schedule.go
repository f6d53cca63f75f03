package scheduler

import (
	"fmt"
	"time"
)

// Schedule determines when a job should run next.
type Schedule interface {
	Next(from time.Time) time.Time
	String() string
}

type intervalSchedule struct {
	every time.Duration
}

func (s intervalSchedule) Next(from time.Time) time.Time {
	return from.Add(s.every)
}

func (s intervalSchedule) String() string {
	return fmt.Sprintf("every %v", s.every)
}

// hourlySchedule runs every hour at the given minute.
type hourlySchedule struct {
	minute int
}

func (s hourlySchedule) Next(from time.Time) time.Time {
	next := time.Date(from.Year(), from.Month(), from.Day(), from.Hour(), s.minute, 0, 0, from.Location())
	if !next.After(from) {
		next = next.Add(time.Hour)
	}
	return next
}

func (s hourlySchedule) String() string {
	return fmt.Sprintf("hourly at :%02d", s.minute)
}

// dailySchedule runs once a day at hour:minute in the location of from.
type dailySchedule struct {
	hour   int
	minute int
}

func (s dailySchedule) Next(from time.Time) time.Time {
	next := time.Date(from.Year(), from.Month(), from.Day(), s.hour, s.minute, 0, 0, from.Location())
	if !next.After(from) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

func (s dailySchedule) String() string {
	return fmt.Sprintf("daily at %02d:%02d", s.hour, s.minute)
}

// EveryInterval runs at fixed intervals measured from the previous run.
func EveryInterval(d time.Duration) Schedule {
	return intervalSchedule{every: d}
}

// Hourly runs at the top of every hour.
func Hourly() Schedule {
	return hourlySchedule{}
}

// HourlyAt runs every hour at the given minute (0-59).
func HourlyAt(minute int) Schedule {
	return hourlySchedule{minute: minute % 60}
}

// DailyAt runs once a day at hour:minute.
func DailyAt(hour, minute int) Schedule {
	return dailySchedule{hour: hour % 24, minute: minute % 60}
}

// Daily runs once a day at midnight.
func Daily() Schedule {
	return dailySchedule{}
}
