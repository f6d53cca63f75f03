package scheduler_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Seeom6/Daraa-Hub-sub000/pkg/scheduler"
)

func TestSchedules(t *testing.T) {
	t.Parallel()
	base := time.Date(2026, 3, 10, 14, 25, 0, 0, time.UTC)

	tests := []struct {
		name     string
		schedule scheduler.Schedule
		want     time.Time
		str      string
	}{
		{"interval", scheduler.EveryInterval(10 * time.Minute), base.Add(10 * time.Minute), "every 10m0s"},
		{"hourly", scheduler.Hourly(), time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC), "hourly at :00"},
		{"hourly at later minute", scheduler.HourlyAt(40), time.Date(2026, 3, 10, 14, 40, 0, 0, time.UTC), "hourly at :40"},
		{"daily later today", scheduler.DailyAt(18, 30), time.Date(2026, 3, 10, 18, 30, 0, 0, time.UTC), "daily at 18:30"},
		{"daily tomorrow", scheduler.DailyAt(9, 0), time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC), "daily at 09:00"},
		{"midnight", scheduler.Daily(), time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC), "daily at 00:00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.schedule.Next(base))
			assert.Equal(t, tt.str, tt.schedule.String())
		})
	}
}

func TestDailyAt_RespectsLocation(t *testing.T) {
	t.Parallel()
	loc := time.FixedZone("UTC+3", 3*60*60)
	from := time.Date(2026, 3, 10, 8, 0, 0, 0, loc)

	next := scheduler.DailyAt(9, 0).Next(from)
	assert.Equal(t, time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC), next.UTC())
}
