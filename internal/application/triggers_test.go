package application_test

import (
	"testing"
	"time"

	"github.com/promisetracker/linkwatch/internal/application"
	"github.com/promisetracker/linkwatch/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextDaily(t *testing.T) {
	loc := time.UTC
	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{"before today", time.Date(2026, 3, 4, 8, 0, 0, 0, loc), time.Date(2026, 3, 4, 9, 0, 0, 0, loc)},
		{"exactly at time", time.Date(2026, 3, 4, 9, 0, 0, 0, loc), time.Date(2026, 3, 5, 9, 0, 0, 0, loc)},
		{"after today", time.Date(2026, 3, 4, 22, 15, 0, 0, loc), time.Date(2026, 3, 5, 9, 0, 0, 0, loc)},
		{"month rollover", time.Date(2026, 3, 31, 10, 0, 0, 0, loc), time.Date(2026, 4, 1, 9, 0, 0, 0, loc)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, application.NextDaily(tt.now, 9, 0))
		})
	}
}

func TestNextWeekly(t *testing.T) {
	loc := time.UTC
	// 2026-03-02 is a Monday.
	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{"monday before", time.Date(2026, 3, 2, 7, 0, 0, 0, loc), time.Date(2026, 3, 2, 8, 0, 0, 0, loc)},
		{"monday after", time.Date(2026, 3, 2, 8, 0, 1, 0, loc), time.Date(2026, 3, 9, 8, 0, 0, 0, loc)},
		{"wednesday", time.Date(2026, 3, 4, 12, 0, 0, 0, loc), time.Date(2026, 3, 9, 8, 0, 0, 0, loc)},
		{"sunday night", time.Date(2026, 3, 8, 23, 59, 0, 0, loc), time.Date(2026, 3, 9, 8, 0, 0, 0, loc)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := application.NextWeekly(tt.now, time.Monday, 8, 0)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, time.Monday, got.Weekday())
		})
	}
}

func TestTriggersFor_Defaults(t *testing.T) {
	triggers, err := application.TriggersFor(domain.DefaultConfig().Schedule)
	require.NoError(t, err)
	require.Len(t, triggers, 3)

	assert.Equal(t, domain.RunStandard, triggers[0].Kind)
	assert.Equal(t, domain.RunStandard, triggers[1].Kind)
	assert.Equal(t, domain.RunComprehensive, triggers[2].Kind)

	now := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, now.Add(6*time.Hour), triggers[0].Next(now))
}

func TestTriggersFor_Disabled(t *testing.T) {
	triggers, err := application.TriggersFor(domain.ScheduleConfig{})
	require.NoError(t, err)
	assert.Empty(t, triggers)
}

func TestTriggersFor_InvalidClock(t *testing.T) {
	_, err := application.TriggersFor(domain.ScheduleConfig{DailyAt: "25:00"})
	assert.Error(t, err)
}
