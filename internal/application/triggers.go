package application

import (
	"fmt"
	"time"

	"github.com/promisetracker/linkwatch/internal/domain"
)

// Trigger is one recurring schedule. Next returns the first firing time
// strictly after the given instant.
type Trigger struct {
	Name string
	Kind domain.RunKind
	Next func(after time.Time) time.Time
}

// IntervalTrigger fires every d.
func IntervalTrigger(d time.Duration) Trigger {
	return Trigger{
		Name: fmt.Sprintf("every %s", d),
		Kind: domain.RunStandard,
		Next: func(after time.Time) time.Time { return after.Add(d) },
	}
}

// DailyTrigger fires once a day at hour:minute local time.
func DailyTrigger(hour, minute int) Trigger {
	return Trigger{
		Name: fmt.Sprintf("daily at %02d:%02d", hour, minute),
		Kind: domain.RunStandard,
		Next: func(after time.Time) time.Time { return NextDaily(after, hour, minute) },
	}
}

// WeeklyTrigger fires once a week on day at hour:minute and requests a
// comprehensive run.
func WeeklyTrigger(day time.Weekday, hour, minute int) Trigger {
	return Trigger{
		Name: fmt.Sprintf("%s at %02d:%02d", day, hour, minute),
		Kind: domain.RunComprehensive,
		Next: func(after time.Time) time.Time { return NextWeekly(after, day, hour, minute) },
	}
}

// NextDaily returns the next hour:minute strictly after t, in t's location.
func NextDaily(t time.Time, hour, minute int) time.Time {
	next := time.Date(t.Year(), t.Month(), t.Day(), hour, minute, 0, 0, t.Location())
	if !next.After(t) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// NextWeekly returns the next day at hour:minute strictly after t.
func NextWeekly(t time.Time, day time.Weekday, hour, minute int) time.Time {
	next := time.Date(t.Year(), t.Month(), t.Day(), hour, minute, 0, 0, t.Location())
	next = next.AddDate(0, 0, (int(day)-int(next.Weekday())+7)%7)
	if !next.After(t) {
		next = next.AddDate(0, 0, 7)
	}
	return next
}

// TriggersFor builds the triggers a schedule config enables. A zero
// interval or an empty clock disables the corresponding trigger.
func TriggersFor(cfg domain.ScheduleConfig) ([]Trigger, error) {
	var triggers []Trigger
	if cfg.Interval > 0 {
		triggers = append(triggers, IntervalTrigger(cfg.Interval))
	}
	if cfg.DailyAt != "" {
		h, m, err := domain.ParseClock(cfg.DailyAt)
		if err != nil {
			return nil, fmt.Errorf("daily trigger: %w", err)
		}
		triggers = append(triggers, DailyTrigger(h, m))
	}
	if cfg.WeeklyDay != "" && cfg.WeeklyAt != "" {
		day, err := domain.ParseWeekday(cfg.WeeklyDay)
		if err != nil {
			return nil, fmt.Errorf("weekly trigger: %w", err)
		}
		h, m, err := domain.ParseClock(cfg.WeeklyAt)
		if err != nil {
			return nil, fmt.Errorf("weekly trigger: %w", err)
		}
		triggers = append(triggers, WeeklyTrigger(day, h, m))
	}
	return triggers, nil
}
