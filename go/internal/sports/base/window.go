package base

import (
	"fmt"
	"time"
)

// Window is a month/day range that repeats every year. A window whose end
// precedes its start wraps the new year (Nov 1 - Mar 20).
type Window struct {
	StartMonth time.Month `yaml:"start_month"`
	StartDay   int        `yaml:"start_day"`
	EndMonth   time.Month `yaml:"end_month"`
	EndDay     int        `yaml:"end_day"`
}

func (w Window) Validate() error {
	if w.StartMonth < time.January || w.StartMonth > time.December ||
		w.EndMonth < time.January || w.EndMonth > time.December {
		return fmt.Errorf("offseason window month out of range")
	}
	if w.StartDay < 1 || w.StartDay > 31 || w.EndDay < 1 || w.EndDay > 31 {
		return fmt.Errorf("offseason window day out of range")
	}
	return nil
}

// Contains reports whether t's calendar day is inside the window, inclusive.
func (w Window) Contains(t time.Time) bool {
	day := monthDay(t.Month(), t.Day())
	start := monthDay(w.StartMonth, w.StartDay)
	end := monthDay(w.EndMonth, w.EndDay)
	if start <= end {
		return day >= start && day <= end
	}
	return day >= start || day <= end
}

func (w Window) String() string {
	return fmt.Sprintf("%s %d - %s %d", w.StartMonth, w.StartDay, w.EndMonth, w.EndDay)
}

func monthDay(m time.Month, d int) int {
	return int(m)*100 + d
}
