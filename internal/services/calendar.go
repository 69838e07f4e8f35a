package services

import (
	"time"

	"github.com/SyedHasanCronosPMC/StudySync/internal/platform/clock"
)

// Calendar resolves ledger dates. Every service shares one so "today" agrees
// across check-ins, sessions and summaries.
type Calendar struct {
	Clock clock.Clock
	Loc   *time.Location
}

func NewCalendar(clk clock.Clock, loc *time.Location) Calendar {
	if clk == nil {
		clk = clock.Real()
	}
	if loc == nil {
		loc = time.Local
	}
	return Calendar{Clock: clk, Loc: loc}
}

func (c Calendar) Now() time.Time {
	if c.Clock == nil {
		return time.Now()
	}
	return c.Clock.Now()
}

func (c Calendar) Today() string { return c.DayOf(c.Now()) }

func (c Calendar) DayOf(t time.Time) string { return clock.Day(t, c.Loc) }

// ShiftDate moves a YYYY-MM-DD date by n calendar days.
func (c Calendar) ShiftDate(date string, n int) string {
	t, err := time.ParseInLocation(clock.DateFormat, date, time.UTC)
	if err != nil {
		return date
	}
	return t.AddDate(0, 0, n).Format(clock.DateFormat)
}
