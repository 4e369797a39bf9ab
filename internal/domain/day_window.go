package domain

import (
	"fmt"
	"time"
)

// DayWindow is an inclusive [Start, End] range covering one UTC calendar day.
type DayWindow struct {
	Start time.Time
	End   time.Time
}

// DayWindowFor returns the UTC day window containing the given instant,
// spanning midnight through 23:59:59.999999.
func DayWindowFor(at time.Time) DayWindow {
	at = at.UTC()
	start := time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, time.UTC)
	return DayWindow{
		Start: start,
		End:   start.Add(24*time.Hour - time.Microsecond),
	}
}

// ParseDayWindow turns an ISO YYYY-MM-DD string into its UTC day window.
func ParseDayWindow(date string) (DayWindow, error) {
	day, err := time.ParseInLocation("2006-01-02", date, time.UTC)
	if err != nil {
		return DayWindow{}, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return DayWindowFor(day), nil
}

// Contains reports whether the instant falls inside the window.
func (w DayWindow) Contains(at time.Time) bool {
	at = at.UTC()
	return !at.Before(w.Start) && !at.After(w.End)
}

// Day returns the window's calendar day anchor (UTC midnight).
func (w DayWindow) Day() time.Time {
	return w.Start
}
