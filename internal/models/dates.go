package models

import (
	"fmt"
	"time"

	"github.com/kastellane/COVID19-Vaccination-Model/internal/constants"
)

// DateLayout is the calendar date format accepted on input and used on output.
const DateLayout = "2006-01-02"

const secondsPerDay = 24 * 60 * 60

// DateRange is an inclusive span of calendar days.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewDateRange normalizes both ends to UTC midnight.
func NewDateRange(start, end time.Time) DateRange {
	return DateRange{Start: Day(start), End: Day(end)}
}

// ParseDateRange parses two YYYY-MM-DD dates.
func ParseDateRange(start, end string) (DateRange, error) {
	s, err := time.Parse(DateLayout, start)
	if err != nil {
		return DateRange{}, fmt.Errorf("parsing start date: %w", err)
	}
	e, err := time.Parse(DateLayout, end)
	if err != nil {
		return DateRange{}, fmt.Errorf("parsing end date: %w", err)
	}
	return NewDateRange(s, e), nil
}

// Day truncates t to its calendar day in UTC, keeping the wall-clock date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Validate rejects ranges whose end precedes their start or that span more
// than constants.MaxHorizonDays.
func (r DateRange) Validate() error {
	if r.Start.IsZero() || r.End.IsZero() {
		return fmt.Errorf("date range must have both start and end")
	}
	if Day(r.End).Before(Day(r.Start)) {
		return fmt.Errorf("end date %s is before start date %s",
			r.End.Format(DateLayout), r.Start.Format(DateLayout))
	}
	if n := r.Days(); n > constants.MaxHorizonDays {
		return fmt.Errorf("date range spans %d days, more than the maximum of %d",
			n, constants.MaxHorizonDays)
	}
	return nil
}

// Days is the inclusive number of days in the range, i.e. the simulation horizon.
func (r DateRange) Days() int {
	s, e := Day(r.Start), Day(r.End)
	if e.Before(s) {
		return 0
	}
	return int((e.Unix()-s.Unix())/secondsPerDay) + 1
}

// Dates returns the daily date index of the range.
func (r DateRange) Dates() []time.Time {
	return r.Every(1)
}

// Weekly returns the 7-day grid anchored at Start, never past End.
func (r DateRange) Weekly() []time.Time {
	return r.Every(7)
}

// Every returns the dates Start, Start+step, ... up to and including End.
func (r DateRange) Every(step int) []time.Time {
	if step <= 0 {
		step = 1
	}
	n := r.Days()
	dates := make([]time.Time, 0, (n+step-1)/step)
	s := Day(r.Start)
	for i := 0; i < n; i += step {
		dates = append(dates, s.AddDate(0, 0, i))
	}
	return dates
}
