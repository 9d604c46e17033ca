package blackout

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateFormat is the wire and storage format for blackout days.
const DateFormat = "2006-01-02"

// Domain errors
var (
	ErrEmptyStartDate = errors.New("start date cannot be zero")
	ErrEmptyEndDate   = errors.New("end date cannot be zero")
	ErrInvalidDates   = errors.New("start date must be before or equal to end date")
)

// Blackout is a day (or inclusive range of days) that cannot be requested.
// Label is operator-facing only, e.g. "Private hire".
type Blackout struct {
	ID        string
	Label     string
	StartDate time.Time
	EndDate   time.Time
}

// Validate checks if the Blackout has valid data.
// PRE: Blackout struct is populated
// POST: Returns nil if valid, error otherwise
func (b *Blackout) Validate() error {
	if b.StartDate.IsZero() {
		return ErrEmptyStartDate
	}
	if b.EndDate.IsZero() {
		return ErrEmptyEndDate
	}
	if b.StartDate.After(b.EndDate) {
		return ErrInvalidDates
	}
	return nil
}

// Contains returns true if the given calendar day falls within this blackout.
// Comparison is by calendar day in the date's own location.
// INVARIANT: Blackout fields are not mutated
func (b *Blackout) Contains(date time.Time) bool {
	d := Day(date)
	return !d.Before(Day(b.StartDate)) && !d.After(Day(b.EndDate))
}

// Days expands the blackout into its individual calendar days.
func (b *Blackout) Days() []time.Time {
	var days []time.Time
	for d := Day(b.StartDate); !d.After(Day(b.EndDate)); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD string into a Day.
func ParseDay(s string) (time.Time, error) {
	return time.Parse(DateFormat, s)
}

// ErrInvalidSeed is returned by ParseRange for text that is neither a day nor a range.
var ErrInvalidSeed = errors.New("blackout must be YYYY-MM-DD or YYYY-MM-DD..YYYY-MM-DD")

// RangeSeparator joins the two ends of a range in configuration and CLI arguments.
const RangeSeparator = ".."

// ParseRange parses "2026-12-24" or "2026-12-24..2026-12-26" into an unsaved Blackout.
// PRE: none
// POST: returned Blackout passes Validate, ID is empty
func ParseRange(s string) (Blackout, error) {
	startStr, endStr, isRange := strings.Cut(strings.TrimSpace(s), RangeSeparator)
	if !isRange {
		endStr = startStr
	}
	start, err := ParseDay(strings.TrimSpace(startStr))
	if err != nil {
		return Blackout{}, fmt.Errorf("%w: %q", ErrInvalidSeed, s)
	}
	end, err := ParseDay(strings.TrimSpace(endStr))
	if err != nil {
		return Blackout{}, fmt.Errorf("%w: %q", ErrInvalidSeed, s)
	}
	b := Blackout{StartDate: start, EndDate: end}
	if err := b.Validate(); err != nil {
		return Blackout{}, err
	}
	return b, nil
}

// String formats the blackout the way ParseRange reads it.
func (b Blackout) String() string {
	start, end := b.StartDate.Format(DateFormat), b.EndDate.Format(DateFormat)
	if start == end {
		return start
	}
	return start + RangeSeparator + end
}
