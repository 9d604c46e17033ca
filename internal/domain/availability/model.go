package availability

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"bookingrelay/internal/domain/blackout"
)

// Domain errors returned by CheckRange. The check is advisory: the server never
// rejects a booking request because of its dates.
var (
	ErrRangeReversed = errors.New("range end is before range start")
	ErrOutOfWindow   = errors.New("date is outside the bookable window")
	ErrLocked        = errors.New("date is unavailable")
	ErrRangeTooShort = errors.New("range is shorter than the minimum stay")
)

// Policy is the operator-configured shape of the bookable window.
type Policy struct {
	HorizonMonths int // last selectable day is today + HorizonMonths
	MinLeadDays   int // first selectable day is today + MinLeadDays
	MinRangeDays  int // minimum inclusive length of a selected range
}

// DefaultPolicy mirrors the landing page defaults: three months ahead, four-day minimum.
func DefaultPolicy() Policy {
	return Policy{HorizonMonths: 3, MinLeadDays: 0, MinRangeDays: 4}
}

// Constraint is the immutable set of selectable dates for one page load.
type Constraint struct {
	today     time.Time
	minDate   time.Time
	maxDate   time.Time
	minRange  int
	blackouts []blackout.Blackout
}

// NewConstraint computes the selectable window from today's date and the policy.
// PRE: p.HorizonMonths >= 0, p.MinLeadDays >= 0
// POST: MinDate <= MaxDate unless the lead time exceeds the horizon
func NewConstraint(today time.Time, p Policy, blackouts []blackout.Blackout) Constraint {
	day := blackout.Day(today)
	minRange := p.MinRangeDays
	if minRange < 1 {
		minRange = 1
	}
	bs := make([]blackout.Blackout, len(blackouts))
	copy(bs, blackouts)
	return Constraint{
		today:     day,
		minDate:   day.AddDate(0, 0, p.MinLeadDays),
		maxDate:   day.AddDate(0, p.HorizonMonths, 0),
		minRange:  minRange,
		blackouts: bs,
	}
}

// Today returns the calendar day the constraint was computed for.
func (c Constraint) Today() time.Time { return c.today }

// MinDate returns the earliest selectable day.
func (c Constraint) MinDate() time.Time { return c.minDate }

// MaxDate returns the latest selectable day.
func (c Constraint) MaxDate() time.Time { return c.maxDate }

// MinRangeDays returns the minimum inclusive range length.
func (c Constraint) MinRangeDays() int { return c.minRange }

// IsLocked reports whether a calendar day must not be selectable.
func (c Constraint) IsLocked(date time.Time) bool {
	d := blackout.Day(date)
	if d.Before(c.minDate) || d.After(c.maxDate) {
		return true
	}
	for i := range c.blackouts {
		if c.blackouts[i].Contains(d) {
			return true
		}
	}
	return false
}

// CheckRange reports whether [start, end] is a selection the picker would accept.
// Both endpoints must be selectable and the inclusive length at least MinRangeDays.
func (c Constraint) CheckRange(start, end time.Time) error {
	s, e := blackout.Day(start), blackout.Day(end)
	if e.Before(s) {
		return ErrRangeReversed
	}
	for _, d := range []time.Time{s, e} {
		if d.Before(c.minDate) || d.After(c.maxDate) {
			return fmt.Errorf("%s: %w", d.Format(blackout.DateFormat), ErrOutOfWindow)
		}
		if c.IsLocked(d) {
			return fmt.Errorf("%s: %w", d.Format(blackout.DateFormat), ErrLocked)
		}
	}
	days := int(e.Sub(s).Hours()/24) + 1
	if days < c.minRange {
		return fmt.Errorf("%d of %d days: %w", days, c.minRange, ErrRangeTooShort)
	}
	return nil
}

// LockedDates lists blacked-out days that fall inside the selectable window, sorted and unique.
func (c Constraint) LockedDates() []time.Time {
	seen := make(map[time.Time]bool)
	var out []time.Time
	for i := range c.blackouts {
		for _, d := range c.blackouts[i].Days() {
			if d.Before(c.minDate) || d.After(c.maxDate) || seen[d] {
				continue
			}
			seen[d] = true
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// PickerConfig is the JSON shape the widget consumes to configure its date picker.
type PickerConfig struct {
	MinDate     string   `json:"minDate"`
	MaxDate     string   `json:"maxDate"`
	MinDays     int      `json:"minDays"`
	LockedDates []string `json:"lockedDates"`
}

// PickerConfig projects the constraint into its wire form.
func (c Constraint) PickerConfig() PickerConfig {
	locked := c.LockedDates()
	cfg := PickerConfig{
		MinDate:     c.minDate.Format(blackout.DateFormat),
		MaxDate:     c.maxDate.Format(blackout.DateFormat),
		MinDays:     c.minRange,
		LockedDates: make([]string, 0, len(locked)),
	}
	for _, d := range locked {
		cfg.LockedDates = append(cfg.LockedDates, d.Format(blackout.DateFormat))
	}
	return cfg
}

// FromPickerConfig rebuilds a constraint on the client from its wire form.
// Today is taken to be the config's MinDate.
func FromPickerConfig(cfg PickerConfig) (Constraint, error) {
	minDate, err := blackout.ParseDay(cfg.MinDate)
	if err != nil {
		return Constraint{}, fmt.Errorf("minDate: %w", err)
	}
	maxDate, err := blackout.ParseDay(cfg.MaxDate)
	if err != nil {
		return Constraint{}, fmt.Errorf("maxDate: %w", err)
	}
	var bs []blackout.Blackout
	for _, s := range cfg.LockedDates {
		d, err := blackout.ParseDay(s)
		if err != nil {
			return Constraint{}, fmt.Errorf("lockedDates: %w", err)
		}
		bs = append(bs, blackout.Blackout{StartDate: d, EndDate: d})
	}
	minRange := cfg.MinDays
	if minRange < 1 {
		minRange = 1
	}
	return Constraint{
		today:     minDate,
		minDate:   minDate,
		maxDate:   maxDate,
		minRange:  minRange,
		blackouts: bs,
	}, nil
}
