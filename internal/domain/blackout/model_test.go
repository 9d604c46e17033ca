package blackout_test

import (
	"errors"
	"testing"
	"time"

	"bookingrelay/internal/domain/blackout"
)

// TestBlackout_Validate tests validation of Blackout.
func TestBlackout_Validate(t *testing.T) {
	start := time.Date(2026, 12, 24, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 12, 26, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		b       blackout.Blackout
		wantErr error
	}{
		{"valid range", blackout.Blackout{ID: "1", Label: "Christmas", StartDate: start, EndDate: end}, nil},
		{"single day no label", blackout.Blackout{ID: "2", StartDate: start, EndDate: start}, nil},
		{"zero start", blackout.Blackout{ID: "3", EndDate: end}, blackout.ErrEmptyStartDate},
		{"zero end", blackout.Blackout{ID: "4", StartDate: start}, blackout.ErrEmptyEndDate},
		{"start after end", blackout.Blackout{ID: "5", StartDate: end, EndDate: start}, blackout.ErrInvalidDates},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.b.Validate(); err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestBlackout_Contains tests day-granular containment.
func TestBlackout_Contains(t *testing.T) {
	b := blackout.Blackout{
		StartDate: time.Date(2026, 12, 24, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 12, 26, 0, 0, 0, 0, time.UTC),
	}
	nz := time.FixedZone("NZDT", 13*3600)

	tests := []struct {
		name string
		date time.Time
		want bool
	}{
		{"day before", time.Date(2026, 12, 23, 23, 59, 0, 0, time.UTC), false},
		{"first day", time.Date(2026, 12, 24, 0, 0, 0, 0, time.UTC), true},
		{"last day afternoon", time.Date(2026, 12, 26, 15, 0, 0, 0, time.UTC), true},
		{"day after", time.Date(2026, 12, 27, 0, 0, 0, 0, time.UTC), false},
		{"local calendar day", time.Date(2026, 12, 24, 8, 0, 0, 0, nz), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := b.Contains(tt.date); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.date, got, tt.want)
			}
		})
	}
}

// TestBlackout_Days tests range expansion.
func TestBlackout_Days(t *testing.T) {
	b := blackout.Blackout{
		StartDate: time.Date(2027, 2, 27, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2027, 3, 2, 0, 0, 0, 0, time.UTC),
	}
	days := b.Days()
	if len(days) != 4 {
		t.Fatalf("len(Days()) = %d, want 4", len(days))
	}
	if got := days[2].Format(blackout.DateFormat); got != "2027-03-01" {
		t.Errorf("days[2] = %s, want 2027-03-01", got)
	}
}

// TestParseRange covers single days, ranges and malformed input.
func TestParseRange(t *testing.T) {
	tests := []struct {
		in        string
		wantStart string
		wantEnd   string
		wantErr   error
	}{
		{"2026-11-10", "2026-11-10", "2026-11-10", nil},
		{" 2026-12-24..2026-12-26 ", "2026-12-24", "2026-12-26", nil},
		{"2026-12-26..2026-12-24", "", "", blackout.ErrInvalidDates},
		{"christmas", "", "", blackout.ErrInvalidSeed},
		{"2026-12-24..", "", "", blackout.ErrInvalidSeed},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			b, err := blackout.ParseRange(tt.in)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseRange(%q) err = %v, want %v", tt.in, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRange(%q) = %v", tt.in, err)
			}
			if got := b.StartDate.Format(blackout.DateFormat); got != tt.wantStart {
				t.Errorf("start = %s, want %s", got, tt.wantStart)
			}
			if got := b.EndDate.Format(blackout.DateFormat); got != tt.wantEnd {
				t.Errorf("end = %s, want %s", got, tt.wantEnd)
			}
			if back, _ := blackout.ParseRange(b.String()); !back.StartDate.Equal(b.StartDate) || !back.EndDate.Equal(b.EndDate) {
				t.Errorf("String() %q does not parse back", b.String())
			}
		})
	}
}
