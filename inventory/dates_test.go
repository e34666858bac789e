package inventory_test

import (
	"testing"
	"time"

	"github.com/LazyCPU-org/lpg-backend-sub002/inventory"
)

func date(y int, m time.Month, d int) inventory.Date {
	return inventory.NewDate(y, m, d)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		input   string
		want    inventory.Date
		wantErr bool
	}{
		{"2025-03-10", date(2025, time.March, 10), false},
		{"2025-12-31", date(2025, time.December, 31), false},
		{"2025-3-10", inventory.Date{}, true},
		{"10/03/2025", inventory.Date{}, true},
		{"2025-03-10T00:00:00Z", inventory.Date{}, true},
		{"", inventory.Date{}, true},
	}

	for _, tt := range tests {
		got, err := inventory.ParseDate(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseDate(%q): expected error, got %v", tt.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseDate(%q): unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDate(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestDateStringRoundTrip(t *testing.T) {
	d := date(2025, time.June, 7)
	if d.String() != "2025-06-07" {
		t.Fatalf("String() = %q, want 2025-06-07", d.String())
	}
	parsed, err := inventory.ParseDate(d.String())
	if err != nil {
		t.Fatal(err)
	}
	if parsed != d {
		t.Fatalf("round trip changed date: %v != %v", parsed, d)
	}
}

func TestNextBusinessDate(t *testing.T) {
	// 2025-03-07 is a Friday.
	friday := date(2025, time.March, 7)
	saturday := date(2025, time.March, 8)

	tests := []struct {
		name         string
		base         inventory.Date
		skipWeekends bool
		want         inventory.Date
	}{
		{"weekday plus one", date(2025, time.March, 10), false, date(2025, time.March, 11)},
		{"friday without skip lands on saturday", friday, false, saturday},
		{"friday with skip lands on monday", friday, true, date(2025, time.March, 10)},
		{"saturday with skip lands on monday", saturday, true, date(2025, time.March, 10)},
		{"month boundary", date(2025, time.March, 31), false, date(2025, time.April, 1)},
		{"year boundary", date(2025, time.December, 31), false, date(2026, time.January, 1)},
	}

	for _, tt := range tests {
		if got := inventory.NextBusinessDate(tt.base, tt.skipWeekends); got != tt.want {
			t.Errorf("%s: NextBusinessDate(%v, %v) = %v, want %v",
				tt.name, tt.base, tt.skipWeekends, got, tt.want)
		}
	}
}

func TestDaysBetween(t *testing.T) {
	a := date(2025, time.March, 10)
	b := date(2025, time.March, 15)

	if got := inventory.DaysBetween(a, b); got != 5 {
		t.Errorf("DaysBetween forward = %d, want 5", got)
	}
	// Absolute distance, order independent.
	if got := inventory.DaysBetween(b, a); got != 5 {
		t.Errorf("DaysBetween reverse = %d, want 5", got)
	}
	if got := inventory.DaysBetween(a, a); got != 0 {
		t.Errorf("DaysBetween same day = %d, want 0", got)
	}
}

func TestNextDateFrom(t *testing.T) {
	tests := []struct {
		name           string
		assignmentDate inventory.Date
		today          inventory.Date
		skipWeekends   bool
		want           inventory.Date
		wantStale      bool
	}{
		{
			name:           "same day rolls to tomorrow",
			assignmentDate: date(2025, time.March, 10),
			today:          date(2025, time.March, 10),
			want:           date(2025, time.March, 11),
		},
		{
			name:           "one day behind is not stale",
			assignmentDate: date(2025, time.March, 10),
			today:          date(2025, time.March, 11),
			want:           date(2025, time.March, 11),
		},
		{
			name:           "five days behind resumes from today",
			assignmentDate: date(2025, time.March, 5),
			today:          date(2025, time.March, 10),
			want:           date(2025, time.March, 11),
			wantStale:      true,
		},
		{
			name:           "stale recovery honors weekend skip",
			assignmentDate: date(2025, time.March, 3),
			today:          date(2025, time.March, 7), // Friday
			skipWeekends:   true,
			want:           date(2025, time.March, 10), // Monday
			wantStale:      true,
		},
	}

	for _, tt := range tests {
		got, stale := inventory.NextDateFrom(tt.assignmentDate, tt.today, tt.skipWeekends)
		if got != tt.want || stale != tt.wantStale {
			t.Errorf("%s: NextDateFrom = (%v, %v), want (%v, %v)",
				tt.name, got, stale, tt.want, tt.wantStale)
		}
	}
}

func TestFixedClock(t *testing.T) {
	d := date(2025, time.March, 10)
	clock := inventory.FixedClock{Date: d}
	if clock.Today() != d {
		t.Fatalf("FixedClock.Today() = %v, want %v", clock.Today(), d)
	}
}
