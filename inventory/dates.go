/*
dates.go - Business dates in a fixed reference timezone

PURPOSE:
  Assignments are keyed by calendar date in the business's local zone, not
  by instants. Parsing and formatting stay in plain YYYY-MM-DD so an
  implicit UTC conversion can never shift an assignment to the wrong day.

STALENESS RECOVERY:
  When an assignment was left unconsolidated for several days, the successor
  date is computed from *today* rather than from the stale assignment date.
  Otherwise a backlog of missed consolidations would cascade through every
  skipped day. NextDateFrom implements exactly this policy.

SEE ALSO:
  - consolidation.go: Uses NextDateFrom for the successor date
*/
package inventory

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// DefaultZone is the business's local zone. The distribution operation runs
// in Peru; override via NewZoneClock when deploying elsewhere.
const DefaultZone = "America/Lima"

// =============================================================================
// DATE - Calendar day, no time-of-day component
// =============================================================================

// Date is a calendar day. The zero value is invalid; construct via NewDate,
// ParseDate, or a Clock.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func NewDate(year int, month time.Month, day int) Date {
	// Normalize through time.Date so Dec 32 becomes Jan 1.
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// ParseDate parses plain YYYY-MM-DD.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", s, err)
	}
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

func (d Date) String() string { return d.midnight().Format(dateLayout) }
func (d Date) IsZero() bool   { return d == Date{} }

func (d Date) midnight() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// Comparison
func (d Date) Equal(o Date) bool  { return d == o }
func (d Date) Before(o Date) bool { return d.midnight().Before(o.midnight()) }
func (d Date) After(o Date) bool  { return d.midnight().After(o.midnight()) }

// Arithmetic
func (d Date) AddDays(n int) Date {
	t := d.midnight().AddDate(0, 0, n)
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

func (d Date) Weekday() time.Weekday { return d.midnight().Weekday() }

func (d Date) IsWeekend() bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// DaysBetween returns the absolute calendar-day distance between two dates.
func DaysBetween(a, b Date) int {
	n := int(b.midnight().Sub(a.midnight()).Hours() / 24)
	if n < 0 {
		n = -n
	}
	return n
}

// =============================================================================
// DATE RESOLVER
// =============================================================================

// NextBusinessDate adds one calendar day and, when skipWeekends is set,
// keeps advancing while the result lands on Saturday or Sunday.
func NextBusinessDate(d Date, skipWeekends bool) Date {
	next := d.AddDays(1)
	if skipWeekends {
		for next.IsWeekend() {
			next = next.AddDays(1)
		}
	}
	return next
}

// staleThresholdDays is the distance beyond which an assignment date is
// considered stale and the rollover resumes from today instead.
const staleThresholdDays = 1

// NextDateFrom picks the successor date for a consolidation. When the
// assignment date is more than one day away from today, today becomes the
// base so a backlog resumes from the present rather than replaying every
// missed day. The second return reports whether stale recovery applied.
func NextDateFrom(assignmentDate, today Date, skipWeekends bool) (Date, bool) {
	base := assignmentDate
	stale := DaysBetween(assignmentDate, today) > staleThresholdDays
	if stale {
		base = today
	}
	return NextBusinessDate(base, skipWeekends), stale
}

// =============================================================================
// CLOCK - Injectable "today" for tests
// =============================================================================

// Clock supplies the current business date. Production uses a ZoneClock;
// tests pin a FixedClock.
type Clock interface {
	Today() Date
}

// ZoneClock reads the wall clock in a fixed reference zone.
type ZoneClock struct {
	loc *time.Location
}

// NewZoneClock loads the named zone, falling back to UTC if the zone
// database does not know it.
func NewZoneClock(zone string) *ZoneClock {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		loc = time.UTC
	}
	return &ZoneClock{loc: loc}
}

func (c *ZoneClock) Today() Date {
	now := time.Now().In(c.loc)
	return Date{Year: now.Year(), Month: now.Month(), Day: now.Day()}
}

// FixedClock always returns the same date.
type FixedClock struct {
	Date Date
}

func (c FixedClock) Today() Date { return c.Date }
