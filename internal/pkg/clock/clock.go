package clock

import (
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultTimezone is the ledger's fixed calendar zone. Streaks, daily quotas
// and the counter reset all roll over at midnight in this zone.
const DefaultTimezone = "Asia/Kolkata"

// Clock supplies the current time and calendar-day arithmetic in a fixed zone.
type Clock interface {
	Now() time.Time
	DayOf(t time.Time) time.Time
}

type fixedZoneClock struct {
	loc *time.Location
}

// New returns a Clock pinned to the given IANA timezone. Falls back to
// DefaultTimezone when the name does not resolve.
func New(timezone string) Clock {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		log.Warn().Str("timezone", timezone).Err(err).Msg("unknown timezone, falling back to default")
		loc, _ = time.LoadLocation(DefaultTimezone)
	}
	return &fixedZoneClock{loc: loc}
}

func (c *fixedZoneClock) Now() time.Time {
	return time.Now().In(c.loc)
}

// DayOf truncates t to midnight of its calendar day in the clock's zone.
func (c *fixedZoneClock) DayOf(t time.Time) time.Time {
	t = t.In(c.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, c.loc)
}

// SameDay reports whether a and b fall on the same calendar day of c's zone.
func SameDay(c Clock, a, b time.Time) bool {
	return c.DayOf(a).Equal(c.DayOf(b))
}

// IsYesterday reports whether prev falls on the calendar day immediately
// before the day of now.
func IsYesterday(c Clock, prev, now time.Time) bool {
	return c.DayOf(prev).AddDate(0, 0, 1).Equal(c.DayOf(now))
}
