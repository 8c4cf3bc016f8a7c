package clock_test

import (
	"testing"
	"time"

	"github.com/earnzy/earnzy-api/internal/pkg/clock"
)

func TestDayOfTruncatesInZone(t *testing.T) {
	c := clock.New("Asia/Kolkata")

	// 19:30 UTC is already the next day in Kolkata (+05:30).
	utc := time.Date(2025, 6, 1, 19, 30, 0, 0, time.UTC)
	day := c.DayOf(utc)

	if day.Hour() != 0 || day.Minute() != 0 {
		t.Fatalf("expected midnight, got %v", day)
	}
	if day.Day() != 2 {
		t.Fatalf("expected Kolkata day 2, got %d", day.Day())
	}
}

func TestSameDayAcrossUTCBoundary(t *testing.T) {
	c := clock.New("Asia/Kolkata")

	a := time.Date(2025, 6, 1, 18, 35, 0, 0, time.UTC) // 00:05 IST June 2
	b := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)  // 15:30 IST June 2

	if !clock.SameDay(c, a, b) {
		t.Fatal("expected same Kolkata day")
	}

	before := time.Date(2025, 6, 1, 18, 25, 0, 0, time.UTC) // 23:55 IST June 1
	if clock.SameDay(c, before, a) {
		t.Fatal("expected different Kolkata days")
	}
}

func TestIsYesterday(t *testing.T) {
	c := clock.New("Asia/Kolkata")
	loc, _ := time.LoadLocation("Asia/Kolkata")

	prev := time.Date(2025, 6, 1, 23, 59, 0, 0, loc)
	now := time.Date(2025, 6, 2, 0, 1, 0, 0, loc)
	if !clock.IsYesterday(c, prev, now) {
		t.Fatal("expected prev to be yesterday")
	}

	gap := time.Date(2025, 6, 3, 0, 1, 0, 0, loc)
	if clock.IsYesterday(c, prev, gap) {
		t.Fatal("expected gap day to break continuity")
	}

	if clock.IsYesterday(c, now, prev) {
		t.Fatal("reversed order must not count as yesterday")
	}
}

func TestNewFallsBackOnUnknownZone(t *testing.T) {
	c := clock.New("Not/AZone")
	now := c.Now()
	if now.Location().String() != clock.DefaultTimezone {
		t.Fatalf("expected fallback to %s, got %s", clock.DefaultTimezone, now.Location())
	}
}
