package clock

import (
	"testing"
	"time"
)

func TestFakeClock(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	c := Fake(start)

	if got := c.Now(); !got.Equal(start) {
		t.Fatalf("Now() = %v, want %v", got, start)
	}
	c.Advance(90 * time.Minute)
	if got, want := c.Now(), start.Add(90*time.Minute); !got.Equal(want) {
		t.Errorf("after Advance Now() = %v, want %v", got, want)
	}
	later := start.AddDate(0, 1, 0)
	c.Set(later)
	if got := c.Now(); !got.Equal(later) {
		t.Errorf("after Set Now() = %v, want %v", got, later)
	}
}

func TestRealClockMovesForward(t *testing.T) {
	before := time.Now()
	got := Real().Now()
	if got.Before(before) {
		t.Errorf("Real().Now() = %v, earlier than %v", got, before)
	}
}

func TestIn(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*60*60)
	base := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	c := In(Fake(base), loc)

	got := c.Now()
	if !got.Equal(base) {
		t.Errorf("In().Now() = %v, want instant %v", got, base)
	}
	if got.Location() != loc || got.Day() != 2 {
		t.Errorf("In().Now() = %v, want March 2 in %v", got, loc)
	}
}
