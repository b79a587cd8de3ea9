package schedule

import (
	"math/rand"
	"testing"
	"time"
)

func ts(s string) time.Time {
	t, err := time.Parse("2006-01-02T15:04", s)
	if err != nil {
		panic(err)
	}
	return t
}

// TestAdvanceFridayRollsToMonday pins the advertised rollover rule: 30
// minutes past Friday 17:45 lands 15 minutes after Monday's opening.
func TestAdvanceFridayRollsToMonday(t *testing.T) {
	w := Default()

	got := w.AdvanceMinutes(ts("2023-01-06T17:45"), 30)
	want := ts("2023-01-09T09:15")
	if !got.Equal(want) {
		t.Fatalf("Advance(Fri 17:45, 30m) = %v, want %v", got, want)
	}
	if got.Weekday() != time.Monday {
		t.Errorf("Expected Monday, got %v", got.Weekday())
	}
}

func TestAdvanceCases(t *testing.T) {
	w := Default()

	tests := []struct {
		name    string
		current string
		minutes int
		want    string
	}{
		{"inside window zero elapsed", "2023-01-03T10:30", 0, "2023-01-03T10:30"},
		{"inside window stays inside", "2023-01-03T10:00", 60, "2023-01-03T11:00"},
		{"crosses closing", "2023-01-03T17:50", 30, "2023-01-04T09:20"},
		{"lands exactly on closing", "2023-01-03T17:00", 60, "2023-01-04T09:00"},
		{"before opening same day", "2023-01-03T00:30", 0, "2023-01-03T09:30"},
		{"saturday keeps clock", "2023-01-07T12:00", 0, "2023-01-09T12:00"},
		{"sunday keeps clock", "2023-01-08T14:45", 0, "2023-01-09T14:45"},
		{"friday evening", "2023-01-06T20:00", 0, "2023-01-09T11:00"},
		{"saturday small hours", "2023-01-07T03:00", 0, "2023-01-09T12:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := w.AdvanceMinutes(ts(tt.current), tt.minutes)
			if want := ts(tt.want); !got.Equal(want) {
				t.Errorf("Advance(%s, %dm) = %v, want %v", tt.current, tt.minutes, got, want)
			}
		})
	}
}

// TestAdvanceAlwaysLandsInWindow sweeps random instants and durations and
// checks the two scheduler invariants: weekday Monday-Friday and hour in
// [Opening, Closing).
func TestAdvanceAlwaysLandsInWindow(t *testing.T) {
	w := Default()
	rng := rand.New(rand.NewSource(99))
	base := ts("2023-01-01T00:00")

	for i := 0; i < 2000; i++ {
		start := base.Add(time.Duration(rng.Intn(365*24*60)) * time.Minute)
		minutes := rng.Intn(3 * 24 * 60)

		got := w.AdvanceMinutes(start, minutes)

		if wd := got.Weekday(); wd == time.Saturday || wd == time.Sunday {
			t.Fatalf("Advance(%v, %dm) landed on %v", start, minutes, wd)
		}
		if h := got.Hour(); h < w.Opening || h >= w.Closing {
			t.Fatalf("Advance(%v, %dm) landed at hour %d", start, minutes, h)
		}
		if naive := start.Add(time.Duration(minutes) * time.Minute); got.Before(naive) {
			t.Fatalf("Advance(%v, %dm) = %v moved backwards past %v", start, minutes, got, naive)
		}
	}
}

func TestContains(t *testing.T) {
	w := Default()

	tests := []struct {
		instant string
		want    bool
	}{
		{"2023-01-03T09:00", true},
		{"2023-01-03T17:59", true},
		{"2023-01-03T18:00", false},
		{"2023-01-03T08:59", false},
		{"2023-01-07T12:00", false},
		{"2023-01-08T12:00", false},
	}

	for _, tt := range tests {
		if got := w.Contains(ts(tt.instant)); got != tt.want {
			t.Errorf("Contains(%s) = %v, want %v", tt.instant, got, tt.want)
		}
	}
}

func TestNewClampsWindow(t *testing.T) {
	tests := []struct {
		opening, closing int
		want             WorkWeek
	}{
		{9, 18, WorkWeek{9, 18}},
		{-1, 18, WorkWeek{0, 18}},
		{25, 30, WorkWeek{23, 24}},
		{10, 10, WorkWeek{10, 11}},
		{12, 8, WorkWeek{12, 13}},
	}

	for _, tt := range tests {
		if got := New(tt.opening, tt.closing); got != tt.want {
			t.Errorf("New(%d, %d) = %+v, want %+v", tt.opening, tt.closing, got, tt.want)
		}
	}
}

// TestAdvanceCustomWindow checks the roll rules generalize to a window
// other than the default nine-to-six.
func TestAdvanceCustomWindow(t *testing.T) {
	w := New(8, 17)

	got := w.AdvanceMinutes(ts("2023-01-03T16:50"), 30)
	// 17:20 is 20 minutes past closing; resume 20 past opening next day.
	if want := ts("2023-01-04T08:20"); !got.Equal(want) {
		t.Errorf("Advance = %v, want %v", got, want)
	}
}
