package habitlevel

import (
	"math"
	"testing"
)

func TestBandBoundaries(t *testing.T) {
	cases := []struct {
		completions int
		wantLevel   int
	}{
		{0, 1},
		{6, 1},
		{7, 2},
		{20, 2},
		{21, 3},
		{49, 3},
		{50, 4},
		{99, 4},
		{100, 5},
		{199, 5},
		{200, 6},
		{364, 6},
		{365, 7},
		{10000, 7}, // open-ended top band
	}
	for _, c := range cases {
		if got := GetHabitLevel(c.completions).Level; got != c.wantLevel {
			t.Errorf("GetHabitLevel(%d).Level = %d, want %d", c.completions, got, c.wantLevel)
		}
	}
}

func TestXPMultiplier(t *testing.T) {
	for level := 1; level <= 7; level++ {
		var completions int
		switch level {
		case 1:
			completions = 0
		case 2:
			completions = 7
		case 3:
			completions = 21
		case 4:
			completions = 50
		case 5:
			completions = 100
		case 6:
			completions = 200
		case 7:
			completions = 365
		}
		info := GetHabitLevel(completions)
		want := 1 + float64(level)*0.1
		if math.Abs(info.XPMultiplier-want) > 1e-9 {
			t.Errorf("level %d multiplier = %f, want %f", level, info.XPMultiplier, want)
		}
	}
}

func TestProgress(t *testing.T) {
	// Mid-band progress stays inside [0,1).
	info := GetHabitLevel(10)
	if info.Level != 2 {
		t.Fatalf("GetHabitLevel(10).Level = %d, want 2", info.Level)
	}
	if info.Progress < 0 || info.Progress >= 1 {
		t.Fatalf("progress = %f, want [0,1)", info.Progress)
	}

	// Open top band pins progress to 1.
	if got := GetHabitLevel(999).Progress; got != 1 {
		t.Fatalf("top band progress = %f, want 1", got)
	}
}

func TestNegativeClamped(t *testing.T) {
	info := GetHabitLevel(-5)
	if info.Level != 1 {
		t.Fatalf("GetHabitLevel(-5).Level = %d, want 1", info.Level)
	}
}
