package progression

import "testing"

func TestGetLevelZero(t *testing.T) {
	info := GetLevel(0)
	if info.Level != 1 {
		t.Fatalf("GetLevel(0).Level = %d, want 1", info.Level)
	}
	if info.Progress != 0 {
		t.Fatalf("GetLevel(0).Progress = %f, want 0", info.Progress)
	}
	if info.NextLevelXP != BaseXP {
		t.Fatalf("GetLevel(0).NextLevelXP = %d, want %d", info.NextLevelXP, BaseXP)
	}
}

func TestGetLevelBoundary(t *testing.T) {
	// Level 1 costs exactly 550 XP.
	if got := GetLevel(549).Level; got != 1 {
		t.Fatalf("GetLevel(549).Level = %d, want 1", got)
	}
	info := GetLevel(550)
	if info.Level != 2 {
		t.Fatalf("GetLevel(550).Level = %d, want 2", info.Level)
	}
	if info.CurrentXP != 0 || info.Progress != 0 {
		t.Fatalf("boundary must start the new level at progress 0, got currentXP=%d progress=%f", info.CurrentXP, info.Progress)
	}
}

func TestGetLevelMonotonic(t *testing.T) {
	prev := 0
	for xp := 0; xp <= 200_000; xp += 137 {
		level := GetLevel(xp).Level
		if level < prev {
			t.Fatalf("level decreased: GetLevel(%d)=%d after %d", xp, level, prev)
		}
		prev = level
	}
}

func TestGetLevelProgressRange(t *testing.T) {
	for xp := 0; xp <= 50_000; xp += 91 {
		info := GetLevel(xp)
		if info.Level < MaxLevel && (info.Progress < 0 || info.Progress >= 1) {
			t.Fatalf("GetLevel(%d).Progress = %f, want [0,1)", xp, info.Progress)
		}
	}
}

func TestGetLevelMaxLevel(t *testing.T) {
	// Total cost of levels 1..24 is 550 * (24*25/2).
	total := BaseXP * (24 * 25 / 2)
	info := GetLevel(total)
	if info.Level != MaxLevel {
		t.Fatalf("GetLevel(%d).Level = %d, want %d", total, info.Level, MaxLevel)
	}
	if info.Progress != 1 || info.NextLevelXP != 0 {
		t.Fatalf("max level must pin progress=1 nextLevelXP=0, got %+v", info)
	}
	// More XP has no effect on level.
	if got := GetLevel(total * 10).Level; got != MaxLevel {
		t.Fatalf("GetLevel(huge).Level = %d, want %d", got, MaxLevel)
	}
}

func TestCalcKanbanXP(t *testing.T) {
	cases := []struct {
		i, d, u int
		want    int
	}{
		{10, 10, 10, 100},
		{1, 1, 1, 0}, // round(0.1) = 0
		{5, 5, 5, 13}, // round(12.5) = 13, half away from zero
		{2, 3, 4, 2},  // round(2.4) = 2
		{3, 5, 7, 11}, // round(10.5) = 11
	}
	for _, c := range cases {
		if got := CalcKanbanXP(c.i, c.d, c.u); got != c.want {
			t.Errorf("CalcKanbanXP(%d,%d,%d) = %d, want %d", c.i, c.d, c.u, got, c.want)
		}
	}
}

func TestAvatarStage(t *testing.T) {
	if got := AvatarStage(3); got != 3 {
		t.Fatalf("AvatarStage(3) = %d, want 3", got)
	}
	if got := AvatarStage(40); got != MaxLevel {
		t.Fatalf("AvatarStage(40) = %d, want %d", got, MaxLevel)
	}
	for stage := 1; stage <= MaxLevel; stage++ {
		if AvatarTitles[stage] == "" {
			t.Errorf("missing avatar title for stage %d", stage)
		}
	}
}
