package energy

import "testing"

func TestCalcBaseEnergy(t *testing.T) {
	cases := []struct {
		sleep, physical, mental int
		want                    int
	}{
		{100, 100, 100, 100},
		{0, 0, 0, 0},
		{80, 70, 60, 71}, // 32 + 21 + 18
		{75, 50, 50, 60}, // 30 + 15 + 15
		{50, 100, 0, 50}, // 20 + 30 + 0
	}
	for _, c := range cases {
		if got := CalcBaseEnergy(c.sleep, c.physical, c.mental); got != c.want {
			t.Errorf("CalcBaseEnergy(%d,%d,%d) = %d, want %d", c.sleep, c.physical, c.mental, got, c.want)
		}
	}
}

func TestEnergyCosts(t *testing.T) {
	want := map[string]int{"EASY": 5, "NORMAL": 10, "HARD": 20, "VERY_HARD": 35, "LEGENDARY": 60}
	for difficulty, cost := range want {
		if EnergyCosts[difficulty] != cost {
			t.Errorf("EnergyCosts[%s] = %d, want %d", difficulty, EnergyCosts[difficulty], cost)
		}
	}
}

func TestCalcKanbanEnergyCost(t *testing.T) {
	cases := []struct {
		i, d, u int
		want    int
	}{
		{1, 1, 1, 5},    // avg 1
		{3, 3, 3, 5},    // avg 3, boundary
		{4, 4, 4, 10},   // avg 4
		{5, 5, 5, 10},   // boundary
		{6, 7, 7, 20},   // avg ~6.7
		{7, 7, 7, 20},   // boundary
		{8, 8, 8, 35},   // avg 8
		{10, 10, 10, 35},
	}
	for _, c := range cases {
		if got := CalcKanbanEnergyCost(c.i, c.d, c.u); got != c.want {
			t.Errorf("CalcKanbanEnergyCost(%d,%d,%d) = %d, want %d", c.i, c.d, c.u, got, c.want)
		}
	}
}

func TestApplySpendNormal(t *testing.T) {
	newEnergy, spent := ApplySpend(50, 10)
	if newEnergy != 40 || spent != 10 {
		t.Fatalf("ApplySpend(50,10) = (%d,%d), want (40,10)", newEnergy, spent)
	}
}

func TestApplySpendOverdraftPenalty(t *testing.T) {
	// Already negative: 10 requested costs 15.
	newEnergy, spent := ApplySpend(-1, 10)
	if spent != 15 {
		t.Fatalf("overdraft spend = %d, want 15", spent)
	}
	if newEnergy != -16 {
		t.Fatalf("overdraft newEnergy = %d, want -16", newEnergy)
	}
}

func TestApplySpendFloor(t *testing.T) {
	newEnergy, spent := ApplySpend(-15, 100)
	if newEnergy != MinEnergy {
		t.Fatalf("newEnergy = %d, want floor %d", newEnergy, MinEnergy)
	}
	// Only the applied amount counts toward spentTotal.
	if spent != 5 {
		t.Fatalf("spent = %d, want 5 (truncated at floor)", spent)
	}

	// Repeated spends never break through the floor.
	current := 0
	for i := 0; i < 20; i++ {
		current, _ = ApplySpend(current, 60)
		if current < MinEnergy {
			t.Fatalf("energy %d went below the floor", current)
		}
	}
}

func TestApplyRecoveryCeiling(t *testing.T) {
	newEnergy, restored := ApplyRecovery(95, 12)
	if newEnergy != MaxEnergy || restored != 5 {
		t.Fatalf("ApplyRecovery(95,12) = (%d,%d), want (100,5)", newEnergy, restored)
	}

	newEnergy, restored = ApplyRecovery(100, 12)
	if newEnergy != MaxEnergy || restored != 0 {
		t.Fatalf("ApplyRecovery(100,12) = (%d,%d), want (100,0)", newEnergy, restored)
	}

	// Repeated recovery near the ceiling never exceeds MaxEnergy.
	current := 90
	for i := 0; i < 10; i++ {
		current, _ = ApplyRecovery(current, 12)
		if current > MaxEnergy {
			t.Fatalf("energy %d went above the ceiling", current)
		}
	}
}

func TestApplyRecoveryFromOverdraft(t *testing.T) {
	newEnergy, restored := ApplyRecovery(-10, 8)
	if newEnergy != -2 || restored != 8 {
		t.Fatalf("ApplyRecovery(-10,8) = (%d,%d), want (-2,8)", newEnergy, restored)
	}
}

func TestRecoveryCatalog(t *testing.T) {
	want := map[string]struct{ ep, max int }{
		"POWER_NAP":      {12, 1},
		"TEA_BREAK":      {5, 3},
		"PRAYER":         {8, 5},
		"MUSIC":          {3, 99},
		"WALK":           {10, 2},
		"QUEST_COMPLETE": {5, 99},
	}
	for key, w := range want {
		r, ok := FindRecoveryType(key)
		if !ok {
			t.Errorf("recovery type %s missing from catalog", key)
			continue
		}
		if r.EP != w.ep || r.MaxPerDay != w.max {
			t.Errorf("recovery %s = (%d ep, %d/day), want (%d, %d)", key, r.EP, r.MaxPerDay, w.ep, w.max)
		}
	}
	if _, ok := FindRecoveryType("COFFEE"); ok {
		t.Error("unknown recovery type must not resolve")
	}
}

func TestCalcStreakBonus(t *testing.T) {
	cases := []struct {
		sleep, routine, want int
	}{
		{0, 0, 0},
		{5, 0, 5},
		{4, 0, 0},
		{0, 3, 10},
		{0, 2, 0},
		{6, 4, 15},
	}
	for _, c := range cases {
		if got := CalcStreakBonus(c.sleep, c.routine); got != c.want {
			t.Errorf("CalcStreakBonus(%d,%d) = %d, want %d", c.sleep, c.routine, got, c.want)
		}
	}
}

func TestCheckBurnout(t *testing.T) {
	if CheckBurnout(2) {
		t.Fatal("2 overdraft days must not trigger burnout")
	}
	if !CheckBurnout(3) || !CheckBurnout(5) {
		t.Fatal("3+ overdraft days must trigger burnout")
	}
}
