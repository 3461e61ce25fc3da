package coins

import "testing"

func TestGetStreakBonusExactMatch(t *testing.T) {
	cases := []struct {
		streak int
		coins  int
		ok     bool
	}{
		{3, 10, true},
		{7, 30, true},
		{14, 75, true},
		{30, 200, true},
		{100, 500, true},
		{365, 2000, true},
		{1, 0, false},
		{8, 0, false}, // one past a milestone pays nothing
		{29, 0, false},
		{366, 0, false},
	}
	for _, c := range cases {
		coins, ok := GetStreakBonus(c.streak)
		if ok != c.ok || coins != c.coins {
			t.Errorf("GetStreakBonus(%d) = (%d, %v), want (%d, %v)", c.streak, coins, ok, c.coins, c.ok)
		}
	}
}

func TestTableOrdered(t *testing.T) {
	for i := 1; i < len(StreakBonuses); i++ {
		if StreakBonuses[i].Days <= StreakBonuses[i-1].Days {
			t.Fatalf("streak bonus table not strictly increasing at index %d", i)
		}
	}
}
