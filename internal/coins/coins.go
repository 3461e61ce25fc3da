package coins

// StreakBonus is one row of the milestone table.
type StreakBonus struct {
	Days  int `json:"days"`
	Coins int `json:"coins"`
}

// StreakBonuses lists the milestone days and their one-time coin payouts.
// A bonus fires only on the exact day the streak equals the threshold.
var StreakBonuses = []StreakBonus{
	{Days: 3, Coins: 10},
	{Days: 7, Coins: 30},
	{Days: 14, Coins: 75},
	{Days: 30, Coins: 200},
	{Days: 100, Coins: 500},
	{Days: 365, Coins: 2000},
}

// GetStreakBonus returns the coin bonus for an exact streak-day match.
func GetStreakBonus(streak int) (int, bool) {
	for _, b := range StreakBonuses {
		if b.Days == streak {
			return b.Coins, true
		}
	}
	return 0, false
}
