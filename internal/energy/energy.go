package energy

import "math"

const (
	MaxEnergy = 100
	MinEnergy = -20 // overdraft floor

	BurnoutThresholdDays = 3   // consecutive overdraft days before burnout
	BurnoutPenalty       = 0.5 // base energy multiplier while burned out

	OverdraftSpendMultiplier = 1.5

	SleepWeight    = 0.4
	PhysicalWeight = 0.3
	MentalWeight   = 0.3

	// Streaks feeding the morning bonus.
	SleepStreakMinDays   = 5
	SleepStreakScore     = 75 // sleep score counting toward the streak
	SleepStreakBonus     = 5
	RoutineStreakMinDays = 3
	RoutineStreakBonus   = 10
)

// CalcBaseEnergy turns the three morning scores (each 0-100) into the
// weighted day budget.
func CalcBaseEnergy(sleep, physical, mental int) int {
	return int(math.Round(float64(sleep)*SleepWeight + float64(physical)*PhysicalWeight + float64(mental)*MentalWeight))
}

// EnergyCosts maps action difficulty to its spend amount.
var EnergyCosts = map[string]int{
	"EASY":      5,
	"NORMAL":    10,
	"HARD":      20,
	"VERY_HARD": 35,
	"LEGENDARY": 60,
}

// CalcKanbanEnergyCost prices a kanban task by the mean of its three ratings.
func CalcKanbanEnergyCost(importance, discomfort, urgency int) int {
	score := float64(importance+discomfort+urgency) / 3.0
	switch {
	case score <= 3:
		return 5
	case score <= 5:
		return 10
	case score <= 7:
		return 20
	default:
		return 35
	}
}

// RecoveryType is one entry of the recovery catalog.
type RecoveryType struct {
	Type      string `json:"type"`
	Label     string `json:"label"`
	EP        int    `json:"ep"`
	MaxPerDay int    `json:"max_per_day"`
	Icon      string `json:"icon"`
}

// RecoveryTypes is the fixed catalog; MaxPerDay 99 is effectively unlimited.
var RecoveryTypes = []RecoveryType{
	{Type: "POWER_NAP", Label: "Power Nap", EP: 12, MaxPerDay: 1, Icon: "😴"},
	{Type: "TEA_BREAK", Label: "Tea Break", EP: 5, MaxPerDay: 3, Icon: "☕"},
	{Type: "PRAYER", Label: "Prayer", EP: 8, MaxPerDay: 5, Icon: "🤲"},
	{Type: "MUSIC", Label: "Music", EP: 3, MaxPerDay: 99, Icon: "🎵"},
	{Type: "WALK", Label: "Walk", EP: 10, MaxPerDay: 2, Icon: "🚶"},
	{Type: "QUEST_COMPLETE", Label: "Quest Complete", EP: 5, MaxPerDay: 99, Icon: "⚔️"},
}

// FindRecoveryType looks up a catalog entry by its type key.
func FindRecoveryType(recoveryType string) (RecoveryType, bool) {
	for _, r := range RecoveryTypes {
		if r.Type == recoveryType {
			return r, true
		}
	}
	return RecoveryType{}, false
}

// CalcStreakBonus adds up the morning streak bonuses: +5 for a 5-day run of
// good sleep, +10 for a 3-day run of completed morning inputs.
func CalcStreakBonus(sleepStreak, routineStreak int) int {
	bonus := 0
	if sleepStreak >= SleepStreakMinDays {
		bonus += SleepStreakBonus
	}
	if routineStreak >= RoutineStreakMinDays {
		bonus += RoutineStreakBonus
	}
	return bonus
}

// ApplySpend deducts a spend from the current balance. A balance already in
// overdraft pays the 1.5x penalty on the requested amount, and the result is
// floored at MinEnergy; the returned spent value is what was actually applied.
func ApplySpend(current, amount int) (newEnergy, spent int) {
	effective := amount
	if current < 0 {
		effective = int(math.Round(float64(amount) * OverdraftSpendMultiplier))
	}

	newEnergy = current - effective
	if newEnergy < MinEnergy {
		newEnergy = MinEnergy
	}
	return newEnergy, current - newEnergy
}

// ApplyRecovery restores up to ep points without exceeding MaxEnergy; the
// returned restored value is what was actually applied.
func ApplyRecovery(current, ep int) (newEnergy, restored int) {
	restored = MaxEnergy - current
	if restored > ep {
		restored = ep
	}
	if restored < 0 {
		restored = 0
	}
	return current + restored, restored
}

// CheckBurnout reports whether a run of consecutive overdraft days triggers
// burnout for the following day.
func CheckBurnout(consecutiveOverdraftDays int) bool {
	return consecutiveOverdraftDays >= BurnoutThresholdDays
}
