package energy

import (
	"time"

	"github.com/google/uuid"
)

// Log is one user-day energy row. Date is midnight of the user's local day.
type Log struct {
	ID             uuid.UUID   `json:"id" db:"id"`
	UserID         uuid.UUID   `json:"user_id" db:"user_id"`
	Date           time.Time   `json:"date" db:"date"`
	SleepScore     int         `json:"sleep_score" db:"sleep_score"`
	PhysicalScore  int         `json:"physical_score" db:"physical_score"`
	MentalScore    int         `json:"mental_score" db:"mental_score"`
	BaseEnergy     int         `json:"base_energy" db:"base_energy"`
	CurrentEnergy  int         `json:"current_energy" db:"current_energy"`
	StreakBonus    int         `json:"streak_bonus" db:"streak_bonus"`
	SpentTotal     int         `json:"spent_total" db:"spent_total"`
	RecoveredTotal int         `json:"recovered_total" db:"recovered_total"`
	IsBurnout      bool        `json:"is_burnout" db:"is_burnout"`
	MorningDone    bool        `json:"morning_done" db:"morning_done"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at" db:"updated_at"`
	Recoveries     []*Recovery `json:"recoveries"`
}

// Recovery is one applied recovery action on a day's log.
type Recovery struct {
	ID          uuid.UUID `json:"id" db:"id"`
	EnergyLogID uuid.UUID `json:"energy_log_id" db:"energy_log_id"`
	Type        string    `json:"type" db:"type"`
	EPRestored  int       `json:"ep_restored" db:"ep_restored"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

type MorningInputRequest struct {
	SleepScore    int `json:"sleepScore"`
	PhysicalScore int `json:"physicalScore"`
	MentalScore   int `json:"mentalScore"`
}

type SpendRequest struct {
	Amount int `json:"amount"`
}

type SpendResponse struct {
	CurrentEnergy int  `json:"currentEnergy"`
	Spent         int  `json:"spent"`
	IsOverdraft   bool `json:"isOverdraft"`
}

type RecoverRequest struct {
	Type string `json:"type"`
}

// HistoryStats aggregates an energy history window.
type HistoryStats struct {
	Total         int `json:"total"`
	AvgEnergy     int `json:"avg_energy"`
	OverdraftDays int `json:"overdraft_days"`
	BurnoutDays   int `json:"burnout_days"`
	AvgSleep      int `json:"avg_sleep"`
	AvgPhysical   int `json:"avg_physical"`
	AvgMental     int `json:"avg_mental"`
}

type HistoryResponse struct {
	Logs  []*Log       `json:"logs"`
	Stats HistoryStats `json:"stats"`
}
