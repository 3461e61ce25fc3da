package habit

import (
	"time"

	"github.com/google/uuid"

	"lifeQuestAPI/internal/habitlevel"
	"lifeQuestAPI/internal/types/block"
)

type Frequency string

const (
	FrequencyDaily        Frequency = "DAILY"
	FrequencyWeekdays     Frequency = "WEEKDAYS"
	FrequencyThreePerWeek Frequency = "THREE_PER_WEEK"
	FrequencyCustom       Frequency = "CUSTOM"
)

func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekdays, FrequencyThreePerWeek, FrequencyCustom:
		return true
	default:
		return false
	}
}

type Habit struct {
	ID            uuid.UUID   `json:"id" db:"id"`
	UserID        uuid.UUID   `json:"user_id" db:"user_id"`
	Name          string      `json:"name" db:"name"`
	Block         block.Block `json:"block" db:"block"`
	Frequency     Frequency   `json:"frequency" db:"frequency"`
	CustomDays    []int       `json:"custom_days" db:"custom_days"`
	TargetPerWeek int         `json:"target_per_week" db:"target_per_week"`
	XPPerLog      int         `json:"xp_per_log" db:"xp_per_log"`
	Level         int         `json:"level" db:"level"`
	TotalLogs     int         `json:"total_logs" db:"total_logs"`
	CurrentStreak int         `json:"current_streak" db:"current_streak"`
	LongestStreak int         `json:"longest_streak" db:"longest_streak"`
	CreatedAt     time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at" db:"updated_at"`
	Logs          []*Log      `json:"logs,omitempty"`
}

// Log is one completed day. XPAwarded freezes the multiplied XP so un-logging
// reverses exactly what was granted, whatever the habit's level is later.
type Log struct {
	ID        uuid.UUID `json:"id" db:"id"`
	HabitID   uuid.UUID `json:"habit_id" db:"habit_id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Date      time.Time `json:"date" db:"date"`
	Completed bool      `json:"completed" db:"completed"`
	XPAwarded int       `json:"xp_awarded" db:"xp_awarded"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type CreateHabitRequest struct {
	Name          string      `json:"name"`
	Block         block.Block `json:"block"`
	Frequency     Frequency   `json:"frequency"`
	CustomDays    []int       `json:"customDays"`
	TargetPerWeek int         `json:"targetPerWeek"`
	XPPerLog      int         `json:"xpPerLog"`
}

type LogHabitRequest struct {
	Date      string `json:"date"`
	Completed *bool  `json:"completed,omitempty"`
}

// LogResult reports a habit completion: the log plus the recomputed band.
type LogResult struct {
	Log        *Log            `json:"log,omitempty"`
	Removed    bool            `json:"removed,omitempty"`
	XPAwarded  int             `json:"xpAwarded,omitempty"`
	XPReversed int             `json:"xpReversed,omitempty"`
	LevelInfo  habitlevel.Info `json:"levelInfo"`
}
