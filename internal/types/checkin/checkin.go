package checkin

import (
	"time"

	"github.com/google/uuid"
)

// Checkin is one end-of-day reflection row, keyed per user per local day.
type Checkin struct {
	ID             uuid.UUID `json:"id" db:"id"`
	UserID         uuid.UUID `json:"user_id" db:"user_id"`
	Date           time.Time `json:"date" db:"date"`
	MainTaskDone   bool      `json:"main_task_done" db:"main_task_done"`
	TotalTasks     int       `json:"total_tasks" db:"total_tasks"`
	CompletedTasks int       `json:"completed_tasks" db:"completed_tasks"`
	XPEarned       int       `json:"xp_earned" db:"xp_earned"`
	EnergyLevel    *int      `json:"energy_level,omitempty" db:"energy_level"`
	MoodLevel      *int      `json:"mood_level,omitempty" db:"mood_level"`
	Note           *string   `json:"note,omitempty" db:"note"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

type UpsertCheckinRequest struct {
	Date           string  `json:"date"`
	MainTaskDone   bool    `json:"mainTaskDone"`
	TotalTasks     *int    `json:"totalTasks,omitempty"`
	CompletedTasks *int    `json:"completedTasks,omitempty"`
	XPEarned       *int    `json:"xpEarned,omitempty"`
	EnergyLevel    *int    `json:"energyLevel,omitempty"`
	MoodLevel      *int    `json:"moodLevel,omitempty"`
	Note           *string `json:"note,omitempty"`
}
