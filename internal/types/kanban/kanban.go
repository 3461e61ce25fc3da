package kanban

import (
	"time"

	"github.com/google/uuid"

	"lifeQuestAPI/internal/types/block"
)

type Status string

const (
	StatusBacklog    Status = "BACKLOG"
	StatusTodo       Status = "TODO"
	StatusInProgress Status = "IN_PROGRESS"
	StatusDone       Status = "DONE"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusBacklog, StatusTodo, StatusInProgress, StatusDone:
		return true
	default:
		return false
	}
}

// Task is one kanban card. The three ratings are immutable inputs to the XP
// formula; XPAwarded is frozen at the moment the task first reaches DONE.
type Task struct {
	ID           uuid.UUID    `json:"id" db:"id"`
	UserID       uuid.UUID    `json:"user_id" db:"user_id"`
	Title        string       `json:"title" db:"title"`
	Description  *string      `json:"description,omitempty" db:"description"`
	Block        *block.Block `json:"block,omitempty" db:"block"`
	Status       Status       `json:"status" db:"status"`
	Importance   int          `json:"importance" db:"importance"`
	Discomfort   int          `json:"discomfort" db:"discomfort"`
	Urgency      int          `json:"urgency" db:"urgency"`
	XPAwarded    *int         `json:"xp_awarded,omitempty" db:"xp_awarded"`
	DueDate      *time.Time   `json:"due_date,omitempty" db:"due_date"`
	IsMainTask   bool         `json:"is_main_task" db:"is_main_task"`
	MainTaskDate *time.Time   `json:"main_task_date,omitempty" db:"main_task_date"`
	CompletedAt  *time.Time   `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at" db:"updated_at"`
}

type CreateTaskRequest struct {
	Title        string       `json:"title"`
	Description  *string      `json:"description"`
	Block        *block.Block `json:"block"`
	Status       Status       `json:"status"`
	Importance   int          `json:"importance"`
	Discomfort   int          `json:"discomfort"`
	Urgency      int          `json:"urgency"`
	DueDate      *time.Time   `json:"dueDate"`
	IsMainTask   bool         `json:"isMainTask"`
	MainTaskDate *time.Time   `json:"mainTaskDate"`
}

// UpdateTaskRequest uses pointers so PATCH can distinguish absent fields.
type UpdateTaskRequest struct {
	Title        *string      `json:"title"`
	Description  *string      `json:"description"`
	Block        *block.Block `json:"block"`
	Status       *Status      `json:"status"`
	Importance   *int         `json:"importance"`
	Discomfort   *int         `json:"discomfort"`
	Urgency      *int         `json:"urgency"`
	DueDate      *time.Time   `json:"dueDate"`
	IsMainTask   *bool        `json:"isMainTask"`
	MainTaskDate *time.Time   `json:"mainTaskDate"`
}

// UpdateResult reports a task update; XPAwarded and EnergySpent are only set
// on the transition into DONE.
type UpdateResult struct {
	Task        *Task `json:"task"`
	XPAwarded   int   `json:"xpAwarded,omitempty"`
	EnergySpent int   `json:"energySpent,omitempty"`
}
