package action

import (
	"time"

	"github.com/google/uuid"

	"lifeQuestAPI/internal/types/block"
)

// Action is a reusable log template: "meditate", "deep work hour", etc.
type Action struct {
	ID        uuid.UUID   `json:"id" db:"id"`
	UserID    uuid.UUID   `json:"user_id" db:"user_id"`
	Name      string      `json:"name" db:"name"`
	Block     block.Block `json:"block" db:"block"`
	XP        int         `json:"xp" db:"xp"`
	Icon      string      `json:"icon" db:"icon"`
	IsDefault bool        `json:"is_default" db:"is_default"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
}

// LogEntry records one completed action. XPAwarded is frozen at creation so
// deleting the log reverses exactly what was granted.
type LogEntry struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	ActionID  uuid.UUID `json:"action_id" db:"action_id"`
	Date      time.Time `json:"date" db:"date"`
	XPAwarded int       `json:"xp_awarded" db:"xp_awarded"`
	Note      *string   `json:"note,omitempty" db:"note"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	Action    *Action   `json:"action,omitempty"`
}

type CreateActionRequest struct {
	Name  string      `json:"name"`
	Block block.Block `json:"block"`
	XP    int         `json:"xp"`
	Icon  string      `json:"icon"`
}

type UpdateActionRequest struct {
	Name  string      `json:"name"`
	Block block.Block `json:"block"`
	XP    int         `json:"xp"`
	Icon  string      `json:"icon"`
}

type CreateLogRequest struct {
	ActionID string  `json:"actionId"`
	Date     string  `json:"date,omitempty"`
	Note     *string `json:"note,omitempty"`
}

// LogResult reports what one log creation changed on the user row.
type LogResult struct {
	Log       *LogEntry `json:"log"`
	XPAwarded int       `json:"xpAwarded"`
	CoinBonus int       `json:"coinBonus"`
	NewStreak int       `json:"newStreak"`
	Level     int       `json:"level"`
}

// DefaultAction seeds new users with a starter catalog.
type DefaultAction struct {
	Name  string
	Block block.Block
	XP    int
	Icon  string
}

var DefaultActions = []DefaultAction{
	{Name: "Morning workout", Block: block.BlockHealth, XP: 20, Icon: "🏋️"},
	{Name: "10k steps", Block: block.BlockHealth, XP: 15, Icon: "🚶"},
	{Name: "Cook a healthy meal", Block: block.BlockHealth, XP: 10, Icon: "🥗"},
	{Name: "Deep work hour", Block: block.BlockWork, XP: 20, Icon: "🧱"},
	{Name: "Clear the inbox", Block: block.BlockWork, XP: 10, Icon: "📥"},
	{Name: "Read 20 pages", Block: block.BlockDevelopment, XP: 15, Icon: "📚"},
	{Name: "Study session", Block: block.BlockDevelopment, XP: 20, Icon: "🎓"},
	{Name: "Call family", Block: block.BlockRelationships, XP: 10, Icon: "💕"},
	{Name: "Quality time with a friend", Block: block.BlockRelationships, XP: 15, Icon: "🤝"},
	{Name: "Track expenses", Block: block.BlockFinance, XP: 10, Icon: "💰"},
	{Name: "Review the budget", Block: block.BlockFinance, XP: 15, Icon: "📊"},
	{Name: "Meditation", Block: block.BlockSpirituality, XP: 10, Icon: "🕌"},
	{Name: "Gratitude journal", Block: block.BlockSpirituality, XP: 10, Icon: "📓"},
	{Name: "Try something new", Block: block.BlockBrightness, XP: 15, Icon: "✨"},
	{Name: "Tidy a room", Block: block.BlockHome, XP: 10, Icon: "🏠"},
	{Name: "Home improvement task", Block: block.BlockHome, XP: 15, Icon: "🔧"},
}
