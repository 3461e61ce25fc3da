package stats

import "lifeQuestAPI/internal/types/block"

// DailyStats is the "today" strip on the dashboard.
type DailyStats struct {
	XPToday      int `json:"xp_today"`
	ActionsToday int `json:"actions_today"`
	HabitsToday  int `json:"habits_today"`
}

// WeeklyBlockData is one block's slice of the weekly balance view.
type WeeklyBlockData struct {
	Block      block.Block `json:"block"`
	XP         int         `json:"xp"`
	Cap        int         `json:"cap"`
	Percentage int         `json:"percentage"`
	Trend      string      `json:"trend"` // "up", "down" or "same"
}

type WeeklyResponse struct {
	Blocks      []*WeeklyBlockData `json:"blocks"`
	TotalXPWeek int                `json:"totalXpWeek"`
	WeekStart   string             `json:"weekStart"`
}
