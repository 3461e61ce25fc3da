package progression

import "math"

const (
	// BaseXP is the per-level cost unit: level L costs BaseXP * L to clear.
	BaseXP = 550

	// MaxLevel is terminal; XP past it never changes the level.
	MaxLevel = 25
)

// LevelInfo describes where a total XP amount lands on the level curve.
type LevelInfo struct {
	Level       int     `json:"level"`
	CurrentXP   int     `json:"current_xp"`
	NextLevelXP int     `json:"next_level_xp"`
	Progress    float64 `json:"progress"`
}

// GetLevel maps cumulative XP to a level plus progress within that level.
// Landing exactly on a boundary means progress 0 of the new level.
func GetLevel(totalXP int) LevelInfo {
	if totalXP < 0 {
		totalXP = 0
	}

	level := 1
	accumulated := 0

	for level < MaxLevel {
		needed := BaseXP * level
		if accumulated+needed > totalXP {
			return LevelInfo{
				Level:       level,
				CurrentXP:   totalXP - accumulated,
				NextLevelXP: needed,
				Progress:    float64(totalXP-accumulated) / float64(needed),
			}
		}
		accumulated += needed
		level++
	}

	return LevelInfo{Level: MaxLevel, CurrentXP: 0, NextLevelXP: 0, Progress: 1}
}

// CalcKanbanXP scores a kanban task from its three 1-10 ratings.
// Rounding is half away from zero; callers freeze the result when the task
// transitions into DONE.
func CalcKanbanXP(importance, discomfort, urgency int) int {
	return int(math.Round(float64(importance*discomfort*urgency) / 10.0))
}

// AvatarStage mirrors the level, capped at MaxLevel.
func AvatarStage(level int) int {
	if level > MaxLevel {
		return MaxLevel
	}
	if level < 1 {
		return 1
	}
	return level
}

// AvatarTitles names each avatar stage.
var AvatarTitles = map[int]string{
	1:  "Seedling",
	2:  "Sprout",
	3:  "Sapling",
	4:  "Young Tree",
	5:  "Tree",
	6:  "Warrior",
	7:  "Knight",
	8:  "Guardian",
	9:  "Champion",
	10: "Hero",
	11: "Sage",
	12: "Mystic",
	13: "Archon",
	14: "Legend",
	15: "Titan",
	16: "Cosmic",
	17: "Astral",
	18: "Nebula",
	19: "Galaxy",
	20: "Universe",
	21: "Transcendent",
	22: "Eternal",
	23: "Infinite",
	24: "Omega",
	25: "Apex",
}
