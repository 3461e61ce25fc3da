package user

import (
	"time"

	"lifeQuestAPI/internal/progression"
)

type User struct {
	ID             string     `json:"id"`
	ClerkID        string     `json:"clerkId"`
	Email          string     `json:"email"`
	Username       string     `json:"username"`
	FirstName      string     `json:"firstName"`
	LastName       string     `json:"lastName"`
	ImageURL       string     `json:"imageUrl,omitempty"`
	EmailVerified  bool       `json:"emailVerified"`
	Timezone       string     `json:"timezone"`
	Locale         string     `json:"locale"`
	TotalXP        int        `json:"totalXp"`
	TotalCoins     int        `json:"totalCoins"`
	CurrentStreak  int        `json:"currentStreak"`
	LongestStreak  int        `json:"longestStreak"`
	LastActiveDate *time.Time `json:"lastActiveDate"`
	AvatarStage    int        `json:"avatarStage"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

type CreateUserRequest struct {
	ClerkID   string `json:"clerkId"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	ImageURL  string `json:"imageUrl"`
}

type UpdateProfileRequest struct {
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	ImageURL  string `json:"imageUrl"`
	Timezone  string `json:"timezone"`
	Locale    string `json:"locale"`
}

// Profile is the GET /user payload: the row plus the derived level view.
type Profile struct {
	*User
	LevelInfo   progression.LevelInfo `json:"levelInfo"`
	AvatarTitle string                `json:"avatarTitle"`
}

// Stats is the GET /user/stats payload.
type Stats struct {
	TotalXP       int                   `json:"total_xp"`
	TotalCoins    int                   `json:"total_coins"`
	LevelInfo     progression.LevelInfo `json:"level_info"`
	AvatarStage   int                   `json:"avatar_stage"`
	CurrentStreak int                   `json:"current_streak"`
	LongestStreak int                   `json:"longest_streak"`
	LogsThisWeek  int                   `json:"logs_this_week"`
	LogsThisMonth int                   `json:"logs_this_month"`
	LogsAllTime   int                   `json:"logs_all_time"`
	HabitsActive  int                   `json:"habits_active"`
	TasksDone     int                   `json:"tasks_done"`
}
