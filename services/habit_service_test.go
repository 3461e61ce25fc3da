package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifeQuestAPI/internal/types/block"
	"lifeQuestAPI/internal/types/habit"
)

func createTestHabit(t *testing.T, svc *HabitService, clerkID string) *habit.Habit {
	t.Helper()

	h, err := svc.CreateHabit(context.Background(), clerkID, &habit.CreateHabitRequest{
		Name:      "Morning run",
		Block:     block.BlockHealth,
		Frequency: habit.FrequencyDaily,
		XPPerLog:  15,
	})
	require.NoError(t, err)
	return h
}

func TestLogHabitAwardsMultipliedXP(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()

	u := createTestUser(t, pool)
	habits := NewHabitService(pool, nil)
	users := NewUserService(pool)

	h := createTestHabit(t, habits, u.ClerkID)

	result, err := habits.LogHabit(ctx, u.ClerkID, h.ID.String(), &habit.LogHabitRequest{})
	require.NoError(t, err)

	// First completion lands in the Beginner band, multiplier 1.1:
	// round(15 * 1.1) = 17.
	assert.Equal(t, 17, result.XPAwarded)
	assert.Equal(t, 1, result.LevelInfo.Level)
	assert.Equal(t, "Beginner", result.LevelInfo.Title)

	after, err := users.GetUserByClerkID(ctx, u.ClerkID)
	require.NoError(t, err)
	assert.Equal(t, 17, after.TotalXP)

	got, err := habits.GetHabit(ctx, u.ClerkID, h.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 1, got.TotalLogs)
	assert.Equal(t, 1, got.CurrentStreak)
}

func TestLogHabitSameDayIsIdempotent(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()

	u := createTestUser(t, pool)
	habits := NewHabitService(pool, nil)
	users := NewUserService(pool)

	h := createTestHabit(t, habits, u.ClerkID)

	_, err := habits.LogHabit(ctx, u.ClerkID, h.ID.String(), &habit.LogHabitRequest{})
	require.NoError(t, err)
	second, err := habits.LogHabit(ctx, u.ClerkID, h.ID.String(), &habit.LogHabitRequest{})
	require.NoError(t, err)

	assert.Equal(t, 0, second.XPAwarded, "re-logging the same day awards nothing")

	after, err := users.GetUserByClerkID(ctx, u.ClerkID)
	require.NoError(t, err)
	assert.Equal(t, 17, after.TotalXP)

	got, err := habits.GetHabit(ctx, u.ClerkID, h.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 1, got.TotalLogs)
}

func TestUnlogHabitReversesFrozenXP(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()

	u := createTestUser(t, pool)
	habits := NewHabitService(pool, nil)
	users := NewUserService(pool)

	h := createTestHabit(t, habits, u.ClerkID)

	logged, err := habits.LogHabit(ctx, u.ClerkID, h.ID.String(), &habit.LogHabitRequest{})
	require.NoError(t, err)
	require.Equal(t, 17, logged.XPAwarded)

	completed := false
	undone, err := habits.LogHabit(ctx, u.ClerkID, h.ID.String(), &habit.LogHabitRequest{Completed: &completed})
	require.NoError(t, err)

	assert.True(t, undone.Removed)
	assert.Equal(t, 17, undone.XPReversed, "reversal matches the frozen award")

	after, err := users.GetUserByClerkID(ctx, u.ClerkID)
	require.NoError(t, err)
	assert.Equal(t, 0, after.TotalXP)

	got, err := habits.GetHabit(ctx, u.ClerkID, h.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 0, got.TotalLogs)
	assert.Equal(t, 0, got.CurrentStreak)
}

func TestCreateHabitValidation(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()

	u := createTestUser(t, pool)
	habits := NewHabitService(pool, nil)

	_, err := habits.CreateHabit(ctx, u.ClerkID, &habit.CreateHabitRequest{
		Name:      "",
		Block:     block.BlockHealth,
		Frequency: habit.FrequencyDaily,
		XPPerLog:  10,
	})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = habits.CreateHabit(ctx, u.ClerkID, &habit.CreateHabitRequest{
		Name:      "Stretch",
		Block:     block.BlockHealth,
		Frequency: habit.FrequencyCustom,
		XPPerLog:  10,
	})
	assert.ErrorIs(t, err, ErrValidation, "CUSTOM frequency needs customDays")
}
