package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifeQuestAPI/internal/types/action"
	"lifeQuestAPI/internal/types/block"
)

func TestCreateLogAwardsXPAndStartsStreak(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()

	u := createTestUser(t, pool)
	actions := NewActionService(pool)
	logs := NewLogService(pool, nil)

	a, err := actions.CreateAction(ctx, u.ClerkID, &action.CreateActionRequest{
		Name:  "Deep work hour",
		Block: block.BlockWork,
		XP:    20,
		Icon:  "🧱",
	})
	require.NoError(t, err)

	result, err := logs.CreateLog(ctx, u.ClerkID, &action.CreateLogRequest{ActionID: a.ID.String()})
	require.NoError(t, err)

	assert.Equal(t, 20, result.XPAwarded)
	assert.Equal(t, 20, result.Log.XPAwarded, "awarded xp is frozen on the log row")
	assert.Equal(t, 1, result.NewStreak, "first log starts a streak")
	assert.Equal(t, 1, result.Level)
	assert.Equal(t, 0, result.CoinBonus, "streak 1 is not a milestone")

	users := NewUserService(pool)
	after, err := users.GetUserByClerkID(ctx, u.ClerkID)
	require.NoError(t, err)
	assert.Equal(t, 20, after.TotalXP)
	assert.Equal(t, 1, after.CurrentStreak)
	require.NotNil(t, after.LastActiveDate)
}

func TestCreateLogSameDayDoesNotAdvanceStreak(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()

	u := createTestUser(t, pool)
	actions := NewActionService(pool)
	logs := NewLogService(pool, nil)

	a, err := actions.CreateAction(ctx, u.ClerkID, &action.CreateActionRequest{
		Name:  "Meditation",
		Block: block.BlockSpirituality,
		XP:    10,
		Icon:  "🕌",
	})
	require.NoError(t, err)

	first, err := logs.CreateLog(ctx, u.ClerkID, &action.CreateLogRequest{ActionID: a.ID.String()})
	require.NoError(t, err)
	second, err := logs.CreateLog(ctx, u.ClerkID, &action.CreateLogRequest{ActionID: a.ID.String()})
	require.NoError(t, err)

	assert.Equal(t, first.NewStreak, second.NewStreak, "logging twice in one day keeps the streak")

	users := NewUserService(pool)
	after, err := users.GetUserByClerkID(ctx, u.ClerkID)
	require.NoError(t, err)
	assert.Equal(t, 20, after.TotalXP, "both logs still award xp")
}

func TestDeleteLogReversesFrozenXP(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()

	u := createTestUser(t, pool)
	actions := NewActionService(pool)
	logs := NewLogService(pool, nil)
	users := NewUserService(pool)

	a, err := actions.CreateAction(ctx, u.ClerkID, &action.CreateActionRequest{
		Name:  "Read 20 pages",
		Block: block.BlockDevelopment,
		XP:    15,
		Icon:  "📚",
	})
	require.NoError(t, err)

	result, err := logs.CreateLog(ctx, u.ClerkID, &action.CreateLogRequest{ActionID: a.ID.String()})
	require.NoError(t, err)

	// Changing the action's XP afterwards must not change what the delete
	// reverses.
	_, err = actions.UpdateAction(ctx, u.ClerkID, a.ID.String(), &action.UpdateActionRequest{
		Name:  a.Name,
		Block: a.Block,
		XP:    99,
		Icon:  a.Icon,
	})
	require.NoError(t, err)

	require.NoError(t, logs.DeleteLog(ctx, u.ClerkID, result.Log.ID.String()))

	after, err := users.GetUserByClerkID(ctx, u.ClerkID)
	require.NoError(t, err)
	assert.Equal(t, 0, after.TotalXP, "deleting the log reverses exactly the frozen 15")
}

func TestDeleteLogUnknownIDReturnsNotFound(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()

	u := createTestUser(t, pool)
	logs := NewLogService(pool, nil)

	err := logs.DeleteLog(ctx, u.ClerkID, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, ErrNotFound)
}
