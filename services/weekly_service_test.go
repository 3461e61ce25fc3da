package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifeQuestAPI/internal/types/block"
	"lifeQuestAPI/internal/types/kanban"
)

func TestWeeklyBalanceCountsCompletedTasks(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()

	u := createTestUser(t, pool)
	tasks := NewKanbanService(pool, nil)
	weekly := NewWeeklyService(pool)

	work := block.BlockWork
	task, err := tasks.CreateTask(ctx, u.ClerkID, &kanban.CreateTaskRequest{
		Title:      "Ship the release notes",
		Block:      &work,
		Importance: 5,
		Discomfort: 5,
		Urgency:    5,
	})
	require.NoError(t, err)

	done := kanban.StatusDone
	_, err = tasks.UpdateTask(ctx, u.ClerkID, task.ID.String(), &kanban.UpdateTaskRequest{Status: &done})
	require.NoError(t, err)

	balance, err := weekly.GetWeeklyBalance(ctx, u.ClerkID, "")
	require.NoError(t, err)
	assert.Equal(t, 13, balance.TotalXPWeek)
	for _, b := range balance.Blocks {
		if b.Block == block.BlockWork {
			assert.Equal(t, 13, b.XP)
		}
	}
}

func TestWeeklyBalanceSkipsBlocklessTasks(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()

	u := createTestUser(t, pool)
	tasks := NewKanbanService(pool, nil)
	weekly := NewWeeklyService(pool)

	task, err := tasks.CreateTask(ctx, u.ClerkID, &kanban.CreateTaskRequest{
		Title:      "Sort the inbox",
		Importance: 5,
		Discomfort: 5,
		Urgency:    5,
	})
	require.NoError(t, err)
	require.Nil(t, task.Block)

	done := kanban.StatusDone
	result, err := tasks.UpdateTask(ctx, u.ClerkID, task.ID.String(), &kanban.UpdateTaskRequest{Status: &done})
	require.NoError(t, err)
	require.Equal(t, 13, result.XPAwarded)

	// A task outside every block earns XP but belongs to no weekly balance.
	balance, err := weekly.GetWeeklyBalance(ctx, u.ClerkID, "")
	require.NoError(t, err)
	assert.Equal(t, 0, balance.TotalXPWeek)
}
