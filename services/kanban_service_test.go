package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifeQuestAPI/internal/types/kanban"
)

func TestCompleteTaskAwardsXPOnce(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()

	u := createTestUser(t, pool)
	svc := NewKanbanService(pool, nil)
	users := NewUserService(pool)

	task, err := svc.CreateTask(ctx, u.ClerkID, &kanban.CreateTaskRequest{
		Title:      "Write the quarterly report",
		Importance: 8,
		Discomfort: 6,
		Urgency:    7,
	})
	require.NoError(t, err)
	assert.Equal(t, kanban.StatusBacklog, task.Status)
	assert.Nil(t, task.XPAwarded)

	done := kanban.StatusDone
	result, err := svc.UpdateTask(ctx, u.ClerkID, task.ID.String(), &kanban.UpdateTaskRequest{Status: &done})
	require.NoError(t, err)

	// round(8*6*7 / 10) = round(33.6) = 34.
	assert.Equal(t, 34, result.XPAwarded)
	require.NotNil(t, result.Task.XPAwarded)
	assert.Equal(t, 34, *result.Task.XPAwarded)
	require.NotNil(t, result.Task.CompletedAt)

	after, err := users.GetUserByClerkID(ctx, u.ClerkID)
	require.NoError(t, err)
	assert.Equal(t, 34, after.TotalXP)

	// Bounce it out of DONE and back: no second award.
	todo := kanban.StatusTodo
	_, err = svc.UpdateTask(ctx, u.ClerkID, task.ID.String(), &kanban.UpdateTaskRequest{Status: &todo})
	require.NoError(t, err)

	again, err := svc.UpdateTask(ctx, u.ClerkID, task.ID.String(), &kanban.UpdateTaskRequest{Status: &done})
	require.NoError(t, err)
	assert.Equal(t, 0, again.XPAwarded, "second completion awards nothing")

	after, err = users.GetUserByClerkID(ctx, u.ClerkID)
	require.NoError(t, err)
	assert.Equal(t, 34, after.TotalXP)
}

func TestMoveOutOfDoneKeepsXP(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()

	u := createTestUser(t, pool)
	svc := NewKanbanService(pool, nil)
	users := NewUserService(pool)

	task, err := svc.CreateTask(ctx, u.ClerkID, &kanban.CreateTaskRequest{
		Title:      "Clean the garage",
		Importance: 5,
		Discomfort: 5,
		Urgency:    5,
	})
	require.NoError(t, err)

	done := kanban.StatusDone
	result, err := svc.UpdateTask(ctx, u.ClerkID, task.ID.String(), &kanban.UpdateTaskRequest{Status: &done})
	require.NoError(t, err)
	// round(125 / 10) = round(12.5) = 13, half away from zero.
	assert.Equal(t, 13, result.XPAwarded)

	inProgress := kanban.StatusInProgress
	_, err = svc.UpdateTask(ctx, u.ClerkID, task.ID.String(), &kanban.UpdateTaskRequest{Status: &inProgress})
	require.NoError(t, err)

	after, err := users.GetUserByClerkID(ctx, u.ClerkID)
	require.NoError(t, err)
	assert.Equal(t, 13, after.TotalXP, "leaving DONE does not reverse the award")
}

func TestRatingsFreezeAfterCompletion(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()

	u := createTestUser(t, pool)
	svc := NewKanbanService(pool, nil)

	task, err := svc.CreateTask(ctx, u.ClerkID, &kanban.CreateTaskRequest{
		Title:      "Book the dentist",
		Importance: 3,
		Discomfort: 9,
		Urgency:    2,
	})
	require.NoError(t, err)

	done := kanban.StatusDone
	_, err = svc.UpdateTask(ctx, u.ClerkID, task.ID.String(), &kanban.UpdateTaskRequest{Status: &done})
	require.NoError(t, err)

	ten := 10
	_, err = svc.UpdateTask(ctx, u.ClerkID, task.ID.String(), &kanban.UpdateTaskRequest{Importance: &ten})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateTaskValidation(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()

	u := createTestUser(t, pool)
	svc := NewKanbanService(pool, nil)

	_, err := svc.CreateTask(ctx, u.ClerkID, &kanban.CreateTaskRequest{
		Title:      "Bad ratings",
		Importance: 0,
		Discomfort: 5,
		Urgency:    5,
	})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateTask(ctx, u.ClerkID, &kanban.CreateTaskRequest{
		Title:      "Born finished",
		Status:     kanban.StatusDone,
		Importance: 5,
		Discomfort: 5,
		Urgency:    5,
	})
	assert.ErrorIs(t, err, ErrValidation)
}
