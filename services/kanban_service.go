package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lifeQuestAPI/internal/energy"
	"lifeQuestAPI/internal/progression"
	"lifeQuestAPI/internal/timezone"
	"lifeQuestAPI/internal/types/kanban"
)

type KanbanService struct {
	db            *pgxpool.Pool
	notifications *NotificationService
}

func NewKanbanService(db *pgxpool.Pool, notifications *NotificationService) *KanbanService {
	return &KanbanService{db: db, notifications: notifications}
}

const taskColumns = `id, user_id, title, description, block, status, importance, discomfort, urgency,
	xp_awarded, due_date, is_main_task, main_task_date, completed_at, created_at, updated_at`

func scanTask(row pgx.Row) (*kanban.Task, error) {
	t := &kanban.Task{}
	err := row.Scan(
		&t.ID, &t.UserID, &t.Title, &t.Description, &t.Block, &t.Status,
		&t.Importance, &t.Discomfort, &t.Urgency, &t.XPAwarded, &t.DueDate,
		&t.IsMainTask, &t.MainTaskDate, &t.CompletedAt, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func validateRating(name string, v int) error {
	if v < 1 || v > 10 {
		return fmt.Errorf("%w: %s must be 1-10", ErrValidation, name)
	}
	return nil
}

func (s *KanbanService) CreateTask(ctx context.Context, clerkID string, req *kanban.CreateTaskRequest) (*kanban.Task, error) {
	if req.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	for name, v := range map[string]int{"importance": req.Importance, "discomfort": req.Discomfort, "urgency": req.Urgency} {
		if err := validateRating(name, v); err != nil {
			return nil, err
		}
	}
	if req.Block != nil && !req.Block.IsValid() {
		return nil, fmt.Errorf("%w: unknown block %q", ErrValidation, *req.Block)
	}

	status := req.Status
	if status == "" {
		status = kanban.StatusBacklog
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}
	if status == kanban.StatusDone {
		return nil, fmt.Errorf("%w: tasks cannot be created as DONE", ErrValidation)
	}

	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		return nil, fmt.Errorf("%w: user", ErrNotFound)
	}

	query := `
	INSERT INTO kanban_tasks (id, user_id, title, description, block, status, importance, discomfort, urgency,
		due_date, is_main_task, main_task_date, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
	RETURNING ` + taskColumns

	t, err := scanTask(s.db.QueryRow(ctx, query,
		uuid.New(), userID, req.Title, req.Description, req.Block, status,
		req.Importance, req.Discomfort, req.Urgency, req.DueDate,
		req.IsMainTask, req.MainTaskDate,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return t, nil
}

// GetTasks lists the board, optionally filtered to one column.
func (s *KanbanService) GetTasks(ctx context.Context, clerkID string, status kanban.Status) ([]*kanban.Task, error) {
	if status != "" && !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}

	query := `
	SELECT ` + taskColumns + `
	FROM kanban_tasks
	WHERE user_id = (SELECT id FROM users WHERE clerk_id = $1)
		AND ($2 = '' OR status = $2)
	ORDER BY
		CASE status WHEN 'BACKLOG' THEN 0 WHEN 'TODO' THEN 1 WHEN 'IN_PROGRESS' THEN 2 ELSE 3 END,
		created_at DESC
	`

	rows, err := s.db.Query(ctx, query, clerkID, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to get tasks: %w", err)
	}
	defer rows.Close()

	tasks := []*kanban.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return tasks, nil
}

// UpdateTask applies a partial update. Moving a task into DONE for the first
// time freezes its XP, stamps completed_at, spends energy for the day and,
// for the day's main task, marks the daily checkin. Moving it back out of
// DONE does not claw any of that back.
func (s *KanbanService) UpdateTask(ctx context.Context, clerkID, taskID string, req *kanban.UpdateTaskRequest) (*kanban.UpdateResult, error) {
	if req.Status != nil && !req.Status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, *req.Status)
	}
	if req.Block != nil && !req.Block.IsValid() {
		return nil, fmt.Errorf("%w: unknown block %q", ErrValidation, *req.Block)
	}
	for name, v := range map[string]*int{"importance": req.Importance, "discomfort": req.Discomfort, "urgency": req.Urgency} {
		if v != nil {
			if err := validateRating(name, *v); err != nil {
				return nil, err
			}
		}
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var userID uuid.UUID
	var tz string
	var totalXP int
	err = tx.QueryRow(ctx, `
	SELECT id, timezone, total_xp FROM users WHERE clerk_id = $1 FOR UPDATE
	`, clerkID).Scan(&userID, &tz, &totalXP)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: user", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to lock user: %w", err)
	}

	t, err := scanTask(tx.QueryRow(ctx, `
	SELECT `+taskColumns+` FROM kanban_tasks WHERE id = $1 AND user_id = $2 FOR UPDATE
	`, taskID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: task", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to lock task: %w", err)
	}

	// Ratings freeze once XP has been awarded; they fed the formula.
	if t.XPAwarded != nil && (req.Importance != nil || req.Discomfort != nil || req.Urgency != nil) {
		return nil, fmt.Errorf("%w: ratings are frozen after completion", ErrValidation)
	}

	if req.Title != nil {
		if *req.Title == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", ErrValidation)
		}
		t.Title = *req.Title
	}
	if req.Description != nil {
		t.Description = req.Description
	}
	if req.Block != nil {
		t.Block = req.Block
	}
	if req.Importance != nil {
		t.Importance = *req.Importance
	}
	if req.Discomfort != nil {
		t.Discomfort = *req.Discomfort
	}
	if req.Urgency != nil {
		t.Urgency = *req.Urgency
	}
	if req.DueDate != nil {
		t.DueDate = req.DueDate
	}
	if req.IsMainTask != nil {
		t.IsMainTask = *req.IsMainTask
	}
	if req.MainTaskDate != nil {
		t.MainTaskDate = req.MainTaskDate
	}

	result := &kanban.UpdateResult{}
	leveledUpTo := 0
	becameDone := req.Status != nil && *req.Status == kanban.StatusDone && t.Status != kanban.StatusDone

	if req.Status != nil {
		t.Status = *req.Status
	}

	if becameDone {
		now := time.Now()
		t.CompletedAt = &now

		// Award only on the first completion ever.
		if t.XPAwarded == nil {
			xp := progression.CalcKanbanXP(t.Importance, t.Discomfort, t.Urgency)
			t.XPAwarded = &xp
			result.XPAwarded = xp

			oldLevel := progression.GetLevel(totalXP).Level
			newTotalXP := totalXP + xp
			newInfo := progression.GetLevel(newTotalXP)

			_, err = tx.Exec(ctx, `
			UPDATE users SET total_xp = $2, avatar_stage = $3, updated_at = NOW() WHERE id = $1
			`, userID, newTotalXP, progression.AvatarStage(newInfo.Level))
			if err != nil {
				return nil, fmt.Errorf("failed to update user: %w", err)
			}

			if newInfo.Level > oldLevel {
				leveledUpTo = newInfo.Level
			}
		}

		loc := timezone.LoadLocation(tz)
		today := timezone.TodayForTimezone(now, loc)

		spent, err := s.spendEnergyForTask(ctx, tx, userID, today, t)
		if err != nil {
			return nil, err
		}
		result.EnergySpent = spent

		if t.IsMainTask && t.MainTaskDate != nil && timezone.SameDay(*t.MainTaskDate, now, loc) {
			if err := s.markMainTaskDone(ctx, tx, userID, today); err != nil {
				return nil, err
			}
		}
	}

	updated, err := scanTask(tx.QueryRow(ctx, `
	UPDATE kanban_tasks
	SET title = $2, description = $3, block = $4, status = $5, importance = $6, discomfort = $7,
		urgency = $8, xp_awarded = $9, due_date = $10, is_main_task = $11, main_task_date = $12,
		completed_at = $13, updated_at = NOW()
	WHERE id = $1
	RETURNING `+taskColumns,
		t.ID, t.Title, t.Description, t.Block, t.Status, t.Importance, t.Discomfort,
		t.Urgency, t.XPAwarded, t.DueDate, t.IsMainTask, t.MainTaskDate, t.CompletedAt,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	result.Task = updated

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit task update: %w", err)
	}

	if leveledUpTo > 0 && s.notifications != nil {
		s.notifications.NotifyLevelUp(ctx, userID, leveledUpTo, progression.AvatarTitles[progression.AvatarStage(leveledUpTo)])
	}
	return result, nil
}

func (s *KanbanService) DeleteTask(ctx context.Context, clerkID, taskID string) error {
	query := `
	DELETE FROM kanban_tasks
	WHERE id = $2 AND user_id = (SELECT id FROM users WHERE clerk_id = $1)
	`

	result, err := s.db.Exec(ctx, query, clerkID, taskID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: task", ErrNotFound)
	}
	return nil
}

// spendEnergyForTask charges the task's energy price against today's energy
// log. Days without a morning input have no log row and are not charged.
func (s *KanbanService) spendEnergyForTask(ctx context.Context, tx pgx.Tx, userID uuid.UUID, today time.Time, t *kanban.Task) (int, error) {
	var logID uuid.UUID
	var current int
	err := tx.QueryRow(ctx, `
	SELECT id, current_energy FROM energy_logs
	WHERE user_id = $1 AND date = $2
	FOR UPDATE
	`, userID, today).Scan(&logID, &current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to lock energy log: %w", err)
	}

	cost := energy.CalcKanbanEnergyCost(t.Importance, t.Discomfort, t.Urgency)
	newEnergy, spent := energy.ApplySpend(current, cost)

	_, err = tx.Exec(ctx, `
	UPDATE energy_logs
	SET current_energy = $2, spent_total = spent_total + $3, updated_at = NOW()
	WHERE id = $1
	`, logID, newEnergy, spent)
	if err != nil {
		return 0, fmt.Errorf("failed to spend energy: %w", err)
	}
	return spent, nil
}

func (s *KanbanService) markMainTaskDone(ctx context.Context, tx pgx.Tx, userID uuid.UUID, today time.Time) error {
	query := `
	INSERT INTO daily_checkins (id, user_id, date, main_task_done, total_tasks, completed_tasks, xp_earned, created_at, updated_at)
	VALUES ($1, $2, $3, true, 0, 0, 0, NOW(), NOW())
	ON CONFLICT (user_id, date)
	DO UPDATE SET main_task_done = true, updated_at = NOW()
	`
	if _, err := tx.Exec(ctx, query, uuid.New(), userID, today); err != nil {
		return fmt.Errorf("failed to mark main task done: %w", err)
	}
	return nil
}
