package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lifeQuestAPI/internal/progression"
	"lifeQuestAPI/internal/timezone"
	"lifeQuestAPI/internal/types/checkin"
	"lifeQuestAPI/internal/types/user"
)

type UserService struct {
	db *pgxpool.Pool
}

func NewUserService(db *pgxpool.Pool) *UserService {
	return &UserService{db: db}
}

const userColumns = `id, clerk_id, email, username, first_name, last_name, image_url, email_verified,
	timezone, locale, total_xp, total_coins, current_streak, longest_streak, last_active_date,
	avatar_stage, created_at, updated_at`

func scanUser(row pgx.Row) (*user.User, error) {
	u := &user.User{}
	err := row.Scan(
		&u.ID,
		&u.ClerkID,
		&u.Email,
		&u.Username,
		&u.FirstName,
		&u.LastName,
		&u.ImageURL,
		&u.EmailVerified,
		&u.Timezone,
		&u.Locale,
		&u.TotalXP,
		&u.TotalCoins,
		&u.CurrentStreak,
		&u.LongestStreak,
		&u.LastActiveDate,
		&u.AvatarStage,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserService) CreateUser(ctx context.Context, req *user.CreateUserRequest) (*user.User, error) {
	query := `
	INSERT INTO users (id, clerk_id, email, username, first_name, last_name, image_url, timezone, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	RETURNING ` + userColumns

	u, err := scanUser(s.db.QueryRow(
		ctx,
		query,
		uuid.New().String(),
		req.ClerkID,
		req.Email,
		req.Username,
		req.FirstName,
		req.LastName,
		req.ImageURL,
		timezone.DefaultTimezone,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return u, nil
}

func (s *UserService) GetUserByClerkID(ctx context.Context, clerkID string) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE clerk_id = $1`

	u, err := scanUser(s.db.QueryRow(ctx, query, clerkID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: user", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// GetProfile returns the user row together with its derived level view.
func (s *UserService) GetProfile(ctx context.Context, clerkID string) (*user.Profile, error) {
	u, err := s.GetUserByClerkID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	info := progression.GetLevel(u.TotalXP)
	return &user.Profile{
		User:        u,
		LevelInfo:   info,
		AvatarTitle: progression.AvatarTitles[progression.AvatarStage(info.Level)],
	}, nil
}

func (s *UserService) UpdateProfileByClerkID(ctx context.Context, clerkID string, req *user.UpdateProfileRequest) (*user.User, error) {
	if req.Timezone != "" {
		if _, err := time.LoadLocation(req.Timezone); err != nil {
			return nil, fmt.Errorf("%w: unknown timezone %q", ErrValidation, req.Timezone)
		}
	}

	query := `
	UPDATE users
	SET
		username = COALESCE(NULLIF($2, ''), username),
		first_name = COALESCE(NULLIF($3, ''), first_name),
		last_name = COALESCE(NULLIF($4, ''), last_name),
		image_url = COALESCE(NULLIF($5, ''), image_url),
		timezone = COALESCE(NULLIF($6, ''), timezone),
		locale = COALESCE(NULLIF($7, ''), locale),
		updated_at = NOW()
	WHERE clerk_id = $1
	RETURNING ` + userColumns

	u, err := scanUser(s.db.QueryRow(
		ctx,
		query,
		clerkID,
		req.Username,
		req.FirstName,
		req.LastName,
		req.ImageURL,
		req.Timezone,
		req.Locale,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: user", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return u, nil
}

func (s *UserService) UpdateEmailVerification(ctx context.Context, clerkID string, verified bool) error {
	query := `
	UPDATE users
	SET email_verified = $2, updated_at = NOW()
	WHERE clerk_id = $1
	`

	_, err := s.db.Exec(ctx, query, clerkID, verified)
	return err
}

func (s *UserService) DeleteUserByClerkID(ctx context.Context, clerkID string) error {
	result, err := s.db.Exec(ctx, `DELETE FROM users WHERE clerk_id = $1`, clerkID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: user", ErrNotFound)
	}
	return nil
}

// GetUserTimezone loads the user's location, falling back to the default.
func (s *UserService) GetUserTimezone(ctx context.Context, clerkID string) (*time.Location, error) {
	var tz string
	err := s.db.QueryRow(ctx, `SELECT timezone FROM users WHERE clerk_id = $1`, clerkID).Scan(&tz)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: user", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get timezone: %w", err)
	}
	return timezone.LoadLocation(tz), nil
}

func (s *UserService) GetUserStats(ctx context.Context, clerkID string) (*user.Stats, error) {
	u, err := s.GetUserByClerkID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	loc := timezone.LoadLocation(u.Timezone)
	weekStart := timezone.WeekStartForTimezone(time.Now(), loc)
	monthStart := timezone.TodayForTimezone(time.Now(), loc).AddDate(0, 0, 1-time.Now().In(loc).Day())

	query := `
	SELECT
		COALESCE(COUNT(*) FILTER (WHERE date >= $2), 0) AS logs_week,
		COALESCE(COUNT(*) FILTER (WHERE date >= $3), 0) AS logs_month,
		COALESCE(COUNT(*), 0) AS logs_all
	FROM log_entries
	WHERE user_id = $1
	`

	stats := &user.Stats{
		TotalXP:       u.TotalXP,
		TotalCoins:    u.TotalCoins,
		LevelInfo:     progression.GetLevel(u.TotalXP),
		AvatarStage:   u.AvatarStage,
		CurrentStreak: u.CurrentStreak,
		LongestStreak: u.LongestStreak,
	}
	err = s.db.QueryRow(ctx, query, u.ID, weekStart, monthStart).Scan(
		&stats.LogsThisWeek,
		&stats.LogsThisMonth,
		&stats.LogsAllTime,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get log stats: %w", err)
	}

	err = s.db.QueryRow(ctx, `SELECT COUNT(*) FROM habits WHERE user_id = $1`, u.ID).Scan(&stats.HabitsActive)
	if err != nil {
		return nil, fmt.Errorf("failed to count habits: %w", err)
	}

	err = s.db.QueryRow(ctx, `SELECT COUNT(*) FROM kanban_tasks WHERE user_id = $1 AND status = 'DONE'`, u.ID).Scan(&stats.TasksDone)
	if err != nil {
		return nil, fmt.Errorf("failed to count done tasks: %w", err)
	}

	return stats, nil
}

// ResetProgress zeroes the motivational layer and wipes its history in one
// transaction. Actions, habits and tasks themselves survive.
func (s *UserService) ResetProgress(ctx context.Context, clerkID string) error {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		return fmt.Errorf("%w: user", ErrNotFound)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, stmt := range []string{
		`DELETE FROM log_entries WHERE user_id = $1`,
		`DELETE FROM habit_logs WHERE user_id = $1`,
		`DELETE FROM daily_checkins WHERE user_id = $1`,
		`DELETE FROM energy_recoveries WHERE energy_log_id IN (SELECT id FROM energy_logs WHERE user_id = $1)`,
		`DELETE FROM energy_logs WHERE user_id = $1`,
		`UPDATE habits SET level = 1, total_logs = 0, current_streak = 0, longest_streak = 0, updated_at = NOW() WHERE user_id = $1`,
		`UPDATE users SET total_xp = 0, total_coins = 0, current_streak = 0, longest_streak = 0,
			last_active_date = NULL, avatar_stage = 1, updated_at = NOW() WHERE id = $1`,
	} {
		if _, err := tx.Exec(ctx, stmt, userID); err != nil {
			return fmt.Errorf("failed to reset progress: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit reset: %w", err)
	}
	return nil
}

// ClearActions deletes the user's actions and their logs without reversing
// earned XP; it is a destructive catalog reset, not an undo.
func (s *UserService) ClearActions(ctx context.Context, clerkID string) error {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		return fmt.Errorf("%w: user", ErrNotFound)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM log_entries WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to delete logs: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM actions WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to delete actions: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit clear: %w", err)
	}
	return nil
}

// ExportData dumps every row the user owns as one JSON-friendly map.
func (s *UserService) ExportData(ctx context.Context, clerkID string) (map[string]any, error) {
	u, err := s.GetUserByClerkID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	export := map[string]any{"user": u, "exportedAt": time.Now().UTC()}

	tables := map[string]string{
		"actions":     `SELECT COALESCE(json_agg(t), '[]'::json) FROM (SELECT * FROM actions WHERE user_id = $1) t`,
		"logs":        `SELECT COALESCE(json_agg(t), '[]'::json) FROM (SELECT * FROM log_entries WHERE user_id = $1 ORDER BY date) t`,
		"habits":      `SELECT COALESCE(json_agg(t), '[]'::json) FROM (SELECT * FROM habits WHERE user_id = $1) t`,
		"habitLogs":   `SELECT COALESCE(json_agg(t), '[]'::json) FROM (SELECT * FROM habit_logs WHERE user_id = $1 ORDER BY date) t`,
		"kanbanTasks": `SELECT COALESCE(json_agg(t), '[]'::json) FROM (SELECT * FROM kanban_tasks WHERE user_id = $1) t`,
		"rewards":     `SELECT COALESCE(json_agg(t), '[]'::json) FROM (SELECT * FROM rewards WHERE user_id = $1) t`,
		"checkins":    `SELECT COALESCE(json_agg(t), '[]'::json) FROM (SELECT * FROM daily_checkins WHERE user_id = $1 ORDER BY date) t`,
		"energyLogs":  `SELECT COALESCE(json_agg(t), '[]'::json) FROM (SELECT * FROM energy_logs WHERE user_id = $1 ORDER BY date) t`,
	}

	for key, query := range tables {
		var rows any
		if err := s.db.QueryRow(ctx, query, u.ID).Scan(&rows); err != nil {
			return nil, fmt.Errorf("failed to export %s: %w", key, err)
		}
		export[key] = rows
	}

	return export, nil
}

// UpsertCheckin writes the end-of-day reflection row for a local day.
func (s *UserService) UpsertCheckin(ctx context.Context, clerkID string, req *checkin.UpsertCheckinRequest) (*checkin.Checkin, error) {
	u, err := s.GetUserByClerkID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	if req.EnergyLevel != nil && (*req.EnergyLevel < 1 || *req.EnergyLevel > 5) {
		return nil, fmt.Errorf("%w: energyLevel must be 1-5", ErrValidation)
	}
	if req.MoodLevel != nil && (*req.MoodLevel < 1 || *req.MoodLevel > 5) {
		return nil, fmt.Errorf("%w: moodLevel must be 1-5", ErrValidation)
	}

	loc := timezone.LoadLocation(u.Timezone)
	date, err := timezone.MidnightInTimezone(req.Date, loc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	query := `
	INSERT INTO daily_checkins (id, user_id, date, main_task_done, total_tasks, completed_tasks, xp_earned, energy_level, mood_level, note, created_at, updated_at)
	VALUES ($1, $2, $3, $4, COALESCE($5, 0), COALESCE($6, 0), COALESCE($7, 0), $8, $9, $10, NOW(), NOW())
	ON CONFLICT (user_id, date)
	DO UPDATE SET
		main_task_done = $4,
		total_tasks = COALESCE($5, daily_checkins.total_tasks),
		completed_tasks = COALESCE($6, daily_checkins.completed_tasks),
		xp_earned = COALESCE($7, daily_checkins.xp_earned),
		energy_level = COALESCE($8, daily_checkins.energy_level),
		mood_level = COALESCE($9, daily_checkins.mood_level),
		note = COALESCE($10, daily_checkins.note),
		updated_at = NOW()
	RETURNING id, user_id, date, main_task_done, total_tasks, completed_tasks, xp_earned, energy_level, mood_level, note, created_at, updated_at
	`

	c := &checkin.Checkin{}
	err = s.db.QueryRow(ctx, query,
		uuid.New(), u.ID, date, req.MainTaskDone, req.TotalTasks, req.CompletedTasks,
		req.XPEarned, req.EnergyLevel, req.MoodLevel, req.Note,
	).Scan(
		&c.ID, &c.UserID, &c.Date, &c.MainTaskDone, &c.TotalTasks, &c.CompletedTasks,
		&c.XPEarned, &c.EnergyLevel, &c.MoodLevel, &c.Note, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert checkin: %w", err)
	}
	return c, nil
}

func (s *UserService) GetCheckins(ctx context.Context, clerkID string, from, to string) ([]*checkin.Checkin, error) {
	u, err := s.GetUserByClerkID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	loc := timezone.LoadLocation(u.Timezone)
	start, err := timezone.MidnightInTimezone(from, loc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	end, err := timezone.EndOfDayInTimezone(to, loc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	query := `
	SELECT id, user_id, date, main_task_done, total_tasks, completed_tasks, xp_earned, energy_level, mood_level, note, created_at, updated_at
	FROM daily_checkins
	WHERE user_id = $1 AND date >= $2 AND date <= $3
	ORDER BY date
	`

	rows, err := s.db.Query(ctx, query, u.ID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to get checkins: %w", err)
	}
	defer rows.Close()

	checkins := []*checkin.Checkin{}
	for rows.Next() {
		c := &checkin.Checkin{}
		err := rows.Scan(
			&c.ID, &c.UserID, &c.Date, &c.MainTaskDone, &c.TotalTasks, &c.CompletedTasks,
			&c.XPEarned, &c.EnergyLevel, &c.MoodLevel, &c.Note, &c.CreatedAt, &c.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan checkin: %w", err)
		}
		checkins = append(checkins, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return checkins, nil
}
