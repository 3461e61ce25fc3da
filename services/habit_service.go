package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lifeQuestAPI/internal/habitlevel"
	"lifeQuestAPI/internal/progression"
	"lifeQuestAPI/internal/timezone"
	"lifeQuestAPI/internal/types/habit"
)

type HabitService struct {
	db            *pgxpool.Pool
	notifications *NotificationService
}

func NewHabitService(db *pgxpool.Pool, notifications *NotificationService) *HabitService {
	return &HabitService{db: db, notifications: notifications}
}

const habitColumns = `id, user_id, name, block, frequency, custom_days, target_per_week,
	xp_per_log, level, total_logs, current_streak, longest_streak, created_at, updated_at`

func scanHabit(row pgx.Row) (*habit.Habit, error) {
	h := &habit.Habit{}
	err := row.Scan(
		&h.ID, &h.UserID, &h.Name, &h.Block, &h.Frequency, &h.CustomDays, &h.TargetPerWeek,
		&h.XPPerLog, &h.Level, &h.TotalLogs, &h.CurrentStreak, &h.LongestStreak,
		&h.CreatedAt, &h.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return h, nil
}

func (s *HabitService) CreateHabit(ctx context.Context, clerkID string, req *habit.CreateHabitRequest) (*habit.Habit, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if !req.Block.IsValid() {
		return nil, fmt.Errorf("%w: unknown block %q", ErrValidation, req.Block)
	}
	if !req.Frequency.IsValid() {
		return nil, fmt.Errorf("%w: unknown frequency %q", ErrValidation, req.Frequency)
	}
	if req.Frequency == habit.FrequencyCustom && len(req.CustomDays) == 0 {
		return nil, fmt.Errorf("%w: customDays required for CUSTOM frequency", ErrValidation)
	}
	for _, d := range req.CustomDays {
		if d < 0 || d > 6 {
			return nil, fmt.Errorf("%w: customDays entries must be 0-6", ErrValidation)
		}
	}
	if req.XPPerLog < 1 || req.XPPerLog > 50 {
		return nil, fmt.Errorf("%w: xpPerLog must be 1-50", ErrValidation)
	}

	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		return nil, fmt.Errorf("%w: user", ErrNotFound)
	}

	query := `
	INSERT INTO habits (id, user_id, name, block, frequency, custom_days, target_per_week,
		xp_per_log, level, total_logs, current_streak, longest_streak, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 1, 0, 0, 0, NOW(), NOW())
	RETURNING ` + habitColumns

	h, err := scanHabit(s.db.QueryRow(ctx, query,
		uuid.New(), userID, req.Name, req.Block, req.Frequency, req.CustomDays,
		req.TargetPerWeek, req.XPPerLog,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create habit: %w", err)
	}
	return h, nil
}

// GetHabits lists habits with their logs for the current local week attached.
func (s *HabitService) GetHabits(ctx context.Context, clerkID string) ([]*habit.Habit, error) {
	var userID uuid.UUID
	var tz string
	err := s.db.QueryRow(ctx, `SELECT id, timezone FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID, &tz)
	if err != nil {
		return nil, fmt.Errorf("%w: user", ErrNotFound)
	}

	rows, err := s.db.Query(ctx, `SELECT `+habitColumns+` FROM habits WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get habits: %w", err)
	}
	defer rows.Close()

	habits := []*habit.Habit{}
	byID := map[uuid.UUID]*habit.Habit{}
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan habit: %w", err)
		}
		habits = append(habits, h)
		byID[h.ID] = h
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	if len(habits) == 0 {
		return habits, nil
	}

	loc := timezone.LoadLocation(tz)
	weekStart := timezone.WeekStartForTimezone(time.Now(), loc)

	logRows, err := s.db.Query(ctx, `
	SELECT id, habit_id, user_id, date, completed, xp_awarded, created_at
	FROM habit_logs
	WHERE user_id = $1 AND date >= $2
	ORDER BY date
	`, userID, weekStart)
	if err != nil {
		return nil, fmt.Errorf("failed to get habit logs: %w", err)
	}
	defer logRows.Close()

	for logRows.Next() {
		l := &habit.Log{}
		err := logRows.Scan(&l.ID, &l.HabitID, &l.UserID, &l.Date, &l.Completed, &l.XPAwarded, &l.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan habit log: %w", err)
		}
		if h, ok := byID[l.HabitID]; ok {
			h.Logs = append(h.Logs, l)
		}
	}
	if err = logRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return habits, nil
}

func (s *HabitService) GetHabit(ctx context.Context, clerkID, habitID string) (*habit.Habit, error) {
	query := `
	SELECT ` + habitColumns + `
	FROM habits
	WHERE id = $2 AND user_id = (SELECT id FROM users WHERE clerk_id = $1)
	`

	h, err := scanHabit(s.db.QueryRow(ctx, query, clerkID, habitID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: habit", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get habit: %w", err)
	}
	return h, nil
}

// DeleteHabit removes the habit and its logs. Earned XP stays on the user.
func (s *HabitService) DeleteHabit(ctx context.Context, clerkID, habitID string) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
	DELETE FROM habit_logs
	WHERE habit_id = $2 AND user_id = (SELECT id FROM users WHERE clerk_id = $1)
	`, clerkID, habitID)
	if err != nil {
		return fmt.Errorf("failed to delete habit logs: %w", err)
	}

	result, err := tx.Exec(ctx, `
	DELETE FROM habits
	WHERE id = $2 AND user_id = (SELECT id FROM users WHERE clerk_id = $1)
	`, clerkID, habitID)
	if err != nil {
		return fmt.Errorf("failed to delete habit: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: habit", ErrNotFound)
	}

	return tx.Commit(ctx)
}

// LogHabit toggles a habit for one local day. Completing awards XP scaled by
// the band multiplier at the moment of logging and freezes it on the log row;
// un-completing reverses exactly that frozen amount. Logging an already
// completed day again is a no-op.
func (s *HabitService) LogHabit(ctx context.Context, clerkID, habitID string, req *habit.LogHabitRequest) (*habit.LogResult, error) {
	completed := true
	if req.Completed != nil {
		completed = *req.Completed
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

	h, err := scanHabit(tx.QueryRow(ctx, `
	SELECT `+habitColumns+` FROM habits WHERE id = $1 AND user_id = $2 FOR UPDATE
	`, habitID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: habit", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to lock habit: %w", err)
	}

	loc := timezone.LoadLocation(tz)
	today := timezone.TodayForTimezone(time.Now(), loc)
	logDate := today
	if req.Date != "" {
		logDate, err = timezone.MidnightInTimezone(req.Date, loc)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		if logDate.After(today) {
			return nil, fmt.Errorf("%w: cannot log in the future", ErrValidation)
		}
	}

	if completed {
		return s.completeDay(ctx, tx, userID, h, logDate, totalXP)
	}
	return s.uncompleteDay(ctx, tx, userID, h, logDate, totalXP)
}

func (s *HabitService) completeDay(ctx context.Context, tx pgx.Tx, userID uuid.UUID, h *habit.Habit, logDate time.Time, totalXP int) (*habit.LogResult, error) {
	var existingID uuid.UUID
	err := tx.QueryRow(ctx, `
	SELECT id FROM habit_logs WHERE habit_id = $1 AND date = $2
	`, h.ID, logDate).Scan(&existingID)
	if err == nil {
		// Already logged for this day.
		if err := tx.Commit(ctx); err != nil {
			return nil, fmt.Errorf("failed to commit: %w", err)
		}
		return &habit.LogResult{LevelInfo: habitlevel.GetHabitLevel(h.TotalLogs)}, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to check existing log: %w", err)
	}

	// The multiplier comes from the band reached by this completion.
	newTotal := h.TotalLogs + 1
	info := habitlevel.GetHabitLevel(newTotal)
	xpAwarded := int(math.Round(float64(h.XPPerLog) * info.XPMultiplier))

	l := &habit.Log{}
	err = tx.QueryRow(ctx, `
	INSERT INTO habit_logs (id, habit_id, user_id, date, completed, xp_awarded, created_at)
	VALUES ($1, $2, $3, $4, true, $5, NOW())
	RETURNING id, habit_id, user_id, date, completed, xp_awarded, created_at
	`, uuid.New(), h.ID, userID, logDate, xpAwarded).Scan(
		&l.ID, &l.HabitID, &l.UserID, &l.Date, &l.Completed, &l.XPAwarded, &l.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create habit log: %w", err)
	}

	streak, longest, err := s.recomputeStreaks(ctx, tx, h, logDate)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
	UPDATE habits
	SET total_logs = $2, level = $3, current_streak = $4, longest_streak = $5, updated_at = NOW()
	WHERE id = $1
	`, h.ID, newTotal, info.Level, streak, longest)
	if err != nil {
		return nil, fmt.Errorf("failed to update habit: %w", err)
	}

	newTotalXP := totalXP + xpAwarded
	newLevel := progression.GetLevel(newTotalXP).Level
	_, err = tx.Exec(ctx, `
	UPDATE users SET total_xp = $2, avatar_stage = $3, updated_at = NOW() WHERE id = $1
	`, userID, newTotalXP, progression.AvatarStage(newLevel))
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	oldLevel := progression.GetLevel(totalXP).Level
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit habit log: %w", err)
	}

	if newLevel > oldLevel && s.notifications != nil {
		s.notifications.NotifyLevelUp(ctx, userID, newLevel, progression.AvatarTitles[progression.AvatarStage(newLevel)])
	}

	return &habit.LogResult{
		Log:       l,
		XPAwarded: xpAwarded,
		LevelInfo: info,
	}, nil
}

func (s *HabitService) uncompleteDay(ctx context.Context, tx pgx.Tx, userID uuid.UUID, h *habit.Habit, logDate time.Time, totalXP int) (*habit.LogResult, error) {
	var xpAwarded int
	err := tx.QueryRow(ctx, `
	DELETE FROM habit_logs WHERE habit_id = $1 AND date = $2
	RETURNING xp_awarded
	`, h.ID, logDate).Scan(&xpAwarded)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Nothing to undo.
			if err := tx.Commit(ctx); err != nil {
				return nil, fmt.Errorf("failed to commit: %w", err)
			}
			return &habit.LogResult{Removed: true, LevelInfo: habitlevel.GetHabitLevel(h.TotalLogs)}, nil
		}
		return nil, fmt.Errorf("failed to delete habit log: %w", err)
	}

	newTotal := h.TotalLogs - 1
	if newTotal < 0 {
		newTotal = 0
	}
	info := habitlevel.GetHabitLevel(newTotal)

	streak, longest, err := s.recomputeStreaks(ctx, tx, h, logDate)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
	UPDATE habits
	SET total_logs = $2, level = $3, current_streak = $4, longest_streak = $5, updated_at = NOW()
	WHERE id = $1
	`, h.ID, newTotal, info.Level, streak, longest)
	if err != nil {
		return nil, fmt.Errorf("failed to update habit: %w", err)
	}

	newTotalXP := totalXP - xpAwarded
	if newTotalXP < 0 {
		newTotalXP = 0
	}
	newLevel := progression.GetLevel(newTotalXP).Level
	_, err = tx.Exec(ctx, `
	UPDATE users SET total_xp = $2, avatar_stage = $3, updated_at = NOW() WHERE id = $1
	`, userID, newTotalXP, progression.AvatarStage(newLevel))
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}

	return &habit.LogResult{
		Removed:    true,
		XPReversed: xpAwarded,
		LevelInfo:  info,
	}, nil
}

// recomputeStreaks rebuilds the habit's consecutive-day streak from its log
// dates. Runs inside the caller's transaction so it sees the toggled row.
func (s *HabitService) recomputeStreaks(ctx context.Context, tx pgx.Tx, h *habit.Habit, anchor time.Time) (current int, longest int, err error) {
	rows, err := tx.Query(ctx, `
	SELECT date FROM habit_logs WHERE habit_id = $1 ORDER BY date
	`, h.ID)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to load habit log dates: %w", err)
	}
	defer rows.Close()

	dates := []time.Time{}
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return 0, 0, fmt.Errorf("failed to scan date: %w", err)
		}
		dates = append(dates, d)
	}
	if err = rows.Err(); err != nil {
		return 0, 0, fmt.Errorf("error iterating rows: %w", err)
	}
	if len(dates) == 0 {
		return 0, h.LongestStreak, nil
	}

	run := 1
	longest = 1
	for i := 1; i < len(dates); i++ {
		if timezone.YesterdayFor(dates[i]).Equal(dates[i-1]) {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}

	// The current streak only counts if the latest log is today or yesterday
	// relative to the anchor day.
	last := dates[len(dates)-1]
	if last.Equal(anchor) || last.Equal(timezone.YesterdayFor(anchor)) {
		current = run
	}

	if h.LongestStreak > longest {
		longest = h.LongestStreak
	}
	return current, longest, nil
}
