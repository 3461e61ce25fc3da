package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lifeQuestAPI/internal/coins"
	"lifeQuestAPI/internal/progression"
	"lifeQuestAPI/internal/timezone"
	"lifeQuestAPI/internal/types/action"
)

type LogService struct {
	db            *pgxpool.Pool
	notifications *NotificationService
}

func NewLogService(db *pgxpool.Pool, notifications *NotificationService) *LogService {
	return &LogService{db: db, notifications: notifications}
}

// CreateLog records one completed action, freezes the awarded XP on the log
// row, and advances the user's streak when the log lands on a fresh day.
// The user row is locked for the whole read-modify-write.
func (s *LogService) CreateLog(ctx context.Context, clerkID string, req *action.CreateLogRequest) (*action.LogResult, error) {
	actionID, err := uuid.Parse(req.ActionID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid actionId", ErrValidation)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var (
		userID         uuid.UUID
		tz             string
		totalXP        int
		totalCoins     int
		currentStreak  int
		longestStreak  int
		lastActiveDate *time.Time
	)
	err = tx.QueryRow(ctx, `
	SELECT id, timezone, total_xp, total_coins, current_streak, longest_streak, last_active_date
	FROM users WHERE clerk_id = $1
	FOR UPDATE
	`, clerkID).Scan(&userID, &tz, &totalXP, &totalCoins, &currentStreak, &longestStreak, &lastActiveDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: user", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to lock user: %w", err)
	}

	a := &action.Action{}
	err = tx.QueryRow(ctx, `
	SELECT id, user_id, name, block, xp, icon, is_default, created_at
	FROM actions WHERE id = $1 AND user_id = $2
	`, actionID, userID).Scan(&a.ID, &a.UserID, &a.Name, &a.Block, &a.XP, &a.Icon, &a.IsDefault, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: action", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get action: %w", err)
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

	entry := &action.LogEntry{}
	err = tx.QueryRow(ctx, `
	INSERT INTO log_entries (id, user_id, action_id, date, xp_awarded, note, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, NOW())
	RETURNING id, user_id, action_id, date, xp_awarded, note, created_at
	`, uuid.New(), userID, a.ID, logDate, a.XP, req.Note).Scan(
		&entry.ID, &entry.UserID, &entry.ActionID, &entry.Date, &entry.XPAwarded, &entry.Note, &entry.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create log: %w", err)
	}
	entry.Action = a

	// Streak transitions only on forward movement. Backdated logs earn XP
	// but never rewind last_active_date.
	newStreak := currentStreak
	coinBonus := 0
	newLastActive := lastActiveDate
	if lastActiveDate == nil {
		newStreak = 1
		newLastActive = &logDate
	} else if logDate.After(*lastActiveDate) {
		if timezone.YesterdayFor(logDate).Equal(*lastActiveDate) {
			newStreak = currentStreak + 1
		} else {
			newStreak = 1
		}
		newLastActive = &logDate
	}

	if newStreak != currentStreak {
		if bonus, ok := coins.GetStreakBonus(newStreak); ok {
			coinBonus = bonus
		}
	}

	if newStreak > longestStreak {
		longestStreak = newStreak
	}

	oldLevel := progression.GetLevel(totalXP).Level
	newTotalXP := totalXP + a.XP
	newInfo := progression.GetLevel(newTotalXP)

	_, err = tx.Exec(ctx, `
	UPDATE users
	SET total_xp = $2, total_coins = $3, current_streak = $4, longest_streak = $5,
		last_active_date = $6, avatar_stage = $7, updated_at = NOW()
	WHERE id = $1
	`, userID, newTotalXP, totalCoins+coinBonus, newStreak, longestStreak,
		newLastActive, progression.AvatarStage(newInfo.Level))
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit log: %w", err)
	}

	if newInfo.Level > oldLevel && s.notifications != nil {
		s.notifications.NotifyLevelUp(ctx, userID, newInfo.Level, progression.AvatarTitles[progression.AvatarStage(newInfo.Level)])
	}
	if coinBonus > 0 && s.notifications != nil {
		s.notifications.NotifyStreakBonus(ctx, userID, newStreak, coinBonus)
	}

	return &action.LogResult{
		Log:       entry,
		XPAwarded: a.XP,
		CoinBonus: coinBonus,
		NewStreak: newStreak,
		Level:     newInfo.Level,
	}, nil
}

// DeleteLog removes a log entry and subtracts exactly its frozen xp_awarded,
// even if the action's XP value changed since. Streaks are not rewound.
func (s *LogService) DeleteLog(ctx context.Context, clerkID, logID string) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var userID uuid.UUID
	var totalXP int
	err = tx.QueryRow(ctx, `
	SELECT id, total_xp FROM users WHERE clerk_id = $1 FOR UPDATE
	`, clerkID).Scan(&userID, &totalXP)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: user", ErrNotFound)
		}
		return fmt.Errorf("failed to lock user: %w", err)
	}

	var xpAwarded int
	err = tx.QueryRow(ctx, `
	DELETE FROM log_entries WHERE id = $1 AND user_id = $2
	RETURNING xp_awarded
	`, logID, userID).Scan(&xpAwarded)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: log", ErrNotFound)
		}
		return fmt.Errorf("failed to delete log: %w", err)
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
		return fmt.Errorf("failed to update user: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}
	return nil
}

// GetLogsByDate lists the logs of one local day, newest first.
func (s *LogService) GetLogsByDate(ctx context.Context, clerkID, dateStr string) ([]*action.LogEntry, error) {
	var userID uuid.UUID
	var tz string
	err := s.db.QueryRow(ctx, `SELECT id, timezone FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID, &tz)
	if err != nil {
		return nil, fmt.Errorf("%w: user", ErrNotFound)
	}

	loc := timezone.LoadLocation(tz)
	if dateStr == "" {
		dateStr = timezone.TodayDateStr(time.Now(), loc)
	}
	start, err := timezone.MidnightInTimezone(dateStr, loc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	end, err := timezone.EndOfDayInTimezone(dateStr, loc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	return s.queryLogs(ctx, userID, start, end)
}

// GetLogsForWeek lists the logs of the local week containing now.
func (s *LogService) GetLogsForWeek(ctx context.Context, clerkID string) ([]*action.LogEntry, error) {
	var userID uuid.UUID
	var tz string
	err := s.db.QueryRow(ctx, `SELECT id, timezone FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID, &tz)
	if err != nil {
		return nil, fmt.Errorf("%w: user", ErrNotFound)
	}

	loc := timezone.LoadLocation(tz)
	weekStart := timezone.WeekStartForTimezone(time.Now(), loc)
	weekEnd := weekStart.AddDate(0, 0, 7).Add(-time.Nanosecond)

	return s.queryLogs(ctx, userID, weekStart, weekEnd)
}

func (s *LogService) queryLogs(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*action.LogEntry, error) {
	query := `
	SELECT l.id, l.user_id, l.action_id, l.date, l.xp_awarded, l.note, l.created_at,
		a.id, a.user_id, a.name, a.block, a.xp, a.icon, a.is_default, a.created_at
	FROM log_entries l
	JOIN actions a ON a.id = l.action_id
	WHERE l.user_id = $1 AND l.date >= $2 AND l.date <= $3
	ORDER BY l.created_at DESC
	`

	rows, err := s.db.Query(ctx, query, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to get logs: %w", err)
	}
	defer rows.Close()

	logs := []*action.LogEntry{}
	for rows.Next() {
		entry := &action.LogEntry{Action: &action.Action{}}
		a := entry.Action
		err := rows.Scan(
			&entry.ID, &entry.UserID, &entry.ActionID, &entry.Date, &entry.XPAwarded, &entry.Note, &entry.CreatedAt,
			&a.ID, &a.UserID, &a.Name, &a.Block, &a.XP, &a.Icon, &a.IsDefault, &a.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan log: %w", err)
		}
		logs = append(logs, entry)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return logs, nil
}
