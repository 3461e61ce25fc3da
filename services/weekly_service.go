package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"lifeQuestAPI/internal/timezone"
	"lifeQuestAPI/internal/types/block"
	"lifeQuestAPI/internal/types/stats"
)

type WeeklyService struct {
	db *pgxpool.Pool
}

func NewWeeklyService(db *pgxpool.Pool) *WeeklyService {
	return &WeeklyService{db: db}
}

// GetWeeklyBalance aggregates one week's XP per block, compares each block
// against the previous week for its trend arrow, and reports fill percentage
// against the block caps. Action logs, habit logs and completed kanban tasks
// all count; a task without a block belongs to no balance and is skipped.
// weekStartStr selects a past week; empty means the current one.
func (s *WeeklyService) GetWeeklyBalance(ctx context.Context, clerkID, weekStartStr string) (*stats.WeeklyResponse, error) {
	var userID uuid.UUID
	var tz string
	err := s.db.QueryRow(ctx, `SELECT id, timezone FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID, &tz)
	if err != nil {
		return nil, fmt.Errorf("%w: user", ErrNotFound)
	}

	loc := timezone.LoadLocation(tz)
	var weekStart time.Time
	if weekStartStr != "" {
		parsed, err := time.ParseInLocation("2006-01-02", weekStartStr, loc)
		if err != nil {
			return nil, fmt.Errorf("%w: weekStart must be YYYY-MM-DD", ErrValidation)
		}
		weekStart = timezone.WeekStartForTimezone(parsed, loc)
	} else {
		weekStart = timezone.WeekStartForTimezone(time.Now(), loc)
	}
	prevWeekStart := weekStart.AddDate(0, 0, -7)

	current, err := s.xpPerBlock(ctx, userID, weekStart, weekStart.AddDate(0, 0, 7))
	if err != nil {
		return nil, err
	}
	previous, err := s.xpPerBlock(ctx, userID, prevWeekStart, weekStart)
	if err != nil {
		return nil, err
	}

	resp := &stats.WeeklyResponse{
		Blocks:    make([]*stats.WeeklyBlockData, 0, len(block.All)),
		WeekStart: weekStart.Format("2006-01-02"),
	}
	for _, b := range block.All {
		xp := current[b]
		cap := block.DefaultCaps[b]
		pct := 0
		if cap > 0 {
			pct = xp * 100 / cap
			if pct > 100 {
				pct = 100
			}
		}

		trend := "same"
		if xp > previous[b] {
			trend = "up"
		} else if xp < previous[b] {
			trend = "down"
		}

		resp.Blocks = append(resp.Blocks, &stats.WeeklyBlockData{
			Block:      b,
			XP:         xp,
			Cap:        cap,
			Percentage: pct,
			Trend:      trend,
		})
		resp.TotalXPWeek += xp
	}

	return resp, nil
}

func (s *WeeklyService) xpPerBlock(ctx context.Context, userID uuid.UUID, from, to time.Time) (map[block.Block]int, error) {
	query := `
	SELECT block, SUM(xp) FROM (
		SELECT a.block AS block, l.xp_awarded AS xp
		FROM log_entries l
		JOIN actions a ON a.id = l.action_id
		WHERE l.user_id = $1 AND l.date >= $2 AND l.date < $3
		UNION ALL
		SELECT h.block AS block, hl.xp_awarded AS xp
		FROM habit_logs hl
		JOIN habits h ON h.id = hl.habit_id
		WHERE hl.user_id = $1 AND hl.date >= $2 AND hl.date < $3
		UNION ALL
		SELECT block, xp_awarded AS xp
		FROM kanban_tasks
		WHERE user_id = $1 AND xp_awarded IS NOT NULL AND block IS NOT NULL
			AND completed_at >= $2 AND completed_at < $3
	) combined
	GROUP BY block
	`

	rows, err := s.db.Query(ctx, query, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate weekly xp: %w", err)
	}
	defer rows.Close()

	result := map[block.Block]int{}
	for rows.Next() {
		var b block.Block
		var xp int
		if err := rows.Scan(&b, &xp); err != nil {
			return nil, fmt.Errorf("failed to scan weekly xp: %w", err)
		}
		result[b] = xp
	}
	return result, rows.Err()
}

// GetDailyStats is the dashboard strip for the current local day.
func (s *WeeklyService) GetDailyStats(ctx context.Context, clerkID string) (*stats.DailyStats, error) {
	var userID uuid.UUID
	var tz string
	err := s.db.QueryRow(ctx, `SELECT id, timezone FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID, &tz)
	if err != nil {
		return nil, fmt.Errorf("%w: user", ErrNotFound)
	}

	loc := timezone.LoadLocation(tz)
	today := timezone.TodayForTimezone(time.Now(), loc)
	tomorrow := today.AddDate(0, 0, 1)

	query := `
	SELECT
		COALESCE((SELECT SUM(xp_awarded) FROM log_entries WHERE user_id = $1 AND date >= $2 AND date < $3), 0)
		+ COALESCE((SELECT SUM(xp_awarded) FROM habit_logs WHERE user_id = $1 AND date >= $2 AND date < $3), 0)
		+ COALESCE((SELECT SUM(xp_awarded) FROM kanban_tasks WHERE user_id = $1 AND completed_at >= $2 AND completed_at < $3), 0),
		(SELECT COUNT(*) FROM log_entries WHERE user_id = $1 AND date >= $2 AND date < $3),
		(SELECT COUNT(*) FROM habit_logs WHERE user_id = $1 AND date >= $2 AND date < $3)
	`

	d := &stats.DailyStats{}
	err = s.db.QueryRow(ctx, query, userID, today, tomorrow).Scan(&d.XPToday, &d.ActionsToday, &d.HabitsToday)
	if err != nil {
		return nil, fmt.Errorf("failed to get daily stats: %w", err)
	}
	return d, nil
}
