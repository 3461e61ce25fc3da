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
	"lifeQuestAPI/internal/timezone"
)

type EnergyService struct {
	db            *pgxpool.Pool
	notifications *NotificationService
}

func NewEnergyService(db *pgxpool.Pool, notifications *NotificationService) *EnergyService {
	return &EnergyService{db: db, notifications: notifications}
}

const energyLogColumns = `id, user_id, date, sleep_score, physical_score, mental_score, base_energy,
	current_energy, streak_bonus, spent_total, recovered_total, is_burnout, morning_done,
	created_at, updated_at`

func scanEnergyLog(row pgx.Row) (*energy.Log, error) {
	l := &energy.Log{}
	err := row.Scan(
		&l.ID, &l.UserID, &l.Date, &l.SleepScore, &l.PhysicalScore, &l.MentalScore,
		&l.BaseEnergy, &l.CurrentEnergy, &l.StreakBonus, &l.SpentTotal, &l.RecoveredTotal,
		&l.IsBurnout, &l.MorningDone, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (s *EnergyService) lookupUser(ctx context.Context, clerkID string) (uuid.UUID, *time.Location, error) {
	var userID uuid.UUID
	var tz string
	err := s.db.QueryRow(ctx, `SELECT id, timezone FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID, &tz)
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("%w: user", ErrNotFound)
	}
	return userID, timezone.LoadLocation(tz), nil
}

// GetToday returns today's energy log, creating the row on first touch.
// The burnout flag is decided once, when the row is created, from the run of
// overdraft days ending yesterday; later recoveries never clear it.
func (s *EnergyService) GetToday(ctx context.Context, clerkID string) (*energy.Log, error) {
	userID, loc, err := s.lookupUser(ctx, clerkID)
	if err != nil {
		return nil, err
	}
	today := timezone.TodayForTimezone(time.Now(), loc)

	l, err := scanEnergyLog(s.db.QueryRow(ctx, `
	SELECT `+energyLogColumns+` FROM energy_logs WHERE user_id = $1 AND date = $2
	`, userID, today))
	if err == nil {
		l.Recoveries, err = s.getRecoveries(ctx, l.ID)
		return l, err
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to get energy log: %w", err)
	}

	return s.createDay(ctx, userID, today)
}

func (s *EnergyService) createDay(ctx context.Context, userID uuid.UUID, today time.Time) (*energy.Log, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	overdraftRun, err := s.overdraftRunEndingYesterday(ctx, tx, userID, today)
	if err != nil {
		return nil, err
	}
	isBurnout := energy.CheckBurnout(overdraftRun)

	// A fresh day starts with the full budget. The morning input later
	// replaces it with the score-weighted base.
	l, err := scanEnergyLog(tx.QueryRow(ctx, `
	INSERT INTO energy_logs (id, user_id, date, sleep_score, physical_score, mental_score, base_energy,
		current_energy, streak_bonus, spent_total, recovered_total, is_burnout, morning_done, created_at, updated_at)
	VALUES ($1, $2, $3, 0, 0, 0, $4, $5, 0, 0, 0, $6, false, NOW(), NOW())
	ON CONFLICT (user_id, date) DO UPDATE SET updated_at = NOW()
	RETURNING `+energyLogColumns,
		uuid.New(), userID, today, energy.MaxEnergy, energy.MaxEnergy, isBurnout,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create energy log: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit energy log: %w", err)
	}

	if l.IsBurnout && s.notifications != nil {
		s.notifications.NotifyBurnout(ctx, userID)
	}

	l.Recoveries = []*energy.Recovery{}
	return l, nil
}

// overdraftRunEndingYesterday counts consecutive days immediately before
// today whose balance ended below zero. The scan stops at the first gap or
// non-overdraft day.
func (s *EnergyService) overdraftRunEndingYesterday(ctx context.Context, tx pgx.Tx, userID uuid.UUID, today time.Time) (int, error) {
	rows, err := tx.Query(ctx, `
	SELECT date, current_energy FROM energy_logs
	WHERE user_id = $1 AND date < $2
	ORDER BY date DESC
	LIMIT $3
	`, userID, today, energy.BurnoutThresholdDays)
	if err != nil {
		return 0, fmt.Errorf("failed to query prior energy logs: %w", err)
	}
	defer rows.Close()

	run := 0
	expected := timezone.YesterdayFor(today)
	for rows.Next() {
		var date time.Time
		var current int
		if err := rows.Scan(&date, &current); err != nil {
			return 0, fmt.Errorf("failed to scan energy log: %w", err)
		}
		if !date.Equal(expected) || current >= 0 {
			break
		}
		run++
		expected = timezone.YesterdayFor(expected)
	}
	return run, rows.Err()
}

// SubmitMorningInput records the three morning scores and computes the day's
// budget. Re-submitting replaces the scores and recomputes, preserving any
// spend and recovery already applied.
func (s *EnergyService) SubmitMorningInput(ctx context.Context, clerkID string, req *energy.MorningInputRequest) (*energy.Log, error) {
	for name, v := range map[string]int{"sleepScore": req.SleepScore, "physicalScore": req.PhysicalScore, "mentalScore": req.MentalScore} {
		if v < 0 || v > 100 {
			return nil, fmt.Errorf("%w: %s must be 0-100", ErrValidation, name)
		}
	}

	userID, loc, err := s.lookupUser(ctx, clerkID)
	if err != nil {
		return nil, err
	}
	today := timezone.TodayForTimezone(time.Now(), loc)

	// Ensure the row (and its frozen burnout flag) exists before locking it.
	if _, err := s.createOrGetRow(ctx, userID, today); err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	l, err := scanEnergyLog(tx.QueryRow(ctx, `
	SELECT `+energyLogColumns+` FROM energy_logs WHERE user_id = $1 AND date = $2 FOR UPDATE
	`, userID, today))
	if err != nil {
		return nil, fmt.Errorf("failed to lock energy log: %w", err)
	}

	base := energy.CalcBaseEnergy(req.SleepScore, req.PhysicalScore, req.MentalScore)
	if l.IsBurnout {
		base = int(float64(base) * energy.BurnoutPenalty)
	}

	sleepStreak, routineStreak, err := s.morningStreaks(ctx, tx, userID, today)
	if err != nil {
		return nil, err
	}
	bonus := energy.CalcStreakBonus(sleepStreak, routineStreak)

	// Streak bonuses may push the balance past the ceiling; recoveries are
	// the only path that caps at MaxEnergy.
	current := base + bonus + l.RecoveredTotal - l.SpentTotal
	if current < energy.MinEnergy {
		current = energy.MinEnergy
	}

	updated, err := scanEnergyLog(tx.QueryRow(ctx, `
	UPDATE energy_logs
	SET sleep_score = $2, physical_score = $3, mental_score = $4, base_energy = $5,
		current_energy = $6, streak_bonus = $7, morning_done = true, updated_at = NOW()
	WHERE id = $1
	RETURNING `+energyLogColumns,
		l.ID, req.SleepScore, req.PhysicalScore, req.MentalScore, base, current, bonus,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to update energy log: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit morning input: %w", err)
	}

	updated.Recoveries, err = s.getRecoveries(ctx, updated.ID)
	return updated, err
}

func (s *EnergyService) createOrGetRow(ctx context.Context, userID uuid.UUID, today time.Time) (*energy.Log, error) {
	l, err := scanEnergyLog(s.db.QueryRow(ctx, `
	SELECT `+energyLogColumns+` FROM energy_logs WHERE user_id = $1 AND date = $2
	`, userID, today))
	if err == nil {
		return l, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to get energy log: %w", err)
	}
	return s.createDay(ctx, userID, today)
}

// morningStreaks counts the consecutive-day runs feeding the morning bonus:
// good-sleep days and completed morning inputs. Only days strictly before
// today count; the submission being processed never extends its own streak.
func (s *EnergyService) morningStreaks(ctx context.Context, tx pgx.Tx, userID uuid.UUID, today time.Time) (sleepStreak, routineStreak int, err error) {
	rows, err := tx.Query(ctx, `
	SELECT date, sleep_score, morning_done FROM energy_logs
	WHERE user_id = $1 AND date < $2
	ORDER BY date DESC
	LIMIT 30
	`, userID, today)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to query prior energy logs: %w", err)
	}
	defer rows.Close()

	sleepRunAlive := true
	routineRunAlive := true

	expected := timezone.YesterdayFor(today)
	for rows.Next() {
		var date time.Time
		var sleep int
		var done bool
		if err := rows.Scan(&date, &sleep, &done); err != nil {
			return 0, 0, fmt.Errorf("failed to scan energy log: %w", err)
		}
		if !date.Equal(expected) {
			break
		}
		if sleepRunAlive && sleep >= energy.SleepStreakScore {
			sleepStreak++
		} else {
			sleepRunAlive = false
		}
		if routineRunAlive && done {
			routineStreak++
		} else {
			routineRunAlive = false
		}
		if !sleepRunAlive && !routineRunAlive {
			break
		}
		expected = timezone.YesterdayFor(expected)
	}
	return sleepStreak, routineStreak, rows.Err()
}

// Spend deducts energy from today's balance. Spending while already in
// overdraft costs 1.5x, and the balance never drops below the floor.
func (s *EnergyService) Spend(ctx context.Context, clerkID string, req *energy.SpendRequest) (*energy.SpendResponse, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}

	userID, loc, err := s.lookupUser(ctx, clerkID)
	if err != nil {
		return nil, err
	}
	today := timezone.TodayForTimezone(time.Now(), loc)

	if _, err := s.createOrGetRow(ctx, userID, today); err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var logID uuid.UUID
	var current int
	err = tx.QueryRow(ctx, `
	SELECT id, current_energy FROM energy_logs WHERE user_id = $1 AND date = $2 FOR UPDATE
	`, userID, today).Scan(&logID, &current)
	if err != nil {
		return nil, fmt.Errorf("failed to lock energy log: %w", err)
	}

	newEnergy, spent := energy.ApplySpend(current, req.Amount)

	_, err = tx.Exec(ctx, `
	UPDATE energy_logs
	SET current_energy = $2, spent_total = spent_total + $3, updated_at = NOW()
	WHERE id = $1
	`, logID, newEnergy, spent)
	if err != nil {
		return nil, fmt.Errorf("failed to spend energy: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit spend: %w", err)
	}

	return &energy.SpendResponse{
		CurrentEnergy: newEnergy,
		Spent:         spent,
		IsOverdraft:   newEnergy < 0,
	}, nil
}

// Recover applies one recovery action from the catalog, honoring its per-day
// quota and the energy ceiling.
func (s *EnergyService) Recover(ctx context.Context, clerkID string, req *energy.RecoverRequest) (*energy.Log, error) {
	rt, ok := energy.FindRecoveryType(req.Type)
	if !ok {
		return nil, fmt.Errorf("%w: unknown recovery type %q", ErrValidation, req.Type)
	}

	userID, loc, err := s.lookupUser(ctx, clerkID)
	if err != nil {
		return nil, err
	}
	today := timezone.TodayForTimezone(time.Now(), loc)

	if _, err := s.createOrGetRow(ctx, userID, today); err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	l, err := scanEnergyLog(tx.QueryRow(ctx, `
	SELECT `+energyLogColumns+` FROM energy_logs WHERE user_id = $1 AND date = $2 FOR UPDATE
	`, userID, today))
	if err != nil {
		return nil, fmt.Errorf("failed to lock energy log: %w", err)
	}

	var usedToday int
	err = tx.QueryRow(ctx, `
	SELECT COUNT(*) FROM energy_recoveries WHERE energy_log_id = $1 AND type = $2
	`, l.ID, rt.Type).Scan(&usedToday)
	if err != nil {
		return nil, fmt.Errorf("failed to count recoveries: %w", err)
	}
	if usedToday >= rt.MaxPerDay {
		return nil, fmt.Errorf("%w: %s used %d of %d today", ErrQuotaExceeded, rt.Label, usedToday, rt.MaxPerDay)
	}

	newEnergy, restored := energy.ApplyRecovery(l.CurrentEnergy, rt.EP)

	_, err = tx.Exec(ctx, `
	INSERT INTO energy_recoveries (id, energy_log_id, type, ep_restored, created_at)
	VALUES ($1, $2, $3, $4, NOW())
	`, uuid.New(), l.ID, rt.Type, restored)
	if err != nil {
		return nil, fmt.Errorf("failed to record recovery: %w", err)
	}

	updated, err := scanEnergyLog(tx.QueryRow(ctx, `
	UPDATE energy_logs
	SET current_energy = $2, recovered_total = recovered_total + $3, updated_at = NOW()
	WHERE id = $1
	RETURNING `+energyLogColumns,
		l.ID, newEnergy, restored,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to update energy log: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit recovery: %w", err)
	}

	updated.Recoveries, err = s.getRecoveries(ctx, updated.ID)
	return updated, err
}

// GetHistory returns the last `days` energy logs with summary stats.
func (s *EnergyService) GetHistory(ctx context.Context, clerkID string, days int) (*energy.HistoryResponse, error) {
	if days < 1 || days > 90 {
		days = 30
	}

	userID, loc, err := s.lookupUser(ctx, clerkID)
	if err != nil {
		return nil, err
	}
	since := timezone.TodayForTimezone(time.Now(), loc).AddDate(0, 0, -days+1)

	rows, err := s.db.Query(ctx, `
	SELECT `+energyLogColumns+` FROM energy_logs
	WHERE user_id = $1 AND date >= $2
	ORDER BY date DESC
	`, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get energy history: %w", err)
	}
	defer rows.Close()

	logs := []*energy.Log{}
	for rows.Next() {
		l, err := scanEnergyLog(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan energy log: %w", err)
		}
		logs = append(logs, l)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	stats := energy.HistoryStats{Total: len(logs)}
	if len(logs) > 0 {
		var sumEnergy, sumSleep, sumPhysical, sumMental int
		for _, l := range logs {
			sumEnergy += l.CurrentEnergy
			sumSleep += l.SleepScore
			sumPhysical += l.PhysicalScore
			sumMental += l.MentalScore
			if l.CurrentEnergy < 0 {
				stats.OverdraftDays++
			}
			if l.IsBurnout {
				stats.BurnoutDays++
			}
		}
		n := len(logs)
		stats.AvgEnergy = sumEnergy / n
		stats.AvgSleep = sumSleep / n
		stats.AvgPhysical = sumPhysical / n
		stats.AvgMental = sumMental / n
	}

	return &energy.HistoryResponse{Logs: logs, Stats: stats}, nil
}

// GetRecoveryTypes exposes the catalog with today's remaining quotas.
func (s *EnergyService) GetRecoveryTypes(ctx context.Context, clerkID string) ([]map[string]any, error) {
	userID, loc, err := s.lookupUser(ctx, clerkID)
	if err != nil {
		return nil, err
	}
	today := timezone.TodayForTimezone(time.Now(), loc)

	used := map[string]int{}
	rows, err := s.db.Query(ctx, `
	SELECT r.type, COUNT(*)
	FROM energy_recoveries r
	JOIN energy_logs l ON l.id = r.energy_log_id
	WHERE l.user_id = $1 AND l.date = $2
	GROUP BY r.type
	`, userID, today)
	if err != nil {
		return nil, fmt.Errorf("failed to count recoveries: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var typ string
		var count int
		if err := rows.Scan(&typ, &count); err != nil {
			return nil, fmt.Errorf("failed to scan recovery count: %w", err)
		}
		used[typ] = count
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	catalog := make([]map[string]any, 0, len(energy.RecoveryTypes))
	for _, rt := range energy.RecoveryTypes {
		remaining := rt.MaxPerDay - used[rt.Type]
		if remaining < 0 {
			remaining = 0
		}
		catalog = append(catalog, map[string]any{
			"type":        rt.Type,
			"label":       rt.Label,
			"ep":          rt.EP,
			"icon":        rt.Icon,
			"max_per_day": rt.MaxPerDay,
			"remaining":   remaining,
			"used_today":  used[rt.Type],
		})
	}
	return catalog, nil
}

func (s *EnergyService) getRecoveries(ctx context.Context, logID uuid.UUID) ([]*energy.Recovery, error) {
	rows, err := s.db.Query(ctx, `
	SELECT id, energy_log_id, type, ep_restored, created_at
	FROM energy_recoveries
	WHERE energy_log_id = $1
	ORDER BY created_at
	`, logID)
	if err != nil {
		return nil, fmt.Errorf("failed to get recoveries: %w", err)
	}
	defer rows.Close()

	recoveries := []*energy.Recovery{}
	for rows.Next() {
		r := &energy.Recovery{}
		if err := rows.Scan(&r.ID, &r.EnergyLogID, &r.Type, &r.EPRestored, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan recovery: %w", err)
		}
		recoveries = append(recoveries, r)
	}
	return recoveries, rows.Err()
}
