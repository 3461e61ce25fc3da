package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifeQuestAPI/internal/energy"
	"lifeQuestAPI/internal/timezone"
)

// seedEnergyDay inserts a finished prior day directly, bypassing the service.
func seedEnergyDay(t *testing.T, pool *pgxpool.Pool, userID string, date time.Time, sleep int, morningDone bool, current int) {
	t.Helper()
	_, err := pool.Exec(context.Background(), `
	INSERT INTO energy_logs (id, user_id, date, sleep_score, physical_score, mental_score, base_energy,
		current_energy, streak_bonus, spent_total, recovered_total, is_burnout, morning_done, created_at, updated_at)
	VALUES ($1, $2, $3, $4, 70, 70, 70, $5, 0, 0, 0, false, $6, NOW(), NOW())
	`, uuid.New(), userID, date, sleep, current, morningDone)
	require.NoError(t, err)
}

func TestMorningInputSetsDayBudget(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()

	u := createTestUser(t, pool)
	svc := NewEnergyService(pool, nil)

	day, err := svc.SubmitMorningInput(ctx, u.ClerkID, &energy.MorningInputRequest{
		SleepScore:    80,
		PhysicalScore: 70,
		MentalScore:   60,
	})
	require.NoError(t, err)

	// 80*0.4 + 70*0.3 + 60*0.3 = 71.
	assert.Equal(t, 71, day.BaseEnergy)
	assert.True(t, day.MorningDone)
	assert.False(t, day.IsBurnout)
	assert.Equal(t, day.BaseEnergy+day.StreakBonus, day.CurrentEnergy)
}

func TestNewDayStartsWithFullBudget(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()

	u := createTestUser(t, pool)
	svc := NewEnergyService(pool, nil)

	day, err := svc.GetToday(ctx, u.ClerkID)
	require.NoError(t, err)
	assert.Equal(t, energy.MaxEnergy, day.BaseEnergy)
	assert.Equal(t, energy.MaxEnergy, day.CurrentEnergy)
	assert.False(t, day.MorningDone)

	// Spending before the morning input draws on the full budget, not an
	// empty one.
	spent, err := svc.Spend(ctx, u.ClerkID, &energy.SpendRequest{Amount: 10})
	require.NoError(t, err)
	assert.Equal(t, 90, spent.CurrentEnergy)
	assert.False(t, spent.IsOverdraft)
}

func TestMorningStreakBonusCountsPriorDaysOnly(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	svc := NewEnergyService(pool, nil)

	seedPriorDays := func(u string, days int) {
		loc := timezone.LoadLocation("")
		today := timezone.TodayForTimezone(time.Now(), loc)
		for i := 1; i <= days; i++ {
			seedEnergyDay(t, pool, u, today.AddDate(0, 0, -i), 80, true, 50)
		}
	}
	perfect := &energy.MorningInputRequest{SleepScore: 100, PhysicalScore: 100, MentalScore: 100}

	// Two prior days: neither streak is long enough yet.
	twoPrior := createTestUser(t, pool)
	seedPriorDays(twoPrior.ID, 2)
	day, err := svc.SubmitMorningInput(ctx, twoPrior.ClerkID, perfect)
	require.NoError(t, err)
	assert.Equal(t, 0, day.StreakBonus)

	// Four prior days: the routine bonus fires, the sleep bonus does not.
	// Today's own submission must not count toward either run.
	fourPrior := createTestUser(t, pool)
	seedPriorDays(fourPrior.ID, 4)
	day, err = svc.SubmitMorningInput(ctx, fourPrior.ClerkID, perfect)
	require.NoError(t, err)
	assert.Equal(t, 10, day.StreakBonus)
	assert.Equal(t, 110, day.CurrentEnergy)

	// Five prior days: both bonuses, and the balance may exceed the ceiling.
	fivePrior := createTestUser(t, pool)
	seedPriorDays(fivePrior.ID, 5)
	day, err = svc.SubmitMorningInput(ctx, fivePrior.ClerkID, perfect)
	require.NoError(t, err)
	assert.Equal(t, 15, day.StreakBonus)
	assert.Equal(t, 115, day.CurrentEnergy, "streak bonuses push past MaxEnergy")
}

func TestMorningInputRejectsOutOfRangeScores(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()

	u := createTestUser(t, pool)
	svc := NewEnergyService(pool, nil)

	_, err := svc.SubmitMorningInput(ctx, u.ClerkID, &energy.MorningInputRequest{
		SleepScore:    101,
		PhysicalScore: 50,
		MentalScore:   50,
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSpendAndRecoverRoundTrip(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()

	u := createTestUser(t, pool)
	svc := NewEnergyService(pool, nil)

	_, err := svc.SubmitMorningInput(ctx, u.ClerkID, &energy.MorningInputRequest{
		SleepScore:    100,
		PhysicalScore: 100,
		MentalScore:   100,
	})
	require.NoError(t, err)

	spent, err := svc.Spend(ctx, u.ClerkID, &energy.SpendRequest{Amount: 30})
	require.NoError(t, err)
	assert.Equal(t, 30, spent.Spent)
	assert.False(t, spent.IsOverdraft)

	day, err := svc.Recover(ctx, u.ClerkID, &energy.RecoverRequest{Type: "WALK"})
	require.NoError(t, err)
	assert.Equal(t, 10, day.RecoveredTotal)
	assert.Len(t, day.Recoveries, 1)
}

func TestRecoverEnforcesDailyQuota(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()

	u := createTestUser(t, pool)
	svc := NewEnergyService(pool, nil)

	_, err := svc.SubmitMorningInput(ctx, u.ClerkID, &energy.MorningInputRequest{
		SleepScore:    50,
		PhysicalScore: 50,
		MentalScore:   50,
	})
	require.NoError(t, err)

	// POWER_NAP allows one per day.
	_, err = svc.Recover(ctx, u.ClerkID, &energy.RecoverRequest{Type: "POWER_NAP"})
	require.NoError(t, err)

	_, err = svc.Recover(ctx, u.ClerkID, &energy.RecoverRequest{Type: "POWER_NAP"})
	assert.ErrorIs(t, err, ErrQuotaExceeded)
}

func TestRecoverUnknownTypeFails(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()

	u := createTestUser(t, pool)
	svc := NewEnergyService(pool, nil)

	_, err := svc.Recover(ctx, u.ClerkID, &energy.RecoverRequest{Type: "NONSENSE"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSpendIntoOverdraft(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()

	u := createTestUser(t, pool)
	svc := NewEnergyService(pool, nil)

	day, err := svc.SubmitMorningInput(ctx, u.ClerkID, &energy.MorningInputRequest{
		SleepScore:    10,
		PhysicalScore: 10,
		MentalScore:   10,
	})
	require.NoError(t, err)
	require.Equal(t, 10, day.BaseEnergy)

	result, err := svc.Spend(ctx, u.ClerkID, &energy.SpendRequest{Amount: 100})
	require.NoError(t, err)
	assert.True(t, result.IsOverdraft)
	assert.Equal(t, energy.MinEnergy, result.CurrentEnergy, "overdraft is floored")
}
