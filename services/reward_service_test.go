package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifeQuestAPI/internal/types/reward"
)

func TestRedeemRewardSpendsCoins(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()

	u := createTestUser(t, pool)
	svc := NewRewardService(pool, nil)

	_, err := pool.Exec(ctx, `UPDATE users SET total_coins = 50 WHERE clerk_id = $1`, u.ClerkID)
	require.NoError(t, err)

	r, err := svc.CreateReward(ctx, u.ClerkID, &reward.CreateRewardRequest{
		Title:    "Movie night",
		CoinCost: 30,
		Icon:     "🎬",
	})
	require.NoError(t, err)

	result, err := svc.Redeem(ctx, u.ClerkID, r.ID.String())
	require.NoError(t, err)

	assert.Equal(t, 20, result.Remaining)
	assert.True(t, result.Reward.IsRedeemed)
	require.NotNil(t, result.Reward.RedeemedAt)

	// A reward only redeems once.
	_, err = svc.Redeem(ctx, u.ClerkID, r.ID.String())
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRedeemRewardInsufficientCoins(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()

	u := createTestUser(t, pool)
	svc := NewRewardService(pool, nil)

	r, err := svc.CreateReward(ctx, u.ClerkID, &reward.CreateRewardRequest{
		Title:    "Weekend trip",
		CoinCost: 500,
		Icon:     "✈️",
	})
	require.NoError(t, err)

	_, err = svc.Redeem(ctx, u.ClerkID, r.ID.String())
	assert.ErrorIs(t, err, ErrInsufficientCoins)
}
