package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lifeQuestAPI/internal/types/reward"
)

type RewardService struct {
	db            *pgxpool.Pool
	notifications *NotificationService
}

func NewRewardService(db *pgxpool.Pool, notifications *NotificationService) *RewardService {
	return &RewardService{db: db, notifications: notifications}
}

const rewardColumns = `id, user_id, title, coin_cost, icon, is_redeemed, redeemed_at, created_at`

func scanReward(row pgx.Row) (*reward.Reward, error) {
	r := &reward.Reward{}
	err := row.Scan(&r.ID, &r.UserID, &r.Title, &r.CoinCost, &r.Icon, &r.IsRedeemed, &r.RedeemedAt, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (s *RewardService) CreateReward(ctx context.Context, clerkID string, req *reward.CreateRewardRequest) (*reward.Reward, error) {
	if req.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if req.CoinCost < 1 {
		return nil, fmt.Errorf("%w: coinCost must be positive", ErrValidation)
	}

	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		return nil, fmt.Errorf("%w: user", ErrNotFound)
	}

	query := `
	INSERT INTO rewards (id, user_id, title, coin_cost, icon, is_redeemed, created_at)
	VALUES ($1, $2, $3, $4, $5, false, NOW())
	RETURNING ` + rewardColumns

	r, err := scanReward(s.db.QueryRow(ctx, query, uuid.New(), userID, req.Title, req.CoinCost, req.Icon))
	if err != nil {
		return nil, fmt.Errorf("failed to create reward: %w", err)
	}
	return r, nil
}

func (s *RewardService) GetRewards(ctx context.Context, clerkID string) ([]*reward.Reward, error) {
	query := `
	SELECT ` + rewardColumns + `
	FROM rewards
	WHERE user_id = (SELECT id FROM users WHERE clerk_id = $1)
	ORDER BY is_redeemed, coin_cost
	`

	rows, err := s.db.Query(ctx, query, clerkID)
	if err != nil {
		return nil, fmt.Errorf("failed to get rewards: %w", err)
	}
	defer rows.Close()

	rewards := []*reward.Reward{}
	for rows.Next() {
		r, err := scanReward(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reward: %w", err)
		}
		rewards = append(rewards, r)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return rewards, nil
}

// Redeem spends coins on a reward. The user row is locked so concurrent
// redemptions cannot overspend the balance.
func (s *RewardService) Redeem(ctx context.Context, clerkID, rewardID string) (*reward.RedeemResult, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var userID uuid.UUID
	var totalCoins int
	err = tx.QueryRow(ctx, `
	SELECT id, total_coins FROM users WHERE clerk_id = $1 FOR UPDATE
	`, clerkID).Scan(&userID, &totalCoins)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: user", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to lock user: %w", err)
	}

	r, err := scanReward(tx.QueryRow(ctx, `
	SELECT `+rewardColumns+` FROM rewards WHERE id = $1 AND user_id = $2 FOR UPDATE
	`, rewardID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: reward", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to lock reward: %w", err)
	}

	if r.IsRedeemed {
		return nil, fmt.Errorf("%w: reward already redeemed", ErrValidation)
	}
	if totalCoins < r.CoinCost {
		return nil, fmt.Errorf("%w: need %d, have %d", ErrInsufficientCoins, r.CoinCost, totalCoins)
	}

	remaining := totalCoins - r.CoinCost
	_, err = tx.Exec(ctx, `
	UPDATE users SET total_coins = $2, updated_at = NOW() WHERE id = $1
	`, userID, remaining)
	if err != nil {
		return nil, fmt.Errorf("failed to deduct coins: %w", err)
	}

	r, err = scanReward(tx.QueryRow(ctx, `
	UPDATE rewards SET is_redeemed = true, redeemed_at = NOW() WHERE id = $1
	RETURNING `+rewardColumns, r.ID))
	if err != nil {
		return nil, fmt.Errorf("failed to redeem reward: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit redemption: %w", err)
	}

	if s.notifications != nil {
		s.notifications.NotifyRewardRedeemed(ctx, userID, r.Title, r.CoinCost)
	}

	return &reward.RedeemResult{Reward: r, Remaining: remaining}, nil
}

func (s *RewardService) DeleteReward(ctx context.Context, clerkID, rewardID string) error {
	query := `
	DELETE FROM rewards
	WHERE id = $2 AND user_id = (SELECT id FROM users WHERE clerk_id = $1)
	`

	result, err := s.db.Exec(ctx, query, clerkID, rewardID)
	if err != nil {
		return fmt.Errorf("failed to delete reward: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: reward", ErrNotFound)
	}
	return nil
}
