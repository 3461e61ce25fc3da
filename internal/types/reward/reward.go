package reward

import (
	"time"

	"github.com/google/uuid"
)

// Reward is a user-defined treat purchasable with coins.
type Reward struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	UserID     uuid.UUID  `json:"user_id" db:"user_id"`
	Title      string     `json:"title" db:"title"`
	CoinCost   int        `json:"coin_cost" db:"coin_cost"`
	Icon       string     `json:"icon" db:"icon"`
	IsRedeemed bool       `json:"is_redeemed" db:"is_redeemed"`
	RedeemedAt *time.Time `json:"redeemed_at,omitempty" db:"redeemed_at"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}

type CreateRewardRequest struct {
	Title    string `json:"title"`
	CoinCost int    `json:"coinCost"`
	Icon     string `json:"icon"`
}

type RedeemResult struct {
	Reward    *Reward `json:"reward"`
	Remaining int     `json:"remaining"`
}
