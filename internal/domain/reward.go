package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Reward types
const (
	RewardDaily  = "daily"
	RewardWeekly = "weekly"
)

// Pending reward statuses
const (
	RewardPending  = "pending"
	RewardApproved = "approved"
	RewardRejected = "rejected"
)

// PendingReward Model — a staged reward produced by the calculator. No
// balance moves until an admin approves it. At most one daily row per user
// per calendar day; at most one weekly batch per ISO week.
type PendingReward struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	UserID       uint            `gorm:"not null;index" json:"user_id"`
	Type         string          `gorm:"size:10;not null;index" json:"type"` // daily or weekly
	EarningValue decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"earning_value"`
	RewardAmount decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"reward_amount"`
	Threshold    decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"threshold"` // daily: slab floor that qualified
	Rank         int             `json:"rank,omitempty"`                                         // weekly only
	Status       string          `gorm:"size:10;not null;default:pending;index" json:"status"`
	CreatedAt    time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// RewardHistory Model — audit row written when an admin settles a pending
// reward, approved or rejected.
type RewardHistory struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	UserID          uint            `gorm:"not null;index" json:"user_id"`
	PendingRewardID uint            `gorm:"not null;index" json:"pending_reward_id"`
	Type            string          `gorm:"size:10;not null" json:"type"`
	RewardAmount    decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"reward_amount"`
	Status          string          `gorm:"size:10;not null" json:"status"` // approved or rejected
	Note            string          `gorm:"size:255" json:"note,omitempty"`
	ProcessedByID   *uint           `json:"processed_by_id"`
	CreatedAt       time.Time       `json:"created_at"`
}

// DailyReward Model — admin-configured slab: users whose wallet balance is
// at least MinWalletBalance qualify for Amount. The highest qualifying slab
// wins.
type DailyReward struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	MinWalletBalance decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"min_wallet_balance"`
	Amount           decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// WeeklyReward Model — admin-configured slab keyed by earnings rank within
// the ISO week (1 = top earner).
type WeeklyReward struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Rank      int             `gorm:"uniqueIndex;not null" json:"rank"`
	Amount    decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
