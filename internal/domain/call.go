package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Call statuses
const (
	CallOngoing = "ongoing"
	CallSettled = "settled"
	CallFailed  = "failed"
)

// CallSession Model — one audio/video call between a male caller and a
// female callee. Billing settles at call end: minutes times the configured
// coin rate debited from the caller, rupee value minus the platform share
// credited to the callee.
type CallSession struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	CallerID     uint            `gorm:"not null;index" json:"caller_id"`
	CalleeID     uint            `gorm:"not null;index" json:"callee_id"`
	Status       string          `gorm:"size:10;not null;default:ongoing" json:"status"`
	StartedAt    time.Time       `json:"started_at"`
	EndedAt      *time.Time      `json:"ended_at"`
	Minutes      int             `json:"minutes"`
	CoinCost     decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"coin_cost"`
	EarnedAmount decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"earned_amount"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
