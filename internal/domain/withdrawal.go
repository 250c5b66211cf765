package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Withdrawal statuses
const (
	WithdrawalPending  = "pending"
	WithdrawalApproved = "approved"
	WithdrawalRejected = "rejected"
	WithdrawalFailed   = "failed"
)

// withdrawalTransitions enumerates the legal status transitions. Approved,
// rejected and failed are terminal.
var withdrawalTransitions = map[string][]string{
	WithdrawalPending: {WithdrawalApproved, WithdrawalRejected, WithdrawalFailed},
}

// CanTransitionWithdrawal reports whether a withdrawal may move from one
// status to another. Acting on a non-pending request is always illegal.
func CanTransitionWithdrawal(from, to string) bool {
	for _, next := range withdrawalTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// WithdrawalRequest Model — a female/agency user's request to cash out
// coins. Coins are debited at creation time so the funds are reserved while
// the request waits for an admin; rejection refunds them.
type WithdrawalRequest struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	UserID         uint            `gorm:"not null;index" json:"user_id"`
	UserRole       string          `gorm:"size:10;not null" json:"user_role"` // female or agency
	CoinsRequested decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"coins_requested"`
	AmountInRupees decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount_in_rupees"`
	Status         string          `gorm:"size:10;not null;default:pending;index" json:"status"`

	PayoutMethod   string `gorm:"size:10;not null" json:"payout_method"` // bank or upi
	PayoutMethodID uint   `gorm:"not null" json:"payout_method_id"`
	PayoutDetails  string `gorm:"size:512" json:"payout_details"` // JSON snapshot of the verified destination

	OrderRef      string     `gorm:"size:36;uniqueIndex" json:"order_ref"` // uuid for gateway reconciliation
	RejectReason  string     `gorm:"size:255" json:"reject_reason,omitempty"`
	ProcessedByID *uint      `json:"processed_by_id"`
	ProcessedAt   *time.Time `json:"processed_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
