package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction operation types (which balance was touched)
const (
	OperationWallet = "wallet"
	OperationCoin   = "coin"
)

// Transaction actions
const (
	ActionCredit = "credit"
	ActionDebit  = "debit"
)

// Earning types, set on credits that represent platform earnings
const (
	EarningCall  = "call"
	EarningGift  = "gift"
	EarningOther = "other"
)

// Transaction Model — append-only ledger entry. One row per balance
// mutation, never updated or deleted. BalanceAfter is an audit snapshot of
// the balance right after the mutation; the User row stays authoritative.
type Transaction struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	UserID        uint            `gorm:"not null;index" json:"user_id"`
	UserRole      string          `gorm:"size:10;not null" json:"user_role"`
	OperationType string          `gorm:"size:10;not null" json:"operation_type"` // wallet or coin
	Action        string          `gorm:"size:10;not null" json:"action"`         // credit or debit
	Amount        decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount"`
	BalanceAfter  decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"balance_after"`
	Message       string          `gorm:"size:255" json:"message"`
	EarningType   string          `gorm:"size:10" json:"earning_type,omitempty"` // call, gift, other
	Reference     string          `gorm:"size:36;uniqueIndex" json:"reference"`  // uuid, dedupe key
	CreatedByID   *uint           `json:"created_by_id"`                         // acting admin, if any
	CreatedAt     time.Time       `gorm:"index" json:"created_at"`
}
