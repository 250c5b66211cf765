package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Recharge order statuses
const (
	RechargeCreated = "created"
	RechargePaid    = "paid"
	RechargeFailed  = "failed"
)

// CoinPlan Model — purchasable coin bundle.
type CoinPlan struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Coins       decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"coins"`
	PriceRupees decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"price_rupees"`
	Active      bool            `gorm:"default:true" json:"active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// RechargeOrder Model — a payment-gateway order for a coin plan. Coins are
// credited only after the gateway signature verifies.
type RechargeOrder struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	UserID         uint            `gorm:"not null;index" json:"user_id"`
	CoinPlanID     uint            `gorm:"not null" json:"coin_plan_id"`
	Coins          decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"coins"`
	AmountRupees   decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount_rupees"`
	GatewayOrderID string          `gorm:"size:64;uniqueIndex;not null" json:"gateway_order_id"`
	Status         string          `gorm:"size:10;not null;default:created;index" json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
