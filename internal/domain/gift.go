package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Gift Model — admin-managed catalog item a male user can send during a
// chat or call. CoinCost is debited from the sender; the recipient earns
// the rupee value minus the platform share.
type Gift struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Name      string          `gorm:"size:80;uniqueIndex;not null" json:"name"`
	IconURL   string          `gorm:"size:255" json:"icon_url"`
	CoinCost  decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"coin_cost"`
	Active    bool            `gorm:"default:true" json:"active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// GiftSend Model — record of one gift delivery, linking the two ledger
// entries it produced.
type GiftSend struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	GiftID       uint            `gorm:"not null;index" json:"gift_id"`
	FromUserID   uint            `gorm:"not null;index" json:"from_user_id"`
	ToUserID     uint            `gorm:"not null;index" json:"to_user_id"`
	CoinCost     decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"coin_cost"`
	EarnedAmount decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"earned_amount"` // recipient credit after platform share
	CreatedAt    time.Time       `gorm:"index" json:"created_at"`
}
