package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdminConfig Model — singleton row (ID 1) holding every admin-tunable rate.
// Nil pointers mean "not configured yet": operations that depend on a rate
// must fail with ErrConfigNotSet rather than assume a default.
type AdminConfig struct {
	ID uint `gorm:"primaryKey" json:"id"`

	CoinToRupeeRate     *decimal.Decimal `gorm:"type:decimal(20,2)" json:"coin_to_rupee_rate"`     // coins per rupee
	MinWithdrawalAmount *decimal.Decimal `gorm:"type:decimal(20,2)" json:"min_withdrawal_amount"`  // coins
	FemaleReferralBonus *decimal.Decimal `gorm:"type:decimal(20,2)" json:"female_referral_bonus"`  // rupees
	AgencyReferralBonus *decimal.Decimal `gorm:"type:decimal(20,2)" json:"agency_referral_bonus"`  // rupees
	MaleReferralBonus   *decimal.Decimal `gorm:"type:decimal(20,2)" json:"male_referral_bonus"`    // coins
	AdminSharePercent   *decimal.Decimal `gorm:"type:decimal(20,2)" json:"admin_share_percent"`    // platform cut on earnings
	CallCoinsPerMinute  *decimal.Decimal `gorm:"type:decimal(20,2)" json:"call_coins_per_minute"`  // call billing rate
	WithdrawalCountdown *int             `json:"withdrawal_countdown_hours"`                       // shown to users after requesting
	MaxDistanceKm       *int             `json:"max_distance_km"`                                  // discovery window
	UpdatedAt           time.Time        `json:"updated_at"`
}

// ReferralBonusFor returns the configured bonus for a role, or nil when the
// rate has not been set.
func (c *AdminConfig) ReferralBonusFor(role string) *decimal.Decimal {
	switch role {
	case RoleFemale:
		return c.FemaleReferralBonus
	case RoleAgency:
		return c.AgencyReferralBonus
	case RoleMale:
		return c.MaleReferralBonus
	}
	return nil
}
