package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// User roles
const (
	RoleMale   = "male"
	RoleFemale = "female"
	RoleAgency = "agency"
	RoleAdmin  = "admin"
)

// Review lifecycle states. A user may not use the platform until an admin
// moves them to ReviewAccepted.
const (
	ReviewCompleteProfile = "completeProfile" // registered, profile not filled yet
	ReviewPending         = "pending"         // profile submitted, awaiting admin
	ReviewAccepted        = "accepted"
	ReviewRejected        = "rejected"
)

// User Model — one row per male/female/agency member (and admins).
// WalletBalance is the rupee-equivalent earnings balance (female/agency),
// CoinBalance is the spendable coin balance (male). Balances are mutated
// only through the ledger package.
type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Mobile       string     `gorm:"size:20;uniqueIndex;not null" json:"mobile"`
	Email        string     `gorm:"size:120;index" json:"email"`
	Name         string     `gorm:"size:120" json:"name"`
	Role         string     `gorm:"size:10;not null;index" json:"role"` // male, female, agency, admin
	PasswordHash string     `gorm:"size:120" json:"-"`                  // admin login only
	OTP          string     `gorm:"size:10" json:"-"`                   // ephemeral, cleared on verification
	OTPExpiresAt *time.Time `json:"-"`
	Verified     bool       `gorm:"default:false" json:"verified"` // mobile verified via OTP
	Active       bool       `gorm:"default:true" json:"active"`

	ProfileImageURL string `gorm:"size:255" json:"profile_image_url"`
	ReviewStatus    string `gorm:"size:20;not null;default:completeProfile;index" json:"review_status"`
	ReviewReason    string `gorm:"size:255" json:"review_reason,omitempty"` // set on rejection

	WalletBalance decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"wallet_balance"`
	CoinBalance   decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"coin_balance"`

	ReferralCode         string `gorm:"size:16;uniqueIndex" json:"referral_code"`
	ReferredByID         *uint  `gorm:"index" json:"referred_by_id"` // self-reference to the referrer
	ReferralBonusAwarded bool   `gorm:"default:false" json:"referral_bonus_awarded"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProfileComplete reports whether the user filled the mandatory profile
// fields. Review submission and withdrawals require it.
func (u *User) ProfileComplete() bool {
	return u.Name != "" && u.Email != ""
}

// Balance column names managed by the ledger.
const (
	BalanceWallet = "wallet_balance"
	BalanceCoin   = "coin_balance"
)
