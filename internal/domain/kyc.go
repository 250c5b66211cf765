package domain

import "time"

// Payout methods
const (
	PayoutBank = "bank"
	PayoutUPI  = "upi"
)

// KYC statuses, used both per payout method and for the derived overall
// status on a user.
const (
	KYCPending  = "pending"
	KYCAccepted = "accepted"
	KYCRejected = "rejected"
)

// PayoutMethod Model — one KYC-verified payout destination per user per
// method (bank or upi). Re-submission overwrites the row and resets its
// status to pending.
type PayoutMethod struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	UserID uint   `gorm:"not null;index:idx_payout_user_method,unique" json:"user_id"`
	Method string `gorm:"size:10;not null;index:idx_payout_user_method,unique" json:"method"` // bank or upi
	Status string `gorm:"size:10;not null;default:pending" json:"status"`

	// bank destination
	AccountNumber string `gorm:"size:32" json:"account_number,omitempty"`
	IFSC          string `gorm:"size:16" json:"ifsc,omitempty"`
	HolderName    string `gorm:"size:120" json:"holder_name,omitempty"`
	// upi destination
	UPIAddress string `gorm:"size:120" json:"upi_address,omitempty"`

	VerifiedAt   *time.Time `json:"verified_at"`
	RejectReason string     `gorm:"size:255" json:"reject_reason,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// DeriveKYCStatus computes the user-level KYC status from the per-method
// records: accepted wins over pending, pending wins over rejected. A user
// with no records at all is pending (nothing submitted yet).
func DeriveKYCStatus(methods []PayoutMethod) string {
	if len(methods) == 0 {
		return KYCPending
	}
	status := KYCRejected
	for _, m := range methods {
		switch m.Status {
		case KYCAccepted:
			return KYCAccepted
		case KYCPending:
			status = KYCPending
		}
	}
	return status
}
