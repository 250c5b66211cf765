package kyc

import (
	"time"

	"dating_platform/internal/domain"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// BankDetails is the payload for a bank-method submission.
type BankDetails struct {
	AccountNumber string
	IFSC          string
	HolderName    string
}

// Submit records (or re-records) a payout destination for a user. A
// re-submission overwrites the existing row for that method and resets its
// status to pending — a previously accepted or rejected method goes back
// under review, other methods are untouched.
func Submit(db *gorm.DB, userID uint, method string, bank *BankDetails, upiAddress string) (*domain.PayoutMethod, error) {
	record := domain.PayoutMethod{UserID: userID, Method: method}
	err := db.Where("user_id = ? AND method = ?", userID, method).First(&record).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, err
	}

	record.Status = domain.KYCPending
	record.VerifiedAt = nil
	record.RejectReason = ""
	if method == domain.PayoutBank && bank != nil {
		record.AccountNumber = bank.AccountNumber
		record.IFSC = bank.IFSC
		record.HolderName = bank.HolderName
	}
	if method == domain.PayoutUPI {
		record.UPIAddress = upiAddress
	}

	if err := db.Save(&record).Error; err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"user_id": userID,
		"method":  method,
	}).Info("KYC method submitted")
	return &record, nil
}

// Review settles one payout method: accepted stamps VerifiedAt, rejected
// stores the reason. Only pending methods can be reviewed.
func Review(db *gorm.DB, methodID uint, accept bool, reason string, adminID uint) (*domain.PayoutMethod, error) {
	var record domain.PayoutMethod
	if err := db.First(&record, methodID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if record.Status != domain.KYCPending {
		return nil, domain.ErrInvalidStateTransition
	}

	if accept {
		now := time.Now()
		record.Status = domain.KYCAccepted
		record.VerifiedAt = &now
	} else {
		record.Status = domain.KYCRejected
		record.RejectReason = reason
	}
	if err := db.Save(&record).Error; err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"method_id": methodID,
		"user_id":   record.UserID,
		"status":    record.Status,
		"admin_id":  adminID,
	}).Info("KYC method reviewed")
	return &record, nil
}

// StatusFor returns the user's per-method records and the derived overall
// KYC status.
func StatusFor(db *gorm.DB, userID uint) (string, []domain.PayoutMethod, error) {
	var methods []domain.PayoutMethod
	if err := db.Where("user_id = ?", userID).Find(&methods).Error; err != nil {
		return "", nil, err
	}
	return domain.DeriveKYCStatus(methods), methods, nil
}

// VerifiedMethod returns the payout record iff the user's chosen method is
// accepted AND the supplied record id matches the stored one. The id match
// stops a withdrawal from replaying stale or altered destination details.
func VerifiedMethod(db *gorm.DB, userID uint, method string, methodID uint) (*domain.PayoutMethod, error) {
	var record domain.PayoutMethod
	err := db.Where("user_id = ? AND method = ?", userID, method).First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrKYCNotVerified
		}
		return nil, err
	}
	if record.Status != domain.KYCAccepted || record.ID != methodID {
		return nil, domain.ErrKYCNotVerified
	}
	return &record, nil
}
