package referral

import (
	"fmt"

	"dating_platform/internal/domain"
	"dating_platform/internal/ledger"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// operationFor picks which balance a role earns referral bonuses on: males
// are paid in coins, females and agencies in wallet rupees.
func operationFor(role string) string {
	if role == domain.RoleMale {
		return domain.OperationCoin
	}
	return domain.OperationWallet
}

// AwardBonus pays the one-shot referral bonus after a referred user's
// review is accepted for the first time. Both credits and the at-most-once
// latch commit in a single transaction, so a crash can never pay one side
// without the other. Returns false (no error) when there is nothing to pay:
// latch already set, no referral linkage, unresolvable or self referrer, or
// unconfigured rates.
func AwardBonus(db *gorm.DB, cfg *domain.AdminConfig, user *domain.User) (bool, error) {
	if user.ReferralBonusAwarded || user.ReferredByID == nil {
		return false, nil
	}

	var referrer domain.User
	if err := db.First(&referrer, *user.ReferredByID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, nil
		}
		return false, err
	}
	if referrer.ID == user.ID {
		// self-referral guard
		return false, nil
	}

	referrerBonus := cfg.ReferralBonusFor(referrer.Role)
	referredBonus := cfg.ReferralBonusFor(user.Role)
	if referrerBonus == nil || !referrerBonus.IsPositive() ||
		referredBonus == nil || !referredBonus.IsPositive() {
		return false, nil
	}

	err := ledger.WithUsers(db, []uint{referrer.ID, user.ID}, func(tx *gorm.DB) error {
		if _, err := ledger.ApplyTx(tx, referrer.ID, ledger.Entry{
			Operation: operationFor(referrer.Role),
			Action:    domain.ActionCredit,
			Amount:    *referrerBonus,
			Message:   fmt.Sprintf("Referral bonus for referring %s", user.Name),
		}); err != nil {
			return err
		}
		if _, err := ledger.ApplyTx(tx, user.ID, ledger.Entry{
			Operation: operationFor(user.Role),
			Action:    domain.ActionCredit,
			Amount:    *referredBonus,
			Message:   fmt.Sprintf("Referral bonus for joining via %s", referrer.Name),
		}); err != nil {
			return err
		}
		// latch commits with the credits: either everything lands or nothing
		// does, so a retry after failure stays safe
		return tx.Model(&domain.User{}).Where("id = ?", user.ID).
			Update("referral_bonus_awarded", true).Error
	})
	if err != nil {
		return false, err
	}
	user.ReferralBonusAwarded = true

	logrus.WithFields(logrus.Fields{
		"referrer_id":    referrer.ID,
		"referrer_role":  referrer.Role,
		"referred_id":    user.ID,
		"referred_role":  user.Role,
		"referrer_bonus": referrerBonus.String(),
		"referred_bonus": referredBonus.String(),
	}).Info("Referral bonus awarded")
	return true, nil
}
