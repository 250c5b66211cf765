package rewards

import (
	"fmt"

	"dating_platform/internal/domain"
	"dating_platform/internal/ledger"

	"gorm.io/gorm"
)

// Approve settles a pending reward: wallet credit, RewardHistory row and
// status flip commit together. Only pending rewards can be approved.
func Approve(db *gorm.DB, rewardID uint, adminID uint, note string) (*domain.PendingReward, error) {
	var reward domain.PendingReward
	if err := db.First(&reward, rewardID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if reward.Status != domain.RewardPending {
		return nil, domain.ErrInvalidStateTransition
	}

	err := ledger.WithUsers(db, []uint{reward.UserID}, func(tx *gorm.DB) error {
		if _, err := ledger.ApplyTx(tx, reward.UserID, ledger.Entry{
			Operation:   domain.OperationWallet,
			Action:      domain.ActionCredit,
			Amount:      reward.RewardAmount,
			Message:     fmt.Sprintf("%s reward approved", reward.Type),
			EarningType: domain.EarningOther,
			CreatedByID: &adminID,
		}); err != nil {
			return err
		}
		history := domain.RewardHistory{
			UserID:          reward.UserID,
			PendingRewardID: reward.ID,
			Type:            reward.Type,
			RewardAmount:    reward.RewardAmount,
			Status:          domain.RewardApproved,
			Note:            note,
			ProcessedByID:   &adminID,
		}
		if err := tx.Create(&history).Error; err != nil {
			return err
		}
		return tx.Model(&domain.PendingReward{}).Where("id = ?", reward.ID).
			Update("status", domain.RewardApproved).Error
	})
	if err != nil {
		return nil, err
	}
	reward.Status = domain.RewardApproved
	return &reward, nil
}

// Reject settles a pending reward without touching any balance.
func Reject(db *gorm.DB, rewardID uint, adminID uint, note string) (*domain.PendingReward, error) {
	var reward domain.PendingReward
	if err := db.First(&reward, rewardID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if reward.Status != domain.RewardPending {
		return nil, domain.ErrInvalidStateTransition
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		history := domain.RewardHistory{
			UserID:          reward.UserID,
			PendingRewardID: reward.ID,
			Type:            reward.Type,
			RewardAmount:    reward.RewardAmount,
			Status:          domain.RewardRejected,
			Note:            note,
			ProcessedByID:   &adminID,
		}
		if err := tx.Create(&history).Error; err != nil {
			return err
		}
		return tx.Model(&domain.PendingReward{}).Where("id = ?", reward.ID).
			Update("status", domain.RewardRejected).Error
	})
	if err != nil {
		return nil, err
	}
	reward.Status = domain.RewardRejected
	return &reward, nil
}

// ListDailyPending returns pending daily rewards whose user still clears
// the slab floor that qualified them. Stale rows are filtered from the
// admin's view, not deleted — the row stays pending in the table.
func ListDailyPending(db *gorm.DB) ([]domain.PendingReward, error) {
	var rows []domain.PendingReward
	if err := db.Where("type = ? AND status = ?", domain.RewardDaily, domain.RewardPending).
		Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}

	qualified := make([]domain.PendingReward, 0, len(rows))
	for _, row := range rows {
		var user domain.User
		if err := db.First(&user, row.UserID).Error; err != nil {
			continue
		}
		if user.WalletBalance.GreaterThanOrEqual(row.Threshold) {
			qualified = append(qualified, row)
		}
	}
	return qualified, nil
}
