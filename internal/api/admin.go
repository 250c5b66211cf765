package api

import (
	"context"
	"net/http"
	"time"

	"dating_platform/internal/domain"
	"dating_platform/internal/ledger"
	"dating_platform/internal/notify"
	"dating_platform/internal/referral"
	"dating_platform/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GetConfigHandler returns the singleton admin configuration.
func GetConfigHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var cfg domain.AdminConfig
		if err := db.First(&cfg, 1).Error; err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, cfg)
	}
}

// UpdateConfigRequest sets admin rates. Absent fields stay untouched.
type UpdateConfigRequest struct {
	CoinToRupeeRate     *decimal.Decimal `json:"coin_to_rupee_rate"`
	MinWithdrawalAmount *decimal.Decimal `json:"min_withdrawal_amount"`
	FemaleReferralBonus *decimal.Decimal `json:"female_referral_bonus"`
	AgencyReferralBonus *decimal.Decimal `json:"agency_referral_bonus"`
	MaleReferralBonus   *decimal.Decimal `json:"male_referral_bonus"`
	AdminSharePercent   *decimal.Decimal `json:"admin_share_percent"`
	CallCoinsPerMinute  *decimal.Decimal `json:"call_coins_per_minute"`
	WithdrawalCountdown *int             `json:"withdrawal_countdown_hours"`
	MaxDistanceKm       *int             `json:"max_distance_km"`
}

// UpdateConfigHandler applies a partial update to the singleton config row.
func UpdateConfigHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateConfigRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondMessage(c, http.StatusBadRequest, "Invalid request")
			return
		}
		updates := map[string]any{}
		if req.CoinToRupeeRate != nil {
			updates["coin_to_rupee_rate"] = *req.CoinToRupeeRate
		}
		if req.MinWithdrawalAmount != nil {
			updates["min_withdrawal_amount"] = *req.MinWithdrawalAmount
		}
		if req.FemaleReferralBonus != nil {
			updates["female_referral_bonus"] = *req.FemaleReferralBonus
		}
		if req.AgencyReferralBonus != nil {
			updates["agency_referral_bonus"] = *req.AgencyReferralBonus
		}
		if req.MaleReferralBonus != nil {
			updates["male_referral_bonus"] = *req.MaleReferralBonus
		}
		if req.AdminSharePercent != nil {
			updates["admin_share_percent"] = *req.AdminSharePercent
		}
		if req.CallCoinsPerMinute != nil {
			updates["call_coins_per_minute"] = *req.CallCoinsPerMinute
		}
		if req.WithdrawalCountdown != nil {
			updates["withdrawal_countdown"] = *req.WithdrawalCountdown
		}
		if req.MaxDistanceKm != nil {
			updates["max_distance_km"] = *req.MaxDistanceKm
		}
		if len(updates) == 0 {
			respondMessage(c, http.StatusBadRequest, "Nothing to update")
			return
		}
		if err := db.Model(&domain.AdminConfig{}).Where("id = ?", 1).Updates(updates).Error; err != nil {
			respondError(c, err)
			return
		}
		var cfg domain.AdminConfig
		if err := db.First(&cfg, 1).Error; err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, cfg)
	}
}

// ReviewUserRequest is the admin verdict on a registration.
type ReviewUserRequest struct {
	Accept bool   `json:"accept"`
	Reason string `json:"reason"`
}

// ReviewUserHandler settles a pending registration review. First-time
// acceptance fires the referral bonus engine; the at-most-once latch on the
// user keeps a re-review from paying twice.
func ReviewUserHandler(db *gorm.DB, rdb *redis.Client, sender notify.Sender) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := paramID(c, "id")
		if !ok {
			return
		}
		var req ReviewUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondMessage(c, http.StatusBadRequest, "Invalid request")
			return
		}
		if !req.Accept && req.Reason == "" {
			respondMessage(c, http.StatusBadRequest, "Rejection requires a reason")
			return
		}

		var user domain.User
		if err := db.First(&user, userID).Error; err != nil {
			respondMessage(c, http.StatusNotFound, "User not found")
			return
		}
		if user.ReviewStatus != domain.ReviewPending {
			respondError(c, domain.ErrInvalidStateTransition)
			return
		}

		updates := map[string]any{"review_status": domain.ReviewRejected, "review_reason": req.Reason}
		if req.Accept {
			updates = map[string]any{"review_status": domain.ReviewAccepted, "review_reason": ""}
		}
		if err := db.Model(&domain.User{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
			respondError(c, err)
			return
		}

		if req.Accept {
			user.ReviewStatus = domain.ReviewAccepted
			var cfg domain.AdminConfig
			if err := db.First(&cfg, 1).Error; err == nil {
				if awarded, err := referral.AwardBonus(db, &cfg, &user); err != nil {
					// the review itself stands; the un-set latch lets a
					// later acceptance path retry the bonus
					respondError(c, err)
					return
				} else if awarded {
					utils.InvalidateUserCaches(context.Background(), rdb, user.ID)
					if user.ReferredByID != nil {
						utils.InvalidateUserCaches(context.Background(), rdb, *user.ReferredByID)
					}
				}
			}
			notify.BestEffort(c.Request.Context(), sender, user.ID, user.Role,
				"Profile approved", "Welcome aboard, your profile is live", nil)
		} else {
			user.ReviewStatus = domain.ReviewRejected
			user.ReviewReason = req.Reason
			notify.BestEffort(c.Request.Context(), sender, user.ID, user.Role,
				"Profile rejected", req.Reason, nil)
		}
		respondOK(c, user)
	}
}

// ListUsersHandler returns users filtered by role/review status, paginated
// and cached for 60 seconds.
func ListUsersHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, pageSize := paginationParams(c)
		role := c.Query("role")
		review := c.Query("review_status")

		ctx := context.Background()
		cacheKey := "admin:users:role=" + role + ":review=" + review +
			":page=" + c.DefaultQuery("page", "1") + ":size=" + c.DefaultQuery("page_size", "20")
		var cached gin.H
		if found, err := utils.GetCache(ctx, rdb, cacheKey, &cached); err == nil && found {
			respondOK(c, cached)
			return
		}

		query := db.Model(&domain.User{})
		if role != "" {
			query = query.Where("role = ?", role)
		}
		if review != "" {
			query = query.Where("review_status = ?", review)
		}
		var total int64
		if err := query.Count(&total).Error; err != nil {
			respondError(c, err)
			return
		}
		var users []domain.User
		if err := query.Offset((page - 1) * pageSize).Limit(pageSize).
			Order("created_at DESC").Find(&users).Error; err != nil {
			respondError(c, err)
			return
		}
		data := gin.H{
			"users":       users,
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": (int(total) + pageSize - 1) / pageSize,
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, data, 60*time.Second)
		respondOK(c, data)
	}
}

// AdjustBalanceRequest is a manual admin credit or debit.
type AdjustBalanceRequest struct {
	UserID    uint            `json:"user_id" binding:"required"`
	Operation string          `json:"operation" binding:"required,oneof=wallet coin"`
	Action    string          `json:"action" binding:"required,oneof=credit debit"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Message   string          `json:"message" binding:"required"`
}

// AdjustBalanceHandler applies a manual ledger entry with the acting admin
// recorded on the transaction.
func AdjustBalanceHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AdjustBalanceRequest
		if err := c.ShouldBindJSON(&req); err != nil || !req.Amount.IsPositive() {
			respondMessage(c, http.StatusBadRequest, "Invalid request")
			return
		}
		adminID := currentAdminID(c)
		row, err := ledger.Apply(db, req.UserID, ledger.Entry{
			Operation:   req.Operation,
			Action:      req.Action,
			Amount:      req.Amount,
			Message:     req.Message,
			CreatedByID: &adminID,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		utils.InvalidateUserCaches(context.Background(), rdb, req.UserID)
		respondCreated(c, row)
	}
}

// ListTransactionsHandler returns the full ledger, paginated, admin view.
func ListTransactionsHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, pageSize := paginationParams(c)

		ctx := context.Background()
		cacheKey := "admin:transactions:page=" + c.DefaultQuery("page", "1") +
			":size=" + c.DefaultQuery("page_size", "20")
		var cached gin.H
		if found, err := utils.GetCache(ctx, rdb, cacheKey, &cached); err == nil && found {
			respondOK(c, cached)
			return
		}

		var total int64
		if err := db.Model(&domain.Transaction{}).Count(&total).Error; err != nil {
			respondError(c, err)
			return
		}
		var rows []domain.Transaction
		if err := db.Order("created_at DESC").
			Offset((page - 1) * pageSize).Limit(pageSize).Find(&rows).Error; err != nil {
			respondError(c, err)
			return
		}
		data := gin.H{
			"transactions": rows,
			"page":         page,
			"page_size":    pageSize,
			"total":        total,
			"total_pages":  (int(total) + pageSize - 1) / pageSize,
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, data, 60*time.Second)
		respondOK(c, data)
	}
}

// DeleteAccountHandler removes the authenticated user and everything tied
// to them, in one transaction.
func DeleteAccountHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			for _, del := range []struct {
				model any
				where string
			}{
				{&domain.Transaction{}, "user_id = ?"},
				{&domain.WithdrawalRequest{}, "user_id = ?"},
				{&domain.PayoutMethod{}, "user_id = ?"},
				{&domain.PendingReward{}, "user_id = ?"},
				{&domain.RewardHistory{}, "user_id = ?"},
				{&domain.RechargeOrder{}, "user_id = ?"},
			} {
				if err := tx.Where(del.where, userID).Delete(del.model).Error; err != nil {
					return err
				}
			}
			if err := tx.Where("from_user_id = ? OR to_user_id = ?", userID, userID).
				Delete(&domain.GiftSend{}).Error; err != nil {
				return err
			}
			if err := tx.Where("caller_id = ? OR callee_id = ?", userID, userID).
				Delete(&domain.CallSession{}).Error; err != nil {
				return err
			}
			return tx.Delete(&domain.User{}, userID).Error
		})
		if err != nil {
			respondError(c, err)
			return
		}
		utils.InvalidateUserCaches(context.Background(), rdb, userID)
		respondOK(c, gin.H{"deleted": true})
	}
}
