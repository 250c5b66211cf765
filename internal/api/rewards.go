package api

import (
	"context"
	"net/http"
	"time"

	"dating_platform/internal/domain"
	"dating_platform/internal/notify"
	"dating_platform/internal/rewards"
	"dating_platform/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ListDailyPendingRewardsHandler returns pending daily rewards, filtered to
// users whose current balance still clears the qualifying slab floor.
func ListDailyPendingRewardsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := rewards.ListDailyPending(db)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, rows)
	}
}

// ListWeeklyPendingRewardsHandler returns pending weekly rewards by rank.
func ListWeeklyPendingRewardsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var rows []domain.PendingReward
		if err := db.Where("type = ? AND status = ?", domain.RewardWeekly, domain.RewardPending).
			Order("`rank` ASC").Find(&rows).Error; err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, rows)
	}
}

// SettleRewardRequest carries an optional admin note.
type SettleRewardRequest struct {
	Note string `json:"note"`
}

// ApproveRewardHandler credits the reward and closes the pending row.
func ApproveRewardHandler(db *gorm.DB, rdb *redis.Client, sender notify.Sender) gin.HandlerFunc {
	return func(c *gin.Context) {
		rewardID, ok := paramID(c, "id")
		if !ok {
			return
		}
		var req SettleRewardRequest
		_ = c.ShouldBindJSON(&req) // note is optional

		reward, err := rewards.Approve(db, rewardID, currentAdminID(c), req.Note)
		if err != nil {
			respondError(c, err)
			return
		}
		utils.InvalidateUserCaches(context.Background(), rdb, reward.UserID)
		notify.BestEffort(c.Request.Context(), sender, reward.UserID, domain.RoleFemale,
			"Reward credited", "Your "+reward.Type+" reward of "+reward.RewardAmount.String()+" was approved",
			nil)
		respondOK(c, reward)
	}
}

// RejectRewardHandler closes the pending row without crediting.
func RejectRewardHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		rewardID, ok := paramID(c, "id")
		if !ok {
			return
		}
		var req SettleRewardRequest
		_ = c.ShouldBindJSON(&req)

		reward, err := rewards.Reject(db, rewardID, currentAdminID(c), req.Note)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, reward)
	}
}

// RunRewardCalculatorHandler triggers a calculator run outside the
// scheduler, for ops use. ?type=daily|weekly, default both.
func RunRewardCalculatorHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		kind := c.DefaultQuery("type", "")
		now := time.Now()
		result := gin.H{}
		if kind == "" || kind == domain.RewardDaily {
			n, err := rewards.RunDaily(db, now)
			if err != nil {
				respondError(c, err)
				return
			}
			result["daily_created"] = n
		}
		if kind == "" || kind == domain.RewardWeekly {
			n, err := rewards.RunWeekly(db, now)
			if err != nil {
				respondError(c, err)
				return
			}
			result["weekly_created"] = n
		}
		respondOK(c, result)
	}
}

// DailySlabRequest configures one daily reward slab.
type DailySlabRequest struct {
	MinWalletBalance decimal.Decimal `json:"min_wallet_balance" binding:"required"`
	Amount           decimal.Decimal `json:"amount" binding:"required"`
}

// CreateDailySlabHandler adds a daily reward slab.
func CreateDailySlabHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req DailySlabRequest
		if err := c.ShouldBindJSON(&req); err != nil ||
			!req.Amount.IsPositive() || req.MinWalletBalance.IsNegative() {
			respondMessage(c, http.StatusBadRequest, "Invalid request")
			return
		}
		slab := domain.DailyReward{MinWalletBalance: req.MinWalletBalance, Amount: req.Amount}
		if err := db.Create(&slab).Error; err != nil {
			respondError(c, err)
			return
		}
		respondCreated(c, slab)
	}
}

// WeeklySlabRequest configures one weekly rank slab.
type WeeklySlabRequest struct {
	Rank   int             `json:"rank" binding:"required,gt=0"`
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// CreateWeeklySlabHandler adds a weekly rank slab.
func CreateWeeklySlabHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req WeeklySlabRequest
		if err := c.ShouldBindJSON(&req); err != nil || !req.Amount.IsPositive() {
			respondMessage(c, http.StatusBadRequest, "Invalid request")
			return
		}
		slab := domain.WeeklyReward{Rank: req.Rank, Amount: req.Amount}
		if err := db.Create(&slab).Error; err != nil {
			respondMessage(c, http.StatusBadRequest, "Rank already configured")
			return
		}
		respondCreated(c, slab)
	}
}

// ListRewardHistoryHandler returns settled reward audit rows for one user.
func ListRewardHistoryHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := paramID(c, "id")
		if !ok {
			return
		}
		var rows []domain.RewardHistory
		if err := db.Where("user_id = ?", userID).
			Order("created_at DESC").Find(&rows).Error; err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, rows)
	}
}
