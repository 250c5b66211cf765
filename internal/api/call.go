package api

import (
	"context"
	"net/http"
	"time"

	"dating_platform/internal/domain"
	"dating_platform/internal/ledger"
	"dating_platform/internal/notify"
	"dating_platform/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StartCallRequest opens a call session with a female user.
type StartCallRequest struct {
	CalleeID uint `json:"callee_id" binding:"required"`
}

// StartCallHandler opens a session after checking the caller can afford at
// least one minute at the configured rate.
func StartCallHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		var req StartCallRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondMessage(c, http.StatusBadRequest, "Invalid request")
			return
		}

		var caller domain.User
		if err := db.First(&caller, userID).Error; err != nil {
			respondMessage(c, http.StatusNotFound, "User not found")
			return
		}
		if caller.Role != domain.RoleMale {
			respondMessage(c, http.StatusBadRequest, "Only male users start calls")
			return
		}
		var callee domain.User
		if err := db.First(&callee, req.CalleeID).Error; err != nil {
			respondMessage(c, http.StatusNotFound, "Callee not found")
			return
		}
		if callee.Role != domain.RoleFemale || callee.ReviewStatus != domain.ReviewAccepted {
			respondMessage(c, http.StatusBadRequest, "Callee unavailable")
			return
		}

		var cfg domain.AdminConfig
		if err := db.First(&cfg, 1).Error; err != nil || cfg.CallCoinsPerMinute == nil {
			respondError(c, domain.ErrConfigNotSet)
			return
		}
		if caller.CoinBalance.LessThan(*cfg.CallCoinsPerMinute) {
			respondError(c, domain.ErrInsufficientBalance)
			return
		}

		session := domain.CallSession{
			CallerID:  caller.ID,
			CalleeID:  callee.ID,
			Status:    domain.CallOngoing,
			StartedAt: time.Now(),
		}
		if err := db.Create(&session).Error; err != nil {
			respondError(c, err)
			return
		}
		respondCreated(c, session)
	}
}

// EndCallHandler settles an ongoing call: billable minutes round up, the
// caller pays minutes × rate in coins, the callee earns the amount minus
// the platform share. Debit, credit and session update commit together; an
// unaffordable bill marks the session failed and moves no money.
func EndCallHandler(db *gorm.DB, rdb *redis.Client, sender notify.Sender) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		sessionID, ok := paramID(c, "id")
		if !ok {
			return
		}

		var session domain.CallSession
		if err := db.First(&session, sessionID).Error; err != nil {
			respondMessage(c, http.StatusNotFound, "Call session not found")
			return
		}
		if session.CallerID != userID && session.CalleeID != userID {
			respondMessage(c, http.StatusForbidden, "Not your call")
			return
		}
		if session.Status != domain.CallOngoing {
			respondError(c, domain.ErrInvalidStateTransition)
			return
		}

		var cfg domain.AdminConfig
		if err := db.First(&cfg, 1).Error; err != nil ||
			cfg.CallCoinsPerMinute == nil || cfg.AdminSharePercent == nil {
			respondError(c, domain.ErrConfigNotSet)
			return
		}

		now := time.Now()
		minutes := int(now.Sub(session.StartedAt).Minutes())
		if now.Sub(session.StartedAt) > time.Duration(minutes)*time.Minute {
			minutes++ // partial minutes bill as whole
		}
		if minutes < 1 {
			minutes = 1
		}
		cost := cfg.CallCoinsPerMinute.Mul(decimal.NewFromInt(int64(minutes)))
		earned := cost.Mul(hundred.Sub(*cfg.AdminSharePercent)).Div(hundred).RoundDown(2)

		var callee domain.User
		if err := db.First(&callee, session.CalleeID).Error; err != nil {
			respondError(c, err)
			return
		}

		err := ledger.WithUsers(db, []uint{session.CallerID, session.CalleeID}, func(tx *gorm.DB) error {
			if _, err := ledger.ApplyTx(tx, session.CallerID, ledger.Entry{
				Operation: domain.OperationCoin,
				Action:    domain.ActionDebit,
				Amount:    cost,
				Message:   "Call with " + callee.Name,
			}); err != nil {
				return err
			}
			if _, err := ledger.ApplyTx(tx, session.CalleeID, ledger.Entry{
				Operation:   domain.OperationWallet,
				Action:      domain.ActionCredit,
				Amount:      earned,
				Message:     "Call earnings",
				EarningType: domain.EarningCall,
			}); err != nil {
				return err
			}
			return tx.Model(&domain.CallSession{}).Where("id = ?", session.ID).
				Updates(map[string]any{
					"status":        domain.CallSettled,
					"ended_at":      now,
					"minutes":       minutes,
					"coin_cost":     cost,
					"earned_amount": earned,
				}).Error
		})
		if err == domain.ErrInsufficientBalance {
			// caller ran out of coins mid-call: close the session unbilled
			_ = db.Model(&domain.CallSession{}).Where("id = ?", session.ID).
				Updates(map[string]any{"status": domain.CallFailed, "ended_at": now, "minutes": minutes}).Error
			respondError(c, err)
			return
		}
		if err != nil {
			respondError(c, err)
			return
		}
		ctx := context.Background()
		utils.InvalidateUserCaches(ctx, rdb, session.CallerID)
		utils.InvalidateUserCaches(ctx, rdb, session.CalleeID)

		session.Status = domain.CallSettled
		session.EndedAt = &now
		session.Minutes = minutes
		session.CoinCost = cost
		session.EarnedAmount = earned

		notify.BestEffort(c.Request.Context(), sender, session.CalleeID, domain.RoleFemale,
			"Call ended", "You earned "+earned.String()+" from your last call",
			map[string]string{"minutes": decimal.NewFromInt(int64(minutes)).String()})
		respondOK(c, session)
	}
}
