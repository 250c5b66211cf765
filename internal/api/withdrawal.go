package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"dating_platform/internal/domain"
	"dating_platform/internal/kyc"
	"dating_platform/internal/ledger"
	"dating_platform/internal/notify"
	"dating_platform/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CreateWithdrawalRequest asks to cash out. Rupees is the payout amount;
// the coin cost is derived from the configured conversion rate.
type CreateWithdrawalRequest struct {
	Rupees         decimal.Decimal `json:"rupees" binding:"required"`
	PayoutMethod   string          `json:"payout_method" binding:"required,oneof=bank upi"`
	PayoutMethodID uint            `json:"payout_method_id" binding:"required"`
}

// payoutSnapshot is what gets frozen onto the withdrawal row, so a later
// KYC re-submission cannot change where an approved payout goes.
type payoutSnapshot struct {
	Method        string `json:"method"`
	AccountNumber string `json:"account_number,omitempty"`
	IFSC          string `json:"ifsc,omitempty"`
	HolderName    string `json:"holder_name,omitempty"`
	UPIAddress    string `json:"upi_address,omitempty"`
}

// CreateWithdrawalHandler runs the precondition ladder, then debits
// the coin cost and creates the pending request in one unit, so the funds
// are reserved the moment the request exists.
func CreateWithdrawalHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		var req CreateWithdrawalRequest
		if err := c.ShouldBindJSON(&req); err != nil || !req.Rupees.IsPositive() {
			respondMessage(c, http.StatusBadRequest, "Invalid request")
			return
		}

		var user domain.User
		if err := db.First(&user, userID).Error; err != nil {
			respondMessage(c, http.StatusNotFound, "User not found")
			return
		}
		if user.Role != domain.RoleFemale && user.Role != domain.RoleAgency {
			respondMessage(c, http.StatusBadRequest, "Withdrawals are for female and agency accounts")
			return
		}
		if !user.ProfileComplete() {
			respondError(c, domain.ErrProfileIncomplete)
			return
		}
		if user.ReviewStatus != domain.ReviewAccepted {
			respondError(c, domain.ErrReviewNotAccepted)
			return
		}

		method, err := kyc.VerifiedMethod(db, userID, req.PayoutMethod, req.PayoutMethodID)
		if err != nil {
			respondError(c, err)
			return
		}

		var cfg domain.AdminConfig
		if err := db.First(&cfg, 1).Error; err != nil {
			respondError(c, domain.ErrConfigNotSet)
			return
		}
		if cfg.CoinToRupeeRate == nil || cfg.MinWithdrawalAmount == nil {
			respondError(c, domain.ErrConfigNotSet)
			return
		}
		// coin cost rounds up so the platform never pays out more rupees
		// than the coins cover
		coins := req.Rupees.Mul(*cfg.CoinToRupeeRate).Ceil()

		// the minimum is denominated in coins, the wallet's native unit
		if coins.LessThan(*cfg.MinWithdrawalAmount) {
			respondError(c, domain.ErrBelowMinimum)
			return
		}

		snapshot, err := json.Marshal(payoutSnapshot{
			Method:        method.Method,
			AccountNumber: method.AccountNumber,
			IFSC:          method.IFSC,
			HolderName:    method.HolderName,
			UPIAddress:    method.UPIAddress,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		request := domain.WithdrawalRequest{
			UserID:         userID,
			UserRole:       user.Role,
			CoinsRequested: coins,
			AmountInRupees: req.Rupees,
			Status:         domain.WithdrawalPending,
			PayoutMethod:   method.Method,
			PayoutMethodID: method.ID,
			PayoutDetails:  string(snapshot),
			OrderRef:       uuid.NewString(),
		}

		// debit and request row commit together: a failed debit creates no
		// request, a failed insert rolls the debit back
		err = ledger.WithUsers(db, []uint{userID}, func(tx *gorm.DB) error {
			if _, err := ledger.ApplyTx(tx, userID, ledger.Entry{
				Operation: domain.OperationWallet,
				Action:    domain.ActionDebit,
				Amount:    coins,
				Message:   "Withdrawal request",
			}); err != nil {
				return err
			}
			return tx.Create(&request).Error
		})
		if err != nil {
			respondError(c, err)
			return
		}
		utils.InvalidateUserCaches(context.Background(), rdb, userID)

		countdown := 0
		if cfg.WithdrawalCountdown != nil {
			countdown = *cfg.WithdrawalCountdown
		}
		c.JSON(http.StatusCreated, gin.H{
			"success":        true,
			"data":           request,
			"countdownTimer": countdown,
		})
	}
}

// ListWithdrawalsHandler returns the authenticated user's own requests.
func ListWithdrawalsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		var rows []domain.WithdrawalRequest
		if err := db.Where("user_id = ?", userID).
			Order("created_at DESC").Find(&rows).Error; err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, rows)
	}
}

// AdminListWithdrawalsHandler returns requests by status (default pending).
func AdminListWithdrawalsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := c.DefaultQuery("status", domain.WithdrawalPending)
		var rows []domain.WithdrawalRequest
		if err := db.Where("status = ?", status).
			Order("created_at ASC").Find(&rows).Error; err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, rows)
	}
}

// ApproveWithdrawalHandler marks a pending request approved. The coins were
// debited at creation, so approval changes no balance. The payout itself
// happens outside this service.
func ApproveWithdrawalHandler(db *gorm.DB, sender notify.Sender) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID, ok := paramID(c, "id")
		if !ok {
			return
		}
		adminID := currentAdminID(c)

		var request domain.WithdrawalRequest
		if err := db.First(&request, requestID).Error; err != nil {
			respondMessage(c, http.StatusNotFound, "Withdrawal request not found")
			return
		}
		if !domain.CanTransitionWithdrawal(request.Status, domain.WithdrawalApproved) {
			respondError(c, domain.ErrInvalidStateTransition)
			return
		}

		now := time.Now()
		updates := map[string]any{
			"status":          domain.WithdrawalApproved,
			"processed_by_id": adminID,
			"processed_at":    now,
		}
		// guard the flip on the stored status too, so two admins clicking
		// approve at once cannot both win
		res := db.Model(&domain.WithdrawalRequest{}).
			Where("id = ? AND status = ?", requestID, domain.WithdrawalPending).
			Updates(updates)
		if res.Error != nil {
			respondError(c, res.Error)
			return
		}
		if res.RowsAffected == 0 {
			respondError(c, domain.ErrInvalidStateTransition)
			return
		}
		request.Status = domain.WithdrawalApproved
		request.ProcessedByID = &adminID
		request.ProcessedAt = &now

		notify.BestEffort(c.Request.Context(), sender, request.UserID, request.UserRole,
			"Withdrawal approved",
			"Your withdrawal of ₹"+request.AmountInRupees.String()+" was approved",
			map[string]string{"withdrawal_id": request.OrderRef})
		respondOK(c, request)
	}
}

// RejectWithdrawalRequest carries the admin's rejection reason.
type RejectWithdrawalRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// RejectWithdrawalHandler refunds the exact reserved coins and marks the
// request rejected, in one unit of work.
func RejectWithdrawalHandler(db *gorm.DB, rdb *redis.Client, sender notify.Sender) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID, ok := paramID(c, "id")
		if !ok {
			return
		}
		adminID := currentAdminID(c)
		var req RejectWithdrawalRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondMessage(c, http.StatusBadRequest, "Rejection requires a reason")
			return
		}

		var request domain.WithdrawalRequest
		if err := db.First(&request, requestID).Error; err != nil {
			respondMessage(c, http.StatusNotFound, "Withdrawal request not found")
			return
		}
		if !domain.CanTransitionWithdrawal(request.Status, domain.WithdrawalRejected) {
			respondError(c, domain.ErrInvalidStateTransition)
			return
		}

		now := time.Now()
		err := ledger.WithUsers(db, []uint{request.UserID}, func(tx *gorm.DB) error {
			// status flip first, conditional on pending: the refund can only
			// ever run once per request
			res := tx.Model(&domain.WithdrawalRequest{}).
				Where("id = ? AND status = ?", requestID, domain.WithdrawalPending).
				Updates(map[string]any{
					"status":          domain.WithdrawalRejected,
					"reject_reason":   req.Reason,
					"processed_by_id": adminID,
					"processed_at":    now,
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return domain.ErrInvalidStateTransition
			}
			_, err := ledger.ApplyTx(tx, request.UserID, ledger.Entry{
				Operation:   domain.OperationWallet,
				Action:      domain.ActionCredit,
				Amount:      request.CoinsRequested,
				Message:     "Withdrawal refund: " + req.Reason,
				CreatedByID: &adminID,
			})
			return err
		})
		if err != nil {
			respondError(c, err)
			return
		}
		utils.InvalidateUserCaches(context.Background(), rdb, request.UserID)

		request.Status = domain.WithdrawalRejected
		request.RejectReason = req.Reason
		request.ProcessedByID = &adminID
		request.ProcessedAt = &now

		notify.BestEffort(c.Request.Context(), sender, request.UserID, request.UserRole,
			"Withdrawal rejected", req.Reason,
			map[string]string{"withdrawal_id": request.OrderRef})
		respondOK(c, request)
	}
}
