package api

import (
	"context"
	"net/http"

	"dating_platform/internal/domain"
	"dating_platform/internal/ledger"
	"dating_platform/internal/payment"
	"dating_platform/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ListCoinPlansHandler returns the purchasable coin bundles.
func ListCoinPlansHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var plans []domain.CoinPlan
		if err := db.Where("active = ?", true).Order("price_rupees ASC").Find(&plans).Error; err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, plans)
	}
}

// CreateRechargeRequest picks a coin plan to buy.
type CreateRechargeRequest struct {
	CoinPlanID uint `json:"coin_plan_id" binding:"required"`
}

// CreateRechargeOrderHandler opens a gateway order for a coin plan. No
// coins move until the gateway callback verifies.
func CreateRechargeOrderHandler(db *gorm.DB, gateway payment.Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		var req CreateRechargeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondMessage(c, http.StatusBadRequest, "Invalid request")
			return
		}
		var user domain.User
		if err := db.First(&user, userID).Error; err != nil {
			respondMessage(c, http.StatusNotFound, "User not found")
			return
		}
		if user.Role != domain.RoleMale {
			respondMessage(c, http.StatusBadRequest, "Only male users buy coins")
			return
		}
		var plan domain.CoinPlan
		if err := db.Where("id = ? AND active = ?", req.CoinPlanID, true).First(&plan).Error; err != nil {
			respondMessage(c, http.StatusNotFound, "Coin plan not found")
			return
		}

		orderID, err := gateway.CreateOrder(c.Request.Context(), plan.PriceRupees, user.Mobile)
		if err != nil {
			respondError(c, err)
			return
		}
		order := domain.RechargeOrder{
			UserID:         userID,
			CoinPlanID:     plan.ID,
			Coins:          plan.Coins,
			AmountRupees:   plan.PriceRupees,
			GatewayOrderID: orderID,
			Status:         domain.RechargeCreated,
		}
		if err := db.Create(&order).Error; err != nil {
			respondError(c, err)
			return
		}
		respondCreated(c, order)
	}
}

// VerifyRechargeRequest is the gateway callback payload.
type VerifyRechargeRequest struct {
	GatewayOrderID string `json:"gateway_order_id" binding:"required"`
	PaymentID      string `json:"payment_id" binding:"required"`
	Signature      string `json:"signature" binding:"required"`
}

// VerifyRechargeHandler checks the gateway signature and credits the coins.
// The status flip is conditional on "created", so a replayed callback can
// never credit twice.
func VerifyRechargeHandler(db *gorm.DB, rdb *redis.Client, gateway payment.Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		var req VerifyRechargeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondMessage(c, http.StatusBadRequest, "Invalid request")
			return
		}

		var order domain.RechargeOrder
		if err := db.Where("gateway_order_id = ? AND user_id = ?", req.GatewayOrderID, userID).
			First(&order).Error; err != nil {
			respondMessage(c, http.StatusNotFound, "Order not found")
			return
		}
		if order.Status != domain.RechargeCreated {
			respondError(c, domain.ErrInvalidStateTransition)
			return
		}
		if !gateway.VerifySignature(req.GatewayOrderID, req.PaymentID, req.Signature) {
			respondMessage(c, http.StatusBadRequest, "Signature verification failed")
			return
		}

		err := ledger.WithUsers(db, []uint{userID}, func(tx *gorm.DB) error {
			res := tx.Model(&domain.RechargeOrder{}).
				Where("id = ? AND status = ?", order.ID, domain.RechargeCreated).
				Update("status", domain.RechargePaid)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return domain.ErrInvalidStateTransition
			}
			_, err := ledger.ApplyTx(tx, userID, ledger.Entry{
				Operation: domain.OperationCoin,
				Action:    domain.ActionCredit,
				Amount:    order.Coins,
				Message:   "Coin recharge " + order.GatewayOrderID,
			})
			return err
		})
		if err != nil {
			respondError(c, err)
			return
		}
		utils.InvalidateUserCaches(context.Background(), rdb, userID)

		order.Status = domain.RechargePaid
		respondOK(c, order)
	}
}
