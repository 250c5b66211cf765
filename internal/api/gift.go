package api

import (
	"context"
	"net/http"

	"dating_platform/internal/domain"
	"dating_platform/internal/ledger"
	"dating_platform/internal/notify"
	"dating_platform/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var hundred = decimal.NewFromInt(100)

// ListGiftsHandler returns the active gift catalog.
func ListGiftsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var gifts []domain.Gift
		if err := db.Where("active = ?", true).Order("coin_cost ASC").Find(&gifts).Error; err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, gifts)
	}
}

// SendGiftRequest sends one catalog gift to a female user.
type SendGiftRequest struct {
	GiftID   uint `json:"gift_id" binding:"required"`
	ToUserID uint `json:"to_user_id" binding:"required"`
}

// SendGiftHandler debits the sender's coins and credits the recipient's
// wallet with the coin value minus the platform share, both ledger entries
// in one unit of work.
func SendGiftHandler(db *gorm.DB, rdb *redis.Client, sender notify.Sender) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		var req SendGiftRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondMessage(c, http.StatusBadRequest, "Invalid request")
			return
		}

		var from domain.User
		if err := db.First(&from, userID).Error; err != nil {
			respondMessage(c, http.StatusNotFound, "User not found")
			return
		}
		if from.Role != domain.RoleMale {
			respondMessage(c, http.StatusBadRequest, "Only male users send gifts")
			return
		}
		var to domain.User
		if err := db.First(&to, req.ToUserID).Error; err != nil {
			respondMessage(c, http.StatusNotFound, "Recipient not found")
			return
		}
		if to.Role != domain.RoleFemale {
			respondMessage(c, http.StatusBadRequest, "Gifts go to female users")
			return
		}
		var gift domain.Gift
		if err := db.Where("id = ? AND active = ?", req.GiftID, true).First(&gift).Error; err != nil {
			respondMessage(c, http.StatusNotFound, "Gift not found")
			return
		}

		var cfg domain.AdminConfig
		if err := db.First(&cfg, 1).Error; err != nil || cfg.AdminSharePercent == nil {
			respondError(c, domain.ErrConfigNotSet)
			return
		}
		earned := gift.CoinCost.Mul(hundred.Sub(*cfg.AdminSharePercent)).Div(hundred).RoundDown(2)

		send := domain.GiftSend{
			GiftID:       gift.ID,
			FromUserID:   from.ID,
			ToUserID:     to.ID,
			CoinCost:     gift.CoinCost,
			EarnedAmount: earned,
		}
		err := ledger.WithUsers(db, []uint{from.ID, to.ID}, func(tx *gorm.DB) error {
			if _, err := ledger.ApplyTx(tx, from.ID, ledger.Entry{
				Operation: domain.OperationCoin,
				Action:    domain.ActionDebit,
				Amount:    gift.CoinCost,
				Message:   "Gift sent: " + gift.Name,
			}); err != nil {
				return err
			}
			if _, err := ledger.ApplyTx(tx, to.ID, ledger.Entry{
				Operation:   domain.OperationWallet,
				Action:      domain.ActionCredit,
				Amount:      earned,
				Message:     "Gift received: " + gift.Name,
				EarningType: domain.EarningGift,
			}); err != nil {
				return err
			}
			return tx.Create(&send).Error
		})
		if err != nil {
			respondError(c, err)
			return
		}
		ctx := context.Background()
		utils.InvalidateUserCaches(ctx, rdb, from.ID)
		utils.InvalidateUserCaches(ctx, rdb, to.ID)

		notify.BestEffort(c.Request.Context(), sender, to.ID, to.Role,
			"Gift received", from.Name+" sent you a "+gift.Name,
			map[string]string{"gift_id": gift.Name})
		respondCreated(c, send)
	}
}

// UpsertGiftRequest is the admin catalog payload.
type UpsertGiftRequest struct {
	Name     string          `json:"name" binding:"required"`
	IconURL  string          `json:"icon_url"`
	CoinCost decimal.Decimal `json:"coin_cost" binding:"required"`
	Active   *bool           `json:"active"`
}

// CreateGiftHandler adds a catalog gift.
func CreateGiftHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpsertGiftRequest
		if err := c.ShouldBindJSON(&req); err != nil || !req.CoinCost.IsPositive() {
			respondMessage(c, http.StatusBadRequest, "Invalid request")
			return
		}
		gift := domain.Gift{Name: req.Name, IconURL: req.IconURL, CoinCost: req.CoinCost, Active: true}
		if req.Active != nil {
			gift.Active = *req.Active
		}
		if err := db.Create(&gift).Error; err != nil {
			respondMessage(c, http.StatusBadRequest, "Gift name already exists")
			return
		}
		respondCreated(c, gift)
	}
}

// UpdateGiftHandler edits a catalog gift.
func UpdateGiftHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		giftID, ok := paramID(c, "id")
		if !ok {
			return
		}
		var req UpsertGiftRequest
		if err := c.ShouldBindJSON(&req); err != nil || !req.CoinCost.IsPositive() {
			respondMessage(c, http.StatusBadRequest, "Invalid request")
			return
		}
		var gift domain.Gift
		if err := db.First(&gift, giftID).Error; err != nil {
			respondMessage(c, http.StatusNotFound, "Gift not found")
			return
		}
		gift.Name = req.Name
		gift.IconURL = req.IconURL
		gift.CoinCost = req.CoinCost
		if req.Active != nil {
			gift.Active = *req.Active
		}
		if err := db.Save(&gift).Error; err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, gift)
	}
}
