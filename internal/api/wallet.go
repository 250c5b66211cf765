package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"dating_platform/internal/domain"
	"dating_platform/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// GetBalanceHandler returns the authenticated user's balances, read-through
// cached for 60 seconds.
func GetBalanceHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		ctx := context.Background()
		cacheKey := utils.BalanceCacheKey(userID)

		var cached gin.H
		if found, err := utils.GetCache(ctx, rdb, cacheKey, &cached); err == nil && found {
			respondOK(c, cached)
			return
		}

		var user domain.User
		if err := db.First(&user, userID).Error; err != nil {
			respondMessage(c, http.StatusNotFound, "User not found")
			return
		}
		data := gin.H{
			"wallet_balance": user.WalletBalance,
			"coin_balance":   user.CoinBalance,
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, data, 60*time.Second)
		respondOK(c, data)
	}
}

// GetTransactionHistoryHandler returns the authenticated user's ledger
// history, newest first, paginated and cached per page.
func GetTransactionHistoryHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		page, pageSize := paginationParams(c)

		ctx := context.Background()
		cacheKey := utils.TxHistoryCacheKey(userID, page, pageSize)
		var cached gin.H
		if found, err := utils.GetCache(ctx, rdb, cacheKey, &cached); err == nil && found {
			respondOK(c, cached)
			return
		}

		var total int64
		if err := db.Model(&domain.Transaction{}).Where("user_id = ?", userID).
			Count(&total).Error; err != nil {
			respondError(c, err)
			return
		}
		var rows []domain.Transaction
		if err := db.Where("user_id = ?", userID).
			Order("created_at DESC").
			Offset((page - 1) * pageSize).
			Limit(pageSize).
			Find(&rows).Error; err != nil {
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

// paginationParams reads ?page and ?page_size with the usual bounds.
func paginationParams(c *gin.Context) (int, int) {
	page, pageSize := 1, 20
	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}
	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v
		}
	}
	return page, pageSize
}
