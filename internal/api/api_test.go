package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"dating_platform/internal/db"
	"dating_platform/internal/domain"
	"dating_platform/internal/kyc"
	"dating_platform/internal/ledger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBSeq atomic.Int64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:api_test_%d?mode=memory&cache=shared", testDBSeq.Add(1))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(db.Models()...))
	return gdb
}

// newTestRedis returns a client pointing nowhere: cache reads miss and cache
// writes fail, both of which the handlers treat as a cold cache.
func newTestRedis() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 20 * time.Millisecond,
		ReadTimeout: 20 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func dptr(s string) *decimal.Decimal { v := d(s); return &v }

// authAs stands in for the JWT middleware in tests.
func authAs(userID uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", userID)
		c.Next()
	}
}

// adminAs stands in for JWT + AdminOnly in tests.
func adminAs(adminID uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", adminID)
		c.Set("adminID", adminID)
		c.Next()
	}
}

func createUser(t *testing.T, gdb *gorm.DB, role, mobile string) *domain.User {
	t.Helper()
	user := domain.User{
		Mobile:       mobile,
		Name:         "user-" + mobile,
		Email:        mobile + "@example.com",
		Role:         role,
		ReviewStatus: domain.ReviewAccepted,
		ReferralCode: "RC" + mobile,
		Active:       true,
		Verified:     true,
	}
	require.NoError(t, gdb.Create(&user).Error)
	return &user
}

func seedConfig(t *testing.T, gdb *gorm.DB, cfg domain.AdminConfig) {
	t.Helper()
	cfg.ID = 1
	require.NoError(t, gdb.Create(&cfg).Error)
}

func creditWallet(t *testing.T, gdb *gorm.DB, userID uint, amount string) {
	t.Helper()
	_, err := ledger.Apply(gdb, userID, ledger.Entry{
		Operation: domain.OperationWallet,
		Action:    domain.ActionCredit,
		Amount:    d(amount),
		Message:   "seed",
	})
	require.NoError(t, err)
}

func creditCoins(t *testing.T, gdb *gorm.DB, userID uint, amount string) {
	t.Helper()
	_, err := ledger.Apply(gdb, userID, ledger.Entry{
		Operation: domain.OperationCoin,
		Action:    domain.ActionCredit,
		Amount:    d(amount),
		Message:   "seed",
	})
	require.NoError(t, err)
}

func acceptedBankMethod(t *testing.T, gdb *gorm.DB, userID uint) *domain.PayoutMethod {
	t.Helper()
	record, err := kyc.Submit(gdb, userID, domain.PayoutBank, &kyc.BankDetails{
		AccountNumber: "1234567890",
		IFSC:          "HDFC0001234",
		HolderName:    "Asha K",
	}, "")
	require.NoError(t, err)
	record, err = kyc.Review(gdb, record.ID, true, "", 1)
	require.NoError(t, err)
	return record
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var parsed map[string]any
	if len(w.Body.Bytes()) > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &parsed))
	}
	return w, parsed
}

func walletOf(t *testing.T, gdb *gorm.DB, id uint) decimal.Decimal {
	t.Helper()
	var user domain.User
	require.NoError(t, gdb.First(&user, id).Error)
	return user.WalletBalance
}

func coinsOf(t *testing.T, gdb *gorm.DB, id uint) decimal.Decimal {
	t.Helper()
	var user domain.User
	require.NoError(t, gdb.First(&user, id).Error)
	return user.CoinBalance
}

func init() {
	gin.SetMode(gin.TestMode)
}
