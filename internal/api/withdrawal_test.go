package api_test

import (
	"fmt"
	"net/http"
	"testing"

	"dating_platform/internal/api"
	"dating_platform/internal/domain"
	"dating_platform/internal/notify"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func withdrawalRouter(gdb *gorm.DB, userID, adminID uint) *gin.Engine {
	rdb := newTestRedis()
	sender := notify.LogSender{}
	r := gin.New()
	user := r.Group("/", authAs(userID))
	user.POST("/withdrawals", api.CreateWithdrawalHandler(gdb, rdb))
	user.GET("/withdrawals", api.ListWithdrawalsHandler(gdb))
	admin := r.Group("/admin", adminAs(adminID))
	admin.GET("/withdrawals", api.AdminListWithdrawalsHandler(gdb))
	admin.POST("/withdrawals/:id/approve", api.ApproveWithdrawalHandler(gdb, sender))
	admin.POST("/withdrawals/:id/reject", api.RejectWithdrawalHandler(gdb, rdb, sender))
	return r
}

func TestWithdrawal_CreateThenReject_RoundTrips(t *testing.T) {
	// GIVEN: walletBalance=500, minWithdrawalAmount=100, conversion rate 5
	// WHEN: the user requests rupees=40
	// THEN: coinsRequested=ceil(40*5)=200, balance 300, request pending;
	// rejection restores 500 with a refund credit of exactly 200
	gdb := newTestDB(t)
	admin := createUser(t, gdb, domain.RoleAdmin, "5000000000")
	user := createUser(t, gdb, domain.RoleFemale, "5000000001")
	method := acceptedBankMethod(t, gdb, user.ID)
	seedConfig(t, gdb, domain.AdminConfig{
		CoinToRupeeRate:     dptr("5"),
		MinWithdrawalAmount: dptr("100"),
		WithdrawalCountdown: intptr(24),
	})
	creditWallet(t, gdb, user.ID, "500")
	r := withdrawalRouter(gdb, user.ID, admin.ID)

	w, body := doJSON(t, r, http.MethodPost, "/withdrawals", gin.H{
		"rupees":           40,
		"payout_method":    "bank",
		"payout_method_id": method.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(24), body["countdownTimer"])

	data := body["data"].(map[string]any)
	assert.Equal(t, "pending", data["status"])
	assert.Equal(t, "200", fmt.Sprint(data["coins_requested"]))
	assert.Equal(t, "40", fmt.Sprint(data["amount_in_rupees"]))
	assert.True(t, walletOf(t, gdb, user.ID).Equal(d("300")))

	var request domain.WithdrawalRequest
	require.NoError(t, gdb.Where("user_id = ?", user.ID).First(&request).Error)
	assert.NotEmpty(t, request.PayoutDetails)
	assert.NotEmpty(t, request.OrderRef)

	// reject: exact refund, terminal state
	w, _ = doJSON(t, r, http.MethodPost,
		fmt.Sprintf("/admin/withdrawals/%d/reject", request.ID),
		gin.H{"reason": "account mismatch"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, walletOf(t, gdb, user.ID).Equal(d("500")))

	var refund domain.Transaction
	require.NoError(t, gdb.Where("user_id = ? AND action = ? AND message LIKE ?",
		user.ID, domain.ActionCredit, "Withdrawal refund%").First(&refund).Error)
	assert.True(t, refund.Amount.Equal(d("200")))

	require.NoError(t, gdb.First(&request, request.ID).Error)
	assert.Equal(t, domain.WithdrawalRejected, request.Status)
	assert.Equal(t, "account mismatch", request.RejectReason)
	require.NotNil(t, request.ProcessedByID)
	assert.Equal(t, admin.ID, *request.ProcessedByID)

	// terminal: neither verdict applies twice, and no double refund
	w, _ = doJSON(t, r, http.MethodPost,
		fmt.Sprintf("/admin/withdrawals/%d/reject", request.ID),
		gin.H{"reason": "again"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = doJSON(t, r, http.MethodPost,
		fmt.Sprintf("/admin/withdrawals/%d/approve", request.ID), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.True(t, walletOf(t, gdb, user.ID).Equal(d("500")))
}

func TestWithdrawal_ApproveLeavesBalanceDebited(t *testing.T) {
	gdb := newTestDB(t)
	admin := createUser(t, gdb, domain.RoleAdmin, "5000000002")
	user := createUser(t, gdb, domain.RoleFemale, "5000000003")
	method := acceptedBankMethod(t, gdb, user.ID)
	seedConfig(t, gdb, domain.AdminConfig{
		CoinToRupeeRate:     dptr("5"),
		MinWithdrawalAmount: dptr("100"),
	})
	creditWallet(t, gdb, user.ID, "500")
	r := withdrawalRouter(gdb, user.ID, admin.ID)

	w, _ := doJSON(t, r, http.MethodPost, "/withdrawals", gin.H{
		"rupees": 40, "payout_method": "bank", "payout_method_id": method.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var request domain.WithdrawalRequest
	require.NoError(t, gdb.Where("user_id = ?", user.ID).First(&request).Error)

	w, body := doJSON(t, r, http.MethodPost,
		fmt.Sprintf("/admin/withdrawals/%d/approve", request.ID), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := body["data"].(map[string]any)
	assert.Equal(t, "approved", data["status"])

	// funds were reserved at creation; approval moves nothing further
	assert.True(t, walletOf(t, gdb, user.ID).Equal(d("300")))

	var txCount int64
	require.NoError(t, gdb.Model(&domain.Transaction{}).
		Where("user_id = ?", user.ID).Count(&txCount).Error)
	assert.Equal(t, int64(2), txCount, "seed credit + request debit only")

	// approved is terminal
	w, _ = doJSON(t, r, http.MethodPost,
		fmt.Sprintf("/admin/withdrawals/%d/approve", request.ID), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWithdrawal_Preconditions(t *testing.T) {
	gdb := newTestDB(t)
	admin := createUser(t, gdb, domain.RoleAdmin, "5000000004")

	t.Run("kyc not verified", func(t *testing.T) {
		user := createUser(t, gdb, domain.RoleFemale, "5000000005")
		seedConfig(t, gdb, domain.AdminConfig{
			CoinToRupeeRate:     dptr("5"),
			MinWithdrawalAmount: dptr("100"),
		})
		creditWallet(t, gdb, user.ID, "500")
		r := withdrawalRouter(gdb, user.ID, admin.ID)

		w, body := doJSON(t, r, http.MethodPost, "/withdrawals", gin.H{
			"rupees": 40, "payout_method": "bank", "payout_method_id": 1,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, false, body["success"])
		assert.True(t, walletOf(t, gdb, user.ID).Equal(d("500")))
	})

	t.Run("below minimum", func(t *testing.T) {
		user := createUser(t, gdb, domain.RoleFemale, "5000000006")
		method := acceptedBankMethod(t, gdb, user.ID)
		creditWallet(t, gdb, user.ID, "500")
		r := withdrawalRouter(gdb, user.ID, admin.ID)

		// rupees=10 at rate 5 is 50 coins, under the 100-coin minimum
		w, _ := doJSON(t, r, http.MethodPost, "/withdrawals", gin.H{
			"rupees": 10, "payout_method": "bank", "payout_method_id": method.ID,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("insufficient balance rejects whole operation", func(t *testing.T) {
		user := createUser(t, gdb, domain.RoleFemale, "5000000007")
		method := acceptedBankMethod(t, gdb, user.ID)
		creditWallet(t, gdb, user.ID, "150")
		r := withdrawalRouter(gdb, user.ID, admin.ID)

		w, _ := doJSON(t, r, http.MethodPost, "/withdrawals", gin.H{
			"rupees": 40, "payout_method": "bank", "payout_method_id": method.ID,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.True(t, walletOf(t, gdb, user.ID).Equal(d("150")))

		var count int64
		require.NoError(t, gdb.Model(&domain.WithdrawalRequest{}).
			Where("user_id = ?", user.ID).Count(&count).Error)
		assert.Equal(t, int64(0), count, "no request row without the debit")
	})

	t.Run("review not accepted", func(t *testing.T) {
		user := createUser(t, gdb, domain.RoleFemale, "5000000008")
		method := acceptedBankMethod(t, gdb, user.ID)
		require.NoError(t, gdb.Model(&domain.User{}).Where("id = ?", user.ID).
			Update("review_status", domain.ReviewPending).Error)
		r := withdrawalRouter(gdb, user.ID, admin.ID)

		w, _ := doJSON(t, r, http.MethodPost, "/withdrawals", gin.H{
			"rupees": 40, "payout_method": "bank", "payout_method_id": method.ID,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("male accounts cannot withdraw", func(t *testing.T) {
		user := createUser(t, gdb, domain.RoleMale, "5000000009")
		r := withdrawalRouter(gdb, user.ID, admin.ID)

		w, _ := doJSON(t, r, http.MethodPost, "/withdrawals", gin.H{
			"rupees": 40, "payout_method": "bank", "payout_method_id": 1,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func intptr(v int) *int { return &v }
