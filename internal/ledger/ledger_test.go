package ledger_test

import (
	"fmt"
	"sync/atomic"
	"testing"

	"dating_platform/internal/db"
	"dating_platform/internal/domain"
	"dating_platform/internal/ledger"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBSeq atomic.Int64

// newTestDB opens an isolated in-memory database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:ledger_test_%d?mode=memory&cache=shared", testDBSeq.Add(1))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(db.Models()...))
	return gdb
}

func newFemale(t *testing.T, gdb *gorm.DB, mobile string) *domain.User {
	t.Helper()
	user := domain.User{
		Mobile:       mobile,
		Name:         "Asha",
		Email:        "asha@example.com",
		Role:         domain.RoleFemale,
		ReviewStatus: domain.ReviewAccepted,
		ReferralCode: "REF" + mobile,
		Active:       true,
		Verified:     true,
	}
	require.NoError(t, gdb.Create(&user).Error)
	return &user
}

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestApply_CreditThenDebit(t *testing.T) {
	gdb := newTestDB(t)
	user := newFemale(t, gdb, "9000000001")

	row, err := ledger.Apply(gdb, user.ID, ledger.Entry{
		Operation: domain.OperationWallet,
		Action:    domain.ActionCredit,
		Amount:    d("500"),
		Message:   "seed",
	})
	require.NoError(t, err)
	assert.True(t, row.BalanceAfter.Equal(d("500")))

	row, err = ledger.Apply(gdb, user.ID, ledger.Entry{
		Operation: domain.OperationWallet,
		Action:    domain.ActionDebit,
		Amount:    d("120.50"),
		Message:   "spend",
	})
	require.NoError(t, err)
	assert.True(t, row.BalanceAfter.Equal(d("379.50")))

	var reloaded domain.User
	require.NoError(t, gdb.First(&reloaded, user.ID).Error)
	assert.True(t, reloaded.WalletBalance.Equal(d("379.50")))
}

func TestApply_DebitBelowZero_RejectedWithoutMutation(t *testing.T) {
	gdb := newTestDB(t)
	user := newFemale(t, gdb, "9000000002")

	_, err := ledger.Apply(gdb, user.ID, ledger.Entry{
		Operation: domain.OperationWallet,
		Action:    domain.ActionCredit,
		Amount:    d("100"),
	})
	require.NoError(t, err)

	// a debit that would go negative fails whole: no balance change, no row
	_, err = ledger.Apply(gdb, user.ID, ledger.Entry{
		Operation: domain.OperationWallet,
		Action:    domain.ActionDebit,
		Amount:    d("100.01"),
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)

	var reloaded domain.User
	require.NoError(t, gdb.First(&reloaded, user.ID).Error)
	assert.True(t, reloaded.WalletBalance.Equal(d("100")))

	var count int64
	require.NoError(t, gdb.Model(&domain.Transaction{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count, "failed debit must not append a ledger row")
}

func TestApply_EveryMutationAppendsExactlyOneRow(t *testing.T) {
	gdb := newTestDB(t)
	user := newFemale(t, gdb, "9000000003")

	ops := []struct {
		action string
		amount string
	}{
		{domain.ActionCredit, "50"},
		{domain.ActionCredit, "30"},
		{domain.ActionDebit, "20"},
		{domain.ActionCredit, "5.25"},
		{domain.ActionDebit, "65.25"},
	}
	running := decimal.Zero
	for i, op := range ops {
		row, err := ledger.Apply(gdb, user.ID, ledger.Entry{
			Operation: domain.OperationWallet,
			Action:    op.action,
			Amount:    d(op.amount),
		})
		require.NoError(t, err, "op %d", i)
		if op.action == domain.ActionCredit {
			running = running.Add(d(op.amount))
		} else {
			running = running.Sub(d(op.amount))
		}
		assert.False(t, running.IsNegative(), "balance must stay non-negative after op %d", i)
		assert.True(t, row.BalanceAfter.Equal(running), "op %d snapshot", i)
	}

	var rows []domain.Transaction
	require.NoError(t, gdb.Where("user_id = ?", user.ID).Order("id ASC").Find(&rows).Error)
	require.Len(t, rows, len(ops))
	assert.True(t, rows[len(rows)-1].BalanceAfter.Equal(decimal.Zero))
	for _, row := range rows {
		assert.NotEmpty(t, row.Reference)
		assert.Equal(t, domain.RoleFemale, row.UserRole)
	}
}

func TestApply_CoinBalanceIsIndependent(t *testing.T) {
	gdb := newTestDB(t)
	user := newFemale(t, gdb, "9000000004")

	_, err := ledger.Apply(gdb, user.ID, ledger.Entry{
		Operation: domain.OperationCoin,
		Action:    domain.ActionCredit,
		Amount:    d("75"),
	})
	require.NoError(t, err)

	var reloaded domain.User
	require.NoError(t, gdb.First(&reloaded, user.ID).Error)
	assert.True(t, reloaded.CoinBalance.Equal(d("75")))
	assert.True(t, reloaded.WalletBalance.Equal(decimal.Zero), "wallet untouched by a coin entry")
}

func TestApply_UnknownUser(t *testing.T) {
	gdb := newTestDB(t)
	_, err := ledger.Apply(gdb, 4242, ledger.Entry{
		Operation: domain.OperationWallet,
		Action:    domain.ActionCredit,
		Amount:    d("10"),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestWithUsers_RollsBackWholeUnit(t *testing.T) {
	gdb := newTestDB(t)
	alice := newFemale(t, gdb, "9000000005")
	beth := newFemale(t, gdb, "9000000006")

	_, err := ledger.Apply(gdb, alice.ID, ledger.Entry{
		Operation: domain.OperationWallet,
		Action:    domain.ActionCredit,
		Amount:    d("10"),
	})
	require.NoError(t, err)

	// second leg fails: the first leg must not survive
	err = ledger.WithUsers(gdb, []uint{alice.ID, beth.ID}, func(tx *gorm.DB) error {
		if _, err := ledger.ApplyTx(tx, alice.ID, ledger.Entry{
			Operation: domain.OperationWallet,
			Action:    domain.ActionDebit,
			Amount:    d("10"),
		}); err != nil {
			return err
		}
		_, err := ledger.ApplyTx(tx, beth.ID, ledger.Entry{
			Operation: domain.OperationWallet,
			Action:    domain.ActionDebit,
			Amount:    d("999"),
		})
		return err
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)

	var reloaded domain.User
	require.NoError(t, gdb.First(&reloaded, alice.ID).Error)
	assert.True(t, reloaded.WalletBalance.Equal(d("10")), "debit must have rolled back")

	var count int64
	require.NoError(t, gdb.Model(&domain.Transaction{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
