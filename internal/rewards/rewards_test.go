package rewards_test

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"dating_platform/internal/db"
	"dating_platform/internal/domain"
	"dating_platform/internal/ledger"
	"dating_platform/internal/rewards"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBSeq atomic.Int64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:rewards_test_%d?mode=memory&cache=shared", testDBSeq.Add(1))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(db.Models()...))
	return gdb
}

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func createFemale(t *testing.T, gdb *gorm.DB, mobile, wallet string) *domain.User {
	t.Helper()
	user := domain.User{
		Mobile:        mobile,
		Name:          "user-" + mobile,
		Email:         mobile + "@example.com",
		Role:          domain.RoleFemale,
		ReviewStatus:  domain.ReviewAccepted,
		ReferralCode:  "RC" + mobile,
		Active:        true,
		WalletBalance: d(wallet),
	}
	require.NoError(t, gdb.Create(&user).Error)
	return &user
}

func addDailySlab(t *testing.T, gdb *gorm.DB, min, amount string) {
	t.Helper()
	require.NoError(t, gdb.Create(&domain.DailyReward{
		MinWalletBalance: d(min),
		Amount:           d(amount),
	}).Error)
}

func addWeeklySlab(t *testing.T, gdb *gorm.DB, rank int, amount string) {
	t.Helper()
	require.NoError(t, gdb.Create(&domain.WeeklyReward{Rank: rank, Amount: d(amount)}).Error)
}

func creditWallet(t *testing.T, gdb *gorm.DB, userID uint, amount string, at time.Time) {
	t.Helper()
	require.NoError(t, gdb.Create(&domain.Transaction{
		UserID:        userID,
		UserRole:      domain.RoleFemale,
		OperationType: domain.OperationWallet,
		Action:        domain.ActionCredit,
		Amount:        d(amount),
		BalanceAfter:  d(amount),
		Reference:     fmt.Sprintf("ref-%d-%s-%d", userID, amount, at.UnixNano()),
		CreatedAt:     at,
	}).Error)
}

func TestRunDaily_HighestSlabWins(t *testing.T) {
	gdb := newTestDB(t)
	addDailySlab(t, gdb, "100", "10")
	addDailySlab(t, gdb, "500", "50")

	rich := createFemale(t, gdb, "7000000001", "600")
	modest := createFemale(t, gdb, "7000000002", "150")
	createFemale(t, gdb, "7000000003", "50") // below every slab
	createFemale(t, gdb, "7000000004", "0")  // zero balance excluded

	now := time.Now()
	created, err := rewards.RunDaily(gdb, now)
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	var rows []domain.PendingReward
	require.NoError(t, gdb.Order("user_id ASC").Find(&rows).Error)
	require.Len(t, rows, 2)

	assert.Equal(t, rich.ID, rows[0].UserID)
	assert.True(t, rows[0].RewardAmount.Equal(d("50")))
	assert.True(t, rows[0].Threshold.Equal(d("500")))
	assert.True(t, rows[0].EarningValue.Equal(d("600")))

	assert.Equal(t, modest.ID, rows[1].UserID)
	assert.True(t, rows[1].RewardAmount.Equal(d("10")))
}

func TestRunDaily_OncePerCalendarDay(t *testing.T) {
	gdb := newTestDB(t)
	addDailySlab(t, gdb, "100", "10")
	createFemale(t, gdb, "7000000005", "200")

	now := time.Now()
	created, err := rewards.RunDaily(gdb, now)
	require.NoError(t, err)
	require.Equal(t, 1, created)

	// same day again: nothing new
	created, err = rewards.RunDaily(gdb, now.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, created)

	// next day: a fresh reward
	created, err = rewards.RunDaily(gdb, now.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, 1, created)
}

func TestRunWeekly_RanksByEarningsDescending(t *testing.T) {
	gdb := newTestDB(t)
	addWeeklySlab(t, gdb, 1, "100")
	addWeeklySlab(t, gdb, 2, "50")

	low := createFemale(t, gdb, "7000000006", "0")
	top := createFemale(t, gdb, "7000000007", "0")
	createFemale(t, gdb, "7000000008", "0") // zero earnings, excluded

	now := time.Now()
	weekStart, _ := rewards.WeekBounds(now)
	inWeek := weekStart.Add(24 * time.Hour)
	creditWallet(t, gdb, low.ID, "40", inWeek)
	creditWallet(t, gdb, top.ID, "90", inWeek)
	creditWallet(t, gdb, top.ID, "60", inWeek.Add(time.Hour))
	// earnings outside the week never count
	creditWallet(t, gdb, low.ID, "1000", weekStart.Add(-time.Hour))

	created, err := rewards.RunWeekly(gdb, now)
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	var rows []domain.PendingReward
	require.NoError(t, gdb.Where("type = ?", domain.RewardWeekly).
		Order("`rank` ASC").Find(&rows).Error)
	require.Len(t, rows, 2)

	assert.Equal(t, top.ID, rows[0].UserID)
	assert.Equal(t, 1, rows[0].Rank)
	assert.True(t, rows[0].EarningValue.Equal(d("150")))
	assert.True(t, rows[0].RewardAmount.Equal(d("100")))

	assert.Equal(t, low.ID, rows[1].UserID)
	assert.Equal(t, 2, rows[1].Rank)
	assert.True(t, rows[1].EarningValue.Equal(d("40")))
}

func TestRunWeekly_TiesKeepStableOrder(t *testing.T) {
	gdb := newTestDB(t)
	addWeeklySlab(t, gdb, 1, "100")
	addWeeklySlab(t, gdb, 2, "50")

	first := createFemale(t, gdb, "7000000009", "0")
	second := createFemale(t, gdb, "7000000010", "0")

	now := time.Now()
	weekStart, _ := rewards.WeekBounds(now)
	inWeek := weekStart.Add(24 * time.Hour)
	creditWallet(t, gdb, first.ID, "80", inWeek)
	creditWallet(t, gdb, second.ID, "80", inWeek)

	created, err := rewards.RunWeekly(gdb, now)
	require.NoError(t, err)
	require.Equal(t, 2, created)

	var rows []domain.PendingReward
	require.NoError(t, gdb.Where("type = ?", domain.RewardWeekly).
		Order("`rank` ASC").Find(&rows).Error)
	// equal earnings: lower id keeps the better rank
	assert.Equal(t, first.ID, rows[0].UserID)
	assert.Equal(t, second.ID, rows[1].UserID)
}

func TestRunWeekly_OncePerWeek(t *testing.T) {
	gdb := newTestDB(t)
	addWeeklySlab(t, gdb, 1, "100")
	user := createFemale(t, gdb, "7000000011", "0")

	now := time.Now()
	weekStart, _ := rewards.WeekBounds(now)
	creditWallet(t, gdb, user.ID, "30", weekStart.Add(time.Hour))

	created, err := rewards.RunWeekly(gdb, now)
	require.NoError(t, err)
	require.Equal(t, 1, created)

	created, err = rewards.RunWeekly(gdb, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, created, "one weekly batch per ISO week")
}

func TestApprove_CreditsWalletAndWritesHistory(t *testing.T) {
	gdb := newTestDB(t)
	addDailySlab(t, gdb, "100", "10")
	user := createFemale(t, gdb, "7000000012", "200")

	_, err := rewards.RunDaily(gdb, time.Now())
	require.NoError(t, err)
	var pending domain.PendingReward
	require.NoError(t, gdb.Where("user_id = ?", user.ID).First(&pending).Error)

	settled, err := rewards.Approve(gdb, pending.ID, 1, "looks good")
	require.NoError(t, err)
	assert.Equal(t, domain.RewardApproved, settled.Status)

	var reloaded domain.User
	require.NoError(t, gdb.First(&reloaded, user.ID).Error)
	assert.True(t, reloaded.WalletBalance.Equal(d("210")))

	var history domain.RewardHistory
	require.NoError(t, gdb.Where("pending_reward_id = ?", pending.ID).First(&history).Error)
	assert.Equal(t, domain.RewardApproved, history.Status)
	assert.Equal(t, "looks good", history.Note)

	var txCount int64
	require.NoError(t, gdb.Model(&domain.Transaction{}).
		Where("user_id = ? AND action = ?", user.ID, domain.ActionCredit).Count(&txCount).Error)
	assert.Equal(t, int64(1), txCount)

	// settling twice is an illegal transition
	_, err = rewards.Approve(gdb, pending.ID, 1, "")
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
	_, err = rewards.Reject(gdb, pending.ID, 1, "")
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
}

func TestReject_NoBalanceChange(t *testing.T) {
	gdb := newTestDB(t)
	addDailySlab(t, gdb, "100", "10")
	user := createFemale(t, gdb, "7000000013", "200")

	_, err := rewards.RunDaily(gdb, time.Now())
	require.NoError(t, err)
	var pending domain.PendingReward
	require.NoError(t, gdb.Where("user_id = ?", user.ID).First(&pending).Error)

	settled, err := rewards.Reject(gdb, pending.ID, 1, "ineligible")
	require.NoError(t, err)
	assert.Equal(t, domain.RewardRejected, settled.Status)

	var reloaded domain.User
	require.NoError(t, gdb.First(&reloaded, user.ID).Error)
	assert.True(t, reloaded.WalletBalance.Equal(d("200")))

	var history domain.RewardHistory
	require.NoError(t, gdb.Where("pending_reward_id = ?", pending.ID).First(&history).Error)
	assert.Equal(t, domain.RewardRejected, history.Status)
}

func TestListDailyPending_FiltersStaleRows(t *testing.T) {
	gdb := newTestDB(t)
	addDailySlab(t, gdb, "100", "10")
	user := createFemale(t, gdb, "7000000014", "200")

	_, err := rewards.RunDaily(gdb, time.Now())
	require.NoError(t, err)

	rows, err := rewards.ListDailyPending(gdb)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	// balance drops below the qualifying floor: hidden from the list, but
	// the pending row itself survives
	_, err = ledger.Apply(gdb, user.ID, ledger.Entry{
		Operation: domain.OperationWallet,
		Action:    domain.ActionDebit,
		Amount:    d("150"),
	})
	require.NoError(t, err)

	rows, err = rewards.ListDailyPending(gdb)
	require.NoError(t, err)
	assert.Len(t, rows, 0)

	var count int64
	require.NoError(t, gdb.Model(&domain.PendingReward{}).
		Where("status = ?", domain.RewardPending).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
