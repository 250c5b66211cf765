package rewards

import (
	"sort"
	"time"

	"dating_platform/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// DayBounds returns the [start, end) of the calendar day containing t, in
// the local timezone.
func DayBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}

// WeekBounds returns the [start, end) of the ISO week (Monday–Sunday)
// containing t.
func WeekBounds(t time.Time) (time.Time, time.Time) {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := (int(day.Weekday()) + 6) % 7 // days since Monday
	start := day.AddDate(0, 0, -offset)
	return start, start.AddDate(0, 0, 7)
}

// RunDaily stages daily rewards: every active, accepted female user with a
// positive wallet balance and no daily PendingReward today gets one row for
// the highest slab her balance clears. Balances are never touched here —
// staged rows wait for an admin. Returns the number of rows created.
func RunDaily(db *gorm.DB, now time.Time) (int, error) {
	var slabs []domain.DailyReward
	if err := db.Order("min_wallet_balance DESC").Find(&slabs).Error; err != nil {
		return 0, err
	}
	if len(slabs) == 0 {
		return 0, nil
	}

	var users []domain.User
	if err := db.Where("role = ? AND active = ? AND review_status = ? AND wallet_balance > 0",
		domain.RoleFemale, true, domain.ReviewAccepted).
		Order("id ASC").Find(&users).Error; err != nil {
		return 0, err
	}

	dayStart, dayEnd := DayBounds(now)
	created := 0
	for _, user := range users {
		// one daily reward per user per calendar day
		var existing int64
		if err := db.Model(&domain.PendingReward{}).
			Where("user_id = ? AND type = ? AND created_at >= ? AND created_at < ?",
				user.ID, domain.RewardDaily, dayStart, dayEnd).
			Count(&existing).Error; err != nil {
			logrus.WithFields(logrus.Fields{"user_id": user.ID, "error": err.Error()}).
				Error("Daily reward check failed")
			continue
		}
		if existing > 0 {
			continue
		}

		slab := highestQualifyingSlab(slabs, user.WalletBalance)
		if slab == nil {
			continue
		}

		row := domain.PendingReward{
			UserID:       user.ID,
			Type:         domain.RewardDaily,
			EarningValue: user.WalletBalance,
			RewardAmount: slab.Amount,
			Threshold:    slab.MinWalletBalance,
			Status:       domain.RewardPending,
			CreatedAt:    now,
		}
		if err := db.Create(&row).Error; err != nil {
			// one user's failure must not block the rest of the batch
			logrus.WithFields(logrus.Fields{"user_id": user.ID, "error": err.Error()}).
				Error("Daily reward staging failed")
			continue
		}
		created++
	}

	logrus.WithFields(logrus.Fields{"created": created}).Info("Daily reward run finished")
	return created, nil
}

// highestQualifyingSlab expects slabs sorted by MinWalletBalance descending
// and returns the first one the balance clears.
func highestQualifyingSlab(slabs []domain.DailyReward, balance decimal.Decimal) *domain.DailyReward {
	for i := range slabs {
		if slabs[i].MinWalletBalance.LessThanOrEqual(balance) {
			return &slabs[i]
		}
	}
	return nil
}

// weeklyEarner pairs a user with her summed wallet credits for the week.
type weeklyEarner struct {
	UserID  uint
	Earning decimal.Decimal
}

// RunWeekly stages weekly rank rewards, at most once per ISO week: female
// users are ranked by the sum of their wallet credit Transactions inside
// the week, and each rank with a configured slab gets one PendingReward.
// Ties keep the stable input order (users sorted by id). Skips entirely if
// any weekly row already exists inside the current week.
func RunWeekly(db *gorm.DB, now time.Time) (int, error) {
	weekStart, weekEnd := WeekBounds(now)

	var already int64
	if err := db.Model(&domain.PendingReward{}).
		Where("type = ? AND created_at >= ? AND created_at < ?",
			domain.RewardWeekly, weekStart, weekEnd).
		Count(&already).Error; err != nil {
		return 0, err
	}
	if already > 0 {
		return 0, nil
	}

	var slabs []domain.WeeklyReward
	if err := db.Order("`rank` ASC").Find(&slabs).Error; err != nil {
		return 0, err
	}
	if len(slabs) == 0 {
		return 0, nil
	}
	slabByRank := make(map[int]domain.WeeklyReward, len(slabs))
	for _, s := range slabs {
		slabByRank[s.Rank] = s
	}

	var users []domain.User
	if err := db.Where("role = ? AND active = ? AND review_status = ?",
		domain.RoleFemale, true, domain.ReviewAccepted).
		Order("id ASC").Find(&users).Error; err != nil {
		return 0, err
	}

	earners := make([]weeklyEarner, 0, len(users))
	for _, user := range users {
		earning, err := sumWalletCredits(db, user.ID, weekStart, weekEnd)
		if err != nil {
			logrus.WithFields(logrus.Fields{"user_id": user.ID, "error": err.Error()}).
				Error("Weekly earning sum failed")
			continue
		}
		if earning.IsPositive() {
			earners = append(earners, weeklyEarner{UserID: user.ID, Earning: earning})
		}
	}

	// descending by earning; stable keeps id order on ties
	sort.SliceStable(earners, func(i, j int) bool {
		return earners[i].Earning.GreaterThan(earners[j].Earning)
	})

	created := 0
	for i, earner := range earners {
		rank := i + 1
		slab, ok := slabByRank[rank]
		if !ok {
			continue
		}
		row := domain.PendingReward{
			UserID:       earner.UserID,
			Type:         domain.RewardWeekly,
			EarningValue: earner.Earning,
			RewardAmount: slab.Amount,
			Rank:         rank,
			Status:       domain.RewardPending,
			CreatedAt:    now,
		}
		if err := db.Create(&row).Error; err != nil {
			logrus.WithFields(logrus.Fields{"user_id": earner.UserID, "error": err.Error()}).
				Error("Weekly reward staging failed")
			continue
		}
		created++
	}

	logrus.WithFields(logrus.Fields{"created": created, "week_start": weekStart}).
		Info("Weekly reward run finished")
	return created, nil
}

// sumWalletCredits totals a user's wallet credit ledger rows in [from, to).
func sumWalletCredits(db *gorm.DB, userID uint, from, to time.Time) (decimal.Decimal, error) {
	var rows []domain.Transaction
	if err := db.Where(
		"user_id = ? AND operation_type = ? AND action = ? AND created_at >= ? AND created_at < ?",
		userID, domain.OperationWallet, domain.ActionCredit, from, to).
		Find(&rows).Error; err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, row := range rows {
		total = total.Add(row.Amount)
	}
	return total, nil
}
