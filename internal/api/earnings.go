package api

import (
	"net/http"
	"time"

	"dating_platform/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// EarningsSummaryHandler aggregates platform money flow for a date window:
// call and gift volumes, male recharge payments, female/agency earnings and
// the platform margin. Read-only, no side effects.
// GET /admin/earnings/summary?startDate=2026-01-01&endDate=2026-01-31
func EarningsSummaryHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		from, to, ok := dateWindow(c)
		if !ok {
			return
		}

		var calls []domain.CallSession
		if err := db.Where("status = ? AND ended_at >= ? AND ended_at < ?",
			domain.CallSettled, from, to).Find(&calls).Error; err != nil {
			respondError(c, err)
			return
		}
		callVolume, callEarnings := decimal.Zero, decimal.Zero
		for _, s := range calls {
			callVolume = callVolume.Add(s.CoinCost)
			callEarnings = callEarnings.Add(s.EarnedAmount)
		}

		var gifts []domain.GiftSend
		if err := db.Where("created_at >= ? AND created_at < ?", from, to).
			Find(&gifts).Error; err != nil {
			respondError(c, err)
			return
		}
		giftVolume, giftEarnings := decimal.Zero, decimal.Zero
		for _, g := range gifts {
			giftVolume = giftVolume.Add(g.CoinCost)
			giftEarnings = giftEarnings.Add(g.EarnedAmount)
		}

		var recharges []domain.RechargeOrder
		if err := db.Where("status = ? AND updated_at >= ? AND updated_at < ?",
			domain.RechargePaid, from, to).Find(&recharges).Error; err != nil {
			respondError(c, err)
			return
		}
		malePayments := decimal.Zero
		for _, r := range recharges {
			malePayments = malePayments.Add(r.AmountRupees)
		}

		femaleEarnings, err := sumEarnings(db, domain.RoleFemale, from, to)
		if err != nil {
			respondError(c, err)
			return
		}
		agencyEarnings, err := sumEarnings(db, domain.RoleAgency, from, to)
		if err != nil {
			respondError(c, err)
			return
		}

		// platform margin = the admin share withheld from calls and gifts
		margin := callVolume.Sub(callEarnings).Add(giftVolume.Sub(giftEarnings))

		respondOK(c, gin.H{
			"start_date":      from.Format("2006-01-02"),
			"end_date":        to.AddDate(0, 0, -1).Format("2006-01-02"),
			"call_count":      len(calls),
			"call_volume":     callVolume,
			"call_earnings":   callEarnings,
			"gift_count":      len(gifts),
			"gift_volume":     giftVolume,
			"gift_earnings":   giftEarnings,
			"male_payments":   malePayments,
			"female_earnings": femaleEarnings,
			"agency_earnings": agencyEarnings,
			"platform_margin": margin,
		})
	}
}

// sumEarnings totals wallet credits for one role in [from, to).
func sumEarnings(db *gorm.DB, role string, from, to time.Time) (decimal.Decimal, error) {
	var rows []domain.Transaction
	if err := db.Where(
		"user_role = ? AND operation_type = ? AND action = ? AND created_at >= ? AND created_at < ?",
		role, domain.OperationWallet, domain.ActionCredit, from, to).
		Find(&rows).Error; err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, row := range rows {
		total = total.Add(row.Amount)
	}
	return total, nil
}

// dateWindow parses ?startDate&endDate (YYYY-MM-DD, both inclusive) into a
// half-open [from, to) range.
func dateWindow(c *gin.Context) (time.Time, time.Time, bool) {
	const layout = "2006-01-02"
	start, err := time.ParseInLocation(layout, c.Query("startDate"), time.Local)
	if err != nil {
		respondMessage(c, http.StatusBadRequest, "startDate must be YYYY-MM-DD")
		return time.Time{}, time.Time{}, false
	}
	end, err := time.ParseInLocation(layout, c.Query("endDate"), time.Local)
	if err != nil {
		respondMessage(c, http.StatusBadRequest, "endDate must be YYYY-MM-DD")
		return time.Time{}, time.Time{}, false
	}
	if end.Before(start) {
		respondMessage(c, http.StatusBadRequest, "endDate before startDate")
		return time.Time{}, time.Time{}, false
	}
	return start, end.AddDate(0, 0, 1), true
}
