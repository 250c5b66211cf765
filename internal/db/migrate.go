package db

import (
	"dating_platform/internal/domain" // Domain models

	"github.com/sirupsen/logrus"

	"gorm.io/driver/mysql" // MySQL driver for GORM
	"gorm.io/gorm"         // GORM ORM library
)

// Models lists every table the platform owns, in dependency order.
func Models() []any {
	return []any{
		&domain.User{},
		&domain.Transaction{},
		&domain.PayoutMethod{},
		&domain.WithdrawalRequest{},
		&domain.PendingReward{},
		&domain.RewardHistory{},
		&domain.DailyReward{},
		&domain.WeeklyReward{},
		&domain.AdminConfig{},
		&domain.Gift{},
		&domain.GiftSend{},
		&domain.CallSession{},
		&domain.CoinPlan{},
		&domain.RechargeOrder{},
	}
}

// Migrate performs automatic migration for the database schema
func Migrate(dsn string) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("failed to connect database: %v", err)
	}
	if err := db.AutoMigrate(Models()...); err != nil {
		logrus.Fatalf("migration failed: %v", err)
	}
	if err := SeedConfig(db); err != nil {
		logrus.Fatalf("config seed failed: %v", err)
	}
	logrus.Info("Migration completed.")
}

// SeedConfig makes sure the AdminConfig singleton row exists. All rate
// fields stay nil until an admin sets them — dependent operations fail
// until then.
func SeedConfig(db *gorm.DB) error {
	var count int64
	if err := db.Model(&domain.AdminConfig{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return db.Create(&domain.AdminConfig{ID: 1}).Error
}
