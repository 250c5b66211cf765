package main

import (
	"context"
	"log"

	"dating_platform/internal/api"
	"dating_platform/internal/config"
	"dating_platform/internal/middleware"
	"dating_platform/internal/notify"
	"dating_platform/internal/payment"
	"dating_platform/internal/rewards"
	"dating_platform/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func main() {
	cfg := config.LoadConfig()

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	dsn := cfg.DBUser + ":" + cfg.DBPassword + "@tcp(" + cfg.DBHost + ":" + cfg.DBPort + ")/" + cfg.DBName + "?parseTime=true"
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// boundary collaborators
	pushSender := notify.LogSender{}
	objectStore := &storage.DiskStore{BaseDir: cfg.UploadDir, BaseURL: cfg.UploadBaseURL}
	gateway := &payment.HMACGateway{KeyID: cfg.GatewayKeyID, KeySecret: cfg.GatewayKeySecret}

	// staged reward calculation runs in the background; admin endpoints can
	// also trigger it manually
	scheduler := rewards.NewScheduler(db)
	scheduler.Start()
	defer scheduler.Stop()

	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	// Auth routes
	r.POST("/auth/register", api.RegisterHandler(db))
	r.POST("/auth/verify-otp", api.VerifyOTPHandler(db, cfg.JWTSecret))
	r.POST("/auth/admin/login", api.AdminLoginHandler(db, cfg.JWTSecret))

	// User routes (protected by JWT)
	user := r.Group("/")
	user.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	user.GET("/profile", api.GetProfileHandler(db))
	user.POST("/profile/complete", api.CompleteProfileHandler(db))
	user.POST("/profile/image", api.UploadProfileImageHandler(db, objectStore))
	user.DELETE("/profile", api.DeleteAccountHandler(db, redisClient))

	user.GET("/wallet", api.GetBalanceHandler(db, redisClient))
	user.GET("/wallet/transactions", api.GetTransactionHistoryHandler(db, redisClient))

	user.POST("/kyc", api.SubmitKYCHandler(db))
	user.GET("/kyc", api.GetKYCStatusHandler(db))

	user.POST("/withdrawals", api.CreateWithdrawalHandler(db, redisClient))
	user.GET("/withdrawals", api.ListWithdrawalsHandler(db))

	user.GET("/gifts", api.ListGiftsHandler(db))
	user.POST("/gifts/send", api.SendGiftHandler(db, redisClient, pushSender))

	user.POST("/calls", api.StartCallHandler(db))
	user.POST("/calls/:id/end", api.EndCallHandler(db, redisClient, pushSender))

	user.GET("/recharge/plans", api.ListCoinPlansHandler(db))
	user.POST("/recharge/orders", api.CreateRechargeOrderHandler(db, gateway))
	user.POST("/recharge/verify", api.VerifyRechargeHandler(db, redisClient, gateway))

	// Admin routes (protected, admin only)
	admin := r.Group("/admin")
	admin.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret), middleware.AdminOnlyMiddleware(db))
	admin.GET("/config", api.GetConfigHandler(db))
	admin.PATCH("/config", api.UpdateConfigHandler(db))

	admin.GET("/users", api.ListUsersHandler(db, redisClient))
	admin.POST("/users/:id/review", api.ReviewUserHandler(db, redisClient, pushSender))

	admin.POST("/kyc/:id/review", api.ReviewKYCHandler(db))

	admin.GET("/withdrawals", api.AdminListWithdrawalsHandler(db))
	admin.POST("/withdrawals/:id/approve", api.ApproveWithdrawalHandler(db, pushSender))
	admin.POST("/withdrawals/:id/reject", api.RejectWithdrawalHandler(db, redisClient, pushSender))

	admin.GET("/rewards/daily", api.ListDailyPendingRewardsHandler(db))
	admin.GET("/rewards/weekly", api.ListWeeklyPendingRewardsHandler(db))
	admin.POST("/rewards/:id/approve", api.ApproveRewardHandler(db, redisClient, pushSender))
	admin.POST("/rewards/:id/reject", api.RejectRewardHandler(db))
	admin.POST("/rewards/run", api.RunRewardCalculatorHandler(db))
	admin.POST("/rewards/daily-slabs", api.CreateDailySlabHandler(db))
	admin.POST("/rewards/weekly-slabs", api.CreateWeeklySlabHandler(db))
	admin.GET("/rewards/history/:id", api.ListRewardHistoryHandler(db))

	admin.POST("/gifts", api.CreateGiftHandler(db))
	admin.PUT("/gifts/:id", api.UpdateGiftHandler(db))

	admin.POST("/balance/adjust", api.AdjustBalanceHandler(db, redisClient))
	admin.GET("/transactions", api.ListTransactionsHandler(db, redisClient))
	admin.GET("/earnings/summary", api.EarningsSummaryHandler(db))

	log.Println("Server running on " + cfg.AppPort)
	if err := r.Run(":" + cfg.AppPort); err != nil {
		logrus.Fatalf("server stopped: %v", err)
	}
}
