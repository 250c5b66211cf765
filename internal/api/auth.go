package api

import (
	"net/http"
	"strings"
	"time"

	"dating_platform/internal/domain"
	"dating_platform/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// RegisterRequest starts a registration (or a login for a returning user)
type RegisterRequest struct {
	Mobile       string `json:"mobile" binding:"required"`
	Role         string `json:"role" binding:"required,oneof=male female agency"`
	ReferralCode string `json:"referral_code"` // optional referrer code
}

// VerifyOTPRequest completes registration/login
type VerifyOTPRequest struct {
	Mobile string `json:"mobile" binding:"required"`
	OTP    string `json:"otp" binding:"required"`
}

// CompleteProfileRequest fills the mandatory profile fields
type CompleteProfileRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
}

// AdminLoginRequest authenticates an admin with mobile + password
type AdminLoginRequest struct {
	Mobile   string `json:"mobile" binding:"required"`
	Password string `json:"password" binding:"required"`
}

const otpTTL = 10 * time.Minute

// RegisterHandler creates (or refreshes) a user and issues an OTP. OTP
// delivery is stubbed: the code comes back in the response for testing,
// matching the current deployment's behavior.
func RegisterHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondMessage(c, http.StatusBadRequest, "Invalid request")
			return
		}

		var user domain.User
		err := db.Where("mobile = ?", req.Mobile).First(&user).Error
		if err == gorm.ErrRecordNotFound {
			user = domain.User{
				Mobile:       req.Mobile,
				Role:         req.Role,
				ReviewStatus: domain.ReviewCompleteProfile,
				ReferralCode: utils.GenerateReferralCode(),
				Active:       true,
			}
			// referral linkage resolves at registration, pays out only after
			// the admin accepts the review
			if code := strings.TrimSpace(req.ReferralCode); code != "" {
				var referrer domain.User
				if err := db.Where("referral_code = ?", code).First(&referrer).Error; err != nil {
					respondMessage(c, http.StatusBadRequest, "Unknown referral code")
					return
				}
				user.ReferredByID = &referrer.ID
			}
			if err := db.Create(&user).Error; err != nil {
				respondError(c, err)
				return
			}
		} else if err != nil {
			respondError(c, err)
			return
		} else if user.Role != req.Role {
			respondMessage(c, http.StatusBadRequest, "Mobile already registered with a different role")
			return
		}

		otp := utils.GenerateOTP()
		expires := time.Now().Add(otpTTL)
		if err := db.Model(&domain.User{}).Where("id = ?", user.ID).
			Updates(map[string]any{"otp": otp, "otp_expires_at": expires}).Error; err != nil {
			respondError(c, err)
			return
		}
		logrus.WithFields(logrus.Fields{"user_id": user.ID, "mobile": req.Mobile}).
			Info("OTP issued")
		respondCreated(c, gin.H{"user_id": user.ID, "otp": otp})
	}
}

// VerifyOTPHandler checks the OTP, marks the user verified, clears the
// ephemeral code and returns a JWT.
func VerifyOTPHandler(db *gorm.DB, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req VerifyOTPRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondMessage(c, http.StatusBadRequest, "Invalid request")
			return
		}
		var user domain.User
		if err := db.Where("mobile = ?", req.Mobile).First(&user).Error; err != nil {
			respondMessage(c, http.StatusNotFound, "User not found")
			return
		}
		if user.OTP == "" || user.OTP != req.OTP ||
			user.OTPExpiresAt == nil || time.Now().After(*user.OTPExpiresAt) {
			respondMessage(c, http.StatusBadRequest, "Invalid or expired OTP")
			return
		}
		if err := db.Model(&domain.User{}).Where("id = ?", user.ID).
			Updates(map[string]any{"otp": "", "otp_expires_at": nil, "verified": true}).Error; err != nil {
			respondError(c, err)
			return
		}
		token, err := utils.GenerateJWT(user.ID, user.Role, jwtSecret)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, gin.H{"token": token, "user": user})
	}
}

// CompleteProfileHandler stores the mandatory profile fields and moves the
// review status from completeProfile to pending.
func CompleteProfileHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		var req CompleteProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondMessage(c, http.StatusBadRequest, "Invalid request")
			return
		}
		var user domain.User
		if err := db.First(&user, userID).Error; err != nil {
			respondMessage(c, http.StatusNotFound, "User not found")
			return
		}
		updates := map[string]any{"name": req.Name, "email": req.Email}
		if user.ReviewStatus == domain.ReviewCompleteProfile {
			updates["review_status"] = domain.ReviewPending
		}
		if err := db.Model(&domain.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
			respondError(c, err)
			return
		}
		if err := db.First(&user, userID).Error; err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, user)
	}
}

// AdminLoginHandler authenticates an admin with a bcrypt-checked password.
func AdminLoginHandler(db *gorm.DB, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AdminLoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondMessage(c, http.StatusBadRequest, "Invalid request")
			return
		}
		var user domain.User
		if err := db.Where("mobile = ? AND role = ?", req.Mobile, domain.RoleAdmin).
			First(&user).Error; err != nil {
			respondMessage(c, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
			respondMessage(c, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		token, err := utils.GenerateJWT(user.ID, user.Role, jwtSecret)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, gin.H{"token": token})
	}
}
