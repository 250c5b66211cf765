package api

import (
	"net/http"

	"dating_platform/internal/domain"
	"dating_platform/internal/kyc"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SubmitKYCRequest carries one payout destination. Bank fields are required
// for method=bank, upi_address for method=upi.
type SubmitKYCRequest struct {
	Method        string `json:"method" binding:"required,oneof=bank upi"`
	AccountNumber string `json:"account_number"`
	IFSC          string `json:"ifsc"`
	HolderName    string `json:"holder_name"`
	UPIAddress    string `json:"upi_address"`
}

// SubmitKYCHandler records (or re-records) a payout destination, resetting
// that method to pending review.
func SubmitKYCHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		var req SubmitKYCRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondMessage(c, http.StatusBadRequest, "Invalid request")
			return
		}
		var bank *kyc.BankDetails
		switch req.Method {
		case domain.PayoutBank:
			if req.AccountNumber == "" || req.IFSC == "" || req.HolderName == "" {
				respondMessage(c, http.StatusBadRequest, "Bank method requires account_number, ifsc and holder_name")
				return
			}
			bank = &kyc.BankDetails{
				AccountNumber: req.AccountNumber,
				IFSC:          req.IFSC,
				HolderName:    req.HolderName,
			}
		case domain.PayoutUPI:
			if req.UPIAddress == "" {
				respondMessage(c, http.StatusBadRequest, "UPI method requires upi_address")
				return
			}
		}

		record, err := kyc.Submit(db, userID, req.Method, bank, req.UPIAddress)
		if err != nil {
			respondError(c, err)
			return
		}
		respondCreated(c, record)
	}
}

// GetKYCStatusHandler returns the per-method records plus the derived
// overall status.
func GetKYCStatusHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		status, methods, err := kyc.StatusFor(db, userID)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, gin.H{"kyc_status": status, "methods": methods})
	}
}

// ReviewKYCRequest is the admin's verdict on one payout method.
type ReviewKYCRequest struct {
	Accept bool   `json:"accept"`
	Reason string `json:"reason"`
}

// ReviewKYCHandler lets an admin accept or reject a pending payout method.
func ReviewKYCHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		methodID, ok := paramID(c, "id")
		if !ok {
			return
		}
		var req ReviewKYCRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondMessage(c, http.StatusBadRequest, "Invalid request")
			return
		}
		if !req.Accept && req.Reason == "" {
			respondMessage(c, http.StatusBadRequest, "Rejection requires a reason")
			return
		}
		record, err := kyc.Review(db, methodID, req.Accept, req.Reason, currentAdminID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, record)
	}
}
