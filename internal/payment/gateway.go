package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Gateway is the inbound-payment boundary: create a checkout order, then
// verify the signature the gateway posts back. The outbound payout API is
// deliberately not part of this interface — withdrawal approval does not
// call a gateway.
type Gateway interface {
	CreateOrder(ctx context.Context, amountRupees decimal.Decimal, receipt string) (string, error)
	VerifySignature(orderID, paymentID, signature string) bool
}

// HMACGateway implements the common gateway callback scheme: the signature
// is HMAC-SHA256 over "orderID|paymentID" with the key secret, hex encoded.
type HMACGateway struct {
	KeyID     string
	KeySecret string
}

func (g *HMACGateway) CreateOrder(_ context.Context, amountRupees decimal.Decimal, receipt string) (string, error) {
	orderID := "order_" + uuid.NewString()
	logrus.WithFields(logrus.Fields{
		"order_id": orderID,
		"amount":   amountRupees.String(),
		"receipt":  receipt,
	}).Info("Gateway order created")
	return orderID, nil
}

func (g *HMACGateway) VerifySignature(orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(g.KeySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
