package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// GenerateOTP returns a 6-digit one-time code.
func GenerateOTP() string {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		// crypto/rand only fails when the OS entropy source is broken
		return "000000"
	}
	return fmt.Sprintf("%06d", n.Int64())
}

// GenerateReferralCode returns a short uppercase code tied to nothing but
// randomness, retried by the caller on unique-index collision.
func GenerateReferralCode() string {
	const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	code := make([]byte, 8)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
		if err != nil {
			code[i] = alphabet[0]
			continue
		}
		code[i] = alphabet[n.Int64()]
	}
	return string(code)
}
