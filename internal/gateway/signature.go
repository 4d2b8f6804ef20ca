package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"marketplace/internal/apperrors"
)

// Verifier checks the signature the gateway attaches to a payment callback.
type Verifier struct {
	secret []byte
}

// NewVerifier creates a Verifier keyed with the gateway key secret.
func NewVerifier(keySecret string) *Verifier {
	return &Verifier{secret: []byte(keySecret)}
}

// Sign returns the hex HMAC-SHA256 of "orderID|paymentID".
func (v *Verifier) Sign(orderID, paymentID string) (string, error) {
	if len(v.secret) == 0 {
		return "", fmt.Errorf("signing key is not configured: %w", apperrors.ErrGateway)
	}
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// Verify reports whether signature matches the expected one, comparing in constant time.
// A mismatch is not an error.
func (v *Verifier) Verify(orderID, paymentID, signature string) (bool, error) {
	expected, err := v.Sign(orderID, paymentID)
	if err != nil {
		return false, err
	}
	return hmac.Equal([]byte(expected), []byte(signature)), nil
}
