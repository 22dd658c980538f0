package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// VerifyCheckoutSignature authenticates a client-side checkout callback.
// The gateway signs `orderID|paymentID` with the API key secret; we recompute
// and compare in constant time. No normalization happens before hashing.
func VerifyCheckoutSignature(keySecret, orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(keySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// VerifyWebhookSignature authenticates a webhook delivery. The gateway signs
// the exact raw body bytes with the webhook secret; callers must pass the
// body as received, before any JSON parsing.
func VerifyWebhookSignature(webhookSecret string, body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(webhookSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
