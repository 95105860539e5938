package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

// SignatureHeader carries hex(HMAC-SHA256(webhook secret, raw body)).
const SignatureHeader = "X-Razorpay-Signature"

var (
	ErrMissingSignature = errors.New("missing webhook signature")
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrMissingSecret    = errors.New("webhook secret is not configured")
)

// Sign returns the hex encoded HMAC-SHA256 of body under secret.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks signature against the exact bytes the gateway sent.
// Nothing in body may be trusted before this returns nil. An empty secret
// fails every delivery since anyone can compute an HMAC under it.
func VerifySignature(secret string, body []byte, signature string) error {
	if secret == "" {
		return ErrMissingSecret
	}
	signature = strings.TrimSpace(signature)
	if signature == "" {
		return ErrMissingSignature
	}
	got, err := hex.DecodeString(strings.ToLower(signature))
	if err != nil {
		return ErrInvalidSignature
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	if !hmac.Equal(mac.Sum(nil), got) {
		return ErrInvalidSignature
	}
	return nil
}
