package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strings"
)

// SignValue appends an HMAC of value so a cookie cannot be forged.
func SignValue(secret string, value string) string {
	return value + "." + computeSignature(secret, value)
}

// VerifyValue returns the original value when signed carries a valid HMAC.
func VerifyValue(secret string, signed string) (string, bool) {
	idx := strings.LastIndexByte(signed, '.')
	if idx <= 0 || idx == len(signed)-1 {
		return "", false
	}
	value, signature := signed[:idx], signed[idx+1:]
	expected := computeSignature(secret, value)
	if !hmac.Equal([]byte(signature), []byte(expected)) {
		return "", false
	}
	return value, true
}

func computeSignature(secret string, value string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(value))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
