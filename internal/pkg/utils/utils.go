package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateUUID returns a random UUID string
func GenerateUUID() string {
	return uuid.New().String()
}

// GenerateRandomString returns a hex string of the given length
func GenerateRandomString(length int) string {
	bytes := make([]byte, length/2+1)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)[:length]
}

// GenerateReferralCode builds a human-readable referral code.
// Format: REF-<unix milliseconds>
func GenerateReferralCode() string {
	return fmt.Sprintf("REF-%d", time.Now().UnixMilli())
}

// GenerateWebhookSecret returns a secret for signing webhook payloads
func GenerateWebhookSecret() string {
	return GenerateRandomString(64)
}

// MaskEmail hides the middle of an email address
func MaskEmail(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return email
	}
	name := parts[0]
	domain := parts[1]
	if len(name) <= 2 {
		return email
	}
	masked := name[0:1] + "***" + name[len(name)-1:]
	return masked + "@" + domain
}
