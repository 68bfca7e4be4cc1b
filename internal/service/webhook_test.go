package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubscribedTo(t *testing.T) {
	assert.True(t, subscribedTo("referral.created", EventReferralCreated))
	assert.True(t, subscribedTo("referral.created, case.updated", EventCaseUpdated))
	assert.True(t, subscribedTo("*", EventReferralRejected))
	assert.False(t, subscribedTo("referral.created", EventCaseUpdated))
	assert.False(t, subscribedTo("", EventReferralCreated))
}

func TestGenerateSignature(t *testing.T) {
	svc := NewWebhookService()
	payload := []byte(`{"event":"referral.created"}`)

	got := svc.generateSignature("secret-key", payload)

	mac := hmac.New(sha256.New, []byte("secret-key"))
	mac.Write(payload)
	want := hex.EncodeToString(mac.Sum(nil))

	assert.Equal(t, want, got)
	assert.NotEqual(t, got, svc.generateSignature("other-key", payload))
}
