package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateReferralCode(t *testing.T) {
	code := GenerateReferralCode()
	assert.Regexp(t, regexp.MustCompile(`^REF-\d{13,}$`), code)
}

func TestGenerateRandomString(t *testing.T) {
	s := GenerateRandomString(32)
	assert.Len(t, s, 32)
	assert.NotEqual(t, s, GenerateRandomString(32))
}

func TestGenerateUUID(t *testing.T) {
	assert.Len(t, GenerateUUID(), 36)
	assert.NotEqual(t, GenerateUUID(), GenerateUUID())
}

func TestMaskEmail(t *testing.T) {
	assert.Equal(t, "a***a@example.org", MaskEmail("amina@example.org"))
	assert.Equal(t, "ab@example.org", MaskEmail("ab@example.org"), "short names stay visible")
	assert.Equal(t, "not-an-email", MaskEmail("not-an-email"))
}
