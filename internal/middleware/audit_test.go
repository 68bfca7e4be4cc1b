package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"referral-server/internal/model"
)

func TestParseActionFromPath(t *testing.T) {
	const id = "7f6c1b34-9f1e-4a53-8c1d-2e9ab4f1c722"

	tests := []struct {
		method   string
		path     string
		action   string
		resource string
		id       string
	}{
		{"POST", "/api/referrals", model.ActionCreate, model.ResourceReferral, ""},
		{"POST", "/api/referrals/" + id + "/approve", model.ActionApprove, model.ResourceReferral, id},
		{"POST", "/api/referrals/" + id + "/reject", model.ActionReject, model.ResourceReferral, id},
		{"POST", "/api/referrals/" + id + "/assign", model.ActionAssign, model.ResourceReferral, id},
		{"POST", "/api/cases/" + id + "/status", model.ActionUpdateStatus, model.ResourceReferral, id},
		{"PUT", "/api/admin/users/" + id, model.ActionUpdate, model.ResourceUser, id},
		{"DELETE", "/api/admin/organizations/" + id, model.ActionDelete, model.ResourceOrganization, id},
		{"POST", "/api/auth/login", model.ActionLogin, model.ResourceUser, ""},
		{"POST", "/api/admin/roles", model.ActionCreate, model.ResourceRole, ""},
	}

	for _, tt := range tests {
		action, resource, resourceID := parseActionFromPath(tt.method, tt.path)
		assert.Equal(t, tt.action, action, "%s %s", tt.method, tt.path)
		assert.Equal(t, tt.resource, resource, "%s %s", tt.method, tt.path)
		assert.Equal(t, tt.id, resourceID, "%s %s", tt.method, tt.path)
	}
}

func TestMaskSensitiveData(t *testing.T) {
	masked := maskSensitiveData(`{"email":"a@example.org","password":"hunter2","new_password":"hunter3"}`)
	assert.Contains(t, masked, "a@example.org")
	assert.NotContains(t, masked, "hunter2")
	assert.NotContains(t, masked, "hunter3")

	assert.Equal(t, "[unparseable body containing credentials]", maskSensitiveData("not json"))
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "abc", truncateString("abc", 5))
	assert.Equal(t, "abcde", truncateString("abcdefgh", 5))
}
