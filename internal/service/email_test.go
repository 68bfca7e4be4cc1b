package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferralReceivedTemplate(t *testing.T) {
	body, err := renderTemplate("referral_received", referralReceivedTemplate, ReferralReceivedData{
		CaseCode:          "GBV-2031",
		ClientColorCode:   "Red",
		ClientContactInfo: "shelter contact",
		Notes:             "urgent intake",
		ConsentFormURL:    "https://forms.example/consent/1",
		CreatedBy:         "Amina",
		CreatedByOrg:      "Org A",
	})
	require.NoError(t, err)

	assert.Contains(t, body, "GBV-2031")
	assert.Contains(t, body, "Red")
	assert.Contains(t, body, "Org A")
	assert.Contains(t, body, "https://forms.example/consent/1")
}

func TestReferralReceivedTemplateOmitsEmptyConsentLink(t *testing.T) {
	body, err := renderTemplate("referral_received", referralReceivedTemplate, ReferralReceivedData{
		CaseCode: "GBV-2031",
	})
	require.NoError(t, err)
	assert.NotContains(t, body, "View Consent Form")
}

func TestSupervisorAssignedTemplate(t *testing.T) {
	body, err := renderTemplate("supervisor_assigned", supervisorAssignedTemplate, SupervisorAssignedData{
		CaseCode:      "GBV-2031",
		AssignedBy:    "Bilal",
		AssignedByOrg: "Org B",
	})
	require.NoError(t, err)

	assert.Contains(t, body, "GBV-2031")
	assert.Contains(t, body, "Bilal")
	assert.Contains(t, body, "assigned a new case")
}

func TestCaseUpdateTemplate(t *testing.T) {
	body, err := renderTemplate("case_update", caseUpdateTemplate, CaseUpdateData{
		CaseCode:  "GBV-2031",
		NewStatus: "In Progress Stage 2",
		Note:      "safety plan agreed",
		UpdatedBy: "Dara",
	})
	require.NoError(t, err)

	assert.Contains(t, body, "In Progress Stage 2")
	assert.Contains(t, body, "safety plan agreed")
}

func TestEmailServiceDisabled(t *testing.T) {
	svc := &EmailService{enabled: false}
	err := svc.SendEmail([]string{"a@example.org"}, "subject", "body")
	assert.Error(t, err, "a disabled mailer reports the failure instead of hanging")
}
