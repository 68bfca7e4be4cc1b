package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"referral-server/internal/model"
)

func validCreateInput() CreateReferralInput {
	return CreateReferralInput{
		ReferralTo:        "Org B",
		CaseCode:          "GBV-2031",
		ConfirmCaseCode:   "GBV-2031",
		ClientColorCode:   model.ColorRed,
		ClientContactInfo: "shelter contact, weekdays",
	}
}

func TestValidateCreate(t *testing.T) {
	require.NoError(t, validateCreate(fpSender, validCreateInput()))

	t.Run("confirmation code mismatch", func(t *testing.T) {
		in := validCreateInput()
		in.ConfirmCaseCode = "GBV-2032"
		assert.ErrorIs(t, validateCreate(fpSender, in), ErrCodeMismatch)
	})

	t.Run("only focal persons create", func(t *testing.T) {
		assert.ErrorIs(t, validateCreate(adminActor, validCreateInput()), ErrNotEligible)
		assert.ErrorIs(t, validateCreate(supervisor, validCreateInput()), ErrNotEligible)
	})

	t.Run("cannot refer to own organization", func(t *testing.T) {
		in := validCreateInput()
		in.ReferralTo = fpSender.Organization
		assert.ErrorIs(t, validateCreate(fpSender, in), ErrSameOrganization)
	})

	t.Run("missing required fields", func(t *testing.T) {
		in := validCreateInput()
		in.ClientContactInfo = "  "
		assert.ErrorIs(t, validateCreate(fpSender, in), ErrInvalidTransition)
	})

	t.Run("unknown color code", func(t *testing.T) {
		in := validCreateInput()
		in.ClientColorCode = "Green"
		assert.ErrorIs(t, validateCreate(fpSender, in), ErrInvalidTransition)
	})

	t.Run("code confirmation tolerates surrounding whitespace", func(t *testing.T) {
		in := validCreateInput()
		in.ConfirmCaseCode = " GBV-2031 "
		assert.NoError(t, validateCreate(fpSender, in))
	})
}

func decidableReferral() *model.Referral {
	r := waitingReferral()
	r.ReferralCode = "REF-1767225600000"
	r.CaseCode = "GBV-2031"
	return r
}

func TestValidateApprove(t *testing.T) {
	r := decidableReferral()

	require.NoError(t, validateApprove(fpReceiver, r, r.ReferralCode))

	assert.ErrorIs(t, validateApprove(fpReceiver, r, "REF-0"), ErrCodeMismatch)
	assert.ErrorIs(t, validateApprove(fpSender, r, r.ReferralCode), ErrNotEligible)
	assert.ErrorIs(t, validateApprove(fpOther, r, r.ReferralCode), ErrNotEligible)

	r.Status = model.StatusApproved
	assert.ErrorIs(t, validateApprove(fpReceiver, r, r.ReferralCode), ErrInvalidTransition)

	r.Status = model.StatusRejected
	assert.ErrorIs(t, validateApprove(fpReceiver, r, r.ReferralCode), ErrInvalidTransition,
		"rejected is terminal")
}

func TestValidateReject(t *testing.T) {
	r := decidableReferral()

	require.NoError(t, validateReject(fpReceiver, r, r.ReferralCode, "no capacity this month"))
	assert.ErrorIs(t, validateReject(fpReceiver, r, r.ReferralCode, ""), ErrReasonRequired)
	assert.ErrorIs(t, validateReject(fpReceiver, r, r.ReferralCode, "   "), ErrReasonRequired)
	assert.ErrorIs(t, validateReject(fpReceiver, r, "nope", "no capacity"), ErrCodeMismatch)
}

func supervisorUser() *model.User {
	u := &model.User{
		Name:         "Dara",
		Email:        "dara@orgb.example",
		Role:         model.RoleCaseSupervisor,
		Organization: "Org B",
	}
	u.ID = supervisor.ID
	return u
}

func TestValidateAssign(t *testing.T) {
	r := decidableReferral()
	r.Status = model.StatusApproved
	sup := supervisorUser()

	require.NoError(t, validateAssign(fpReceiver, r, sup, r.ReferralCode))

	t.Run("eligibility", func(t *testing.T) {
		assert.ErrorIs(t, validateAssign(fpSender, r, sup, r.ReferralCode), ErrNotEligible)
		assert.ErrorIs(t, validateAssign(supervisor, r, sup, r.ReferralCode), ErrNotEligible)
	})

	t.Run("supervisor must match the receiving organization", func(t *testing.T) {
		wrongOrg := supervisorUser()
		wrongOrg.Organization = "Org C"
		assert.ErrorIs(t, validateAssign(fpReceiver, r, wrongOrg, r.ReferralCode), ErrBadSupervisor)

		wrongRole := supervisorUser()
		wrongRole.Role = model.RoleFocalPerson
		assert.ErrorIs(t, validateAssign(fpReceiver, r, wrongRole, r.ReferralCode), ErrBadSupervisor)

		assert.ErrorIs(t, validateAssign(fpReceiver, r, nil, r.ReferralCode), ErrBadSupervisor)
	})

	t.Run("state guards", func(t *testing.T) {
		waiting := decidableReferral()
		assert.ErrorIs(t, validateAssign(fpReceiver, waiting, sup, waiting.ReferralCode), ErrInvalidTransition)

		taken := decidableReferral()
		taken.Status = model.StatusApproved
		taken.AssignedSupervisorID = "u-cs-2"
		assert.ErrorIs(t, validateAssign(fpReceiver, taken, sup, taken.ReferralCode), ErrInvalidTransition)
	})

	assert.ErrorIs(t, validateAssign(fpReceiver, r, sup, "REF-0"), ErrCodeMismatch)
}

func assignedCase(stage int) *model.Referral {
	r := decidableReferral()
	r.Status = model.StatusAssigned
	r.AssignedSupervisorID = supervisor.ID
	r.ProgressStage = stage
	if stage > 0 {
		r.CaseStatus = model.StageStatus(stage)
		r.Progress = float64(stage) * 20
	}
	return r
}

func TestValidateCaseUpdate(t *testing.T) {
	t.Run("stage one from a fresh assignment", func(t *testing.T) {
		r := assignedCase(0)
		assert.NoError(t, validateCaseUpdate(supervisor, r, "In Progress Stage 1", r.CaseCode, "intake complete"))
	})

	t.Run("stages advance one at a time", func(t *testing.T) {
		r := assignedCase(2)
		assert.NoError(t, validateCaseUpdate(supervisor, r, "In Progress Stage 3", r.CaseCode, "plan agreed"))
		assert.ErrorIs(t, validateCaseUpdate(supervisor, r, "In Progress Stage 5", r.CaseCode, "skip ahead"), ErrInvalidTransition)
		assert.ErrorIs(t, validateCaseUpdate(supervisor, r, "In Progress Stage 2", r.CaseCode, "repeat"), ErrInvalidTransition)
	})

	t.Run("special statuses reachable from any stage", func(t *testing.T) {
		r := assignedCase(2)
		assert.NoError(t, validateCaseUpdate(supervisor, r, model.CaseStatusOnHold, r.CaseCode, "client travelling"))
		assert.NoError(t, validateCaseUpdate(supervisor, r, model.CaseDismissed, r.CaseCode, "duplicate entry"))
		assert.NoError(t, validateCaseUpdate(supervisor, r, model.CaseClosed, r.CaseCode, "services completed"))
	})

	t.Run("held cases resume", func(t *testing.T) {
		r := assignedCase(2)
		r.CaseStatus = model.CaseStatusOnHold
		assert.NoError(t, validateCaseUpdate(supervisor, r, "In Progress Stage 3", r.CaseCode, "client returned"))
	})

	t.Run("terminal cases are frozen", func(t *testing.T) {
		r := assignedCase(3)
		r.CaseStatus = model.CaseClosed
		assert.ErrorIs(t, validateCaseUpdate(supervisor, r, "In Progress Stage 4", r.CaseCode, "reopen"), ErrNotEligible)

		r.CaseStatus = model.CaseDismissed
		assert.ErrorIs(t, validateCaseUpdate(supervisor, r, model.CaseStatusOnHold, r.CaseCode, "hold"), ErrNotEligible)
	})

	t.Run("guards", func(t *testing.T) {
		r := assignedCase(1)
		assert.ErrorIs(t, validateCaseUpdate(supervisor, r, "In Progress Stage 2", "WRONG", "note"), ErrCodeMismatch)
		assert.ErrorIs(t, validateCaseUpdate(supervisor, r, "In Progress Stage 2", r.CaseCode, "  "), ErrNoteRequired)
		assert.ErrorIs(t, validateCaseUpdate(fpReceiver, r, "In Progress Stage 2", r.CaseCode, "note"), ErrNotEligible)
		assert.ErrorIs(t, validateCaseUpdate(supervisor, r, "Escalated", r.CaseCode, "note"), ErrInvalidTransition)
	})
}

func TestCaseUpdateGuard(t *testing.T) {
	r := assignedCase(3)
	guard := caseUpdateGuard(r, supervisor.ID)
	assert.Equal(t, r.ID, guard["id"])
	assert.Equal(t, supervisor.ID, guard["assigned_supervisor_id"])
	assert.Equal(t, model.StageStatus(3), guard["case_status"])
	assert.Equal(t, 3, guard["progress_stage"])

	// two writers at the same stage but with different statuses pin
	// different rows, so the slower one matches nothing and surfaces
	// ErrStaleState instead of overwriting the stage history
	r.CaseStatus = model.CaseStatusOnHold
	held := caseUpdateGuard(r, supervisor.ID)
	assert.NotEqual(t, guard["case_status"], held["case_status"])
	assert.Equal(t, guard["progress_stage"], held["progress_stage"])
}
