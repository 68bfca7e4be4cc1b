package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"referral-server/internal/model"
)

var (
	adminActor = Actor{ID: "u-admin", Name: "Admin", Role: model.RoleAdministrator, Organization: "Head Office"}
	fpSender   = Actor{ID: "u-fp-a", Name: "Amina", Role: model.RoleFocalPerson, Organization: "Org A"}
	fpReceiver = Actor{ID: "u-fp-b", Name: "Bilal", Role: model.RoleFocalPerson, Organization: "Org B"}
	fpOther    = Actor{ID: "u-fp-c", Name: "Chris", Role: model.RoleFocalPerson, Organization: "Org C"}
	supervisor = Actor{ID: "u-cs-1", Name: "Dara", Role: model.RoleCaseSupervisor, Organization: "Org B"}
)

func waitingReferral() *model.Referral {
	return &model.Referral{
		CreatedByID:  fpSender.ID,
		CreatedBy:    fpSender.Name,
		CreatedByOrg: "Org A",
		ReferralTo:   "Org B",
		Status:       model.StatusWaiting,
	}
}

func TestCanViewReferral(t *testing.T) {
	r := waitingReferral()

	assert.True(t, CanViewReferral(adminActor, r))
	assert.True(t, CanViewReferral(fpSender, r), "sending org focal person")
	assert.True(t, CanViewReferral(fpReceiver, r), "receiving org focal person")
	assert.False(t, CanViewReferral(fpOther, r), "unrelated org")

	// supervisors only see referrals assigned to them
	assert.False(t, CanViewReferral(supervisor, r))
	r.Status = model.StatusAssigned
	r.AssignedSupervisorID = supervisor.ID
	assert.True(t, CanViewReferral(supervisor, r))

	other := Actor{ID: "u-cs-2", Role: model.RoleCaseSupervisor, Organization: "Org B"}
	assert.False(t, CanViewReferral(other, r), "different supervisor in same org")
}

func TestCanCreateReferral(t *testing.T) {
	assert.True(t, CanCreateReferral(fpSender))
	assert.False(t, CanCreateReferral(adminActor), "administrators manage, they do not refer")
	assert.False(t, CanCreateReferral(supervisor))
}

func TestCanDecideReferral(t *testing.T) {
	r := waitingReferral()

	assert.True(t, CanDecideReferral(fpReceiver, r))
	assert.True(t, CanDecideReferral(supervisor, r), "any member of the receiving org may decide")
	assert.False(t, CanDecideReferral(fpSender, r), "the sender cannot decide its own referral")
	assert.False(t, CanDecideReferral(fpOther, r))

	r.Status = model.StatusApproved
	assert.False(t, CanDecideReferral(fpReceiver, r), "already decided")
}

func TestCanAssignSupervisor(t *testing.T) {
	r := waitingReferral()
	assert.False(t, CanAssignSupervisor(fpReceiver, r), "not approved yet")

	r.Status = model.StatusApproved
	assert.True(t, CanAssignSupervisor(fpReceiver, r))
	assert.False(t, CanAssignSupervisor(fpSender, r), "wrong organization")
	assert.False(t, CanAssignSupervisor(supervisor, r), "supervisors do not assign")

	r.AssignedSupervisorID = supervisor.ID
	assert.False(t, CanAssignSupervisor(fpReceiver, r), "already assigned")
}

func TestCanUpdateCase(t *testing.T) {
	r := waitingReferral()
	r.Status = model.StatusAssigned
	r.AssignedSupervisorID = supervisor.ID

	assert.True(t, CanUpdateCase(supervisor, r))
	assert.False(t, CanUpdateCase(adminActor, r), "only the assignee updates a case")
	assert.False(t, CanUpdateCase(fpReceiver, r))

	r.CaseStatus = model.CaseClosed
	assert.False(t, CanUpdateCase(supervisor, r), "closed cases are frozen")

	r.CaseStatus = model.CaseStatusOnHold
	assert.True(t, CanUpdateCase(supervisor, r), "held cases can still move")
}

func TestCanModifyReferral(t *testing.T) {
	r := waitingReferral()

	assert.True(t, CanModifyReferral(adminActor, r))
	assert.True(t, CanModifyReferral(fpSender, r), "creator by id")
	assert.False(t, CanModifyReferral(fpReceiver, r))

	// a renamed creator account still owns its referrals
	renamed := fpSender
	renamed.Name = "Amina Osman"
	assert.True(t, CanModifyReferral(renamed, r))

	// a different user with the creator's display name does not
	impostor := Actor{ID: "u-other", Name: fpSender.Name, Role: model.RoleFocalPerson, Organization: "Org A"}
	assert.False(t, CanModifyReferral(impostor, r))
}
