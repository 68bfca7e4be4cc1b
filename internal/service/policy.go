package service

import (
	"referral-server/internal/model"
)

// Actor is the request-scoped identity acting on a referral, taken from
// the session token. Handlers build it once per request and pass it
// down; no service reads identity from anywhere else.
type Actor struct {
	ID           string
	Name         string
	Email        string
	Role         string
	Organization string
}

// CanViewReferral decides record-level visibility.
// Administrators see everything; a Focal Person sees referrals sent by
// or addressed to their organization; a Case Supervisor sees only
// referrals assigned to them.
func CanViewReferral(actor Actor, r *model.Referral) bool {
	switch actor.Role {
	case model.RoleAdministrator:
		return true
	case model.RoleFocalPerson:
		return r.CreatedByOrg == actor.Organization || r.ReferralTo == actor.Organization
	case model.RoleCaseSupervisor:
		return r.AssignedSupervisorID == actor.ID
	default:
		return false
	}
}

// CanCreateReferral gates referral creation to Focal Persons
func CanCreateReferral(actor Actor) bool {
	return actor.Role == model.RoleFocalPerson
}

// CanDecideReferral reports whether the actor may approve or reject.
// Eligibility is organizational: the receiving organization decides.
func CanDecideReferral(actor Actor, r *model.Referral) bool {
	return actor.Organization == r.ReferralTo && r.Status == model.StatusWaiting
}

// CanAssignSupervisor reports whether the actor may assign a
// supervisor: a Focal Person of the receiving organization, while the
// referral is approved and still unassigned.
func CanAssignSupervisor(actor Actor, r *model.Referral) bool {
	return actor.Role == model.RoleFocalPerson &&
		actor.Organization == r.ReferralTo &&
		r.Status == model.StatusApproved &&
		r.AssignedSupervisorID == ""
}

// CanUpdateCase reports whether the actor may post a case status
// update: only the assigned supervisor, only after assignment, and
// never once the case reached a terminal status.
func CanUpdateCase(actor Actor, r *model.Referral) bool {
	return r.Status == model.StatusAssigned &&
		r.AssignedSupervisorID != "" &&
		r.AssignedSupervisorID == actor.ID &&
		!model.IsTerminalCase(r.CaseStatus)
}

// CanModifyReferral gates edit and delete: the Administrator or the
// original creator. The comparison is by immutable user id, not by
// display name.
func CanModifyReferral(actor Actor, r *model.Referral) bool {
	return actor.Role == model.RoleAdministrator || r.CreatedByID == actor.ID
}
