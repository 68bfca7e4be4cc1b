package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"referral-server/internal/model"
	"referral-server/internal/pkg/utils"

	"gorm.io/gorm"
)

// Lifecycle errors. Handlers map these to HTTP responses; any other
// error is a storage failure.
var (
	ErrCodeMismatch      = errors.New("confirmation code does not match")
	ErrNotEligible       = errors.New("actor is not eligible for this action")
	ErrInvalidTransition = errors.New("status transition is not allowed")
	ErrStaleState        = errors.New("referral changed since it was read")
	ErrReasonRequired    = errors.New("a rejection reason is required")
	ErrNoteRequired      = errors.New("an update note is required")
	ErrBadSupervisor     = errors.New("supervisor must belong to the receiving organization")
	ErrSameOrganization  = errors.New("a case cannot be referred to its own organization")
)

// LifecycleService applies referral state transitions. Every mutation
// is a conditional update carrying the expected prior state in the
// WHERE clause: if another writer got there first, zero rows match and
// the caller gets ErrStaleState instead of a silent overwrite.
type LifecycleService struct {
	db       *gorm.DB
	notifier *Notifier
}

// NewLifecycleService wires the lifecycle against a database handle and
// a notifier. The notifier may be nil in tests.
func NewLifecycleService(db *gorm.DB, notifier *Notifier) *LifecycleService {
	return &LifecycleService{db: db, notifier: notifier}
}

// CreateReferralInput carries the creation form
type CreateReferralInput struct {
	ReferralTo        string
	CaseCode          string
	ConfirmCaseCode   string
	ClientColorCode   model.ClientColorCode
	ClientContactInfo string
	Notes             string
	ConsentFormURL    string
}

// validateCreate checks the creation rules without touching storage
func validateCreate(actor Actor, in CreateReferralInput) error {
	if !CanCreateReferral(actor) {
		return ErrNotEligible
	}
	if strings.TrimSpace(in.CaseCode) == "" ||
		strings.TrimSpace(in.ReferralTo) == "" ||
		strings.TrimSpace(in.ClientContactInfo) == "" {
		return fmt.Errorf("%w: case code, destination and contact info are required", ErrInvalidTransition)
	}
	if strings.TrimSpace(in.ConfirmCaseCode) != strings.TrimSpace(in.CaseCode) {
		return ErrCodeMismatch
	}
	if in.ReferralTo == actor.Organization {
		return ErrSameOrganization
	}
	if !model.ValidColorCode(in.ClientColorCode) {
		return fmt.Errorf("%w: unknown client color code %q", ErrInvalidTransition, in.ClientColorCode)
	}
	return nil
}

// Create opens a new referral in the waiting state
func (s *LifecycleService) Create(actor Actor, in CreateReferralInput) (*model.Referral, error) {
	if err := validateCreate(actor, in); err != nil {
		return nil, err
	}

	var dest model.Organization
	if err := s.db.Where("name = ?", in.ReferralTo).First(&dest).Error; err != nil {
		return nil, fmt.Errorf("%w: unknown organization %q", ErrInvalidTransition, in.ReferralTo)
	}

	referral := model.Referral{
		ReferralCode:      utils.GenerateReferralCode(),
		CaseCode:          strings.TrimSpace(in.CaseCode),
		ReferralTo:        in.ReferralTo,
		ClientColorCode:   in.ClientColorCode,
		ClientContactInfo: in.ClientContactInfo,
		Notes:             in.Notes,
		ConsentFormURL:    in.ConsentFormURL,
		DateOfReferral:    time.Now(),
		Status:            model.StatusWaiting,
		CreatedByID:       actor.ID,
		CreatedBy:         actor.Name,
		CreatedByOrg:      actor.Organization,
		CreatedByEmail:    actor.Email,
	}

	if err := s.db.Create(&referral).Error; err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.ReferralCreated(&referral)
	}
	return &referral, nil
}

// validateApprove checks approval eligibility without touching storage
func validateApprove(actor Actor, r *model.Referral, confirmCode string) error {
	if r.Status != model.StatusWaiting {
		return ErrInvalidTransition
	}
	if !CanDecideReferral(actor, r) {
		return ErrNotEligible
	}
	if confirmCode != r.ReferralCode {
		return ErrCodeMismatch
	}
	return nil
}

// Approve moves Waiting... to Approved
func (s *LifecycleService) Approve(actor Actor, r *model.Referral, confirmCode string) error {
	if err := validateApprove(actor, r, confirmCode); err != nil {
		return err
	}

	res := s.db.Model(&model.Referral{}).
		Where("id = ? AND status = ?", r.ID, model.StatusWaiting).
		Updates(map[string]interface{}{
			"status":          model.StatusApproved,
			"approved_by":     actor.Name,
			"approved_by_org": actor.Organization,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleState
	}

	r.Status = model.StatusApproved
	r.ApprovedBy = actor.Name
	r.ApprovedByOrg = actor.Organization

	if s.notifier != nil {
		s.notifier.ReferralDecided(r)
	}
	return nil
}

// validateReject checks rejection eligibility without touching storage
func validateReject(actor Actor, r *model.Referral, confirmCode, reason string) error {
	if err := validateApprove(actor, r, confirmCode); err != nil {
		return err
	}
	if strings.TrimSpace(reason) == "" {
		return ErrReasonRequired
	}
	return nil
}

// Reject moves Waiting... to the terminal Rejected state
func (s *LifecycleService) Reject(actor Actor, r *model.Referral, confirmCode, reason string) error {
	if err := validateReject(actor, r, confirmCode, reason); err != nil {
		return err
	}

	res := s.db.Model(&model.Referral{}).
		Where("id = ? AND status = ?", r.ID, model.StatusWaiting).
		Updates(map[string]interface{}{
			"status":          model.StatusRejected,
			"rejected_by":     actor.Name,
			"rejected_by_org": actor.Organization,
			"rejection_notes": reason,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleState
	}

	r.Status = model.StatusRejected
	r.RejectedBy = actor.Name
	r.RejectedByOrg = actor.Organization
	r.RejectionNotes = reason

	if s.notifier != nil {
		s.notifier.ReferralDecided(r)
	}
	return nil
}

// validateAssign checks assignment eligibility without touching storage
func validateAssign(actor Actor, r *model.Referral, supervisor *model.User, confirmCode string) error {
	if r.Status != model.StatusApproved || r.AssignedSupervisorID != "" {
		return ErrInvalidTransition
	}
	if !CanAssignSupervisor(actor, r) {
		return ErrNotEligible
	}
	if confirmCode != r.ReferralCode {
		return ErrCodeMismatch
	}
	if supervisor == nil ||
		supervisor.Role != model.RoleCaseSupervisor ||
		supervisor.Organization != r.ReferralTo {
		return ErrBadSupervisor
	}
	return nil
}

// Assign moves Approved to Assigned and records the supervisor
func (s *LifecycleService) Assign(actor Actor, r *model.Referral, supervisor *model.User, confirmCode, notes string) error {
	if err := validateAssign(actor, r, supervisor, confirmCode); err != nil {
		return err
	}

	now := time.Now()
	res := s.db.Model(&model.Referral{}).
		Where("id = ? AND status = ? AND (assigned_supervisor_id = '' OR assigned_supervisor_id IS NULL)",
			r.ID, model.StatusApproved).
		Updates(map[string]interface{}{
			"status":                    model.StatusAssigned,
			"assigned_supervisor_id":    supervisor.ID,
			"assigned_supervisor_name":  supervisor.Name,
			"assigned_supervisor_email": supervisor.Email,
			"assign_notes":              notes,
			"assigned_by":               actor.Name,
			"assigned_by_org":           actor.Organization,
			"assigned_at":               now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleState
	}

	r.Status = model.StatusAssigned
	r.AssignedSupervisorID = supervisor.ID
	r.AssignedSupervisorName = supervisor.Name
	r.AssignedSupervisorEmail = supervisor.Email
	r.AssignNotes = notes
	r.AssignedBy = actor.Name
	r.AssignedByOrg = actor.Organization
	r.AssignedAt = &now

	if s.notifier != nil {
		s.notifier.SupervisorAssigned(r)
	}
	return nil
}

// validateCaseUpdate checks a case status update without touching
// storage. In-progress stages advance strictly one at a time; the three
// special statuses are reachable from any stage. On Hold pauses the
// case but further updates stay legal.
func validateCaseUpdate(actor Actor, r *model.Referral, newStatus model.CaseStatus, confirmCaseCode, note string) error {
	if !CanUpdateCase(actor, r) {
		return ErrNotEligible
	}
	if confirmCaseCode != r.CaseCode {
		return ErrCodeMismatch
	}
	if strings.TrimSpace(note) == "" {
		return ErrNoteRequired
	}

	if stage, ok := model.ParseStage(newStatus); ok {
		if stage != r.ProgressStage+1 {
			return fmt.Errorf("%w: next stage is %d", ErrInvalidTransition, r.ProgressStage+1)
		}
		return nil
	}

	switch newStatus {
	case model.CaseStatusOnHold, model.CaseDismissed, model.CaseClosed:
		return nil
	}
	return fmt.Errorf("%w: unknown case status %q", ErrInvalidTransition, newStatus)
}

// UpdateCaseStatus applies a supervisor progress update: appends to the
// stage history and recomputes the derived progress value. The guard
// pins the assignee and the full prior state (status and stage) so
// replayed or racing requests cannot skip stages or clobber each other.
func (s *LifecycleService) UpdateCaseStatus(actor Actor, r *model.Referral, newStatus model.CaseStatus, confirmCaseCode, note string) error {
	if err := validateCaseUpdate(actor, r, newStatus, confirmCaseCode, note); err != nil {
		return err
	}

	newStage := r.ProgressStage
	if stage, ok := model.ParseStage(newStatus); ok {
		newStage = stage
	}
	progress := model.ProgressFor(newStatus, newStage, r.Progress)

	if err := r.AppendStageEntry(model.StageEntry{
		Status: newStatus,
		Note:   note,
		Date:   time.Now(),
	}); err != nil {
		return err
	}

	res := s.db.Model(&model.Referral{}).
		Where(caseUpdateGuard(r, actor.ID)).
		Updates(map[string]interface{}{
			"case_status":      newStatus,
			"case_status_note": note,
			"progress_stage":   newStage,
			"progress":         progress,
			"stage_history":    r.StageHistory,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleState
	}

	r.CaseStatus = newStatus
	r.CaseStatusNote = note
	r.ProgressStage = newStage
	r.Progress = progress

	if s.notifier != nil {
		s.notifier.CaseUpdated(r, actor)
	}
	return nil
}

// caseUpdateGuard builds the WHERE conditions for the guarded update:
// the row must still belong to the acting supervisor and still hold
// the status and stage the caller read. A writer that lost the race
// matches nothing and gets ErrStaleState instead of overwriting the
// fresher stage history.
func caseUpdateGuard(r *model.Referral, actorID string) map[string]interface{} {
	return map[string]interface{}{
		"id":                     r.ID,
		"assigned_supervisor_id": actorID,
		"case_status":            r.CaseStatus,
		"progress_stage":         r.ProgressStage,
	}
}

// Delete removes a referral after re-confirming its code. Only the
// Administrator or the original creator may delete.
func (s *LifecycleService) Delete(actor Actor, r *model.Referral, confirmCode string) error {
	if !CanModifyReferral(actor, r) {
		return ErrNotEligible
	}
	if confirmCode != r.ReferralCode {
		return ErrCodeMismatch
	}
	return s.db.Delete(r).Error
}
