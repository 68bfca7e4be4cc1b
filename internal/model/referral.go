package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/datatypes"
)

// ReferralStatus is the primary lifecycle axis
type ReferralStatus string

const (
	StatusWaiting  ReferralStatus = "Waiting..."
	StatusApproved ReferralStatus = "Approved"
	StatusRejected ReferralStatus = "Rejected"
	StatusAssigned ReferralStatus = "Assigned"
)

// CaseStatus is the secondary axis, driven by the assigned supervisor
type CaseStatus string

const (
	CaseStatusNone   CaseStatus = ""
	CaseStatusOnHold CaseStatus = "On Hold"
	CaseDismissed    CaseStatus = "Dismissed"
	CaseClosed       CaseStatus = "Closed"
)

// MaxProgressStage is the number of in-progress stages
const MaxProgressStage = 5

// ClientColorCode marks urgency
type ClientColorCode string

const (
	ColorRed    ClientColorCode = "Red"    // urgent
	ColorYellow ClientColorCode = "Yellow" // non-urgent
)

// Referral is one case transfer between organizations
type Referral struct {
	BaseModel
	ReferralCode      string          `gorm:"type:varchar(40);uniqueIndex;not null" json:"referral_code"`
	CaseCode          string          `gorm:"type:varchar(100);not null" json:"case_code"`
	ReferralTo        string          `gorm:"type:varchar(100);not null;index" json:"referral_to"`
	ClientColorCode   ClientColorCode `gorm:"type:varchar(10);not null" json:"client_color_code"`
	ClientContactInfo string          `gorm:"type:varchar(255);not null" json:"client_contact_info"`
	Notes             string          `gorm:"type:text" json:"notes"`
	ConsentFormURL    string          `gorm:"type:varchar(500)" json:"consent_form_url"`
	DateOfReferral    time.Time       `gorm:"not null;index" json:"date_of_referral"`
	Status            ReferralStatus  `gorm:"type:varchar(20);not null;default:'Waiting...';index" json:"status"`

	CreatedByID    string `gorm:"type:varchar(36);not null;index" json:"created_by_id"`
	CreatedBy      string `gorm:"type:varchar(100);not null" json:"created_by"`
	CreatedByOrg   string `gorm:"type:varchar(100);not null;index" json:"created_by_org"`
	CreatedByEmail string `gorm:"type:varchar(100)" json:"created_by_email"`

	ApprovedBy    string `gorm:"type:varchar(100)" json:"approved_by,omitempty"`
	ApprovedByOrg string `gorm:"type:varchar(100)" json:"approved_by_org,omitempty"`

	RejectedBy     string `gorm:"type:varchar(100)" json:"rejected_by,omitempty"`
	RejectedByOrg  string `gorm:"type:varchar(100)" json:"rejected_by_org,omitempty"`
	RejectionNotes string `gorm:"type:text" json:"rejection_notes,omitempty"`

	AssignedSupervisorID    string     `gorm:"type:varchar(36);index" json:"assigned_supervisor_id,omitempty"`
	AssignedSupervisorName  string     `gorm:"type:varchar(100)" json:"assigned_supervisor_name,omitempty"`
	AssignedSupervisorEmail string     `gorm:"type:varchar(100)" json:"assigned_supervisor_email,omitempty"`
	AssignNotes             string     `gorm:"type:text" json:"assign_notes,omitempty"`
	AssignedBy              string     `gorm:"type:varchar(100)" json:"assigned_by,omitempty"`
	AssignedByOrg           string     `gorm:"type:varchar(100)" json:"assigned_by_org,omitempty"`
	AssignedAt              *time.Time `json:"assigned_at,omitempty"`

	CaseStatus     CaseStatus     `gorm:"type:varchar(30);index" json:"case_status,omitempty"`
	CaseStatusNote string         `gorm:"type:text" json:"case_status_note,omitempty"`
	ProgressStage  int            `gorm:"default:0" json:"progress_stage"`
	Progress       float64        `gorm:"default:0" json:"progress"`
	StageHistory   datatypes.JSON `json:"stage_history,omitempty"`
}

func (Referral) TableName() string {
	return "referrals"
}

// StageEntry is one append-only history record
type StageEntry struct {
	Status CaseStatus `json:"status"`
	Note   string     `json:"note"`
	Date   time.Time  `json:"date"`
}

// StageEntries decodes the stage history
func (r *Referral) StageEntries() ([]StageEntry, error) {
	if len(r.StageHistory) == 0 {
		return nil, nil
	}
	var entries []StageEntry
	if err := json.Unmarshal(r.StageHistory, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// AppendStageEntry appends to the stage history. History is never
// rewritten or truncated.
func (r *Referral) AppendStageEntry(entry StageEntry) error {
	entries, err := r.StageEntries()
	if err != nil {
		return err
	}
	entries = append(entries, entry)
	raw, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	r.StageHistory = raw
	return nil
}

// StageStatus names the in-progress status for a stage number
func StageStatus(stage int) CaseStatus {
	return CaseStatus(fmt.Sprintf("In Progress Stage %d", stage))
}

// ParseStage extracts the stage number from an in-progress status.
// Returns false for terminal and empty statuses.
func ParseStage(s CaseStatus) (int, bool) {
	const prefix = "In Progress Stage "
	if !strings.HasPrefix(string(s), prefix) {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(string(s), prefix))
	if err != nil || n < 1 || n > MaxProgressStage {
		return 0, false
	}
	return n, true
}

// IsTerminalCase reports whether no further case updates are accepted.
// On Hold is a paused state, not terminal: stage updates remain legal.
func IsTerminalCase(s CaseStatus) bool {
	return s == CaseClosed || s == CaseDismissed
}

// ProgressFor derives the progress percentage for a case status.
// In-progress stage N maps to 20*N, Closed to 100; On Hold and
// Dismissed leave the previous value untouched.
func ProgressFor(status CaseStatus, stage int, current float64) float64 {
	if _, ok := ParseStage(status); ok {
		return float64(stage) / float64(MaxProgressStage) * 100
	}
	if status == CaseClosed {
		return 100
	}
	return current
}

// ValidColorCode reports whether the color code is one of the two
// defined urgency markers
func ValidColorCode(c ClientColorCode) bool {
	return c == ColorRed || c == ColorYellow
}
