package model

// AuditLog records one write operation against the API
type AuditLog struct {
	BaseModel
	UserID       string `gorm:"type:varchar(36);index" json:"user_id"`
	UserEmail    string `gorm:"type:varchar(100)" json:"user_email"`
	Action       string `gorm:"type:varchar(50);not null;index" json:"action"`
	Resource     string `gorm:"type:varchar(50);index" json:"resource"`
	ResourceID   string `gorm:"type:varchar(36)" json:"resource_id"`
	Description  string `gorm:"type:varchar(255)" json:"description"`
	IPAddress    string `gorm:"type:varchar(45)" json:"ip_address"`
	UserAgent    string `gorm:"type:varchar(500)" json:"user_agent"`
	RequestBody  string `gorm:"type:text" json:"request_body"`
	ResponseCode int    `json:"response_code"`
	Duration     int64  `json:"duration"` // milliseconds
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// Audit actions
const (
	ActionCreate       = "create"
	ActionUpdate       = "update"
	ActionDelete       = "delete"
	ActionLogin        = "login"
	ActionApprove      = "approve"
	ActionReject       = "reject"
	ActionAssign       = "assign"
	ActionUpdateStatus = "update-status"
)

// Audit resources
const (
	ResourceReferral     = "referral"
	ResourceUser         = "user"
	ResourceOrganization = "organization"
	ResourceRole         = "role"
	ResourceNotification = "notification"
)
