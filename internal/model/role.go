package model

// Role names. The three defaults are seeded at startup and cannot be
// renamed or deleted.
const (
	RoleAdministrator  = "Administrator"
	RoleFocalPerson    = "Focal Person"
	RoleCaseSupervisor = "Case Supervisor"
)

// Role is a named role record. Custom roles may be created by an
// Administrator but carry no permissions until mapped below.
type Role struct {
	BaseModel
	Name        string `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
	Description string `gorm:"type:varchar(255)" json:"description"`
	CreatedBy   string `gorm:"type:varchar(100)" json:"created_by"`
}

func (Role) TableName() string {
	return "roles"
}

// DefaultRoles is the fixed role set
var DefaultRoles = []string{RoleAdministrator, RoleFocalPerson, RoleCaseSupervisor}

// IsDefaultRole reports whether a role belongs to the fixed set
func IsDefaultRole(name string) bool {
	for _, r := range DefaultRoles {
		if r == name {
			return true
		}
	}
	return false
}

// RolePermissions maps roles to coarse capabilities. Record-scoped
// decisions (which referral a user may see or act on) live in the
// policy evaluator; this table gates routes.
var RolePermissions = map[string]map[string]bool{
	RoleAdministrator: {
		"org:read":        true,
		"org:create":      true,
		"org:update":      true,
		"org:delete":      true,
		"user:read":       true,
		"user:create":     true,
		"user:update":     true,
		"user:delete":     true,
		"role:read":       true,
		"role:create":     true,
		"role:update":     true,
		"role:delete":     true,
		"referral:read":   true,
		"referral:create": false,
		"stats:read":      true,
		"export:read":     true,
		"audit:read":      true,
	},
	RoleFocalPerson: {
		"org:read":        true,
		"org:create":      false,
		"org:update":      false,
		"org:delete":      false,
		"user:read":       true,
		"user:create":     false,
		"user:update":     false,
		"user:delete":     false,
		"role:read":       false,
		"role:create":     false,
		"role:update":     false,
		"role:delete":     false,
		"referral:read":   true,
		"referral:create": true,
		"stats:read":      false,
		"export:read":     true,
		"audit:read":      false,
	},
	RoleCaseSupervisor: {
		"org:read":        true,
		"org:create":      false,
		"org:update":      false,
		"org:delete":      false,
		"user:read":       false,
		"user:create":     false,
		"user:update":     false,
		"user:delete":     false,
		"role:read":       false,
		"role:create":     false,
		"role:update":     false,
		"role:delete":     false,
		"referral:read":   true,
		"referral:create": false,
		"stats:read":      false,
		"export:read":     true,
		"audit:read":      false,
	},
}

// HasPermission checks the role permission table
func HasPermission(role, permission string) bool {
	return RolePermissions[role][permission]
}
