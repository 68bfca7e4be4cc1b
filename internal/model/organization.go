package model

// Organization is a participating support organization. Users and
// referrals reference it by name, not by id; renames are therefore an
// administrative operation that must be propagated manually.
type Organization struct {
	BaseModel
	Name        string `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	CreatedBy   string `gorm:"type:varchar(100)" json:"created_by"`
	CreatedByID string `gorm:"type:varchar(36)" json:"created_by_id"`
}

func (Organization) TableName() string {
	return "organizations"
}
