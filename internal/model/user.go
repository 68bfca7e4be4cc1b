package model

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User is an account in the referral network. Organization is referenced
// by name, matching how referrals and the rest of the system refer to it.
type User struct {
	BaseModel
	Name         string     `gorm:"type:varchar(100);not null" json:"name"`
	Email        string     `gorm:"type:varchar(100);uniqueIndex;not null" json:"email"`
	Password     string     `gorm:"type:varchar(255);not null" json:"-"`
	Role         string     `gorm:"type:varchar(50);not null;index" json:"role"`
	Organization string     `gorm:"type:varchar(100);not null;index" json:"organization"`
	Status       UserStatus `gorm:"type:varchar(20);default:active" json:"status"`
	LastLoginAt  *time.Time `json:"last_login_at"`
	LastLoginIP  string     `gorm:"type:varchar(45)" json:"last_login_ip"`
	CreatedBy    string     `gorm:"type:varchar(100)" json:"created_by"`
}

type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusDisabled UserStatus = "disabled"
)

func (User) TableName() string {
	return "users"
}

// SetPassword hashes and stores the password
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword verifies a plaintext password
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// IsAdministrator reports whether the user holds the Administrator role
func (u *User) IsAdministrator() bool {
	return u.Role == RoleAdministrator
}
