package entity

import (
	"time"

	"github.com/google/uuid"
)

// AdminUsername names the seeded administrator account. It can never be
// disabled, deleted, renamed, or changed through the bulk admin update path.
const AdminUsername = "admin"

const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleUser    = "user"
)

type Role struct {
	ID   int64  `gorm:"primaryKey"`
	Name string `gorm:"type:varchar(64);uniqueIndex;not null"`

	Claims []RoleClaim `gorm:"constraint:OnDelete:CASCADE"`
}

// RoleClaim is an extra key/value fact embedded in every token issued to a
// user holding the role.
type RoleClaim struct {
	ID     int64  `gorm:"primaryKey"`
	RoleID int64  `gorm:"index;not null"`
	Name   string `gorm:"type:varchar(128);not null"`
	Value  string `gorm:"type:varchar(256)"`
}

// UserClaim is an extra key/value fact attached to a single user.
type UserClaim struct {
	ID     int64     `gorm:"primaryKey"`
	UserID uuid.UUID `gorm:"type:uuid;index;not null"`
	Name   string    `gorm:"type:varchar(128);not null"`
	Value  string    `gorm:"type:varchar(256)"`
}

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Username     string    `gorm:"type:varchar(64);uniqueIndex;not null"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string    `gorm:"type:text;not null"`
	FirstName    string    `gorm:"type:varchar(128);not null"`
	LastName     string    `gorm:"type:varchar(128);not null"`

	Enabled        bool `gorm:"not null;default:true"`
	EmailConfirmed bool `gorm:"not null;default:false"`

	CreatedAt time.Time
	UpdatedAt time.Time

	// The schema allows many roles; the service keeps exactly one.
	Roles  []Role      `gorm:"many2many:user_roles"`
	Claims []UserClaim `gorm:"constraint:OnDelete:CASCADE"`

	ConfirmationCode *ConfirmationCode `gorm:"constraint:OnDelete:CASCADE"`
}

func (u *User) IsAdminAccount() bool {
	return u.Username == AdminUsername
}

func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, role := range u.Roles {
		names = append(names, role.Name)
	}
	return names
}

func (u *User) HasRole(name string) bool {
	for _, role := range u.Roles {
		if role.Name == name {
			return true
		}
	}
	return false
}
