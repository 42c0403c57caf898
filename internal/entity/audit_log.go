package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type AuditAction string

const (
	AuditSignup            AuditAction = "signup"
	AuditLoginSuccess      AuditAction = "login_success"
	AuditLoginFailed       AuditAction = "login_failed"
	AuditEmailConfirmed    AuditAction = "email_confirmed"
	AuditPasswordRecovered AuditAction = "password_recovered"
	AuditUserUpdated       AuditAction = "user_updated"
	AuditUserToggled       AuditAction = "user_toggled"
	AuditUserDeleted       AuditAction = "user_deleted"
)

// AuditLog records an authentication event. Rows are append-only and never
// block the operation that produced them.
type AuditLog struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	UserID *uuid.UUID `gorm:"type:uuid;index"`
	User   *User      `gorm:"constraint:OnDelete:SET NULL"`

	Action   AuditAction `gorm:"type:varchar(64);not null"`
	Metadata datatypes.JSON

	CreatedAt time.Time
}
