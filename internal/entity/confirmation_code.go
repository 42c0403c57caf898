package entity

import (
	"time"

	"github.com/google/uuid"
)

// ConfirmationCode is a single-use opaque token proving control of a
// registered email. user_id is the primary key, so the database itself
// guarantees at most one live code per user.
type ConfirmationCode struct {
	UserID uuid.UUID `gorm:"type:uuid;primaryKey"`
	User   *User     `gorm:"constraint:OnDelete:CASCADE"`

	Code      uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	ExpiresAt time.Time `gorm:"not null"`
}

// Expired reports whether the code is past its expiration. The check is
// strict: a code presented exactly at its expiration instant is still valid.
func (c *ConfirmationCode) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}
