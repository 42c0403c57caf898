package service

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// AuthConfig groups the knobs of the authentication flows.
type AuthConfig struct {
	// ConfirmationTTL is how long an email confirmation code stays valid.
	ConfirmationTTL time.Duration
	// ClientBaseURL is the web client origin used to build confirmation
	// links.
	ClientBaseURL string
	AppName       string
}

// EmailSender is the outbound email transport. Any non-nil error means the
// message was not accepted by the provider.
type EmailSender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// TokenIssuer builds a signed session token for a user whose roles and
// claims are loaded.
type TokenIssuer interface {
	Issue(username, userID string, roles []string, extra map[string]string) (string, time.Duration, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash string, password string) bool
}

type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now()
}

type BcryptPasswordHasher struct {
	Cost int
}

func (h BcryptPasswordHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func (h BcryptPasswordHasher) Verify(hash string, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
