package entity

import (
	"testing"
	"time"
)

func TestConfirmationCodeExpired(t *testing.T) {
	expiresAt := time.Date(2024, 5, 1, 12, 20, 0, 0, time.UTC)
	code := ConfirmationCode{ExpiresAt: expiresAt}

	if code.Expired(expiresAt.Add(-time.Second)) {
		t.Fatalf("code must still be valid before the deadline")
	}
	if code.Expired(expiresAt) {
		t.Fatalf("code must still be valid exactly at the deadline")
	}
	if !code.Expired(expiresAt.Add(time.Second)) {
		t.Fatalf("code must be expired past the deadline")
	}
}
