package service

import (
	"strings"
	"testing"
	"unicode"
)

func TestValidatePassword(t *testing.T) {
	if reasons := ValidatePassword("Str0ng#pass"); len(reasons) != 0 {
		t.Fatalf("expected valid password, got %v", reasons)
	}
	if reasons := ValidatePassword("abc"); len(reasons) != 4 {
		t.Fatalf("expected 4 violations, got %v", reasons)
	}
	if reasons := ValidatePassword("alllowercase1#"); len(reasons) != 1 {
		t.Fatalf("expected only the uppercase rule, got %v", reasons)
	}
}

func TestGenerateRecoveryPassword(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		password, err := GenerateRecoveryPassword()
		if err != nil {
			t.Fatalf("generate failed: %v", err)
		}
		if len(password) != 10 {
			t.Fatalf("expected length 10, got %q", password)
		}
		var hasUpper, hasLower, hasDigit, hasSpecial bool
		for _, r := range password {
			switch {
			case unicode.IsUpper(r):
				hasUpper = true
			case unicode.IsLower(r):
				hasLower = true
			case unicode.IsDigit(r):
				hasDigit = true
			default:
				if !strings.ContainsRune(passwordSpecialChars, r) {
					t.Fatalf("unexpected character %q in %q", r, password)
				}
				hasSpecial = true
			}
		}
		if !hasUpper || !hasLower || !hasDigit || !hasSpecial {
			t.Fatalf("password %q misses a required class", password)
		}
		if reasons := ValidatePassword(password); len(reasons) != 0 {
			t.Fatalf("generated password fails its own policy: %v", reasons)
		}
		seen[password] = true
	}
	if len(seen) < 2 {
		t.Fatalf("generator looks deterministic")
	}
}
