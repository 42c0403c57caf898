package service

import (
	"crypto/rand"
	"math/big"
	"strings"
	"unicode"
)

const (
	passwordMinLength    = 8
	recoveryPasswordLen  = 10
	passwordSpecialChars = "#_!="

	lowerChars = "abcdefghijklmnopqrstuvwxyz"
	upperChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digitChars = "0123456789"
)

// ValidatePassword checks the password policy and returns every violated
// rule, so the caller can report them all at once.
func ValidatePassword(password string) []string {
	var reasons []string
	if len(password) < passwordMinLength {
		reasons = append(reasons, "password must be at least 8 characters long")
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
			hasSpecial = true
		}
	}
	if !hasUpper {
		reasons = append(reasons, "password must contain an uppercase letter")
	}
	if !hasLower {
		reasons = append(reasons, "password must contain a lowercase letter")
	}
	if !hasDigit {
		reasons = append(reasons, "password must contain a digit")
	}
	if !hasSpecial {
		reasons = append(reasons, "password must contain a non-alphanumeric character")
	}
	return reasons
}

// GenerateRecoveryPassword returns a random length-10 password guaranteed to
// contain an uppercase letter, a lowercase letter, a digit, and one of
// "#_!=".
func GenerateRecoveryPassword() (string, error) {
	classes := []string{upperChars, lowerChars, digitChars, passwordSpecialChars}
	all := strings.Join(classes, "")

	chars := make([]byte, 0, recoveryPasswordLen)
	for _, class := range classes {
		c, err := randomChar(class)
		if err != nil {
			return "", err
		}
		chars = append(chars, c)
	}
	for len(chars) < recoveryPasswordLen {
		c, err := randomChar(all)
		if err != nil {
			return "", err
		}
		chars = append(chars, c)
	}

	// Fisher-Yates so the guaranteed characters don't sit at fixed positions.
	for i := len(chars) - 1; i > 0; i-- {
		j, err := randomIndex(i + 1)
		if err != nil {
			return "", err
		}
		chars[i], chars[j] = chars[j], chars[i]
	}
	return string(chars), nil
}

func randomChar(set string) (byte, error) {
	i, err := randomIndex(len(set))
	if err != nil {
		return 0, err
	}
	return set[i], nil
}

func randomIndex(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(v.Int64()), nil
}
