package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

type JWTManager struct {
	Secret   []byte
	Issuer   string
	Audience string
	TokenTTL time.Duration
}

// AccessClaims is the parsed shape of an issued token. Extra user/role
// claims ride in the payload but are not needed after validation.
type AccessClaims struct {
	UserID string   `json:"id"`
	Roles  []string `json:"roles"`
	jwt.RegisteredClaims
}

// Issue signs an HS256 token with the deterministic claim set: sub is the
// username, id the user id, jti unique per call, plus one role entry per
// role and any extra claims. Extra claims never shadow the registered ones.
func (m JWTManager) Issue(username, userID string, roles []string, extra map[string]string) (string, time.Duration, error) {
	ttl := m.TokenTTL
	if ttl == 0 {
		ttl = 15 * time.Minute
	}
	now := time.Now()

	claims := jwt.MapClaims{
		"sub":   username,
		"id":    userID,
		"jti":   uuid.NewString(),
		"iat":   jwt.NewNumericDate(now),
		"exp":   jwt.NewNumericDate(now.Add(ttl)),
		"iss":   m.Issuer,
		"aud":   m.Audience,
		"roles": roles,
	}
	for name, value := range extra {
		if _, taken := claims[name]; taken {
			continue
		}
		claims[name] = value
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.Secret)
	if err != nil {
		return "", 0, err
	}
	return signed, ttl, nil
}

// Parse validates signature, method, expiry, issuer and audience, and
// returns the claims.
func (m JWTManager) Parse(tokenString string) (*AccessClaims, error) {
	options := []jwt.ParserOption{jwt.WithExpirationRequired()}
	if m.Issuer != "" {
		options = append(options, jwt.WithIssuer(m.Issuer))
	}
	if m.Audience != "" {
		options = append(options, jwt.WithAudience(m.Audience))
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &AccessClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.Secret, nil
	}, options...)
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*AccessClaims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
