// Package auth implements credential hashing and bearer-token
// issuance/verification. Tokens are self-contained HMAC-SHA256 JWTs, so
// verification is a pure computation with no store round trip. There is
// no revocation: a correctly signed token is accepted until it expires.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/DivyanshChaudhary0/Virtual-Study-Group-Platform/internal/domain"
)

// Claims are the assertions carried by a session token. The subject is
// the user ID; the email is included for display purposes only and is
// never used for lookups during resolution.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// TokenService issues and verifies signed session tokens. The signing
// secret and TTL come from configuration; there is no package-level
// state.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService with the given signing secret
// and token lifetime.
func NewTokenService(secret []byte, ttl time.Duration) *TokenService {
	return &TokenService{secret: secret, ttl: ttl}
}

// Issue produces a signed token for the user, valid for the configured TTL.
func (s *TokenService) Issue(user *domain.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Email: user.Email,
	})
	return token.SignedString(s.secret)
}

// Verify parses and validates a token, returning its claims. Failures
// are reported as exactly one of domain.ErrTokenMalformed,
// domain.ErrTokenSignatureInvalid, or domain.ErrTokenExpired, checked in
// that order so a tampered token is never reported as merely expired.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, domain.ErrTokenMalformed
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, domain.ErrTokenSignatureInvalid
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, domain.ErrTokenExpired
		default:
			return nil, domain.ErrTokenMalformed
		}
	}
	if !token.Valid || claims.Subject == "" {
		return nil, domain.ErrTokenMalformed
	}
	return claims, nil
}
