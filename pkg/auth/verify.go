package auth

import (
	"errors"
	"fmt"

	"github.com/cuemby/syncd/pkg/types"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// ErrAuthFailed is returned for any parse error, signature mismatch, or
// expired token. Callers must not distinguish further — the wire protocol
// exposes only "denied", never a reason.
var ErrAuthFailed = errors.New("auth failed")

// Verifier checks HS256 bearer tokens against a single secret provisioned
// once at process start.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify parses token, checks its signature and expiry, and returns the
// Principal named by its "sub" claim.
func (v *Verifier) Verify(token string) (types.Principal, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !parsed.Valid {
		return types.Principal{}, ErrAuthFailed
	}

	if claims.ExpiresAt == nil {
		return types.Principal{}, ErrAuthFailed
	}

	sub, err := uuid.Parse(claims.Subject)
	if err != nil {
		return types.Principal{}, ErrAuthFailed
	}

	return types.Principal{ID: sub.String()}, nil
}
