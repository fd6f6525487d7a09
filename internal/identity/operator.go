package identity

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ScopeCustodyWrite allows registering components and appending custody events.
const ScopeCustodyWrite = "custody:write"

// DefaultIssuer is the "iss" claim used when none is configured.
const DefaultIssuer = "custody-registry"

// OperatorClaims are the JWT claims carried by an operator bearer token.
type OperatorClaims struct {
	jwt.RegisteredClaims
	Scopes []string `json:"scopes"`
}

// HasScope reports whether the claims grant scope.
func (c *OperatorClaims) HasScope(scope string) bool {
	for _, s := range c.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// OperatorIssuer issues and verifies HS256 operator tokens from a shared secret.
type OperatorIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewOperatorIssuer creates an OperatorIssuer. ttl defaults to 12 hours.
func NewOperatorIssuer(secret, issuer string, ttl time.Duration) (*OperatorIssuer, error) {
	if len(secret) < 16 {
		return nil, errors.New("operator secret must be at least 16 bytes")
	}
	if issuer == "" {
		issuer = DefaultIssuer
	}
	if ttl == 0 {
		ttl = 12 * time.Hour
	}
	return &OperatorIssuer{secret: []byte(secret), issuer: issuer, ttl: ttl, now: time.Now}, nil
}

// Issue signs a token for operator with the given scopes.
func (o *OperatorIssuer) Issue(operator string, scopes []string) (string, error) {
	if operator == "" {
		return "", errors.New("operator name is required")
	}
	now := o.now().UTC()
	claims := OperatorClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    o.issuer,
			Subject:   operator,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(o.ttl)),
			ID:        uuid.NewString(),
		},
		Scopes: scopes,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(o.secret)
	if err != nil {
		return "", fmt.Errorf("sign operator token: %w", err)
	}
	return signed, nil
}

// Verify parses tokenStr and returns its claims when the signature, issuer and
// expiry are all valid.
func (o *OperatorIssuer) Verify(tokenStr string) (*OperatorClaims, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&OperatorClaims{},
		func(tok *jwt.Token) (any, error) {
			if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", tok.Header["alg"])
			}
			return o.secret, nil
		},
		jwt.WithIssuer(o.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(o.now),
	)
	if err != nil {
		return nil, fmt.Errorf("verify operator token: %w", err)
	}
	claims, ok := token.Claims.(*OperatorClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid operator token claims")
	}
	return claims, nil
}

// TTL returns the configured token lifetime.
func (o *OperatorIssuer) TTL() time.Duration { return o.ttl }
