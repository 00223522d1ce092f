package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/s-fanou/feed/internal/common"
)

// Claims is the payload of a session token.
type Claims struct {
	Email  string `json:"email"`
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// Keyring holds the signing key and any keys still accepted for
// verification after a rotation. Tokens carry the key id in the kid header.
type Keyring struct {
	ActiveID string
	Active   []byte
	Previous map[string][]byte
}

// NewKeyring builds a Keyring from string secrets as they come out of config.
func NewKeyring(activeID, secret string, previous map[string]string) Keyring {
	k := Keyring{ActiveID: activeID, Active: []byte(secret), Previous: make(map[string][]byte, len(previous))}
	for id, s := range previous {
		k.Previous[id] = []byte(s)
	}
	return k
}

func (k Keyring) lookup(kid string) ([]byte, bool) {
	if kid == k.ActiveID {
		return k.Active, true
	}
	key, ok := k.Previous[kid]
	return key, ok
}

var errUnknownKey = errors.New("unknown signing key")

type Option func(*Codec)

// WithClock replaces time.Now for both issuing and verifying.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) { c.now = now }
}

// Codec issues and verifies HS256 session tokens.
type Codec struct {
	keys Keyring
	ttl  time.Duration
	now  func() time.Time
}

func NewCodec(keys Keyring, ttl time.Duration, opts ...Option) *Codec {
	c := &Codec{keys: keys, ttl: ttl, now: time.Now}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Codec) TTL() time.Duration { return c.ttl }

// Issue signs a token for the user with the active key. The returned claims
// are the ones embedded in the token.
func (c *Codec) Issue(email, userID string) (string, *Claims, error) {
	now := c.now()
	claims := &Claims{
		Email:  email,
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token.Header["kid"] = c.keys.ActiveID

	signed, err := token.SignedString(c.keys.Active)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return signed, claims, nil
}

// Verify checks signature and expiry and returns the embedded claims.
// Failures are one of common.ErrTokenMalformed, common.ErrInvalidSignature
// or common.ErrTokenExpired.
func (c *Codec) Verify(tokenString string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
	)

	claims := &Claims{}
	_, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		key, ok := c.keys.lookup(kid)
		if !ok {
			return nil, errUnknownKey
		}
		return key, nil
	})
	if err != nil {
		return nil, mapTokenError(err)
	}
	return claims, nil
}

func mapTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return common.ErrTokenMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return common.ErrInvalidSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return common.ErrTokenExpired
	default:
		return fmt.Errorf("%w: %v", common.ErrTokenMalformed, err)
	}
}
