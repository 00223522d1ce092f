package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/s-fanou/feed/internal/common"
)

// Verifier turns an Authorization header value into verified claims. It is
// shared by the HTTP middleware and the gRPC interceptor.
type Verifier struct {
	codec    *Codec
	denylist Denylist
}

// NewVerifier returns a Verifier. A nil denylist disables revocation checks.
func NewVerifier(codec *Codec, denylist Denylist) *Verifier {
	return &Verifier{codec: codec, denylist: denylist}
}

// Authenticate returns common.ErrMissingAuthHeader for an empty header, one of
// the token errors from Codec.Verify, common.ErrTokenRevoked, or
// common.ErrorUnauthorized when the token names no user.
func (v *Verifier) Authenticate(ctx context.Context, header string) (*Claims, error) {
	if header == "" {
		return nil, common.ErrMissingAuthHeader
	}

	claims, err := v.codec.Verify(bearerToken(header))
	if err != nil {
		return nil, err
	}

	if v.denylist != nil && claims.ID != "" {
		revoked, err := v.denylist.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("denylist lookup: %w", err)
		}
		if revoked {
			return nil, common.ErrTokenRevoked
		}
	}

	if claims.UserID == "" {
		return nil, common.ErrorUnauthorized
	}
	return claims, nil
}

// bearerToken takes the second space-separated part of the header. The
// scheme word itself is not checked.
func bearerToken(header string) string {
	parts := strings.Split(header, " ")
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

var tokenErrors = []error{
	common.ErrTokenMalformed,
	common.ErrInvalidSignature,
	common.ErrTokenExpired,
	common.ErrTokenRevoked,
}

// TokenError returns the token sentinel that err matches, or nil when err is
// not a token verification failure.
func TokenError(err error) error {
	for _, te := range tokenErrors {
		if errors.Is(err, te) {
			return te
		}
	}
	return nil
}
