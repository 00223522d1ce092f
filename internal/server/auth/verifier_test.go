package auth

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/s-fanou/feed/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingDenylist struct{}

func (failingDenylist) Revoke(context.Context, string, time.Time) error { return errors.New("down") }
func (failingDenylist) IsRevoked(context.Context, string) (bool, error) {
	return false, errors.New("down")
}

func TestVerifier_Authenticate(t *testing.T) {
	ctx := context.Background()
	codec := newTestCodec(t0)
	tok, _, err := codec.Issue("a@example.com", "u1")
	require.NoError(t, err)

	v := NewVerifier(codec, nil)

	claims, err := v.Authenticate(ctx, "Bearer "+tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)

	_, err = v.Authenticate(ctx, "")
	assert.ErrorIs(t, err, common.ErrMissingAuthHeader)

	_, err = v.Authenticate(ctx, "Bearer")
	assert.ErrorIs(t, err, common.ErrTokenMalformed)

	_, err = v.Authenticate(ctx, "Bearer garbage")
	assert.ErrorIs(t, err, common.ErrTokenMalformed)
}

func TestVerifier_EmptyUserID(t *testing.T) {
	codec := newTestCodec(t0)
	tok, _, err := codec.Issue("a@example.com", "")
	require.NoError(t, err)

	_, err = NewVerifier(codec, nil).Authenticate(context.Background(), "Bearer "+tok)
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestVerifier_Revoked(t *testing.T) {
	ctx := context.Background()
	codec := newTestCodec(t0)
	deny := NewMemoryDenylist()
	deny.now = fixedClock(t0)
	v := NewVerifier(codec, deny)

	tok, claims, err := codec.Issue("a@example.com", "u1")
	require.NoError(t, err)

	_, err = v.Authenticate(ctx, "Bearer "+tok)
	require.NoError(t, err)

	require.NoError(t, deny.Revoke(ctx, claims.ID, claims.ExpiresAt.Time))
	_, err = v.Authenticate(ctx, "Bearer "+tok)
	assert.ErrorIs(t, err, common.ErrTokenRevoked)
}

func TestVerifier_DenylistFailure(t *testing.T) {
	codec := newTestCodec(t0)
	tok, _, _ := codec.Issue("a@example.com", "u1")

	_, err := NewVerifier(codec, failingDenylist{}).Authenticate(context.Background(), "Bearer "+tok)
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrTokenRevoked)
}

func TestTokenError(t *testing.T) {
	assert.Equal(t, common.ErrTokenExpired, TokenError(fmt.Errorf("wrapped: %w", common.ErrTokenExpired)))
	assert.Equal(t, common.ErrTokenRevoked, TokenError(common.ErrTokenRevoked))
	assert.Nil(t, TokenError(common.ErrMissingAuthHeader))
	assert.Nil(t, TokenError(errors.New("other")))
}
