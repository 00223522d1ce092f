package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/s-fanou/feed/internal/apperr"
	"github.com/s-fanou/feed/internal/common"
	"github.com/s-fanou/feed/internal/logging"
	"github.com/s-fanou/feed/internal/server/auth"
	"github.com/s-fanou/feed/internal/server/models"
	"github.com/s-fanou/feed/internal/server/repositories/users"
	"github.com/s-fanou/feed/internal/server/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- fakes ---

type fakeHasher struct {
	hashCalls    int
	compareCalls int
	hashErr      error
}

func (h *fakeHasher) Hash(plain string) (string, error) {
	h.hashCalls++
	if h.hashErr != nil {
		return "", h.hashErr
	}
	return "hashed:" + plain, nil
}

func (h *fakeHasher) Compare(plain, hash string) (bool, error) {
	h.compareCalls++
	if !strings.HasPrefix(hash, "hashed:") {
		return false, errors.New("bad hash")
	}
	return "hashed:"+plain == hash, nil
}

type fakeUsersRepo struct {
	createErr error
	getErr    error
	created   []*models.User
	byEmail   map[string]*models.User
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	cp := *u
	cp.ID = "u-1"
	f.created = append(f.created, &cp)
	return &cp, nil
}

func (f *fakeUsersRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, common.ErrorNotFound
}

type failingDenylist struct{}

func (failingDenylist) Revoke(context.Context, string, time.Time) error { return errors.New("down") }
func (failingDenylist) IsRevoked(context.Context, string) (bool, error) { return false, nil }

// --- helpers ---

var now = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

func newCodec() *auth.Codec {
	return auth.NewCodec(auth.NewKeyring("k1", "secret", nil), time.Hour, auth.WithClock(func() time.Time { return now }))
}

func newService(repo users.Repository, h auth.Hasher, deny auth.Denylist) *UserService {
	return NewUserService(repo, h, newCodec(), deny, logging.Nop{})
}

func requireKind(t *testing.T, err error, kind apperr.Kind) *apperr.Error {
	t.Helper()
	ae, ok := apperr.As(err)
	require.True(t, ok, "expected *apperr.Error, got %v", err)
	require.Equal(t, kind, ae.Kind)
	return ae
}

// --- Signup ---

func TestSignup_Success(t *testing.T) {
	repo := &fakeUsersRepo{}
	h := &fakeHasher{}
	s := newService(repo, h, nil)

	u, err := s.Signup(context.Background(), validation.SignupInput{Email: " Alice@Example.com", Name: "Alice", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, "u-1", u.ID)

	require.Len(t, repo.created, 1)
	assert.Equal(t, "alice@example.com", repo.created[0].Email)
	assert.Equal(t, "hashed:password123", repo.created[0].PasswordHash)
	assert.NotEqual(t, "password123", repo.created[0].PasswordHash)
}

func TestSignup_ValidationFailed(t *testing.T) {
	repo := &fakeUsersRepo{}
	h := &fakeHasher{}
	s := newService(repo, h, nil)

	_, err := s.Signup(context.Background(), validation.SignupInput{Email: "not-an-email", Name: "A", Password: "password"})

	ae := requireKind(t, err, apperr.KindValidationFailed)
	assert.Equal(t, MsgValidationFailed, ae.Message)
	assert.Equal(t, 422, ae.Status())
	fieldErrs, ok := ae.Data.([]validation.FieldError)
	require.True(t, ok)
	require.Len(t, fieldErrs, 1)
	assert.Equal(t, "email", fieldErrs[0].Param)

	assert.Zero(t, h.hashCalls, "nothing is hashed on validation failure")
	assert.Empty(t, repo.created, "nothing is stored on validation failure")
}

func TestSignup_DuplicateEmail(t *testing.T) {
	repo := &fakeUsersRepo{createErr: common.ErrorAlreadyExists}
	s := newService(repo, &fakeHasher{}, nil)

	_, err := s.Signup(context.Background(), validation.SignupInput{Email: "a@example.com", Name: "A", Password: "password"})

	ae := requireKind(t, err, apperr.KindDuplicateEmail)
	assert.Equal(t, 409, ae.Status())
}

func TestSignup_StoreFailure(t *testing.T) {
	repo := &fakeUsersRepo{createErr: errors.New("db down")}
	s := newService(repo, &fakeHasher{}, nil)

	_, err := s.Signup(context.Background(), validation.SignupInput{Email: "a@example.com", Name: "A", Password: "password"})

	ae := requireKind(t, err, apperr.KindPersistenceFailed)
	assert.Equal(t, 500, ae.Status())
	assert.Equal(t, MsgInternal, ae.Message)
}

func TestSignup_HashFailure(t *testing.T) {
	repo := &fakeUsersRepo{}
	s := newService(repo, &fakeHasher{hashErr: errors.New("boom")}, nil)

	_, err := s.Signup(context.Background(), validation.SignupInput{Email: "a@example.com", Name: "A", Password: "password"})

	requireKind(t, err, apperr.KindInternal)
	assert.Empty(t, repo.created)
}

// --- Login ---

func seededRepo() *fakeUsersRepo {
	return &fakeUsersRepo{byEmail: map[string]*models.User{
		"alice@example.com": {ID: "u-1", Email: "alice@example.com", Name: "Alice", PasswordHash: "hashed:password123"},
	}}
}

func TestLogin_Success(t *testing.T) {
	s := newService(seededRepo(), &fakeHasher{}, nil)

	res, err := s.Login(context.Background(), "Alice@example.com ", "password123")
	require.NoError(t, err)
	assert.Equal(t, "u-1", res.UserID)
	assert.Equal(t, now.Add(time.Hour), res.ExpiresAt)

	claims, err := newCodec().Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	h := &fakeHasher{}
	s := newService(seededRepo(), h, nil)

	_, errUnknown := s.Login(context.Background(), "ghost@example.com", "password123")
	_, errWrong := s.Login(context.Background(), "alice@example.com", "wrong")

	a := requireKind(t, errUnknown, apperr.KindInvalidCredentials)
	b := requireKind(t, errWrong, apperr.KindInvalidCredentials)
	assert.Equal(t, a.Message, b.Message)
	assert.Equal(t, MsgInvalidCredentials, a.Message)
	assert.Equal(t, 401, a.Status())

	// the unknown-email path still pays for a comparison
	assert.Equal(t, 2, h.compareCalls)
}

func TestLogin_StoreFailure(t *testing.T) {
	repo := seededRepo()
	repo.getErr = errors.New("db down")
	s := newService(repo, &fakeHasher{}, nil)

	_, err := s.Login(context.Background(), "alice@example.com", "password123")
	requireKind(t, err, apperr.KindPersistenceFailed)
}

func TestLogin_CorruptStoredHash(t *testing.T) {
	repo := seededRepo()
	repo.byEmail["alice@example.com"].PasswordHash = "garbage"
	s := newService(repo, &fakeHasher{}, nil)

	_, err := s.Login(context.Background(), "alice@example.com", "password123")
	requireKind(t, err, apperr.KindInternal)
}

// --- Me / Logout ---

func TestMe(t *testing.T) {
	s := newService(seededRepo(), &fakeHasher{}, nil)

	u, err := s.Me(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", u.Name)

	_, err = s.Me(context.Background(), "u-404")
	requireKind(t, err, apperr.KindNotAuthenticated)

	repo := seededRepo()
	repo.getErr = errors.New("db down")
	_, err = newService(repo, &fakeHasher{}, nil).Me(context.Background(), "u-1")
	requireKind(t, err, apperr.KindPersistenceFailed)
}

func TestLogout_Stateless(t *testing.T) {
	s := newService(seededRepo(), &fakeHasher{}, nil)
	assert.False(t, s.RevocationEnabled())

	_, claims, err := newCodec().Issue("alice@example.com", "u-1")
	require.NoError(t, err)
	assert.NoError(t, s.Logout(context.Background(), claims))
}

func TestLogout_Revokes(t *testing.T) {
	ctx := context.Background()
	deny := auth.NewMemoryDenylist()
	s := newService(seededRepo(), &fakeHasher{}, deny)
	assert.True(t, s.RevocationEnabled())

	_, claims, err := newCodec().Issue("alice@example.com", "u-1")
	require.NoError(t, err)
	claims.ExpiresAt.Time = time.Now().Add(time.Hour)

	require.NoError(t, s.Logout(ctx, claims))
	revoked, err := deny.IsRevoked(ctx, claims.ID)
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestLogout_DenylistFailure(t *testing.T) {
	s := newService(seededRepo(), &fakeHasher{}, failingDenylist{})

	_, claims, _ := newCodec().Issue("alice@example.com", "u-1")
	requireKind(t, s.Logout(context.Background(), claims), apperr.KindInternal)
}
