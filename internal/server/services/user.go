// Package services contains server-side business logic. UserService handles
// signup, login and the session-token lifecycle on top of a users.Repository.
package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/s-fanou/feed/internal/apperr"
	"github.com/s-fanou/feed/internal/common"
	"github.com/s-fanou/feed/internal/logging"
	"github.com/s-fanou/feed/internal/server/auth"
	"github.com/s-fanou/feed/internal/server/models"
	"github.com/s-fanou/feed/internal/server/repositories/users"
	"github.com/s-fanou/feed/internal/server/validation"
)

const (
	MsgValidationFailed   = "Validation failed."
	MsgDuplicateEmail     = "E-Mail address already exists."
	MsgInvalidCredentials = "Invalid email or password."
	MsgNotAuthenticated   = "Not authenticated."
	MsgInternal           = "Internal server error."
)

// LoginResult is what a successful login hands back to the transport.
type LoginResult struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
}

type UserService struct {
	users     users.Repository
	hasher    auth.Hasher
	codec     *auth.Codec
	denylist  auth.Denylist
	validator *validation.Validator
	logger    logging.Logger

	dummyOnce sync.Once
	dummyHash string
}

// NewUserService wires the service. denylist may be nil, in which case
// Logout keeps no state.
func NewUserService(repo users.Repository, hasher auth.Hasher, codec *auth.Codec, denylist auth.Denylist, logger logging.Logger) *UserService {
	return &UserService{
		users:     repo,
		hasher:    hasher,
		codec:     codec,
		denylist:  denylist,
		validator: validation.New(),
		logger:    logger,
	}
}

// Signup validates the input, hashes the password and stores a new user.
// Nothing is hashed or stored when validation fails.
func (s *UserService) Signup(ctx context.Context, in validation.SignupInput) (*models.User, error) {
	if fieldErrs := s.validator.Signup(&in); len(fieldErrs) > 0 {
		return nil, apperr.New(apperr.KindValidationFailed, MsgValidationFailed).WithData(fieldErrs)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, MsgInternal, err)
	}

	u, err := s.users.Create(ctx, &models.User{Email: in.Email, Name: in.Name, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, apperr.Wrap(apperr.KindDuplicateEmail, MsgDuplicateEmail, err)
		}
		return nil, apperr.Wrap(apperr.KindPersistenceFailed, MsgInternal, err)
	}

	s.logger.Info(ctx, "user created", "user_id", u.ID)
	return u, nil
}

// Login checks the credentials and issues a session token. Unknown email and
// wrong password fail with the same kind and message.
func (s *UserService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.burnCompare(password)
			s.logger.Warn(ctx, "login failed", "reason", "unknown email")
			return nil, apperr.New(apperr.KindInvalidCredentials, MsgInvalidCredentials)
		}
		return nil, apperr.Wrap(apperr.KindPersistenceFailed, MsgInternal, err)
	}

	ok, err := s.hasher.Compare(password, u.PasswordHash)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, MsgInternal, err)
	}
	if !ok {
		s.logger.Warn(ctx, "login failed", "reason", "password mismatch", "user_id", u.ID)
		return nil, apperr.New(apperr.KindInvalidCredentials, MsgInvalidCredentials)
	}

	token, claims, err := s.codec.Issue(u.Email, u.ID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, MsgInternal, err)
	}

	s.logger.Info(ctx, "user logged in", "user_id", u.ID)
	return &LoginResult{Token: token, UserID: u.ID, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// burnCompare spends roughly the same time as a real comparison so an
// unknown email is not distinguishable by latency.
func (s *UserService) burnCompare(password string) {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("not-a-real-password")
	})
	if s.dummyHash != "" {
		_, _ = s.hasher.Compare(password, s.dummyHash)
	}
}

// Me loads the user a verified token belongs to.
func (s *UserService) Me(ctx context.Context, userID string) (*models.User, error) {
	u, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, apperr.Wrap(apperr.KindNotAuthenticated, MsgNotAuthenticated, err)
		}
		return nil, apperr.Wrap(apperr.KindPersistenceFailed, MsgInternal, err)
	}
	return u, nil
}

// Logout revokes the token until its own expiry when a denylist is
// configured. Without one it is a no-op and the client drops the token.
func (s *UserService) Logout(ctx context.Context, claims *auth.Claims) error {
	if s.denylist == nil || claims == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	if err := s.denylist.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return apperr.Wrap(apperr.KindInternal, MsgInternal, err)
	}
	s.logger.Info(ctx, "token revoked", "user_id", claims.UserID)
	return nil
}

// RevocationEnabled reports whether Logout keeps state.
func (s *UserService) RevocationEnabled() bool { return s.denylist != nil }
