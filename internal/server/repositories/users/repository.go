// Package users contains the credential store: the Repository contract and
// its Postgres, MongoDB and in-memory implementations.
//
// Implementations report a missing user as common.ErrorNotFound and an email
// collision as common.ErrorAlreadyExists; both are matchable with errors.Is.
package users

import (
	"context"

	"github.com/s-fanou/feed/internal/server/models"
)

type Repository interface {
	// Create stores user, fills in ID and CreatedAt and returns it.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}
