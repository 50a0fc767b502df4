// Package users defines the account directory consumed by the auth and
// user services. Password hashing happens inside this boundary: callers
// hand over raw passwords and never see hashes of other accounts.
package users

import (
	"context"

	"github.com/dmitrijs2005/chathub/internal/server/models"
)

type Repository interface {
	// Create stores a new account. The raw password is hashed before it
	// touches the database. Duplicate emails yield common.ErrDuplicateEmail.
	Create(ctx context.Context, name, email, rawPassword string) (*models.User, error)

	// GetByEmail returns the full record, secrets included, or
	// common.ErrNotFound.
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// GetByID returns the full record, secrets included, or
	// common.ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.User, error)

	// UpdateRefreshToken sets or clears the single refresh-token slot.
	UpdateRefreshToken(ctx context.Context, id string, token *string) error

	// List returns a page of accounts matching search (name or email,
	// case-insensitive) plus the total match count.
	List(ctx context.Context, search string, offset, limit int) ([]*models.User, int64, error)

	// Update changes name and/or email; empty values leave the field as-is.
	Update(ctx context.Context, id, name, email string) (*models.User, error)

	// Delete removes the account or returns common.ErrNotFound.
	Delete(ctx context.Context, id string) error
}
