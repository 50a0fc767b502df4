package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/dmitrijs2005/chathub/internal/common"
	"github.com/dmitrijs2005/chathub/internal/server/models"
	"github.com/dmitrijs2005/chathub/internal/server/repositories/repomanager"
)

// UserPage is one page of the user directory plus pagination totals.
type UserPage struct {
	Users      []*models.User
	Page       int
	Limit      int
	Total      int64
	TotalPages int
}

// UserService exposes the thin directory surface: paginated listing and
// per-account read/update/delete.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager) *UserService {
	return &UserService{db: db, repomanager: m}
}

// List returns a page of accounts filtered by search (name or email).
// Page and limit are clamped to sane values.
func (s *UserService) List(ctx context.Context, search string, page, limit int) (*UserPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	repo := s.repomanager.Users(s.db)
	users, total, err := repo.List(ctx, search, (page-1)*limit, limit)
	if err != nil {
		return nil, common.ErrInternal
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))

	return &UserPage{Users: users, Page: page, Limit: limit, Total: total, TotalPages: totalPages}, nil
}

// Get returns a single account or common.ErrNotFound.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, common.ErrInternal
	}
	return user, nil
}

// Update changes name and/or email. Email uniqueness is enforced at the
// directory boundary; a clash yields common.ErrDuplicateEmail.
func (s *UserService) Update(ctx context.Context, id, name, email string) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" && email == "" {
		return nil, common.ErrValidation
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.Update(ctx, id, name, email)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrNotFound):
			return nil, common.ErrNotFound
		case errors.Is(err, common.ErrDuplicateEmail):
			return nil, common.ErrDuplicateEmail
		default:
			return nil, common.ErrInternal
		}
	}
	return user, nil
}

// Delete removes an account.
func (s *UserService) Delete(ctx context.Context, id string) error {
	repo := s.repomanager.Users(s.db)
	if err := repo.Delete(ctx, id); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrNotFound
		}
		return common.ErrInternal
	}
	return nil
}
