// Package services contains server-side business logic. This file implements
// AuthService, which owns the register/login/refresh/logout lifecycle and
// the access/refresh token rotation protocol.
package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/dmitrijs2005/chathub/internal/common"
	"github.com/dmitrijs2005/chathub/internal/dbx"
	"github.com/dmitrijs2005/chathub/internal/server/auth"
	"github.com/dmitrijs2005/chathub/internal/server/config"
	"github.com/dmitrijs2005/chathub/internal/server/models"
	"github.com/dmitrijs2005/chathub/internal/server/repositories/repomanager"
)

// AuthResult bundles the account with a freshly minted token pair.
type AuthResult struct {
	User         *models.User
	AccessToken  string
	RefreshToken string
}

// AuthService provides authentication-related operations:
//   - Register: create an account and mint the first token pair
//   - Login: verify credentials, mint tokens, rotate the refresh slot
//   - Refresh: exchange a valid refresh token for a new access token
//   - Logout: clear the refresh slot (idempotent)
//   - Authenticate: the bearer gate used by protected endpoints
type AuthService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	tokens      *auth.TokenService
	verifier    auth.PasswordVerifier
}

// NewAuthService constructs an AuthService from repositories and server config.
func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, verifier auth.PasswordVerifier, cfg *config.Config) *AuthService {
	tokens := auth.NewTokenService([]byte(cfg.SecretKey), cfg.AccessTokenValidityDuration, cfg.RefreshTokenValidityDuration)
	return &AuthService{db: db, repomanager: m, tokens: tokens, verifier: verifier}
}

// Tokens exposes the token service for introspection endpoints.
func (s *AuthService) Tokens() *auth.TokenService { return s.tokens }

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an account and returns it with a token pair. The refresh
// token persisted on the account is the same string handed back to the
// caller. Duplicate emails yield common.ErrDuplicateEmail.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return nil, common.ErrValidation
	}

	var result *AuthResult
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		user, err := repo.Create(ctx, name, email, password)
		if err != nil {
			return err
		}

		result, err = s.issueTokens(ctx, tx, user)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrDuplicateEmail) {
			return nil, common.ErrDuplicateEmail
		}
		return nil, common.ErrInternal
	}

	return result, nil
}

// Login verifies the credentials and, on success, mints a fresh token pair,
// overwriting the stored refresh token. A previously issued refresh token
// stops working at that instant. Missing accounts and wrong passwords both
// come back as common.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, common.ErrInternal
	}

	if !s.verifier.Matches(password, user.PasswordHash) {
		return nil, common.ErrInvalidCredentials
	}

	var result *AuthResult
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var issueErr error
		result, issueErr = s.issueTokens(ctx, tx, user)
		return issueErr
	})
	if err != nil {
		return nil, common.ErrInternal
	}

	return result, nil
}

// Refresh validates a refresh token and mints a new access token. The
// refresh token itself is not rotated here; only Login replaces it. A token
// that verifies but no longer matches the stored slot (already rotated out)
// yields common.ErrTokenMismatch.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", common.ErrMissingToken
	}

	payload, err := s.tokens.Verify(refreshToken, auth.KindRefresh)
	if err != nil {
		return "", common.ErrInvalidToken
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByID(ctx, payload.UserID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", common.ErrInvalidToken
		}
		return "", common.ErrInternal
	}

	if user.RefreshToken == nil || *user.RefreshToken != refreshToken {
		return "", common.ErrTokenMismatch
	}

	accessToken, err := s.tokens.IssueAccess(user.ID, user.Email)
	if err != nil {
		return "", common.ErrInternal
	}

	return accessToken, nil
}

// Logout clears the stored refresh token. Calling it again is a no-op with
// the same outcome.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	repo := s.repomanager.Users(s.db)
	if err := repo.UpdateRefreshToken(ctx, userID, nil); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrNotFound
		}
		return common.ErrInternal
	}
	return nil
}

// GetProfile returns the account for an authenticated subject.
func (s *AuthService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, common.ErrInternal
	}
	return user, nil
}

// Authenticate is the bearer gate: it takes the raw Authorization header
// value and yields the verified identity. Failures map to the token
// taxonomy, never to partial data.
func (s *AuthService) Authenticate(ctx context.Context, authorizationHeader string) (*auth.Payload, error) {
	if !strings.HasPrefix(authorizationHeader, common.BearerSchemePrefix) {
		return nil, common.ErrMissingToken
	}
	tokenString := strings.TrimPrefix(authorizationHeader, common.BearerSchemePrefix)
	if tokenString == "" {
		return nil, common.ErrMissingToken
	}

	payload, err := s.tokens.Verify(tokenString, auth.KindAccess)
	if err != nil {
		return nil, common.ErrInvalidToken
	}

	// the subject must still resolve in the directory
	repo := s.repomanager.Users(s.db)
	if _, err := repo.GetByID(ctx, payload.UserID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, common.ErrInternal
	}

	return payload, nil
}

// issueTokens mints a pair for the user and persists the refresh token onto
// the account through the given handle.
func (s *AuthService) issueTokens(ctx context.Context, tx dbx.DBTX, user *models.User) (*AuthResult, error) {
	accessToken, err := s.tokens.IssueAccess(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.tokens.IssueRefresh(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	repo := s.repomanager.Users(tx)
	if err := repo.UpdateRefreshToken(ctx, user.ID, &refreshToken); err != nil {
		return nil, err
	}
	user.RefreshToken = &refreshToken

	return &AuthResult{User: user, AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
