package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/chathub/internal/common"
	"github.com/dmitrijs2005/chathub/internal/dbx"
	"github.com/dmitrijs2005/chathub/internal/server/auth"
	"github.com/dmitrijs2005/chathub/internal/server/config"
	"github.com/dmitrijs2005/chathub/internal/server/models"
	filesrepo "github.com/dmitrijs2005/chathub/internal/server/repositories/files"
	usersrepo "github.com/dmitrijs2005/chathub/internal/server/repositories/users"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:                    "k",
		AccessTokenValidityDuration:  time.Hour,
		RefreshTokenValidityDuration: 2 * time.Hour,
	}
}

type fakeUsersRepo struct {
	createOut *models.User
	createErr error

	byEmailOut *models.User
	byEmailErr error

	byIDOut *models.User
	byIDErr error

	updateTokenErr   error
	updateTokenCalls []*string

	listOut             []*models.User
	listTotal           int64
	listErr             error
	gotOffset, gotLimit int

	updateOut *models.User
	updateErr error

	deleteErr error
}

func (f *fakeUsersRepo) Create(ctx context.Context, name, email, rawPassword string) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.createOut, nil
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.byEmailErr != nil {
		return nil, f.byEmailErr
	}
	return f.byEmailOut, nil
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	if f.byIDErr != nil {
		return nil, f.byIDErr
	}
	return f.byIDOut, nil
}

func (f *fakeUsersRepo) UpdateRefreshToken(ctx context.Context, id string, token *string) error {
	if f.updateTokenErr != nil {
		return f.updateTokenErr
	}
	f.updateTokenCalls = append(f.updateTokenCalls, token)
	return nil
}

func (f *fakeUsersRepo) List(ctx context.Context, search string, offset, limit int) ([]*models.User, int64, error) {
	f.gotOffset, f.gotLimit = offset, limit
	if f.listErr != nil {
		return nil, 0, f.listErr
	}
	return f.listOut, f.listTotal, nil
}

func (f *fakeUsersRepo) Update(ctx context.Context, id, name, email string) (*models.User, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return f.updateOut, nil
}

func (f *fakeUsersRepo) Delete(ctx context.Context, id string) error { return f.deleteErr }

type fakeRepoManager struct {
	u *fakeUsersRepo
	f filesrepo.Repository
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository       { return m.u }
func (m *fakeRepoManager) Files(db dbx.DBTX) filesrepo.Repository       { return m.f }

type fakeVerifier struct{ ok bool }

func (f fakeVerifier) Matches(raw, storedHash string) bool { return f.ok }

func newAuthService(t *testing.T, db *sql.DB, u *fakeUsersRepo, ok bool) *AuthService {
	t.Helper()
	return NewAuthService(db, &fakeRepoManager{u: u}, fakeVerifier{ok: ok}, testConfig())
}

// --- Register ---

func TestRegister_Success(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectCommit()

	u := &fakeUsersRepo{createOut: &models.User{ID: "u1", Name: "Ana", Email: "ana@x.com"}}
	s := newAuthService(t, db, u, true)

	res, err := s.Register(context.Background(), "Ana", "Ana@X.com ", "secret1")
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if res.AccessToken == "" || res.RefreshToken == "" {
		t.Fatalf("empty tokens: %+v", res)
	}

	// the persisted refresh token is byte-identical to the returned one
	if len(u.updateTokenCalls) != 1 || u.updateTokenCalls[0] == nil || *u.updateTokenCalls[0] != res.RefreshToken {
		t.Fatalf("stored refresh token does not match returned one")
	}

	// both tokens resolve to the same subject
	ap, err := s.Tokens().Verify(res.AccessToken, auth.KindAccess)
	if err != nil {
		t.Fatalf("access verify: %v", err)
	}
	rp, err := s.Tokens().Verify(res.RefreshToken, auth.KindRefresh)
	if err != nil {
		t.Fatalf("refresh verify: %v", err)
	}
	if ap.UserID != "u1" || rp.UserID != "u1" {
		t.Fatalf("subject mismatch: %+v %+v", ap, rp)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectRollback()

	u := &fakeUsersRepo{createErr: common.ErrDuplicateEmail}
	s := newAuthService(t, db, u, true)

	_, err := s.Register(context.Background(), "Ana", "ana@x.com", "secret1")
	if !errors.Is(err, common.ErrDuplicateEmail) {
		t.Fatalf("want ErrDuplicateEmail, got %v", err)
	}
}

func TestRegister_Validation(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	s := newAuthService(t, db, &fakeUsersRepo{}, true)

	for _, in := range [][3]string{
		{"", "a@x.com", "p"},
		{"Ana", "", "p"},
		{"Ana", "a@x.com", ""},
	} {
		if _, err := s.Register(context.Background(), in[0], in[1], in[2]); !errors.Is(err, common.ErrValidation) {
			t.Fatalf("want ErrValidation for %v, got %v", in, err)
		}
	}
}

// --- Login ---

func TestLogin_Success_RotatesRefresh(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectCommit()

	old := "old-refresh"
	u := &fakeUsersRepo{byEmailOut: &models.User{ID: "u1", Email: "ana@x.com", PasswordHash: "h", RefreshToken: &old}}
	s := newAuthService(t, db, u, true)

	res, err := s.Login(context.Background(), "ANA@x.com", "secret1")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if res.RefreshToken == old {
		t.Fatalf("refresh token was not rotated")
	}
	if len(u.updateTokenCalls) != 1 || *u.updateTokenCalls[0] != res.RefreshToken {
		t.Fatalf("rotated token not persisted")
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	u := &fakeUsersRepo{byEmailErr: common.ErrNotFound}
	s := newAuthService(t, db, u, true)

	_, err := s.Login(context.Background(), "ghost@x.com", "p")
	if !errors.Is(err, common.ErrInvalidCredentials) {
		t.Fatalf("want ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	u := &fakeUsersRepo{byEmailOut: &models.User{ID: "u1", Email: "ana@x.com", PasswordHash: "h"}}
	s := newAuthService(t, db, u, false)

	_, err := s.Login(context.Background(), "ana@x.com", "wrong")
	if !errors.Is(err, common.ErrInvalidCredentials) {
		t.Fatalf("want ErrInvalidCredentials, got %v", err)
	}
}

// --- Refresh ---

func TestRefresh_Success_DoesNotRotate(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	u := &fakeUsersRepo{}
	s := newAuthService(t, db, u, true)

	refresh, err := s.Tokens().IssueRefresh("u1", "ana@x.com")
	if err != nil {
		t.Fatalf("issue refresh: %v", err)
	}
	u.byIDOut = &models.User{ID: "u1", Email: "ana@x.com", RefreshToken: &refresh}

	access, err := s.Refresh(context.Background(), refresh)
	if err != nil {
		t.Fatalf("Refresh error: %v", err)
	}

	p, err := s.Tokens().Verify(access, auth.KindAccess)
	if err != nil || p.UserID != "u1" {
		t.Fatalf("new access token invalid: %v %+v", err, p)
	}

	// asymmetric rotation: the stored refresh token stays untouched
	if len(u.updateTokenCalls) != 0 {
		t.Fatalf("refresh flow must not touch the stored token")
	}
}

func TestRefresh_Missing(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	s := newAuthService(t, db, &fakeUsersRepo{}, true)
	if _, err := s.Refresh(context.Background(), ""); !errors.Is(err, common.ErrMissingToken) {
		t.Fatalf("want ErrMissingToken, got %v", err)
	}
}

func TestRefresh_InvalidToken(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	s := newAuthService(t, db, &fakeUsersRepo{}, true)

	// access token presented where a refresh token is required
	access, err := s.Tokens().IssueAccess("u1", "ana@x.com")
	if err != nil {
		t.Fatalf("issue access: %v", err)
	}
	if _, err := s.Refresh(context.Background(), access); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("want ErrInvalidToken, got %v", err)
	}

	if _, err := s.Refresh(context.Background(), "garbage"); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("want ErrInvalidToken for garbage, got %v", err)
	}
}

func TestRefresh_AccountGone(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	u := &fakeUsersRepo{byIDErr: common.ErrNotFound}
	s := newAuthService(t, db, u, true)

	refresh, _ := s.Tokens().IssueRefresh("u1", "ana@x.com")
	if _, err := s.Refresh(context.Background(), refresh); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("want ErrInvalidToken, got %v", err)
	}
}

func TestRefresh_RotatedOutToken(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	u := &fakeUsersRepo{}
	s := newAuthService(t, db, u, true)

	stale, _ := s.Tokens().IssueRefresh("u1", "ana@x.com")
	time.Sleep(1100 * time.Millisecond) // force a different iat
	current, _ := s.Tokens().IssueRefresh("u1", "ana@x.com")
	u.byIDOut = &models.User{ID: "u1", Email: "ana@x.com", RefreshToken: &current}

	if _, err := s.Refresh(context.Background(), stale); !errors.Is(err, common.ErrTokenMismatch) {
		t.Fatalf("want ErrTokenMismatch, got %v", err)
	}
}

func TestRefresh_ClearedSlot(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	u := &fakeUsersRepo{}
	s := newAuthService(t, db, u, true)

	refresh, _ := s.Tokens().IssueRefresh("u1", "ana@x.com")
	u.byIDOut = &models.User{ID: "u1", Email: "ana@x.com"} // logged out

	if _, err := s.Refresh(context.Background(), refresh); !errors.Is(err, common.ErrTokenMismatch) {
		t.Fatalf("want ErrTokenMismatch, got %v", err)
	}
}

// --- Logout ---

func TestLogout_Idempotent(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	u := &fakeUsersRepo{}
	s := newAuthService(t, db, u, true)

	if err := s.Logout(context.Background(), "u1"); err != nil {
		t.Fatalf("first Logout error: %v", err)
	}
	if err := s.Logout(context.Background(), "u1"); err != nil {
		t.Fatalf("second Logout error: %v", err)
	}
	for _, call := range u.updateTokenCalls {
		if call != nil {
			t.Fatalf("logout must clear the slot, got %v", *call)
		}
	}
}

// --- Authenticate ---

func TestAuthenticate(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	u := &fakeUsersRepo{byIDOut: &models.User{ID: "u1", Email: "ana@x.com"}}
	s := newAuthService(t, db, u, true)

	access, err := s.Tokens().IssueAccess("u1", "ana@x.com")
	if err != nil {
		t.Fatalf("issue access: %v", err)
	}

	p, err := s.Authenticate(context.Background(), "Bearer "+access)
	if err != nil {
		t.Fatalf("Authenticate error: %v", err)
	}
	if p.UserID != "u1" || p.Email != "ana@x.com" {
		t.Fatalf("unexpected payload: %+v", p)
	}
}

func TestAuthenticate_Failures(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	u := &fakeUsersRepo{byIDErr: common.ErrNotFound}
	s := newAuthService(t, db, u, true)

	access, _ := s.Tokens().IssueAccess("u1", "ana@x.com")

	tests := []struct {
		name   string
		header string
		want   error
	}{
		{name: "no header", header: "", want: common.ErrMissingToken},
		{name: "wrong scheme", header: "Basic abc", want: common.ErrMissingToken},
		{name: "empty token", header: "Bearer ", want: common.ErrMissingToken},
		{name: "bad token", header: "Bearer garbage", want: common.ErrInvalidToken},
		{name: "account gone", header: "Bearer " + access, want: common.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Authenticate(context.Background(), tt.header)
			if !errors.Is(err, tt.want) {
				t.Fatalf("want %v, got %v", tt.want, err)
			}
		})
	}
}
