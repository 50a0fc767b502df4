package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/chathub/internal/common"
	"github.com/dmitrijs2005/chathub/internal/dbx"
	"github.com/dmitrijs2005/chathub/internal/server/auth"
	"github.com/dmitrijs2005/chathub/internal/server/models"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = "id, name, email, password_hash, refresh_token, created_at, updated_at"

func scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	var refresh sql.NullString
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &refresh, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if refresh.Valid {
		user.RefreshToken = &refresh.String
	}
	return user, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

func (r *PostgresRepository) Create(ctx context.Context, name, email, rawPassword string) (*models.User, error) {
	hash, err := auth.HashPassword(rawPassword)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	query :=
		`INSERT INTO users (name, email, password_hash)
		 VALUES ($1, $2, $3)
		 RETURNING ` + userColumns

	user, err := scanUser(r.db.QueryRowContext(ctx, query, name, email, hash))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, common.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) UpdateRefreshToken(ctx context.Context, id string, token *string) error {
	query :=
		`UPDATE users SET refresh_token = $2, updated_at = now()
		 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id, token)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}

	return nil
}

func (r *PostgresRepository) List(ctx context.Context, search string, offset, limit int) ([]*models.User, int64, error) {
	pattern := "%" + search + "%"

	var total int64
	countQuery := `SELECT count(*) FROM users WHERE name ILIKE $1 OR email ILIKE $1`
	if err := r.db.QueryRowContext(ctx, countQuery, pattern).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	query :=
		`SELECT ` + userColumns + ` FROM users
		 WHERE name ILIKE $1 OR email ILIKE $1
		 ORDER BY created_at DESC
		 OFFSET $2 LIMIT $3`

	rows, err := r.db.QueryContext(ctx, query, pattern, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.User
	for rows.Next() {
		user := &models.User{}
		var refresh sql.NullString
		if err := rows.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &refresh, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("db error: %w", err)
		}
		if refresh.Valid {
			user.RefreshToken = &refresh.String
		}
		result = append(result, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	return result, total, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id, name, email string) (*models.User, error) {
	query :=
		`UPDATE users
		 SET name = COALESCE(NULLIF($2, ''), name),
		     email = COALESCE(NULLIF($3, ''), email),
		     updated_at = now()
		 WHERE id = $1
		 RETURNING ` + userColumns

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id, name, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, common.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}

	return nil
}
