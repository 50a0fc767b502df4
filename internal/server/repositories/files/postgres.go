package files

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/chathub/internal/common"
	"github.com/dmitrijs2005/chathub/internal/dbx"
	"github.com/dmitrijs2005/chathub/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, file *models.File) (*models.File, error) {
	query :=
		`INSERT INTO files (user_id, name, content_type, size, storage_key)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		file.UserID, file.Name, file.ContentType, file.Size, file.StorageKey).
		Scan(&file.ID, &file.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return file, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.File, error) {
	query :=
		`SELECT id, user_id, name, content_type, size, storage_key, created_at
		 FROM files WHERE id = $1`

	file := &models.File{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&file.ID, &file.UserID, &file.Name, &file.ContentType, &file.Size, &file.StorageKey, &file.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return file, nil
}
