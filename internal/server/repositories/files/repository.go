// Package files stores metadata for uploaded objects. The object bytes
// themselves live in S3-compatible storage.
package files

import (
	"context"

	"github.com/dmitrijs2005/chathub/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, file *models.File) (*models.File, error)
	GetByID(ctx context.Context, id string) (*models.File, error)
}
