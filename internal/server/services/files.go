package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/chathub/internal/common"
	sc "github.com/dmitrijs2005/chathub/internal/server/config"
	"github.com/dmitrijs2005/chathub/internal/server/models"
	"github.com/dmitrijs2005/chathub/internal/server/repositories/repomanager"
	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// MaxFileSize caps uploads at 2 MiB.
const MaxFileSize = 2 << 20

// allowedContentTypes mirrors the upload policy: PDF and CSV only.
var allowedContentTypes = map[string]struct{}{
	"application/pdf": {},
	"text/csv":        {},
}

// seams for testing the AWS SDK calls
var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// FileService registers upload metadata and hands out presigned URLs for
// the actual bytes. Clients PUT directly to object storage.
type FileService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *sc.Config
}

func NewFileService(db *sql.DB, m repomanager.RepositoryManager, cfg *sc.Config) *FileService {
	return &FileService{db: db, repomanager: m, config: cfg}
}

// GetRandomStorageKey produces a date-partitioned unique object key.
func GetRandomStorageKey() string {
	d := time.Now()
	return fmt.Sprintf("users/%d/%d/%d/%v", d.Year(), d.Month(), d.Day(), uuid.New())
}

func (s *FileService) getPresignClient() (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(context.Background(),
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
	})

	return newS3PresignClient(client), nil
}

// Upload validates the metadata, records the file, and returns it together
// with a presigned PUT URL valid for 15 minutes.
func (s *FileService) Upload(ctx context.Context, userID, name, contentType string, size int64) (*models.File, string, error) {
	if name == "" || size <= 0 {
		return nil, "", common.ErrValidation
	}
	if size > MaxFileSize {
		return nil, "", common.ErrValidation
	}
	if _, ok := allowedContentTypes[contentType]; !ok {
		return nil, "", common.ErrValidation
	}

	presignClient, err := s.getPresignClient()
	if err != nil {
		return nil, "", common.ErrInternal
	}

	bucket := s.config.S3Bucket
	key := GetRandomStorageKey()

	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		return nil, "", common.ErrInternal
	}

	repo := s.repomanager.Files(s.db)
	file, err := repo.Create(ctx, &models.File{
		UserID:      userID,
		Name:        name,
		ContentType: contentType,
		Size:        size,
		StorageKey:  key,
	})
	if err != nil {
		return nil, "", common.ErrInternal
	}

	return file, req.URL, nil
}

// DownloadURL returns a presigned GET URL for a file owned by userID.
// Files belonging to other accounts are reported as not found.
func (s *FileService) DownloadURL(ctx context.Context, userID, fileID string) (*models.File, string, error) {
	repo := s.repomanager.Files(s.db)
	file, err := repo.GetByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, "", common.ErrNotFound
		}
		return nil, "", common.ErrInternal
	}
	if file.UserID != userID {
		return nil, "", common.ErrNotFound
	}

	presignClient, err := s.getPresignClient()
	if err != nil {
		return nil, "", common.ErrInternal
	}

	bucket := s.config.S3Bucket
	req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &file.StorageKey,
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		return nil, "", common.ErrInternal
	}

	return file, req.URL, nil
}
