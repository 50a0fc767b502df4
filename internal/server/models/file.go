package models

import "time"

// File describes an uploaded object. The bytes live in S3-compatible
// storage under StorageKey; only metadata is kept in the database.
type File struct {
	ID          string
	UserID      string
	Name        string
	ContentType string
	Size        int64
	StorageKey  string
	CreatedAt   time.Time
}
