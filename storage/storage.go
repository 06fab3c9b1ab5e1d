// Package storage archives the raw source documents (regulation PDFs,
// contracts, internal policies) whose extracted chunks live in the database.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Storage is a document archive backend
type Storage interface {
	// Upload stores a document's raw bytes and returns the storage path
	Upload(ctx context.Context, docID uuid.UUID, fileName string, data io.Reader) (string, error)

	// Download retrieves a document by storage path
	Download(ctx context.Context, storagePath string) (io.ReadCloser, error)

	// Delete removes a document by storage path
	Delete(ctx context.Context, storagePath string) error
}

// Backend identifies an archive backend type
type Backend string

const (
	BackendLocal Backend = "local"
	BackendS3    Backend = "s3"
)

// Config holds archive backend configuration
type Config struct {
	Backend      Backend
	LocalPath    string // local backend
	S3Bucket     string // s3 backend
	S3Region     string
	AWSAccessKey string
	AWSSecretKey string
}

// New creates an archive backend from configuration
func New(cfg Config) (Storage, error) {
	switch cfg.Backend {
	case BackendLocal:
		return NewLocalArchive(cfg.LocalPath)
	case BackendS3:
		return NewS3Archive(cfg)
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Backend)
	}
}

// NewFromEnv creates an archive backend from environment variables.
// STORAGE_BACKEND selects local (default) or s3.
func NewFromEnv() (Storage, error) {
	backend := Backend(os.Getenv("STORAGE_BACKEND"))
	if backend == "" {
		backend = BackendLocal
	}

	cfg := Config{Backend: backend}

	switch backend {
	case BackendLocal:
		cfg.LocalPath = os.Getenv("STORAGE_LOCAL_PATH")
		if cfg.LocalPath == "" {
			cfg.LocalPath = "./data/documents"
		}
	case BackendS3:
		cfg.S3Bucket = os.Getenv("AWS_S3_BUCKET")
		if cfg.S3Bucket == "" {
			return nil, errors.New("AWS_S3_BUCKET is required for the s3 backend")
		}
		cfg.S3Region = os.Getenv("AWS_REGION")
		if cfg.S3Region == "" {
			cfg.S3Region = "us-east-1"
		}
		cfg.AWSAccessKey = os.Getenv("AWS_ACCESS_KEY_ID")
		cfg.AWSSecretKey = os.Getenv("AWS_SECRET_ACCESS_KEY")
	}

	return New(cfg)
}

// archivePath builds the storage path for a document. The id prefix shards
// the namespace; the id itself guarantees uniqueness across re-uploads of
// the same file name.
func archivePath(docID uuid.UUID, fileName string) string {
	ext := filepath.Ext(fileName)
	base := strings.TrimSuffix(filepath.Base(fileName), ext)
	base = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '/', '\\':
			return '_'
		}
		return r
	}, base)

	id := docID.String()
	return fmt.Sprintf("%s/%s_%s%s", id[:2], id, base, ext)
}
