package models

import (
	"time"

	"github.com/google/uuid"
)

// SourceDocument records an archived original file (regulation PDF, contract,
// internal policy) whose extracted chunks live in the chunk tables. The raw
// bytes are kept in the storage backend at StoragePath.
type SourceDocument struct {
	ID           uuid.UUID `json:"id"`
	FileName     string    `json:"file_name"`
	MimeType     string    `json:"mime_type"`
	Size         int64     `json:"size"`
	StoragePath  string    `json:"storage_path"`
	DocType      DocType   `json:"doc_type"`
	Jurisdiction string    `json:"jurisdiction,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
