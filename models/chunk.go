package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// DocType classifies the source a chunk was extracted from
type DocType string

const (
	DocTypeRegulation         DocType = "regulation"
	DocTypeInternalCompliance DocType = "internal_compliance"
	DocTypeContract           DocType = "contract"
)

// Valid reports whether the doc type is one of the recognized values
func (d DocType) Valid() bool {
	switch d {
	case DocTypeRegulation, DocTypeInternalCompliance, DocTypeContract:
		return true
	}
	return false
}

// ChunkMetadata holds positional and extraction metadata for a chunk
type ChunkMetadata map[string]interface{}

// Value implements driver.Valuer for JSONB
func (m ChunkMetadata) Value() (driver.Value, error) {
	if m == nil {
		return json.Marshal(ChunkMetadata{})
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner for JSONB
func (m *ChunkMetadata) Scan(value interface{}) error {
	if value == nil {
		*m = make(ChunkMetadata)
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		*m = make(ChunkMetadata)
		return nil
	}

	if len(bytes) == 0 {
		*m = make(ChunkMetadata)
		return nil
	}

	return json.Unmarshal(bytes, m)
}

// Chunk represents a unit of source text with its embedding and positional
// metadata. Identity key = (file_name, chunk_index, content_hash); insertion
// is a no-op when the key already exists.
type Chunk struct {
	ID           uuid.UUID     `json:"id"`
	FileName     string        `json:"file_name"`
	Page         int           `json:"page"`
	ChunkIndex   int           `json:"chunk_index"`
	Text         string        `json:"text"`
	ContentHash  string        `json:"content_hash"`
	DocType      DocType       `json:"doc_type"`
	Jurisdiction string        `json:"jurisdiction,omitempty"`
	Embedding    []float64     `json:"embedding,omitempty"`
	Metadata     ChunkMetadata `json:"metadata,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	Distance     float64       `json:"distance,omitempty"` // Vector similarity distance, set on search results
}
