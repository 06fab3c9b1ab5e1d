package models

import (
	"time"

	"github.com/google/uuid"
)

// Mapping statuses: "mapped" when a regulation cleared the similarity
// threshold, "suggested" when the mapping came from the LLM fallback.
const (
	MappingStatusMapped    = "mapped"
	MappingStatusSuggested = "suggested"
)

// ClauseRegulationMapping associates a contract clause chunk with a
// regulation. Many-to-many; not part of the audit hash chain.
type ClauseRegulationMapping struct {
	ID             int64     `json:"id"`
	ClauseID       uuid.UUID `json:"clause_id"`
	RegulationName string    `json:"regulation_name"`
	ArticleRef     string    `json:"article_ref"`
	Status         string    `json:"status"`
	Explanation    string    `json:"explanation,omitempty"`
	Similarity     float64   `json:"similarity,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
