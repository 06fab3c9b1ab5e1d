package service

import (
	"math"
	"sort"

	"lexaudit-backend/models"
)

// Jurisdiction priorities. Lower value ranks first; priority beats distance
// when ordering search results.
var jurisdictionPriority = map[string]int{
	"local":          1,
	"international":  2,
	"company_policy": 3,
}

const defaultJurisdictionPriority = 3

// JurisdictionPriority returns the ranking priority for a jurisdiction,
// falling back to the lowest recognized priority for unknown values.
func JurisdictionPriority(jurisdiction string) int {
	if p, ok := jurisdictionPriority[jurisdiction]; ok {
		return p
	}
	return defaultJurisdictionPriority
}

// CosineSimilarity computes the cosine of the angle between two vectors.
// Returns 0 when either vector has zero norm.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// CosineDistance is 1 - cosine similarity; smaller is more similar
func CosineDistance(a, b []float64) float64 {
	return 1 - CosineSimilarity(a, b)
}

// RankOptions controls ranking of a candidate set
type RankOptions struct {
	Threshold    float64 // maximum allowed distance
	TopK         int
	Jurisdiction string // hard filter when non-empty
}

// RankCandidates orders a candidate set for a query vector. Pure function,
// safe for unlimited parallel invocation.
//
// Candidates sharing a content hash collapse to the lowest-distance
// occurrence. Candidates outside the jurisdiction filter or beyond the
// distance threshold are dropped. Survivors are ordered by jurisdiction
// priority, then distance ascending, then original retrieval order, and
// capped at TopK. Fewer than TopK survivors is a normal outcome.
//
// Distance comes from the candidate's embedding when present, otherwise
// from the distance the store computed during retrieval.
func RankCandidates(query []float64, candidates []models.Chunk, opts RankOptions) []models.Chunk {
	type ranked struct {
		chunk    models.Chunk
		distance float64
		origin   int
	}

	items := make([]ranked, 0, len(candidates))
	for i, c := range candidates {
		distance := c.Distance
		if len(c.Embedding) > 0 && len(query) > 0 {
			distance = CosineDistance(query, c.Embedding)
		}
		c.Distance = distance
		items = append(items, ranked{chunk: c, distance: distance, origin: i})
	}

	// Dedup keeps the lowest-distance occurrence per content hash.
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].distance < items[j].distance
	})
	seen := make(map[string]bool, len(items))
	deduped := items[:0]
	for _, item := range items {
		hash := item.chunk.ContentHash
		if hash != "" {
			if seen[hash] {
				continue
			}
			seen[hash] = true
		}
		deduped = append(deduped, item)
	}

	filtered := deduped[:0]
	for _, item := range deduped {
		if opts.Jurisdiction != "" && item.chunk.Jurisdiction != opts.Jurisdiction {
			continue
		}
		if item.distance > opts.Threshold {
			continue
		}
		filtered = append(filtered, item)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		pi, pj := JurisdictionPriority(filtered[i].chunk.Jurisdiction), JurisdictionPriority(filtered[j].chunk.Jurisdiction)
		if pi != pj {
			return pi < pj
		}
		if filtered[i].distance != filtered[j].distance {
			return filtered[i].distance < filtered[j].distance
		}
		return filtered[i].origin < filtered[j].origin
	})

	if opts.TopK > 0 && len(filtered) > opts.TopK {
		filtered = filtered[:opts.TopK]
	}

	results := make([]models.Chunk, len(filtered))
	for i, item := range filtered {
		results[i] = item.chunk
	}
	return results
}
