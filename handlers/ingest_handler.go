package handlers

import (
	"net/http"

	"lexaudit-backend/models"
	"lexaudit-backend/repository"
	"lexaudit-backend/service"

	"github.com/gin-gonic/gin"
)

// IngestHandler handles HTTP requests for chunk ingestion
type IngestHandler struct {
	chunkRepo  *repository.ChunkRepository
	regRepo    *repository.RegulationRepository
	gapService *service.GapService
	embedder   service.Embedder
}

// NewIngestHandler creates a new ingest handler
func NewIngestHandler(chunkRepo *repository.ChunkRepository, regRepo *repository.RegulationRepository, gapService *service.GapService, embedder service.Embedder) *IngestHandler {
	return &IngestHandler{
		chunkRepo:  chunkRepo,
		regRepo:    regRepo,
		gapService: gapService,
		embedder:   embedder,
	}
}

// IngestChunkRequest represents one chunk in an ingest request
type IngestChunkRequest struct {
	FileName     string               `json:"file_name" binding:"required"`
	Page         int                  `json:"page"`
	ChunkIndex   int                  `json:"chunk_index"`
	Text         string               `json:"text" binding:"required"`
	DocType      string               `json:"doc_type" binding:"required"`
	Jurisdiction string               `json:"jurisdiction"`
	Embedding    []float64            `json:"embedding"`
	Metadata     models.ChunkMetadata `json:"metadata"`
}

// IngestRequest represents the request body for chunk ingestion
type IngestRequest struct {
	Chunks []IngestChunkRequest `json:"chunks" binding:"required"`
}

// Ingest handles POST /api/ingest. Regulation chunks go to the regulation
// store and trigger gap detection against all organizational chunks;
// everything else goes to the document chunk store. Re-submitting already
// stored chunks is a no-op.
func (h *IngestHandler) Ingest(c *gin.Context) {
	var req IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	ctx := c.Request.Context()
	inserted := 0
	skipped := 0
	var regulationChunks []service.RegulationChunkInput

	for i := range req.Chunks {
		in := &req.Chunks[i]

		docType := models.DocType(in.DocType)
		if !docType.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_DOC_TYPE",
					"message": "doc_type must be regulation, internal_compliance, or contract",
				},
			})
			return
		}
		if docType == models.DocTypeRegulation && in.Jurisdiction == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "MISSING_JURISDICTION",
					"message": "jurisdiction is required for regulation chunks",
				},
			})
			return
		}

		embedding := in.Embedding
		if len(embedding) == 0 {
			if h.embedder == nil {
				c.JSON(http.StatusBadRequest, gin.H{
					"success": false,
					"error": gin.H{
						"code":    "MISSING_EMBEDDING",
						"message": "embedding is required",
					},
				})
				return
			}
			var err error
			embedding, err = h.embedder.Embed(ctx, in.Text)
			if err != nil {
				c.JSON(http.StatusBadGateway, gin.H{
					"success": false,
					"error": gin.H{
						"code":    "EMBEDDING_FAILED",
						"message": err.Error(),
					},
				})
				return
			}
		}

		chunk := &models.Chunk{
			FileName:     in.FileName,
			Page:         in.Page,
			ChunkIndex:   in.ChunkIndex,
			Text:         in.Text,
			DocType:      docType,
			Jurisdiction: in.Jurisdiction,
			Embedding:    embedding,
			Metadata:     in.Metadata,
		}

		var written bool
		var err error
		if docType == models.DocTypeRegulation {
			written, err = h.regRepo.Insert(ctx, chunk)
		} else {
			written, err = h.chunkRepo.Insert(ctx, chunk)
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INSERT_FAILED",
					"message": err.Error(),
				},
			})
			return
		}

		if written {
			inserted++
		} else {
			skipped++
		}

		if docType == models.DocTypeRegulation {
			page := in.Page
			regulationChunks = append(regulationChunks, service.RegulationChunkInput{
				Text:      in.Text,
				Page:      &page,
				FileName:  in.FileName,
				Embedding: embedding,
			})
		}
	}

	data := gin.H{
		"inserted": inserted,
		"skipped":  skipped,
	}

	if len(regulationChunks) > 0 && h.gapService != nil {
		detection, err := h.gapService.DetectGaps(ctx, service.DetectGapsRequest{Chunks: regulationChunks})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "GAP_DETECTION_FAILED",
					"message": err.Error(),
				},
			})
			return
		}
		data["gap_suggestions"] = detection.Suggestions
		if len(detection.Errors) > 0 {
			data["gap_errors"] = detection.Errors
		}
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    data,
	})
}
