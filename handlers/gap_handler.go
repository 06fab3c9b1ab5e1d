package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"lexaudit-backend/models"
	"lexaudit-backend/repository"
	"lexaudit-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const defaultFlagListLimit = 50

// GapHandler handles HTTP requests for gap detection and compliance flags
type GapHandler struct {
	gapService *service.GapService
	flagRepo   *repository.FlagRepository
}

// NewGapHandler creates a new gap handler
func NewGapHandler(gapService *service.GapService, flagRepo *repository.FlagRepository) *GapHandler {
	return &GapHandler{
		gapService: gapService,
		flagRepo:   flagRepo,
	}
}

// RegulationChunkRequest is one regulation chunk in a gap check request
type RegulationChunkRequest struct {
	Text      string    `json:"text" binding:"required"`
	Page      *int      `json:"page"`
	FileName  string    `json:"file_name"`
	Embedding []float64 `json:"embedding"`
}

// CheckRegulationRequest represents the request body for an ad-hoc gap check
type CheckRegulationRequest struct {
	Chunks []RegulationChunkRequest `json:"chunks" binding:"required,min=1"`
}

// CheckRegulation handles POST /api/check-regulation. Each regulation chunk
// is compared against every stored organizational chunk; findings are
// persisted and returned.
func (h *GapHandler) CheckRegulation(c *gin.Context) {
	var req CheckRegulationRequest
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

	chunks := make([]service.RegulationChunkInput, 0, len(req.Chunks))
	for _, in := range req.Chunks {
		chunks = append(chunks, service.RegulationChunkInput{
			Text:      in.Text,
			Page:      in.Page,
			FileName:  in.FileName,
			Embedding: in.Embedding,
		})
	}

	result, err := h.gapService.DetectGaps(c.Request.Context(), service.DetectGapsRequest{
		Chunks: chunks,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DETECTION_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	data := gin.H{
		"suggestions": result.Suggestions,
		"gaps_found":  len(result.Suggestions),
	}
	if len(result.Errors) > 0 {
		data["errors"] = result.Errors
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}

// ListFlags handles GET /api/compliance-flags
func (h *GapHandler) ListFlags(c *gin.Context) {
	limit := defaultFlagListLimit
	if limitStr := c.Query("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_LIMIT",
					"message": "limit must be a positive integer",
				},
			})
			return
		}
		limit = n
	}

	var status *models.FlagStatus
	if statusStr := c.Query("status"); statusStr != "" {
		s := models.FlagStatus(statusStr)
		switch s {
		case models.FlagStatusOpen, models.FlagStatusApproved, models.FlagStatusRejected:
			status = &s
		default:
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_STATUS",
					"message": "status must be open, approved, or rejected",
				},
			})
			return
		}
	}

	flags, err := h.flagRepo.List(c.Request.Context(), status, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "LIST_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    flags,
	})
}

// GetFlag handles GET /api/compliance-flags/:id
func (h *GapHandler) GetFlag(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid flag ID format",
			},
		})
		return
	}

	flag, err := h.flagRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrFlagNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "NOT_FOUND",
					"message": "Compliance flag not found",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "RETRIEVAL_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    flag,
	})
}
