package handlers

import (
	"errors"
	"net/http"

	"lexaudit-backend/repository"
	"lexaudit-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuditHandler handles HTTP requests for the audit ledger
type AuditHandler struct {
	auditService *service.AuditService
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(auditService *service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// RecordActionRequest represents the request body for recording an action
type RecordActionRequest struct {
	FlagID     string  `json:"flag_id" binding:"required"`
	ActionType string  `json:"action_type" binding:"required"`
	Actor      string  `json:"actor" binding:"required"`
	Comment    *string `json:"comment"`
}

// RecordAction handles POST /api/audit-action
func (h *AuditHandler) RecordAction(c *gin.Context) {
	var req RecordActionRequest
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

	flagID, err := uuid.Parse(req.FlagID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_FLAG_ID",
				"message": "Invalid flag_id format",
			},
		})
		return
	}

	action, err := h.auditService.RecordAction(c.Request.Context(), service.RecordActionRequest{
		FlagID:     flagID,
		ActionType: req.ActionType,
		Actor:      req.Actor,
		Comment:    req.Comment,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidActionType):
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_ACTION",
					"message": err.Error(),
				},
			})
		case errors.Is(err, repository.ErrFlagNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "NOT_FOUND",
					"message": "Compliance flag not found",
				},
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "RECORD_FAILED",
					"message": err.Error(),
				},
			})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    action,
	})
}

// GetAuditTrail handles GET /api/compliance-flags/:id/audit
func (h *AuditHandler) GetAuditTrail(c *gin.Context) {
	flagID, err := uuid.Parse(c.Param("id"))
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

	actions, err := h.auditService.GetAuditTrail(c.Request.Context(), flagID)
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
		"data":    actions,
	})
}

// VerifyChain handles GET /api/compliance-flags/:id/verify. A missing flag
// is a 404; a flag whose chain fails verification is a 409 carrying the
// mismatch detail, so clients can tell tampering from a wrong id.
func (h *AuditHandler) VerifyChain(c *gin.Context) {
	flagID, err := uuid.Parse(c.Param("id"))
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

	result, err := h.auditService.VerifyChain(c.Request.Context(), flagID)
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
				"code":    "VERIFY_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	if !result.Valid {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "CHAIN_INTEGRITY",
				"message": result.Detail,
			},
			"data": result,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}
