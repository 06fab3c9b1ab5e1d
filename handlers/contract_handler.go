package handlers

import (
	"errors"
	"net/http"

	"lexaudit-backend/repository"
	"lexaudit-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContractHandler handles HTTP requests for contract evaluation
type ContractHandler struct {
	mappingService *service.MappingService
	mappingRepo    *repository.MappingRepository
}

// NewContractHandler creates a new contract handler
func NewContractHandler(mappingService *service.MappingService, mappingRepo *repository.MappingRepository) *ContractHandler {
	return &ContractHandler{
		mappingService: mappingService,
		mappingRepo:    mappingRepo,
	}
}

// EvaluateContract handles POST /api/evaluate-contract/:fileName
func (h *ContractHandler) EvaluateContract(c *gin.Context) {
	fileName := c.Param("fileName")
	if fileName == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_FILE_NAME",
				"message": "File name is required",
			},
		})
		return
	}

	result, err := h.mappingService.EvaluateContract(c.Request.Context(), fileName)
	if err != nil {
		if errors.Is(err, service.ErrContractNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "NOT_FOUND",
					"message": "No contract clauses found for file",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "EVALUATION_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}

// GetClauseMappings handles GET /api/clauses/:id/mappings
func (h *ContractHandler) GetClauseMappings(c *gin.Context) {
	clauseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid clause ID format",
			},
		})
		return
	}

	mappings, err := h.mappingRepo.ListByClauseID(c.Request.Context(), clauseID)
	if err != nil {
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
		"data":    mappings,
	})
}
