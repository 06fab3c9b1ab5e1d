package handlers

import (
	"net/http"

	"lexaudit-backend/service"

	"github.com/gin-gonic/gin"
)

// SearchHandler handles HTTP requests for similarity search
type SearchHandler struct {
	searchService *service.SearchService
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(searchService *service.SearchService) *SearchHandler {
	return &SearchHandler{searchService: searchService}
}

// SearchRequest represents the request body for similarity search
type SearchRequest struct {
	Query        string `json:"query" binding:"required"`
	TopK         int    `json:"top_k"`
	Jurisdiction string `json:"jurisdiction"`
	Scope        string `json:"scope"`
}

// Search handles POST /api/search
func (h *SearchHandler) Search(c *gin.Context) {
	var req SearchRequest
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

	if req.TopK < 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_TOP_K",
				"message": "top_k must not be negative",
			},
		})
		return
	}

	scope := service.SearchScope(req.Scope)
	if req.Scope != "" && !scope.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_SCOPE",
				"message": "scope must be documents or regulations",
			},
		})
		return
	}

	result, err := h.searchService.Search(c.Request.Context(), service.SearchRequest{
		Query:        req.Query,
		TopK:         req.TopK,
		Jurisdiction: req.Jurisdiction,
		Scope:        scope,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "SEARCH_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"results":   result.Results,
			"threshold": result.Threshold,
		},
	})
}
