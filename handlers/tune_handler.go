package handlers

import (
	"errors"
	"net/http"

	"lexaudit-backend/service"

	"github.com/gin-gonic/gin"
)

// TuneHandler handles HTTP requests for threshold calibration
type TuneHandler struct {
	calibrationService *service.CalibrationService
}

// NewTuneHandler creates a new tune handler
func NewTuneHandler(calibrationService *service.CalibrationService) *TuneHandler {
	return &TuneHandler{calibrationService: calibrationService}
}

// TuneThreshold handles POST /api/tune-threshold. On any failure the active
// threshold stays as it was.
func (h *TuneHandler) TuneThreshold(c *gin.Context) {
	result, err := h.calibrationService.Calibrate(c.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrNoSampleData) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "NO_SAMPLE_DATA",
					"message": "No chunk data available for calibration",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "CALIBRATION_FAILED",
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
