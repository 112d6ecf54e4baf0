package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/promisetracker/linkwatch/internal/domain"
)

// Handlers adapts ValidationControl to gin. Every failure is answered with
// a {status:"error", message} body.
type Handlers struct{ ctrl domain.ValidationControl }

func NewHandlers(ctrl domain.ValidationControl) Handlers { return Handlers{ctrl: ctrl} }

func errorBody(msg string) gin.H {
	return gin.H{"status": domain.ResultError, "message": msg}
}

// Status answers GET /api/link-validation/status.
func (h Handlers) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.ctrl.Status())
}

// Run answers POST /api/link-validation/run with the summary of a
// synchronous run, or 409 while another run is active.
func (h Handlers) Run(c *gin.Context) {
	result, err := h.ctrl.RunNow(c.Request.Context())
	switch {
	case errors.Is(err, domain.ErrRunInProgress):
		c.JSON(http.StatusConflict, errorBody(err.Error()))
		return
	case errors.Is(err, domain.ErrSchedulerStopped):
		c.JSON(http.StatusServiceUnavailable, errorBody(err.Error()))
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, errorBody(err.Error()))
		return
	}

	if !result.Succeeded() {
		c.JSON(http.StatusOK, errorBody("Validation failed: "+result.Message))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":        domain.ResultSuccess,
		"message":       "Validation completed",
		"run_id":        result.RunID,
		"repairs_count": result.RepairsCount,
		"results":       result.Summary,
	})
}

// Report answers GET /api/link-validation/report with the persisted artifact.
func (h Handlers) Report(c *gin.Context) {
	c.JSON(http.StatusOK, h.ctrl.LatestReport())
}

// ValidateSource answers GET /api/sources/validate/:id.
func (h Handlers) ValidateSource(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, errorBody("invalid source id"))
		return
	}

	check, err := h.ctrl.ValidateSource(c.Request.Context(), id)
	switch {
	case errors.Is(err, domain.ErrSourceNotFound):
		c.JSON(http.StatusNotFound, errorBody("Source not found"))
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, errorBody(err.Error()))
		return
	}
	c.JSON(http.StatusOK, check)
}
