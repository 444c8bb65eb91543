package api

import (
	"errors"
	"net/http"

	"github.com/freshtrace/freshtrace_backend/config"
	"github.com/freshtrace/freshtrace_backend/ledger"
	"github.com/freshtrace/freshtrace_backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// respondError maps ledger error kinds onto HTTP statuses:
// validation 400, missing records 404, stock or dependency conflicts 409,
// anything else 500.
func respondError(c *gin.Context, err error) {

	var validationErr *ledger.ValidationError
	var notFoundErr *ledger.NotFoundError
	var insufficientErr *ledger.InsufficientStockError
	var conflictErr *ledger.DependencyConflictError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message})
	case errors.As(err, &notFoundErr), errors.Is(err, utils.ErrorRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &insufficientErr):
		payload := gin.H{
			"error":     insufficientErr.Error(),
			"available": insufficientErr.Available,
			"requested": insufficientErr.Requested,
		}
		if insufficientErr.BatchId != 0 {
			payload["batch_id"] = insufficientErr.BatchId
		}
		if insufficientErr.ProductId != 0 {
			payload["product_id"] = insufficientErr.ProductId
		}
		c.JSON(http.StatusConflict, payload)
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusConflict, gin.H{"error": conflictErr.Message})
	default:
		// The caller gets an opaque 500; the detail goes to the log keyed by
		// the request's correlation id.
		cid, _ := utils.GetCorrelationIdFromContext(c.Request.Context())
		config.LogError(config.GetLogger(), "api", "respondError", cid, nil, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error", "correlation_id": cid})
	}
}

// respondBindError turns gin binding failures into field-level messages.
func respondBindError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": utils.ProcessValidationErrors(err)})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
