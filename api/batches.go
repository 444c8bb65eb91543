package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/freshtrace/freshtrace_backend/ledger"
	"github.com/freshtrace/freshtrace_backend/models"
	"github.com/freshtrace/freshtrace_backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func (a *API) listBatches(c *gin.Context) {
	batches, err := models.ListBatches(c.Request.Context(), a.db)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, batches)
}

func (a *API) getBatch(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	batch, err := models.GetResource[models.Batch](c.Request.Context(), a.db, id, "Product", "StorageLocation")
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, batch)
}

func (a *API) createBatch(c *gin.Context) {
	var input models.NewBatch
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	batch, err := models.CreateBatch(c.Request.Context(), a.db, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	a.logActivity(c.Request.Context(), "create_batch", fmt.Sprintf("Received batch %q (%s units)", batch.BatchNumber, batch.Quantity))
	c.JSON(http.StatusCreated, batch)
}

func (a *API) updateBatch(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input models.NewBatch
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	batch, err := models.UpdateBatch(c.Request.Context(), a.db, id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	a.logActivity(c.Request.Context(), "update_batch", fmt.Sprintf("Updated batch %q", batch.BatchNumber))
	c.JSON(http.StatusOK, batch)
}

type adjustQuantityRequest struct {
	Delta decimal.Decimal `json:"delta" binding:"required"`
}

// adjustBatchQuantity applies a manual signed correction through the store.
func (a *API) adjustBatchQuantity(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var req adjustQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if err := a.store.AdjustQuantity(c.Request.Context(), id, req.Delta); err != nil {
		respondError(c, err)
		return
	}
	a.logActivity(c.Request.Context(), "adjust_batch", fmt.Sprintf("Adjusted batch %d by %s", id, req.Delta))
	batch, err := models.GetResource[models.Batch](c.Request.Context(), a.db, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, batch)
}

func (a *API) deleteBatch(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	force := strings.EqualFold(c.Query("force"), "true")
	if err := a.guard.DeleteBatch(c.Request.Context(), id, force); err != nil {
		respondError(c, err)
		return
	}
	a.logActivity(c.Request.Context(), "delete_batch", fmt.Sprintf("Deleted batch %d (force=%t)", id, force))
	c.Status(http.StatusNoContent)
}

// asOfDate reads an optional ?as_of=YYYY-MM-DD override for expiry queries.
func asOfDate(c *gin.Context) (time.Time, bool) {
	v := c.Query("as_of")
	if v == "" {
		return time.Now().UTC(), true
	}
	parsed, err := utils.ParseDateOnly(v)
	if err != nil {
		respondError(c, ledger.NewValidationError("invalid as_of %q", v))
		return time.Time{}, false
	}
	return parsed, true
}

func (a *API) listExpiredBatches(c *gin.Context) {
	asOf, ok := asOfDate(c)
	if !ok {
		return
	}
	batches, err := models.ListExpiredBatches(c.Request.Context(), a.db, asOf)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, batches)
}

func (a *API) listExpiringBatches(c *gin.Context) {
	asOf, ok := asOfDate(c)
	if !ok {
		return
	}
	days := 7
	if v := c.Query("days"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			respondError(c, ledger.NewValidationError("invalid days %q", v))
			return
		}
		days = parsed
	}
	batches, err := models.ListExpiringBatches(c.Request.Context(), a.db, asOf, days)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, batches)
}

func (a *API) searchBatches(c *gin.Context) {
	term := strings.TrimSpace(c.Query("q"))
	if term == "" {
		respondError(c, ledger.NewValidationError("search term is required"))
		return
	}
	batches, err := models.SearchBatches(c.Request.Context(), a.db, term)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, batches)
}
