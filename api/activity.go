package api

import (
	"net/http"
	"strconv"

	"github.com/freshtrace/freshtrace_backend/models"
	"github.com/gin-gonic/gin"
)

func (a *API) listActivity(c *gin.Context) {
	limit := 50
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	logs, err := models.ListRecentActivity(c.Request.Context(), a.db, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}
