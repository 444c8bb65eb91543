package api

import (
	"fmt"
	"net/http"

	"github.com/freshtrace/freshtrace_backend/models"
	"github.com/gin-gonic/gin"
)

func (a *API) listReorderRules(c *gin.Context) {
	rules, err := models.ListResource[models.ReorderRule](c.Request.Context(), a.db, "id ASC")
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rules)
}

func (a *API) createReorderRule(c *gin.Context) {
	var input models.NewReorderRule
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	rule, err := models.CreateReorderRule(c.Request.Context(), a.db, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	a.logActivity(c.Request.Context(), "create_reorder_rule", fmt.Sprintf("Created reorder rule for product %d", rule.ProductId))
	c.JSON(http.StatusCreated, rule)
}

func (a *API) updateReorderRule(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input models.NewReorderRule
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	rule, err := models.UpdateReorderRule(c.Request.Context(), a.db, id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	a.logActivity(c.Request.Context(), "update_reorder_rule", fmt.Sprintf("Updated reorder rule %d", rule.ID))
	c.JSON(http.StatusOK, rule)
}

func (a *API) deleteReorderRule(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	if err := models.DeleteReorderRule(c.Request.Context(), a.db, id); err != nil {
		respondError(c, err)
		return
	}
	a.logActivity(c.Request.Context(), "delete_reorder_rule", fmt.Sprintf("Deleted reorder rule %d", id))
	c.Status(http.StatusNoContent)
}

func (a *API) listRestockSuggestions(c *gin.Context) {
	suggestions, err := models.ListRestockSuggestions(c.Request.Context(), a.db)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, suggestions)
}
