package api

import (
	"fmt"
	"net/http"

	"github.com/freshtrace/freshtrace_backend/models"
	"github.com/gin-gonic/gin"
)

func (a *API) listSuppliers(c *gin.Context) {
	suppliers, err := models.ListResource[models.Supplier](c.Request.Context(), a.db, "name ASC")
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, suppliers)
}

func (a *API) getSupplier(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	supplier, err := models.GetResource[models.Supplier](c.Request.Context(), a.db, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, supplier)
}

func (a *API) createSupplier(c *gin.Context) {
	var input models.NewSupplier
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	supplier, err := models.CreateSupplier(c.Request.Context(), a.db, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	a.logActivity(c.Request.Context(), "create_supplier", fmt.Sprintf("Created supplier %q", supplier.Name))
	c.JSON(http.StatusCreated, supplier)
}

func (a *API) updateSupplier(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input models.NewSupplier
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	supplier, err := models.UpdateSupplier(c.Request.Context(), a.db, id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	a.logActivity(c.Request.Context(), "update_supplier", fmt.Sprintf("Updated supplier %q", supplier.Name))
	c.JSON(http.StatusOK, supplier)
}

func (a *API) deleteSupplier(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	if err := models.DeleteResource[models.Supplier](c.Request.Context(), a.db, id); err != nil {
		respondError(c, err)
		return
	}
	a.logActivity(c.Request.Context(), "delete_supplier", fmt.Sprintf("Deleted supplier %d", id))
	c.Status(http.StatusNoContent)
}
