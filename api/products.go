package api

import (
	"fmt"
	"net/http"

	"github.com/freshtrace/freshtrace_backend/ledger"
	"github.com/freshtrace/freshtrace_backend/models"
	"github.com/freshtrace/freshtrace_backend/utils"
	"github.com/gin-gonic/gin"
)

func (a *API) listProducts(c *gin.Context) {
	products, err := models.ListResource[models.Product](c.Request.Context(), a.db, "name ASC")
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (a *API) getProduct(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	product, err := models.GetResource[models.Product](c.Request.Context(), a.db, id, "Supplier")
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (a *API) createProduct(c *gin.Context) {
	var input models.NewProduct
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	product, err := models.CreateProduct(c.Request.Context(), a.db, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	a.logActivity(c.Request.Context(), "create_product", fmt.Sprintf("Created product %q", product.Name))
	c.JSON(http.StatusCreated, product)
}

func (a *API) updateProduct(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input models.NewProduct
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	product, err := models.UpdateProduct(c.Request.Context(), a.db, id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	a.logActivity(c.Request.Context(), "update_product", fmt.Sprintf("Updated product %q", product.Name))
	c.JSON(http.StatusOK, product)
}

func (a *API) deleteProduct(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	if err := a.guard.DeleteProduct(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	a.logActivity(c.Request.Context(), "delete_product", fmt.Sprintf("Deleted product %d", id))
	c.Status(http.StatusNoContent)
}

// previewPicklist plans an allocation without committing it.
// GET /products/:id/picklist?qty=30&strategy=fefo
func (a *API) previewPicklist(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	qty, err := utils.ParseDecimal(c.Query("qty"))
	if err != nil {
		respondError(c, ledger.NewValidationError("invalid qty %q", c.Query("qty")))
		return
	}
	strategy := models.PickStrategy(c.DefaultQuery("strategy", string(models.PickStrategyFifo)))

	plan, err := a.planner.Pick(c.Request.Context(), id, qty, strategy)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}
