package api

import (
	"fmt"
	"net/http"

	"github.com/freshtrace/freshtrace_backend/models"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func (a *API) listShipments(c *gin.Context) {
	shipments, err := models.ListShipments(c.Request.Context(), a.db)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, shipments)
}

func (a *API) getShipment(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	shipment, err := a.shipments.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, shipment)
}

func (a *API) createShipment(c *gin.Context) {
	var input models.NewShipment
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	shipment, err := a.shipments.Create(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	a.logActivity(c.Request.Context(), "create_shipment", fmt.Sprintf("Planned shipment %s to %q", shipment.ShipmentNumber, shipment.DestinationName))
	c.JSON(http.StatusCreated, shipment)
}

func (a *API) updateShipment(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input models.NewShipment
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	shipment, err := a.shipments.Update(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	a.logActivity(c.Request.Context(), "update_shipment", fmt.Sprintf("Updated shipment %s", shipment.ShipmentNumber))
	c.JSON(http.StatusOK, shipment)
}

func (a *API) deleteShipment(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	if err := a.shipments.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	a.logActivity(c.Request.Context(), "delete_shipment", fmt.Sprintf("Deleted shipment %d", id))
	c.Status(http.StatusNoContent)
}

type addLinesRequest struct {
	ProductId int                 `json:"product_id" binding:"required"`
	Quantity  decimal.Decimal     `json:"quantity" binding:"required"`
	Strategy  models.PickStrategy `json:"strategy"`
}

func (a *API) addShipmentLines(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var req addLinesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if req.Strategy == "" {
		req.Strategy = models.PickStrategyFifo
	}
	lines, err := a.shipments.AddLines(c.Request.Context(), id, req.ProductId, req.Quantity, req.Strategy)
	if err != nil {
		respondError(c, err)
		return
	}
	a.logActivity(c.Request.Context(), "add_shipment_lines",
		fmt.Sprintf("Allocated %s of product %d to shipment %d across %d batches", req.Quantity, req.ProductId, id, len(lines)))
	c.JSON(http.StatusCreated, lines)
}

type updateLineRequest struct {
	Quantity decimal.Decimal `json:"quantity" binding:"required"`
}

func (a *API) updateShipmentLine(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var req updateLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	line, err := a.shipments.UpdateLineQuantity(c.Request.Context(), id, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	a.logActivity(c.Request.Context(), "update_shipment_line", fmt.Sprintf("Set shipment line %d to %s", id, req.Quantity))
	c.JSON(http.StatusOK, line)
}

func (a *API) deleteShipmentLine(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	if err := a.shipments.DeleteLine(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	a.logActivity(c.Request.Context(), "delete_shipment_line", fmt.Sprintf("Removed shipment line %d", id))
	c.Status(http.StatusNoContent)
}

type setStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Notes  string `json:"notes"`
}

func (a *API) setShipmentStatus(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var req setStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	shipment, err := a.shipments.SetStatus(c.Request.Context(), id, models.ShipmentStatus(req.Status), req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	a.logActivity(c.Request.Context(), "set_shipment_status", fmt.Sprintf("Shipment %s is now %s", shipment.ShipmentNumber, shipment.Status))
	c.JSON(http.StatusOK, shipment)
}
