package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/freshtrace/freshtrace_backend/ledger"
	"github.com/freshtrace/freshtrace_backend/models"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func (a *API) listRecalls(c *gin.Context) {
	recalls, err := models.ListRecalls(c.Request.Context(), a.db)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recalls)
}

func (a *API) getRecall(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	recall, err := a.recalls.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recall)
}

func (a *API) createRecall(c *gin.Context) {
	var input models.NewRecall
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	recall, err := a.recalls.Create(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	a.logActivity(c.Request.Context(), "create_recall", fmt.Sprintf("Initiated recall %s: %s", recall.RecallNumber, recall.Title))
	c.JSON(http.StatusCreated, recall)
}

func (a *API) updateRecall(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input models.NewRecall
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	recall, err := a.recalls.Update(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	a.logActivity(c.Request.Context(), "update_recall", fmt.Sprintf("Updated recall %s", recall.RecallNumber))
	c.JSON(http.StatusOK, recall)
}

func (a *API) deleteRecall(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	if err := a.recalls.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	a.logActivity(c.Request.Context(), "delete_recall", fmt.Sprintf("Deleted recall %d", id))
	c.Status(http.StatusNoContent)
}

type addRecallBatchRequest struct {
	BatchId          int             `json:"batch_id" binding:"required"`
	QuantityAffected decimal.Decimal `json:"quantity_affected" binding:"required"`
	Notes            string          `json:"notes"`
}

func (a *API) addRecallBatch(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var req addRecallBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	row, err := a.recalls.AddBatch(c.Request.Context(), id, req.BatchId, req.QuantityAffected, req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	a.logActivity(c.Request.Context(), "add_recall_batch",
		fmt.Sprintf("Pulled %s from batch %d into recall %d", req.QuantityAffected, req.BatchId, id))
	c.JSON(http.StatusCreated, row)
}

type updateRecallBatchRequest struct {
	QuantityAffected *decimal.Decimal `json:"quantity_affected"`
	RecoveryStatus   *string          `json:"recovery_status"`
	RecoveryDate     *time.Time       `json:"recovery_date"`
	Notes            *string          `json:"notes"`
}

func (a *API) updateRecallBatch(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var req updateRecallBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	patch := ledger.RecallBatchPatch{
		QuantityAffected: req.QuantityAffected,
		RecoveryDate:     req.RecoveryDate,
		Notes:            req.Notes,
	}
	if req.RecoveryStatus != nil {
		status := models.RecoveryStatus(*req.RecoveryStatus)
		patch.RecoveryStatus = &status
	}
	row, err := a.recalls.UpdateRecallBatch(c.Request.Context(), id, &patch)
	if err != nil {
		respondError(c, err)
		return
	}
	a.logActivity(c.Request.Context(), "update_recall_batch", fmt.Sprintf("Updated recall batch %d", id))
	c.JSON(http.StatusOK, row)
}

func (a *API) removeRecallBatch(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	if err := a.recalls.RemoveBatch(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	a.logActivity(c.Request.Context(), "remove_recall_batch", fmt.Sprintf("Removed recall batch %d", id))
	c.Status(http.StatusNoContent)
}

func (a *API) setRecallStatus(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var req setStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	recall, err := a.recalls.SetStatus(c.Request.Context(), id, models.RecallStatus(req.Status), req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	a.logActivity(c.Request.Context(), "set_recall_status", fmt.Sprintf("Recall %s is now %s", recall.RecallNumber, recall.Status))
	c.JSON(http.StatusOK, recall)
}

type notificationsRequest struct {
	CustomerNotificationSent   *bool `json:"customer_notification_sent"`
	RegulatoryNotificationSent *bool `json:"regulatory_notification_sent"`
}

func (a *API) updateRecallNotifications(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var req notificationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	recall, err := a.recalls.UpdateNotifications(c.Request.Context(), id, req.CustomerNotificationSent, req.RegulatoryNotificationSent)
	if err != nil {
		respondError(c, err)
		return
	}
	a.logActivity(c.Request.Context(), "update_recall_notifications", fmt.Sprintf("Updated notifications for recall %s", recall.RecallNumber))
	c.JSON(http.StatusOK, recall)
}
