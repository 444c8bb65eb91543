package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/freshtrace/freshtrace_backend/ledger"
	"github.com/freshtrace/freshtrace_backend/models"
	"github.com/freshtrace/freshtrace_backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (a *API) listIncidents(c *gin.Context) {
	incidents, err := models.ListIncidents(c.Request.Context(), a.db)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, incidents)
}

func (a *API) getIncident(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	incident, err := models.GetResource[models.Incident](c.Request.Context(), a.db, id, "Batches", "Batches.Batch")
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, incident)
}

func (a *API) createIncident(c *gin.Context) {
	var input models.NewIncident
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	incidentNumber := strings.TrimSpace(input.IncidentNumber)
	if incidentNumber == "" {
		incidentNumber = "INC-" + strings.ToUpper(uuid.NewString()[:8])
	}
	severity := input.SeverityLevel
	if severity == "" {
		severity = models.SeverityLevelMedium
	}
	status := input.Status
	if status == "" {
		status = models.IncidentStatusOpen
	}
	if !severity.IsValid() || !status.IsValid() {
		respondError(c, ledger.NewValidationError("invalid severity or status"))
		return
	}
	ctx := c.Request.Context()
	if len(input.BatchIds) > 0 {
		if err := utils.ValidateResourcesId[models.Batch](ctx, a.db, input.BatchIds); err != nil {
			respondError(c, ledger.NewValidationError("one or more batch ids do not exist"))
			return
		}
	}

	incident := models.Incident{
		IncidentNumber: incidentNumber,
		IncidentType:   input.IncidentType,
		Title:          input.Title,
		Description:    input.Description,
		SeverityLevel:  severity,
		Status:         status,
		ReportedBy:     input.ReportedBy,
	}
	for _, batchId := range utils.UniqueSlice(input.BatchIds) {
		incident.Batches = append(incident.Batches, models.IncidentBatch{BatchId: batchId})
	}
	if err := a.db.WithContext(ctx).Create(&incident).Error; err != nil {
		respondError(c, err)
		return
	}
	a.logActivity(c.Request.Context(), "create_incident", fmt.Sprintf("Reported incident %s: %s", incident.IncidentNumber, incident.Title))
	c.JSON(http.StatusCreated, incident)
}

func (a *API) addIncidentBatch(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var req models.NewIncidentBatch
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	ctx := c.Request.Context()
	if err := utils.ValidateResourceId[models.Incident](ctx, a.db, id); err != nil {
		respondError(c, err)
		return
	}
	if err := utils.ValidateResourceId[models.Batch](ctx, a.db, req.BatchId); err != nil {
		respondError(c, err)
		return
	}

	link := models.IncidentBatch{
		IncidentId:       id,
		BatchId:          req.BatchId,
		InvolvementLevel: req.InvolvementLevel,
		Notes:            req.Notes,
	}
	if err := a.db.WithContext(ctx).Create(&link).Error; err != nil {
		respondError(c, err)
		return
	}
	a.logActivity(ctx, "add_incident_batch", fmt.Sprintf("Linked batch %d to incident %d", req.BatchId, id))
	c.JSON(http.StatusCreated, link)
}
