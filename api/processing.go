package api

import (
	"fmt"
	"net/http"

	"github.com/freshtrace/freshtrace_backend/models"
	"github.com/gin-gonic/gin"
)

func (a *API) listProcessingSessions(c *gin.Context) {
	sessions, err := models.ListProcessingSessions(c.Request.Context(), a.db)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessions)
}

func (a *API) getProcessingSession(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	detail, err := a.processing.GetSession(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (a *API) createProcessingSession(c *gin.Context) {
	var input models.NewProcessingSession
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	session, err := a.processing.CreateSession(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	a.logActivity(c.Request.Context(), "create_processing_session", fmt.Sprintf("Opened processing session %q", session.SessionName))
	c.JSON(http.StatusCreated, session)
}

func (a *API) deleteProcessingSession(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	if err := a.processing.DeleteSession(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	a.logActivity(c.Request.Context(), "delete_processing_session", fmt.Sprintf("Deleted processing session %d and restored its inputs", id))
	c.Status(http.StatusNoContent)
}

func (a *API) addProcessingInput(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var req models.NewProcessingInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	input, err := a.processing.AddInput(c.Request.Context(), id, req.BatchId, req.QuantityUsed)
	if err != nil {
		respondError(c, err)
		return
	}
	a.logActivity(c.Request.Context(), "add_processing_input",
		fmt.Sprintf("Consumed %s from batch %d in session %d", req.QuantityUsed, req.BatchId, id))
	c.JSON(http.StatusCreated, input)
}

func (a *API) addProcessingOutput(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var req models.NewProcessingOutput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	output, err := a.processing.AddOutput(c.Request.Context(), id, req.ProductId, req.OutputType, req.Weight)
	if err != nil {
		respondError(c, err)
		return
	}
	a.logActivity(c.Request.Context(), "add_processing_output",
		fmt.Sprintf("Yielded %s of product %d in session %d", req.Weight, req.ProductId, id))
	c.JSON(http.StatusCreated, output)
}
