package api

import (
	"fmt"
	"net/http"

	"github.com/freshtrace/freshtrace_backend/models"
	"github.com/gin-gonic/gin"
)

func (a *API) listStorageLocations(c *gin.Context) {
	locations, err := models.ListResource[models.StorageLocation](c.Request.Context(), a.db, "name ASC")
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, locations)
}

func (a *API) getStorageLocation(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	location, err := models.GetResource[models.StorageLocation](c.Request.Context(), a.db, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, location)
}

func (a *API) createStorageLocation(c *gin.Context) {
	var input models.NewStorageLocation
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	location, err := models.CreateStorageLocation(c.Request.Context(), a.db, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	a.logActivity(c.Request.Context(), "create_storage_location", fmt.Sprintf("Created storage location %q", location.Name))
	c.JSON(http.StatusCreated, location)
}

func (a *API) updateStorageLocation(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input models.NewStorageLocation
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	location, err := models.UpdateStorageLocation(c.Request.Context(), a.db, id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	a.logActivity(c.Request.Context(), "update_storage_location", fmt.Sprintf("Updated storage location %q", location.Name))
	c.JSON(http.StatusOK, location)
}

func (a *API) deleteStorageLocation(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	if err := models.DeleteResource[models.StorageLocation](c.Request.Context(), a.db, id); err != nil {
		respondError(c, err)
		return
	}
	a.logActivity(c.Request.Context(), "delete_storage_location", fmt.Sprintf("Deleted storage location %d", id))
	c.Status(http.StatusNoContent)
}
