package api

import (
	"fmt"
	"net/http"

	"github.com/freshtrace/freshtrace_backend/models"
	"github.com/gin-gonic/gin"
)

func (a *API) listUsers(c *gin.Context) {
	users, err := models.ListResource[models.User](c.Request.Context(), a.db, "username ASC")
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (a *API) createUser(c *gin.Context) {
	var input models.NewUser
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	user, err := models.CreateUser(c.Request.Context(), a.db, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	a.logActivity(c.Request.Context(), "create_user", fmt.Sprintf("Registered user %q", user.Username))
	c.JSON(http.StatusCreated, user)
}
