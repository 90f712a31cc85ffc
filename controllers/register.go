package controllers

import (
	"complaint-portal/services"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Register creates an account and signs it in.
func (ctl *Controller) Register(c *gin.Context) {
	var input services.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badInput(c)
		return
	}

	session, err := ctl.Auth.Register(c.Request.Context(), input)
	if err != nil {
		ctl.respondError(c, err)
		return
	}
	ctl.setSessionCookie(c, session.Token)
	c.JSON(http.StatusCreated, session)
}
