package controllers

import (
	"complaint-portal/services"
	"net/http"

	"github.com/gin-gonic/gin"
)

func (ctl *Controller) ChangePassword(c *gin.Context) {
	var input services.ChangePasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badInput(c)
		return
	}

	if err := ctl.Auth.ChangePassword(c.Request.Context(), currentUser(c).ID, input); err != nil {
		ctl.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}
