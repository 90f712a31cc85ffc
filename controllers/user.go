package controllers

import (
	"complaint-portal/services"
	"net/http"

	"github.com/gin-gonic/gin"
)

func (ctl *Controller) GetProfile(c *gin.Context) {
	user, err := ctl.Auth.Profile(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		ctl.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateProfile changes the caller's name, phone or address. Email and role
// are fixed at registration.
func (ctl *Controller) UpdateProfile(c *gin.Context) {
	var input services.ProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badInput(c)
		return
	}

	user, err := ctl.Auth.UpdateProfile(c.Request.Context(), currentUser(c).ID, input)
	if err != nil {
		ctl.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated", "user": user})
}
