package controllers

import (
	"complaint-portal/services"
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetHRs lists every HR/NGO handler a complaint can be assigned to.
func (ctl *Controller) GetHRs(c *gin.Context) {
	list, err := ctl.HRs.List(c.Request.Context())
	if err != nil {
		ctl.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (ctl *Controller) GetHR(c *gin.Context) {
	hr, err := ctl.HRs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		ctl.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, hr)
}

func (ctl *Controller) UpdateHR(c *gin.Context) {
	var input services.HRUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badInput(c)
		return
	}

	profile, err := ctl.HRs.Update(c.Request.Context(), currentUser(c), c.Param("id"), input)
	if err != nil {
		ctl.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}
