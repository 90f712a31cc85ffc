package controllers

import (
	"complaint-portal/models"
	"complaint-portal/services"
	"net/http"

	"github.com/gin-gonic/gin"
)

// CreateReport stores a summary posted by the video analyser.
func (ctl *Controller) CreateReport(c *gin.Context) {
	var input services.ReportInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badInput(c)
		return
	}

	report, err := ctl.Reports.Create(c.Request.Context(), input)
	if err != nil {
		ctl.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Harassment data saved successfully", "report": report})
}

func (ctl *Controller) GetReports(c *gin.Context) {
	reports, err := ctl.Reports.List(c.Request.Context())
	if err != nil {
		ctl.respondError(c, err)
		return
	}
	if reports == nil {
		reports = []models.HarassmentReport{}
	}
	c.JSON(http.StatusOK, reports)
}

func (ctl *Controller) GetReport(c *gin.Context) {
	report, err := ctl.Reports.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		ctl.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
