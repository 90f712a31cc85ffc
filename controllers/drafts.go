package controllers

import (
	"complaint-portal/services"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type submitDraftInput struct {
	HRID string `json:"hrId" binding:"required"`
}

// SaveDraft creates a draft, or updates the one named by the draftId field.
func (ctl *Controller) SaveDraft(c *gin.Context) {
	uploads, err := formUploads(c)
	if err != nil && !errors.Is(err, errNoPayload) {
		ctl.respondError(c, err)
		return
	}
	var input services.ContentInput
	if err := c.ShouldBind(&input); err != nil {
		badInput(c)
		return
	}

	draft, err := ctl.Complaints.SaveDraft(c.Request.Context(), currentUser(c), c.PostForm("draftId"), input, uploads)
	if err != nil {
		ctl.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, draft)
}

func (ctl *Controller) GetDrafts(c *gin.Context) {
	drafts, err := ctl.Complaints.ListDrafts(c.Request.Context(), currentUser(c))
	if err != nil {
		ctl.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, drafts)
}

func (ctl *Controller) GetDraft(c *gin.Context) {
	draft, err := ctl.Complaints.GetDraft(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		ctl.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, draft)
}

func (ctl *Controller) DeleteDraft(c *gin.Context) {
	if err := ctl.Complaints.DeleteDraft(c.Request.Context(), currentUser(c), c.Param("id")); err != nil {
		ctl.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Draft removed"})
}

// SubmitDraft promotes a draft into a complaint assigned to hrId.
func (ctl *Controller) SubmitDraft(c *gin.Context) {
	var input submitDraftInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "HR/NGO is required"})
		return
	}

	complaint, err := ctl.Complaints.SubmitDraft(c.Request.Context(), currentUser(c), c.Param("id"), input.HRID)
	if err != nil {
		ctl.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, complaint)
}
