package controllers

import (
	"complaint-portal/services"
	"mime"
	"net/http"
	"path"
	"strconv"

	"github.com/gin-gonic/gin"
)

// CreateComplaint files a complaint from a multipart form with optional
// evidence under the images, videos, audios and pdf fields.
func (ctl *Controller) CreateComplaint(c *gin.Context) {
	uploads, err := formUploads(c)
	if err != nil {
		ctl.respondError(c, err)
		return
	}
	var input services.ComplaintInput
	if err := c.ShouldBind(&input); err != nil {
		badInput(c)
		return
	}

	complaint, err := ctl.Complaints.CreateComplaint(c.Request.Context(), currentUser(c), input, uploads)
	if err != nil {
		ctl.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, complaint)
}

func (ctl *Controller) GetUserComplaints(c *gin.Context) {
	list, err := ctl.Complaints.ListForUser(c.Request.Context(), currentUser(c))
	if err != nil {
		ctl.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (ctl *Controller) GetHRComplaints(c *gin.Context) {
	list, err := ctl.Complaints.ListForHR(c.Request.Context(), currentUser(c))
	if err != nil {
		ctl.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (ctl *Controller) GetComplaint(c *gin.Context) {
	view, err := ctl.Complaints.Get(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		ctl.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (ctl *Controller) UpdateComplaintStatus(c *gin.Context) {
	var input services.StatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Status is required"})
		return
	}

	complaint, err := ctl.Complaints.UpdateStatus(c.Request.Context(), currentUser(c), c.Param("id"), input)
	if err != nil {
		ctl.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, complaint)
}

func (ctl *Controller) ReportToNGO(c *gin.Context) {
	var input services.NGOReportInput
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			badInput(c)
			return
		}
	}

	complaint, err := ctl.Complaints.ReportToNGO(c.Request.Context(), currentUser(c), c.Param("id"), input)
	if err != nil {
		ctl.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, complaint)
}

// DownloadAttachment streams one recorded evidence file as an attachment.
func (ctl *Controller) DownloadAttachment(c *gin.Context) {
	dl, err := ctl.Complaints.OpenAttachment(c.Request.Context(), currentUser(c), c.Param("id"), c.Param("fileType"), c.Param("filename"))
	if err != nil {
		ctl.respondError(c, err)
		return
	}
	defer dl.Body.Close()

	name := path.Base(dl.Name)
	contentType := mime.TypeByExtension(path.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.DataFromReader(http.StatusOK, -1, contentType, dl.Body, map[string]string{
		"Content-Disposition": mime.FormatMediaType("attachment", map[string]string{"filename": name}),
	})
}

func (ctl *Controller) DownloadComplaintPDF(c *gin.Context) {
	data, name, err := ctl.Complaints.ComplaintPDF(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		ctl.respondError(c, err)
		return
	}
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	c.Data(http.StatusOK, "application/pdf", data)
}

func (ctl *Controller) GetPerpetrators(c *gin.Context) {
	list, err := ctl.Complaints.Perpetrators(c.Request.Context(), currentUser(c), normalizeParam(c))
	if err != nil {
		ctl.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (ctl *Controller) ExportPerpetrators(c *gin.Context) {
	data, err := ctl.Complaints.ExportPerpetrators(c.Request.Context(), currentUser(c), normalizeParam(c))
	if err != nil {
		ctl.respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="perpetrators.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// normalizeParam reads ?normalize=true. Anything unparsable counts as false.
func normalizeParam(c *gin.Context) bool {
	v, _ := strconv.ParseBool(c.Query("normalize"))
	return v
}
