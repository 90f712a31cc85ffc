// Package controllers holds the gin handlers of the portal API. Handlers bind
// the request, call a service and translate service errors to HTTP.
package controllers

import (
	middlewares "complaint-portal/middleware"
	"complaint-portal/models"
	"complaint-portal/services"
	"complaint-portal/storage"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Controller struct {
	Auth       *services.AuthService
	HRs        *services.HRService
	Complaints *services.ComplaintService
	Reports    *services.ReportService
	DB         Pinger
	Logger     *zap.Logger

	// SecureCookies marks the session cookie Secure and SameSite=None.
	SecureCookies bool
}

// respondError writes err as {"message": ...}. Errors without a service kind
// are logged and hidden behind a generic message.
func (ctl *Controller) respondError(c *gin.Context, err error) {
	kind := services.KindOf(err)
	if kind == services.KindInternal {
		ctl.Logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	c.JSON(kind.HTTPStatus(), gin.H{"message": err.Error()})
}

func badInput(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid input"})
}

func currentUser(c *gin.Context) *models.User {
	return middlewares.CurrentUser(c)
}

// errNoPayload marks a request that is not multipart at all.
var errNoPayload = services.Validation("No files uploaded")

// formUploads collects every file part of a multipart request. A multipart
// request without files yields no uploads; a non-multipart one errNoPayload.
func formUploads(c *gin.Context) ([]storage.Upload, error) {
	form, err := c.MultipartForm()
	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, errNoPayload
		}
		return nil, services.Validation("Invalid multipart form")
	}

	var uploads []storage.Upload
	for field, headers := range form.File {
		for _, fh := range headers {
			uploads = append(uploads, toUpload(field, fh))
		}
	}
	return uploads, nil
}

func toUpload(field string, fh *multipart.FileHeader) storage.Upload {
	return storage.Upload{
		Field:       field,
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}
