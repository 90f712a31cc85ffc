package services

import (
	"complaint-portal/models"
	"complaint-portal/storage"
	"complaint-portal/utils"
	"context"
	"errors"
	"io"
	"io/fs"
	"path"
	"strings"
)

// Download is an opened attachment ready to stream.
type Download struct {
	Name string
	Body io.ReadCloser
}

// OpenAttachment opens one recorded attachment of a complaint the caller may
// view. filename may be the recorded path or just its base name; either way
// it must be recorded under bucket on that complaint.
func (s *ComplaintService) OpenAttachment(ctx context.Context, caller *models.User, id, fileType, filename string) (*Download, error) {
	c, err := s.viewable(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	bucket, ok := models.ParseBucket(fileType)
	if !ok {
		return nil, Validation("Invalid file type")
	}

	rel, ok := s.recorded(c.Attachments, bucket, strings.TrimPrefix(filename, "/"))
	if !ok {
		return nil, NotFound("File not found in complaint records")
	}
	body, err := s.files.Open(ctx, rel)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, NotFound("File not found on server")
		}
		if errors.Is(err, storage.ErrUnsafePath) {
			return nil, NotFound("File not found in complaint records")
		}
		return nil, err
	}
	return &Download{Name: path.Base(rel), Body: body}, nil
}

func (s *ComplaintService) recorded(att models.Attachments, bucket models.Bucket, filename string) (string, bool) {
	if filename == "" {
		return "", false
	}
	if att.Contains(bucket, filename) {
		return storage.RelativeToRoot(s.opts.UploadRoot, filename), true
	}
	for _, entry := range att.Entries(bucket) {
		rel := storage.RelativeToRoot(s.opts.UploadRoot, entry)
		if rel == filename || path.Base(rel) == filename {
			return rel, true
		}
	}
	return "", false
}

// ComplaintPDF renders the complaint report the caller is allowed to see.
func (s *ComplaintService) ComplaintPDF(ctx context.Context, caller *models.User, id string) ([]byte, string, error) {
	view, err := s.Get(ctx, caller, id)
	if err != nil {
		return nil, "", err
	}
	data, err := utils.ComplaintPDF(view)
	if err != nil {
		return nil, "", err
	}
	return data, "complaint-" + view.ID.Hex() + ".pdf", nil
}

// Perpetrators groups the caller's assigned complaints by perpetrator name.
func (s *ComplaintService) Perpetrators(ctx context.Context, caller *models.User, normalize bool) ([]models.PerpetratorSummary, error) {
	rows, err := s.store.Complaints.Perpetrators(ctx, caller.ID, normalize || s.opts.NormalizePerpetrators)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []models.PerpetratorSummary{}
	}
	return rows, nil
}

func (s *ComplaintService) ExportPerpetrators(ctx context.Context, caller *models.User, normalize bool) ([]byte, error) {
	rows, err := s.Perpetrators(ctx, caller, normalize)
	if err != nil {
		return nil, err
	}
	return utils.PerpetratorWorkbook(rows)
}
