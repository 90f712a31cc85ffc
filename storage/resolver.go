// Package storage classifies uploaded evidence files and persists them under
// the upload root, either on local disk or in a GCS bucket.
package storage

import (
	"complaint-portal/models"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"path"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// MaxFileSize is the largest accepted single upload.
const MaxFileSize = 50 << 20

// Multipart field names and how many files each accepts.
const (
	FieldImages = "images"
	FieldVideos = "videos"
	FieldAudios = "audios"
	FieldPDF    = "pdf"
)

var FieldLimits = map[string]int{
	FieldImages: 5,
	FieldVideos: 3,
	FieldAudios: 3,
	FieldPDF:    1,
}

var allowedTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"video/mp4":       true,
	"video/quicktime": true,
	"audio/mpeg":      true,
	"audio/wav":       true,
	"application/pdf": true,
}

// RejectedError reports an upload refused before anything was written.
type RejectedError struct {
	Reason string
}

func (e *RejectedError) Error() string { return e.Reason }

func reject(format string, args ...any) error {
	return &RejectedError{Reason: fmt.Sprintf(format, args...)}
}

// Upload is one incoming file of a multipart request.
type Upload struct {
	Field       string
	Filename    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// Classify maps a declared MIME type to its storage bucket.
func Classify(contentType string) models.Bucket {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	switch {
	case strings.HasPrefix(ct, "image/"):
		return models.BucketImage
	case strings.HasPrefix(ct, "video/"):
		return models.BucketVideo
	case strings.HasPrefix(ct, "audio/"):
		return models.BucketAudio
	case ct == "application/pdf":
		return models.BucketPDF
	}
	return models.BucketOther
}

// Allowed reports whether contentType is on the upload allow-list.
func Allowed(contentType string) bool {
	return allowedTypes[strings.ToLower(strings.TrimSpace(contentType))]
}

// Validate checks every upload against the field caps, the allow-list and the
// size limit. Nothing is stored unless the whole set passes.
func Validate(uploads []Upload) error {
	counts := make(map[string]int, len(FieldLimits))
	for _, u := range uploads {
		limit, ok := FieldLimits[u.Field]
		if !ok {
			return reject("Unexpected file field %q", u.Field)
		}
		counts[u.Field]++
		if counts[u.Field] > limit {
			return reject("Too many files for %s (max %d)", u.Field, limit)
		}
		if !Allowed(u.ContentType) {
			return reject("Invalid file type. Only images, videos, audio, and PDFs are allowed.")
		}
		if u.Size > MaxFileSize {
			return reject("File %s exceeds the %dMB limit", u.Filename, MaxFileSize>>20)
		}
	}
	return nil
}

// Resolver stores uploads through a Backend and records their relative paths.
type Resolver struct {
	backend Backend
	logger  *zap.Logger
	now     func() time.Time
}

func NewResolver(backend Backend, logger *zap.Logger) *Resolver {
	return &Resolver{backend: backend, logger: logger, now: time.Now}
}

// Init prepares the backend (bucket directories on disk). Run it once before
// serving requests.
func (r *Resolver) Init(ctx context.Context) error {
	return r.backend.Init(ctx)
}

// Store validates and persists uploads, returning the relative paths grouped
// by the multipart field they arrived in. If any write fails, the files
// already written by this call are removed.
func (r *Resolver) Store(ctx context.Context, uploads []Upload) (models.Attachments, error) {
	var out models.Attachments
	if err := Validate(uploads); err != nil {
		return out, err
	}

	var written []string
	for _, u := range uploads {
		rel := path.Join(Classify(u.ContentType).Dir(), r.filename(u))
		if err := r.save(ctx, rel, u); err != nil {
			r.cleanup(written)
			return models.Attachments{}, fmt.Errorf("store %s: %w", u.Filename, err)
		}
		written = append(written, rel)

		switch u.Field {
		case FieldImages:
			out.Images = append(out.Images, rel)
		case FieldVideos:
			out.Videos = append(out.Videos, rel)
		case FieldAudios:
			out.Audios = append(out.Audios, rel)
		case FieldPDF:
			out.PDF = rel
		}
	}
	return out, nil
}

func (r *Resolver) save(ctx context.Context, rel string, u Upload) error {
	src, err := u.Open()
	if err != nil {
		return err
	}
	defer src.Close()
	return r.backend.Save(ctx, rel, src, u.ContentType)
}

func (r *Resolver) cleanup(rels []string) {
	// Use a fresh context: the request one may already be cancelled.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, rel := range rels {
		if err := r.backend.Remove(ctx, rel); err != nil {
			r.logger.Warn("failed to remove partially stored upload", zap.String("path", rel), zap.Error(err))
		}
	}
}

// Discard removes stored files that ended up not being referenced by any
// document.
func (r *Resolver) Discard(att models.Attachments) {
	r.cleanup(att.All())
}

// Open returns the stored file at rel. Missing files yield an error matching
// fs.ErrNotExist.
func (r *Resolver) Open(ctx context.Context, rel string) (io.ReadCloser, error) {
	clean, err := CleanRelPath(rel)
	if err != nil {
		return nil, err
	}
	return r.backend.Open(ctx, clean)
}

// filename builds "<field>-<unix millis>-<random><ext>".
func (r *Resolver) filename(u Upload) string {
	return fmt.Sprintf("%s-%d-%d%s", u.Field, r.now().UnixMilli(), rand.Int64N(1e9), extension(u))
}

func extension(u Upload) string {
	if ext := strings.ToLower(filepath.Ext(u.Filename)); ext != "" {
		return ext
	}
	switch strings.ToLower(u.ContentType) {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "video/mp4":
		return ".mp4"
	case "video/quicktime":
		return ".mov"
	case "audio/mpeg":
		return ".mp3"
	case "audio/wav":
		return ".wav"
	case "application/pdf":
		return ".pdf"
	}
	return ""
}

// ErrUnsafePath is returned for paths that are empty, absolute or climb out
// of the upload root.
var ErrUnsafePath = errors.New("unsafe attachment path")

// CleanRelPath normalizes separators to "/" and rejects paths that would
// resolve outside the upload root.
func CleanRelPath(rel string) (string, error) {
	p := strings.ReplaceAll(rel, "\\", "/")
	if p == "" || strings.HasPrefix(p, "/") || filepath.IsAbs(rel) {
		return "", ErrUnsafePath
	}
	p = path.Clean(p)
	if p == "." || p == ".." || strings.HasPrefix(p, "../") {
		return "", ErrUnsafePath
	}
	return p, nil
}

// RelativeToRoot turns a stored path such as "uploads\images\a.jpg" into the
// canonical "images/a.jpg" form recorded on documents.
func RelativeToRoot(root, p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	root = strings.TrimSuffix(strings.ReplaceAll(root, "\\", "/"), "/")
	if root != "" {
		p = strings.TrimPrefix(p, root+"/")
	}
	return strings.TrimPrefix(p, "./")
}
