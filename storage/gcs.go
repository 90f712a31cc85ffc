package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"

	gcs "cloud.google.com/go/storage"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// GCSBackend stores files as objects in a Google Cloud Storage bucket.
// Object names are Prefix joined with the relative path.
type GCSBackend struct {
	client *gcs.Client
	bucket string
	prefix string
	logger *zap.Logger
}

// NewGCSBackend opens a storage client. With an empty credentialsFile the
// application default credentials are used.
func NewGCSBackend(ctx context.Context, bucket, prefix, credentialsFile string, logger *zap.Logger) (*GCSBackend, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to google cloud storage: %w", err)
	}
	return &GCSBackend{client: client, bucket: bucket, prefix: prefix, logger: logger}, nil
}

// Init checks that the bucket is reachable.
func (g *GCSBackend) Init(ctx context.Context) error {
	if _, err := g.client.Bucket(g.bucket).Attrs(ctx); err != nil {
		return fmt.Errorf("access bucket %s: %w", g.bucket, err)
	}
	g.logger.Info("gcs bucket ready", zap.String("bucket", g.bucket))
	return nil
}

func (g *GCSBackend) object(rel string) (*gcs.ObjectHandle, error) {
	clean, err := CleanRelPath(rel)
	if err != nil {
		return nil, err
	}
	return g.client.Bucket(g.bucket).Object(path.Join(g.prefix, clean)), nil
}

func (g *GCSBackend) Save(ctx context.Context, rel string, r io.Reader, contentType string) error {
	obj, err := g.object(rel)
	if err != nil {
		return err
	}
	w := obj.NewWriter(ctx)
	w.ContentType = contentType

	n, err := io.Copy(w, io.LimitReader(r, MaxFileSize+1))
	if err == nil && n > MaxFileSize {
		err = errTooLarge
	}
	if err != nil {
		w.Close()
		obj.Delete(context.WithoutCancel(ctx))
		return fmt.Errorf("copy file to gcs: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close gcs writer: %w", err)
	}
	g.logger.Debug("uploaded object", zap.String("bucket", g.bucket), zap.String("object", obj.ObjectName()))
	return nil
}

func (g *GCSBackend) Open(ctx context.Context, rel string) (io.ReadCloser, error) {
	obj, err := g.object(rel)
	if err != nil {
		return nil, err
	}
	rc, err := obj.NewReader(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return nil, fmt.Errorf("%s: %w", rel, fs.ErrNotExist)
	}
	return rc, err
}

func (g *GCSBackend) Remove(ctx context.Context, rel string) error {
	obj, err := g.object(rel)
	if err != nil {
		return err
	}
	if err := obj.Delete(ctx); err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
		return err
	}
	return nil
}

func (g *GCSBackend) Close() error {
	return g.client.Close()
}
