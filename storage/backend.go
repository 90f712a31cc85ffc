package storage

import (
	"complaint-portal/models"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Backend persists files addressed by a path relative to the upload root.
type Backend interface {
	Init(ctx context.Context) error
	Save(ctx context.Context, rel string, r io.Reader, contentType string) error
	Open(ctx context.Context, rel string) (io.ReadCloser, error)
	Remove(ctx context.Context, rel string) error
}

var errTooLarge = errors.New("file exceeds size limit")

// LocalBackend stores files on disk under Root.
type LocalBackend struct {
	Root string
}

func NewLocalBackend(root string) *LocalBackend {
	return &LocalBackend{Root: root}
}

func (l *LocalBackend) Init(ctx context.Context) error {
	for _, dir := range models.BucketDirs {
		if err := os.MkdirAll(filepath.Join(l.Root, dir), 0o755); err != nil {
			return fmt.Errorf("create upload dir %s: %w", dir, err)
		}
	}
	return nil
}

func (l *LocalBackend) path(rel string) (string, error) {
	clean, err := CleanRelPath(rel)
	if err != nil {
		return "", err
	}
	root := filepath.Clean(l.Root)
	full := filepath.Join(root, filepath.FromSlash(clean))
	if !strings.HasPrefix(full, root+string(filepath.Separator)) {
		return "", ErrUnsafePath
	}
	return full, nil
}

func (l *LocalBackend) Save(ctx context.Context, rel string, r io.Reader, contentType string) error {
	full, err := l.path(rel)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}

	n, err := io.Copy(f, io.LimitReader(r, MaxFileSize+1))
	if err == nil && n > MaxFileSize {
		err = errTooLarge
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(full)
		return err
	}
	return nil
}

func (l *LocalBackend) Open(ctx context.Context, rel string) (io.ReadCloser, error) {
	full, err := l.path(rel)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.IsDir() {
		f.Close()
		return nil, fmt.Errorf("%s: %w", rel, fs.ErrNotExist)
	}
	return f, nil
}

func (l *LocalBackend) Remove(ctx context.Context, rel string) error {
	full, err := l.path(rel)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
