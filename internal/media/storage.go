// Package media stores uploaded images (posters, actor photos, shots) and
// resolves the file references kept in the catalog to public URLs.
package media

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/mantonx/moviecatalog/internal/types"
)

// ImageExtensions lists the accepted image file extensions
var ImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// Storage persists uploaded files and resolves references to URLs
type Storage interface {
	// Save writes r under dir and returns the file reference
	Save(ctx context.Context, dir, filename string, r io.Reader) (string, error)
	// URL returns the public URL of a file reference
	URL(ref string) string
	// Delete removes the referenced file, ignoring missing files
	Delete(ref string) error
}

// LocalStorage keeps files below Root and serves them under URLPrefix
type LocalStorage struct {
	Root      string
	URLPrefix string
	MaxSize   int64
}

// NewLocalStorage creates a filesystem backed storage
func NewLocalStorage(root, urlPrefix string, maxSize int64) *LocalStorage {
	if !strings.HasSuffix(urlPrefix, "/") {
		urlPrefix += "/"
	}
	return &LocalStorage{Root: root, URLPrefix: urlPrefix, MaxSize: maxSize}
}

// IsImageFile checks the extension of a file name
func IsImageFile(name string) bool {
	return ImageExtensions[strings.ToLower(filepath.Ext(name))]
}

// Save stores the upload under a generated unique name
func (s *LocalStorage) Save(ctx context.Context, dir, filename string, r io.Reader) (string, error) {
	if !IsImageFile(filename) {
		return "", types.NewFieldValidationError(map[string]string{"file": "unsupported image type"})
	}
	dir = cleanDir(dir)

	target := filepath.Join(s.Root, filepath.FromSlash(dir))
	if err := os.MkdirAll(target, 0755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	name := uuid.New().String() + strings.ToLower(filepath.Ext(filename))
	ref := path.Join(dir, name)

	f, err := os.Create(filepath.Join(target, name))
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}

	src := r
	if s.MaxSize > 0 {
		src = io.LimitReader(r, s.MaxSize+1)
	}
	n, err := io.Copy(f, &ctxReader{ctx: ctx, r: src})
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && s.MaxSize > 0 && n > s.MaxSize {
		err = types.NewFieldValidationError(map[string]string{
			"file": fmt.Sprintf("file exceeds %d bytes", s.MaxSize),
		})
	}
	if err != nil {
		os.Remove(filepath.Join(target, name))
		if types.IsValidation(err) {
			return "", err
		}
		return "", fmt.Errorf("failed to write upload: %w", err)
	}
	return ref, nil
}

// URL resolves a stored reference. Absolute URLs pass through unchanged.
func (s *LocalStorage) URL(ref string) string {
	if ref == "" {
		return ""
	}
	if external(ref) {
		return ref
	}
	return s.URLPrefix + ref
}

// Delete removes a stored file. Absolute URLs are not ours and are left alone.
func (s *LocalStorage) Delete(ref string) error {
	if ref == "" || external(ref) || strings.Contains(ref, "..") {
		return nil
	}
	err := os.Remove(filepath.Join(s.Root, filepath.FromSlash(ref)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete %s: %w", ref, err)
	}
	return nil
}

func external(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") || strings.HasPrefix(ref, "/")
}

// cleanDir keeps upload directories relative and inside the media root
func cleanDir(dir string) string {
	dir = path.Clean("/" + strings.ReplaceAll(dir, "\\", "/"))
	dir = strings.TrimPrefix(dir, "/")
	if dir == "" || dir == "." {
		return "uploads"
	}
	return dir
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
