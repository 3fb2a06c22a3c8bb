package storage

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sharespace-media/backend/internal/util"
)

// LocalStore writes uploads under a root directory on the local disk,
// mirroring the VPS upload API: sanitize the filename, create the
// directory tree lazily, serve files under /files/.
type LocalStore struct {
	root    string
	baseURL string
}

// NewLocalStore creates a disk-backed blob store rooted at root
func NewLocalStore(root, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload root: %w", err)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve upload root: %w", err)
	}
	return &LocalStore{
		root:    abs,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// Save writes the file and returns its public URL. A cache-busting
// version query is appended so a re-uploaded file shows up immediately.
func (s *LocalStore) Save(ctx context.Context, data []byte, relPath string, mimeType string) (*UploadResult, error) {
	dir, name := path.Split(path.Clean(relPath))
	safeName := util.SanitizeFilename(name)
	if safeName == "" {
		return nil, fmt.Errorf("filename %q sanitizes to nothing", name)
	}

	cleanDir := strings.TrimPrefix(strings.Trim(dir, "/"), "uploads/")

	targetDir, err := s.resolve(path.Join("uploads", cleanDir))
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	target := filepath.Join(targetDir, safeName)
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write upload: %w", err)
	}

	now := time.Now()
	publicPath := "/files/uploads/" + path.Join(cleanDir, url.PathEscape(safeName))

	return &UploadResult{
		ID:       fmt.Sprintf("%d-%s", now.UnixMilli(), uuid.NewString()[:8]),
		Filename: safeName,
		URL:      fmt.Sprintf("%s%s?v=%d", s.baseURL, publicPath, now.UnixMilli()),
		Size:     int64(len(data)),
		MimeType: mimeType,
	}, nil
}

// Delete removes a previously stored file. relPath is the path under the
// public /files/ prefix, e.g. "uploads/<uid>/photo.jpg".
func (s *LocalStore) Delete(ctx context.Context, relPath string) error {
	target, err := s.resolve(strings.Trim(relPath, "/"))
	if err != nil {
		return err
	}

	if err := os.Remove(target); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// Root returns the absolute upload root, for static file serving
func (s *LocalStore) Root() string {
	return s.root
}

// resolve maps a relative path into the root and rejects traversal
func (s *LocalStore) resolve(rel string) (string, error) {
	target := filepath.Join(s.root, filepath.FromSlash(rel))
	if target != s.root && !strings.HasPrefix(target, s.root+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes the upload root", rel)
	}
	return target, nil
}
