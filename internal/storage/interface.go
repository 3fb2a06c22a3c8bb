package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a delete targets a path that does not exist
var ErrNotFound = errors.New("file not found")

// UploadResult describes a stored blob
type UploadResult struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	URL      string `json:"url"`
	Size     int64  `json:"size"`
	MimeType string `json:"mimeType"`
}

// BlobStore stores user-uploaded files and serves them by public URL.
// relPath is a forward-slash path like "uploads/<uid>/<name>"; the final
// path segment is sanitized by the implementation before use.
type BlobStore interface {
	Save(ctx context.Context, data []byte, relPath string, mimeType string) (*UploadResult, error)
	Delete(ctx context.Context, relPath string) error
}
