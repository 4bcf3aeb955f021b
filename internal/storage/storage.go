package storage

import (
	"context"
	"io"
	"time"
)

// BlobStore holds routine documents under opaque keys. Callers never see
// file bytes; clients upload and download through presigned URLs.
type BlobStore interface {
	PresignUpload(ctx context.Context, key, contentType string, expiresIn time.Duration) (string, error)
	PresignDownload(ctx context.Context, key string, expiresIn time.Duration) (string, error)
	// Exists reports whether key is present and its size.
	Exists(ctx context.Context, key string) (bool, int64, error)
	Delete(ctx context.Context, key string) error
}

// FileServer is implemented by stores whose presigned URLs point back at
// this process, so the HTTP layer can move the bytes itself.
type FileServer interface {
	// Verify checks the signature and expiry a presigned URL carries.
	Verify(key, op string, expires int64, sig string) bool
	Save(key, contentType string, r io.Reader) error
	Open(key string) (io.ReadCloser, string, error)
}
