package storage

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	OpUpload   = "upload"
	OpDownload = "download"

	contentTypeSuffix = ".content-type"
)

var ErrNotFound = errors.New("storage: object not found")

// LocalStore keeps objects on the local filesystem and signs URLs served by
// the routine HTTP handlers.
type LocalStore struct {
	baseURL string
	dir     string
	secret  []byte
	now     func() time.Time
}

func NewLocalStore(baseURL, dir, secret string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		dir:     dir,
		secret:  []byte(secret),
		now:     time.Now,
	}, nil
}

func (s *LocalStore) PresignUpload(ctx context.Context, key, contentType string, expiresIn time.Duration) (string, error) {
	return s.presign(OpUpload, key, expiresIn)
}

func (s *LocalStore) PresignDownload(ctx context.Context, key string, expiresIn time.Duration) (string, error) {
	if _, err := os.Stat(s.path(key)); err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotFound
		}
		return "", err
	}
	return s.presign(OpDownload, key, expiresIn)
}

func (s *LocalStore) presign(op, key string, expiresIn time.Duration) (string, error) {
	if err := checkKey(key); err != nil {
		return "", err
	}
	expires := s.now().Add(expiresIn).Unix()
	q := url.Values{}
	q.Set("key", key)
	q.Set("expires", strconv.FormatInt(expires, 10))
	q.Set("sig", s.sign(key, op, expires))
	return fmt.Sprintf("%s/api/v1/routines/%s?%s", s.baseURL, op, q.Encode()), nil
}

func (s *LocalStore) sign(key, op string, expires int64) string {
	mac := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(mac, "%s\n%s\n%d", op, key, expires)
	return hex.EncodeToString(mac.Sum(nil))
}

func (s *LocalStore) Verify(key, op string, expires int64, sig string) bool {
	if s.now().Unix() > expires {
		return false
	}
	return hmac.Equal([]byte(s.sign(key, op, expires)), []byte(sig))
}

func (s *LocalStore) Exists(ctx context.Context, key string) (bool, int64, error) {
	info, err := os.Stat(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return false, 0, nil
		}
		return false, 0, err
	}
	return true, info.Size(), nil
}

func (s *LocalStore) Delete(ctx context.Context, key string) error {
	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	_ = os.Remove(s.path(key) + contentTypeSuffix)
	return nil
}

func (s *LocalStore) Save(key, contentType string, r io.Reader) error {
	if err := checkKey(key); err != nil {
		return err
	}
	full := s.path(key)
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}
	f, err := os.Create(full)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return os.WriteFile(full+contentTypeSuffix, []byte(contentType), 0644)
}

// Open returns the object and the content type it was uploaded with.
func (s *LocalStore) Open(key string) (io.ReadCloser, string, error) {
	if err := checkKey(key); err != nil {
		return nil, "", err
	}
	f, err := os.Open(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", ErrNotFound
		}
		return nil, "", err
	}
	ct, err := os.ReadFile(s.path(key) + contentTypeSuffix)
	if err != nil || len(ct) == 0 {
		ct = []byte("application/octet-stream")
	}
	return f, string(ct), nil
}

func (s *LocalStore) path(key string) string {
	return filepath.Join(s.dir, filepath.FromSlash(key))
}

// checkKey rejects keys that would escape the storage directory.
func checkKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "..") {
		return fmt.Errorf("invalid storage key %q", key)
	}
	return nil
}
