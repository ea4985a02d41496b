package services

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// BlobStore is the external object-store collaborator. The engine only
// knows put/get/delete by locator; replication and durability are the
// store's concern.
type BlobStore interface {
	Put(locator string, r io.Reader) error
	Open(locator string) (io.ReadCloser, error)
	Delete(locator string) error
}

// Blobs is the process-wide blob store, set once at startup.
// Swappable in tests.
var Blobs BlobStore

// InitBlobStore wires the default disk-backed store under UPLOAD_PATH.
func InitBlobStore() {
	root := os.Getenv("UPLOAD_PATH")
	if root == "" {
		root = "./uploads"
	}
	Blobs = &LocalBlobStore{Root: root}
}

// BuildStorageLocator derives the deterministic blob key for a document
// upload from its owning identifiers and the upload instant.
func BuildStorageLocator(ownerID, appID int, docType string, ts time.Time, ext string) string {
	return fmt.Sprintf("%d/%d/%s/%d%s", ownerID, appID, docType, ts.UnixNano(), ext)
}

// LocalBlobStore keeps blobs on the local filesystem under Root.
type LocalBlobStore struct {
	Root string
}

func (s *LocalBlobStore) path(locator string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(locator))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid storage locator %q", locator)
	}
	return filepath.Join(s.Root, clean), nil
}

func (s *LocalBlobStore) Put(locator string, r io.Reader) error {
	path, err := s.path(locator)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

func (s *LocalBlobStore) Open(locator string) (io.ReadCloser, error) {
	path, err := s.path(locator)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

func (s *LocalBlobStore) Delete(locator string) error {
	path, err := s.path(locator)
	if err != nil {
		return err
	}
	return os.Remove(path)
}
