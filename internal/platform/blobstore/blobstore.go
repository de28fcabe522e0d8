// Package blobstore provides attachment storage for medical records. It
// defines the Store interface, a filesystem implementation for production,
// an in-memory implementation for testing, and the signed-URL scheme that
// lets record owners and link recipients download files without a session.
package blobstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrObjectNotFound     = errors.New("object not found")
	ErrInvalidKey         = errors.New("invalid object key")
	ErrFileTooLarge       = errors.New("file exceeds maximum allowed size")
	ErrInvalidContentType = errors.New("content type is not allowed")
)

// MaxFileSize is the maximum allowed attachment size in bytes (10 MB).
const MaxFileSize = 10 * 1024 * 1024

// AllowedContentTypes lists the attachment MIME types accepted on upload.
var AllowedContentTypes = map[string]bool{
	"image/png":       true,
	"image/jpeg":      true,
	"image/webp":      true,
	"image/gif":       true,
	"application/pdf": true,
	"text/plain":      true,
}

// Object describes a stored attachment.
type Object struct {
	Key         string    `json:"key"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	ModifiedAt  time.Time `json:"modified_at"`
}

// Store is the contract for attachment storage backends.
type Store interface {
	Put(ctx context.Context, key, contentType string, content io.Reader) (*Object, error)
	Open(ctx context.Context, key string) (io.ReadCloser, *Object, error)
	Remove(ctx context.Context, key string) error
}

// NewKey builds an object key for an owner's upload. Keys are namespaced by
// owner id and named by upload time so replacing an attachment never reuses
// the previous object's key.
func NewKey(ownerID uuid.UUID, fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	return fmt.Sprintf("%s/%d%s", ownerID, time.Now().UnixMilli(), ext)
}

// ParseKey validates an object key and returns its owner id. Keys have
// exactly two segments and the first must be a UUID, which also rules out
// path traversal.
func ParseKey(key string) (uuid.UUID, error) {
	parts := strings.Split(key, "/")
	if len(parts) != 2 || parts[1] == "" {
		return uuid.Nil, ErrInvalidKey
	}
	owner, err := uuid.Parse(parts[0])
	if err != nil {
		return uuid.Nil, ErrInvalidKey
	}
	if strings.Contains(parts[1], "..") || strings.ContainsAny(parts[1], `\`) {
		return uuid.Nil, ErrInvalidKey
	}
	return owner, nil
}

// ValidateUpload checks size and content type limits before a Put.
func ValidateUpload(contentType string, size int64) error {
	if size > MaxFileSize {
		return ErrFileTooLarge
	}
	if !AllowedContentTypes[contentType] {
		return ErrInvalidContentType
	}
	return nil
}

// ---------------------------------------------------------------------------
// Filesystem implementation
// ---------------------------------------------------------------------------

// FSStore stores objects under a root directory, one file per key. Content
// types are kept in a sidecar map rebuilt lazily from file extensions.
type FSStore struct {
	root string

	mu    sync.RWMutex
	types map[string]string
}

// NewFSStore creates the root directory if needed and returns a ready store.
func NewFSStore(root string) (*FSStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating blob root: %w", err)
	}
	return &FSStore{root: root, types: make(map[string]string)}, nil
}

func (s *FSStore) path(key string) string {
	return filepath.Join(s.root, filepath.FromSlash(key))
}

func (s *FSStore) Put(_ context.Context, key, contentType string, content io.Reader) (*Object, error) {
	if _, err := ParseKey(key); err != nil {
		return nil, err
	}

	dst := s.path(key)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return nil, fmt.Errorf("creating owner directory: %w", err)
	}

	// Write to a temp file first so a failed upload never leaves a
	// truncated object behind.
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp file: %w", err)
	}
	size, err := io.Copy(tmp, io.LimitReader(content, MaxFileSize+1))
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("writing content: %w", err)
	}
	if size > MaxFileSize {
		os.Remove(tmp.Name())
		return nil, ErrFileTooLarge
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("storing object: %w", err)
	}

	s.mu.Lock()
	s.types[key] = contentType
	s.mu.Unlock()

	return &Object{
		Key:         key,
		ContentType: contentType,
		Size:        size,
		ModifiedAt:  time.Now().UTC(),
	}, nil
}

func (s *FSStore) Open(_ context.Context, key string) (io.ReadCloser, *Object, error) {
	if _, err := ParseKey(key); err != nil {
		return nil, nil, err
	}

	f, err := os.Open(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, ErrObjectNotFound
		}
		return nil, nil, fmt.Errorf("opening object: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("stat object: %w", err)
	}

	s.mu.RLock()
	contentType := s.types[key]
	s.mu.RUnlock()
	if contentType == "" {
		contentType = contentTypeForKey(key)
	}

	return f, &Object{
		Key:         key,
		ContentType: contentType,
		Size:        info.Size(),
		ModifiedAt:  info.ModTime().UTC(),
	}, nil
}

func (s *FSStore) Remove(_ context.Context, key string) error {
	if _, err := ParseKey(key); err != nil {
		return err
	}
	if err := os.Remove(s.path(key)); err != nil {
		if os.IsNotExist(err) {
			return ErrObjectNotFound
		}
		return fmt.Errorf("removing object: %w", err)
	}
	s.mu.Lock()
	delete(s.types, key)
	s.mu.Unlock()
	return nil
}

// contentTypeForKey infers a MIME type from the key's extension. Used after
// process restart when the sidecar map is empty.
func contentTypeForKey(key string) string {
	switch strings.ToLower(filepath.Ext(key)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	case ".pdf":
		return "application/pdf"
	case ".txt":
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}

// ---------------------------------------------------------------------------
// In-memory implementation
// ---------------------------------------------------------------------------

type storedObject struct {
	object  Object
	content []byte
}

// MemoryStore is a thread-safe, in-memory Store for testing and development.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]*storedObject
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string]*storedObject)}
}

func (s *MemoryStore) Put(_ context.Context, key, contentType string, content io.Reader) (*Object, error) {
	if _, err := ParseKey(key); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(content, MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading content: %w", err)
	}
	if int64(len(data)) > MaxFileSize {
		return nil, ErrFileTooLarge
	}

	obj := Object{
		Key:         key,
		ContentType: contentType,
		Size:        int64(len(data)),
		ModifiedAt:  time.Now().UTC(),
	}

	s.mu.Lock()
	s.objects[key] = &storedObject{object: obj, content: data}
	s.mu.Unlock()

	out := obj
	return &out, nil
}

func (s *MemoryStore) Open(_ context.Context, key string) (io.ReadCloser, *Object, error) {
	s.mu.RLock()
	stored, ok := s.objects[key]
	s.mu.RUnlock()

	if !ok {
		return nil, nil, ErrObjectNotFound
	}
	obj := stored.object
	return io.NopCloser(bytes.NewReader(stored.content)), &obj, nil
}

func (s *MemoryStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.objects[key]; !ok {
		return ErrObjectNotFound
	}
	delete(s.objects, key)
	return nil
}
