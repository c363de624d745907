package blobstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

type memoryObject struct {
	data        []byte
	contentType string
}

// In-process store for development and tests. Content is lost on restart
type MemoryStore struct {
	publicURL string

	mu      sync.RWMutex
	objects map[string]memoryObject
}

func NewMemoryStore(publicURL string) *MemoryStore {
	return &MemoryStore{
		publicURL: strings.TrimSuffix(publicURL, "/"),
		objects:   make(map[string]memoryObject),
	}
}

func (s *MemoryStore) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return "", fmt.Errorf("blobstore: can't read %s: %w", key, err)
	}
	if size >= 0 && int64(buf.Len()) != size {
		return "", fmt.Errorf("blobstore: %s size mismatch: want %d, got %d", key, size, buf.Len())
	}

	s.mu.Lock()
	s.objects[key] = memoryObject{data: buf.Bytes(), contentType: contentType}
	s.mu.Unlock()

	return s.publicURL + "/" + key, nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	delete(s.objects, key)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.objects[key]
	if !ok {
		return nil, "", ErrNotFound
	}
	return obj.data, obj.contentType, nil
}

// Number of stored objects
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
