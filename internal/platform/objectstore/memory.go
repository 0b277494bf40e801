package objectstore

import (
	"context"
	"fmt"
	"sync"

	"lingkod/pkg/platform/sentinel"
)

// Memory is an in-process object store for tests and local development.
type Memory struct {
	mu      sync.Mutex
	objects map[string][]byte

	// FailNext makes the next upload fail, for exercising the best-effort
	// photo path.
	FailNext bool
}

// NewMemory builds an empty in-memory object store.
func NewMemory() *Memory {
	return &Memory{objects: make(map[string][]byte)}
}

func (m *Memory) Upload(_ context.Context, bucket, key string, data []byte, opts UploadOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailNext {
		m.FailNext = false
		return "", fmt.Errorf("upload %s/%s: %w", bucket, key, sentinel.ErrUnavailable)
	}

	path := bucket + "/" + key
	if _, exists := m.objects[path]; exists && !opts.Upsert {
		return "", fmt.Errorf("upload %s: %w", path, sentinel.ErrDuplicate)
	}
	m.objects[path] = append([]byte(nil), data...)
	return path, nil
}

func (m *Memory) PublicURL(_, path string) string {
	return "https://storage.local/public/" + path
}

// ObjectCount reports how many objects the store holds.
func (m *Memory) ObjectCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

// Object returns a stored object's bytes.
func (m *Memory) Object(path string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.objects[path]
	return b, ok
}
