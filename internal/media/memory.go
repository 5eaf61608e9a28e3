package media

import (
	"context"
	"sync"
)

// Object is a stored blob held by MemoryStore.
type Object struct {
	Body        []byte
	ContentType string
}

// MemoryStore keeps objects in process memory. It backs STORAGE_DRIVER=memory
// and the tests.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]Object
	base    string
}

// NewMemoryStore returns an empty store whose URLs start with base.
func NewMemoryStore(base string) *MemoryStore {
	if base == "" {
		base = "memory://images"
	}
	return &MemoryStore{objects: make(map[string]Object), base: base}
}

// Put stores a copy of body.
func (m *MemoryStore) Put(ctx context.Context, key string, body []byte, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cp := append([]byte(nil), body...)
	m.mu.Lock()
	m.objects[key] = Object{Body: cp, ContentType: contentType}
	m.mu.Unlock()
	return nil
}

// Delete removes key or returns ErrObjectNotFound.
func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[key]; !ok {
		return ErrObjectNotFound
	}
	delete(m.objects, key)
	return nil
}

// URL returns the address of key.
func (m *MemoryStore) URL(key string) string { return m.base + "/" + key }

// Get returns the object stored under key.
func (m *MemoryStore) Get(key string) (Object, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.objects[key]
	return o, ok
}

// Len reports the number of stored objects.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
