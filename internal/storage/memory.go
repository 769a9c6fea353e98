package storage

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/baharkarakas/storefront-backend/internal/apperr"
)

type memObject struct {
	data        []byte
	contentType string
}

// MemoryImages keeps images in process memory. It backs development runs
// without object storage and the handler tests.
type MemoryImages struct {
	mu      sync.RWMutex
	objects map[string]memObject
}

var _ Images = (*MemoryImages)(nil)

func NewMemoryImages() *MemoryImages {
	return &MemoryImages{objects: map[string]memObject{}}
}

func (m *MemoryImages) Put(_ context.Context, key string, r io.Reader, _ int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.objects[key] = memObject{data: data, contentType: contentType}
	m.mu.Unlock()
	return nil
}

func (m *MemoryImages) Open(_ context.Context, key string) (Object, error) {
	m.mu.RLock()
	o, ok := m.objects[key]
	m.mu.RUnlock()
	if !ok {
		return Object{}, apperr.NotFound("image")
	}
	return Object{
		Body:        io.NopCloser(bytes.NewReader(o.data)),
		ContentType: o.contentType,
		Size:        int64(len(o.data)),
	}, nil
}

func (m *MemoryImages) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.objects, key)
	m.mu.Unlock()
	return nil
}

func (m *MemoryImages) Has(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[key]
	return ok
}
