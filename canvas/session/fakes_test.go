package session

import (
	"context"
	"fmt"
	"sync"

	"memeboard/core"
)

// fakeBlobStore is a map-backed core.BlobStore for controller tests.
type fakeBlobStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
	puts  int
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{blobs: make(map[string][]byte)}
}

func (s *fakeBlobStore) PutBlob(_ context.Context, elementID string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[elementID] = append([]byte(nil), data...)
	s.puts++
	return nil
}

func (s *fakeBlobStore) GetBlob(_ context.Context, elementID string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.blobs[elementID]
	if !ok {
		return nil, fmt.Errorf("blob %s not found", elementID)
	}
	return append([]byte(nil), data...), nil
}

func (s *fakeBlobStore) DeleteBlob(_ context.Context, elementID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, elementID)
	return nil
}

// removerFunc adapts a function to the Remover interface.
type removerFunc func(ctx context.Context, elementID string, blob []byte) ([]byte, error)

func (f removerFunc) Remove(ctx context.Context, elementID string, blob []byte) ([]byte, error) {
	return f(ctx, elementID, blob)
}

// samplerFunc adapts a function to the PixelSampler interface.
type samplerFunc func(imageID string, x, y float64) (string, bool)

func (f samplerFunc) SampleAt(imageID string, x, y float64) (string, bool) {
	return f(imageID, x, y)
}

// statusRecorder captures status messages in order.
type statusRecorder struct {
	mu   sync.Mutex
	msgs []string
}

func (r *statusRecorder) record(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
}

func (r *statusRecorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.msgs...)
}

func (r *statusRecorder) contains(msg string) bool {
	for _, m := range r.all() {
		if m == msg {
			return true
		}
	}
	return false
}

var _ core.BlobStore = (*fakeBlobStore)(nil)
