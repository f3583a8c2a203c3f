package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"memeboard/core"

	"github.com/sirupsen/logrus"
)

// memStore implements both SceneStore and BlobStore for in-memory storage.
type memStore struct {
	mu     sync.RWMutex
	scenes map[string]*core.SceneDoc
	blobs  map[string][]byte
}

// NewStore creates a new in-memory store.
func NewStore() *memStore {
	return &memStore{
		scenes: make(map[string]*core.SceneDoc),
		blobs:  make(map[string][]byte),
	}
}

// List returns metadata for all stored scenes. Part of the SceneStore interface.
func (s *memStore) List(ctx context.Context) ([]*core.SceneDoc, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]*core.SceneDoc, 0, len(s.scenes))
	for _, doc := range s.scenes {
		// Important: copy without the Elements payload for the list view.
		docs = append(docs, &core.SceneDoc{
			ID:        doc.ID,
			Name:      doc.Name,
			ScrollX:   doc.ScrollX,
			ScrollY:   doc.ScrollY,
			CreatedAt: doc.CreatedAt,
			UpdatedAt: doc.UpdatedAt,
		})
	}
	logrus.Infof("Listed %d scenes", len(docs))
	return docs, nil
}

// Get returns a single scene by its ID. Part of the SceneStore interface.
func (s *memStore) Get(ctx context.Context, id string) (*core.SceneDoc, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	log := logrus.WithField("scene_id", id)
	doc, ok := s.scenes[id]
	if !ok {
		log.Warn("Scene with specified ID not found")
		return nil, fmt.Errorf("scene with id %s not found", id)
	}

	out := *doc
	out.Elements = core.CloneElements(doc.Elements)
	log.Info("Scene retrieved successfully")
	return &out, nil
}

// Save creates or updates a scene. Part of the SceneStore interface.
func (s *memStore) Save(ctx context.Context, doc *core.SceneDoc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if doc.ID == "" {
		return fmt.Errorf("scene ID cannot be empty for save operation")
	}

	now := time.Now()
	stored := *doc
	stored.Elements = core.CloneElements(doc.Elements)
	if existing, exists := s.scenes[doc.ID]; exists {
		stored.CreatedAt = existing.CreatedAt
		stored.UpdatedAt = now
	} else {
		stored.CreatedAt = now
		stored.UpdatedAt = now
	}

	s.scenes[doc.ID] = &stored
	logrus.WithFields(logrus.Fields{
		"scene_id": doc.ID,
		"elements": len(doc.Elements),
	}).Info("Scene saved successfully")
	return nil
}

// Delete removes a scene. Part of the SceneStore interface.
func (s *memStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.scenes[id]; !ok {
		logrus.WithField("scene_id", id).Warn("Scene not found for deletion")
		return fmt.Errorf("scene with id %s not found", id)
	}
	delete(s.scenes, id)
	logrus.WithField("scene_id", id).Info("Scene deleted successfully")
	return nil
}

// PutBlob stores an image payload by element id. Part of the BlobStore interface.
func (s *memStore) PutBlob(ctx context.Context, elementID string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]byte, len(data))
	copy(stored, data)
	s.blobs[elementID] = stored
	logrus.WithFields(logrus.Fields{
		"element_id":  elementID,
		"data_length": len(data),
	}).Info("Blob stored successfully")
	return nil
}

// GetBlob retrieves an image payload by element id. Part of the BlobStore interface.
func (s *memStore) GetBlob(ctx context.Context, elementID string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.blobs[elementID]
	if !ok {
		logrus.WithField("element_id", elementID).Warn("Blob with specified element ID not found")
		return nil, fmt.Errorf("blob for element %s not found", elementID)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// DeleteBlob removes an image payload. Part of the BlobStore interface.
func (s *memStore) DeleteBlob(ctx context.Context, elementID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.blobs, elementID)
	return nil
}
