package filesystem

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"memeboard/core"

	"github.com/sirupsen/logrus"
)

type fsStore struct {
	basePath string
}

// NewStore creates a new filesystem-based store. Scenes live as JSON
// files under scenes/, image payloads as raw files under blobs/.
func NewStore(basePath string) *fsStore {
	for _, dir := range []string{basePath, filepath.Join(basePath, "scenes"), filepath.Join(basePath, "blobs")} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("failed to create storage directory: %v", err)
		}
	}
	return &fsStore{basePath: basePath}
}

// scenePath validates the id and resolves the scene file path. Ids
// must be simple names, never paths.
func (s *fsStore) scenePath(id string) (string, error) {
	return s.entryPath("scenes", id)
}

func (s *fsStore) blobPath(elementID string) (string, error) {
	return s.entryPath("blobs", elementID)
}

func (s *fsStore) entryPath(kind, id string) (string, error) {
	if id == "" || id == "." || id == ".." {
		return "", fmt.Errorf("invalid id: must not be empty or a dot directory")
	}
	base := filepath.Join(s.basePath, kind)
	p := filepath.Join(base, id)

	absBase, err := filepath.Abs(base)
	if err != nil {
		return "", err
	}
	absPath, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(absPath, absBase) {
		return "", fmt.Errorf("invalid path: access denied")
	}
	return absPath, nil
}

// List returns metadata for all stored scenes. Part of the SceneStore interface.
func (s *fsStore) List(ctx context.Context) ([]*core.SceneDoc, error) {
	dir := filepath.Join(s.basePath, "scenes")
	log := logrus.WithField("path", dir)

	files, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			log.Info("Scene directory does not exist, returning empty list.")
			return []*core.SceneDoc{}, nil
		}
		log.WithError(err).Error("Failed to read scene directory")
		return nil, err
	}

	docs := make([]*core.SceneDoc, 0, len(files))
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, file.Name()))
		if err != nil {
			log.WithError(err).Warnf("Failed to read scene file %s, skipping", file.Name())
			continue
		}

		var doc core.SceneDoc
		if err := json.Unmarshal(data, &doc); err != nil {
			log.WithError(err).Warnf("Failed to unmarshal scene file %s, skipping", file.Name())
			continue
		}

		// For list view, we don't need the full element payload.
		doc.Elements = nil
		if info, err := file.Info(); err == nil {
			doc.UpdatedAt = info.ModTime()
		}
		docs = append(docs, &doc)
	}

	log.Infof("Listed %d scenes", len(docs))
	return docs, nil
}

// Get returns a single scene by its ID. Part of the SceneStore interface.
func (s *fsStore) Get(ctx context.Context, id string) (*core.SceneDoc, error) {
	filePath, err := s.scenePath(id)
	if err != nil {
		return nil, err
	}
	log := logrus.WithFields(logrus.Fields{"scene_id": id, "path": filePath})

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warn("Scene file not found")
			return nil, fmt.Errorf("scene %s not found", id)
		}
		log.WithError(err).Error("Failed to read scene file")
		return nil, err
	}

	var doc core.SceneDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		log.WithError(err).Error("Failed to unmarshal scene data")
		return nil, err
	}
	if info, err := os.Stat(filePath); err == nil {
		doc.UpdatedAt = info.ModTime()
	}

	log.Info("Scene retrieved successfully")
	return &doc, nil
}

// Save creates or updates a scene. Part of the SceneStore interface.
func (s *fsStore) Save(ctx context.Context, doc *core.SceneDoc) error {
	filePath, err := s.scenePath(doc.ID)
	if err != nil {
		return err
	}
	log := logrus.WithFields(logrus.Fields{"scene_id": doc.ID, "path": filePath})

	// Filesystems don't keep creation time reliably; reuse the stored one.
	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		doc.CreatedAt = time.Now()
	} else if err == nil {
		doc.CreatedAt = info.ModTime()
	}
	doc.UpdatedAt = time.Now()

	data, err := json.Marshal(doc)
	if err != nil {
		log.WithError(err).Error("Failed to marshal scene for saving")
		return err
	}
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		log.WithError(err).Error("Failed to write scene file")
		return err
	}
	log.Info("Scene saved")
	return nil
}

// Delete removes a scene. Part of the SceneStore interface.
func (s *fsStore) Delete(ctx context.Context, id string) error {
	filePath, err := s.scenePath(id)
	if err != nil {
		return err
	}
	log := logrus.WithFields(logrus.Fields{"scene_id": id, "path": filePath})

	if err := os.Remove(filePath); err != nil {
		if os.IsNotExist(err) {
			log.Warn("Scene file not found for deletion, considered successful.")
			return nil // If it doesn't exist, the goal is achieved.
		}
		log.WithError(err).Error("Failed to delete scene file")
		return err
	}
	log.Info("Scene deleted successfully")
	return nil
}

// PutBlob stores an image payload. Part of the BlobStore interface.
func (s *fsStore) PutBlob(ctx context.Context, elementID string, data []byte) error {
	filePath, err := s.blobPath(elementID)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		logrus.WithError(err).WithField("element_id", elementID).Error("Failed to write blob file")
		return err
	}
	return nil
}

// GetBlob retrieves an image payload. Part of the BlobStore interface.
func (s *fsStore) GetBlob(ctx context.Context, elementID string) ([]byte, error) {
	filePath, err := s.blobPath(elementID)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("blob for element %s not found", elementID)
		}
		return nil, err
	}
	return data, nil
}

// DeleteBlob removes an image payload. Part of the BlobStore interface.
func (s *fsStore) DeleteBlob(ctx context.Context, elementID string) error {
	filePath, err := s.blobPath(elementID)
	if err != nil {
		return err
	}
	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
