package core

import "context"

type (
	// SceneStore defines the persistence layer for canvas documents.
	// The engine treats saves as fire-and-forget: errors are logged and
	// reported as status messages, never surfaced to the gesture that
	// triggered them.
	SceneStore interface {
		// List returns metadata for all stored scenes. The returned
		// documents do not include the Elements payload.
		List(ctx context.Context) ([]*SceneDoc, error)

		// Get returns a single scene by id.
		Get(ctx context.Context, id string) (*SceneDoc, error)

		// Save creates or updates a scene.
		Save(ctx context.Context, doc *SceneDoc) error

		// Delete removes a scene.
		Delete(ctx context.Context, id string) error
	}

	// BlobStore holds binary image payloads keyed by element id.
	BlobStore interface {
		PutBlob(ctx context.Context, elementID string, data []byte) error
		GetBlob(ctx context.Context, elementID string) ([]byte, error)
		DeleteBlob(ctx context.Context, elementID string) error
	}
)
