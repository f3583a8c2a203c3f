package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"memeboard/core"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

type sqliteStore struct {
	db *sql.DB
}

// NewStore creates a new SQLite-based store.
func NewStore(dataSourceName string) *sqliteStore {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		log.Fatalf("failed to open sqlite database: %v", err)
	}

	sceneTableStmt := `
	CREATE TABLE IF NOT EXISTS scenes (
		id TEXT PRIMARY KEY,
		name TEXT,
		elements BLOB,
		scroll_x REAL,
		scroll_y REAL,
		created_at DATETIME,
		updated_at DATETIME
	);`
	if _, err = db.Exec(sceneTableStmt); err != nil {
		log.Fatalf("failed to create scenes table: %v", err)
	}

	blobTableStmt := `CREATE TABLE IF NOT EXISTS blobs (element_id TEXT PRIMARY KEY, data BLOB);`
	if _, err = db.Exec(blobTableStmt); err != nil {
		log.Fatalf("failed to create blobs table: %v", err)
	}

	return &sqliteStore{db}
}

// SceneStore implementation
func (s *sqliteStore) List(ctx context.Context) ([]*core.SceneDoc, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, scroll_x, scroll_y, created_at, updated_at FROM scenes")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*core.SceneDoc
	for rows.Next() {
		var doc core.SceneDoc
		if err := rows.Scan(&doc.ID, &doc.Name, &doc.ScrollX, &doc.ScrollY, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
			return nil, err
		}
		docs = append(docs, &doc)
	}
	return docs, rows.Err()
}

func (s *sqliteStore) Get(ctx context.Context, id string) (*core.SceneDoc, error) {
	log := logrus.WithField("scene_id", id)
	var doc core.SceneDoc
	var elements []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, elements, scroll_x, scroll_y, created_at, updated_at FROM scenes WHERE id = ?", id,
	).Scan(&doc.ID, &doc.Name, &elements, &doc.ScrollX, &doc.ScrollY, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			log.Warn("Scene with specified ID not found")
			return nil, fmt.Errorf("scene with id %s not found", id)
		}
		log.WithError(err).Error("Failed to retrieve scene")
		return nil, err
	}
	if len(elements) > 0 {
		if err := json.Unmarshal(elements, &doc.Elements); err != nil {
			log.WithError(err).Error("Failed to unmarshal scene elements")
			return nil, err
		}
	}
	log.Info("Scene retrieved successfully")
	return &doc, nil
}

func (s *sqliteStore) Save(ctx context.Context, doc *core.SceneDoc) error {
	elements, err := json.Marshal(doc.Elements)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() // Rollback on any error

	var exists bool
	err = tx.QueryRowContext(ctx, "SELECT 1 FROM scenes WHERE id = ?", doc.ID).Scan(&exists)
	if err != nil && err != sql.ErrNoRows {
		return err
	}

	now := time.Now()
	if exists {
		_, err = tx.ExecContext(ctx,
			"UPDATE scenes SET name = ?, elements = ?, scroll_x = ?, scroll_y = ?, updated_at = ? WHERE id = ?",
			doc.Name, elements, doc.ScrollX, doc.ScrollY, now, doc.ID)
	} else {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO scenes (id, name, elements, scroll_x, scroll_y, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
			doc.ID, doc.Name, elements, doc.ScrollX, doc.ScrollY, now, now)
	}
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (s *sqliteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM scenes WHERE id = ?", id)
	return err
}

// BlobStore implementation
func (s *sqliteStore) PutBlob(ctx context.Context, elementID string, data []byte) error {
	log := logrus.WithFields(logrus.Fields{
		"element_id":  elementID,
		"data_length": len(data),
	})
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO blobs (element_id, data) VALUES (?, ?) ON CONFLICT(element_id) DO UPDATE SET data = excluded.data",
		elementID, data)
	if err != nil {
		log.WithError(err).Error("Failed to store blob")
		return err
	}
	log.Info("Blob stored successfully")
	return nil
}

func (s *sqliteStore) GetBlob(ctx context.Context, elementID string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, "SELECT data FROM blobs WHERE element_id = ?", elementID).Scan(&data)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("blob for element %s not found", elementID)
		}
		return nil, err
	}
	return data, nil
}

func (s *sqliteStore) DeleteBlob(ctx context.Context, elementID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM blobs WHERE element_id = ?", elementID)
	return err
}
