package aws

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"path"
	"time"

	"memeboard/core"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type s3Store struct {
	s3Client *s3.Client
	bucket   string
}

// NewStore creates a new S3-based store.
func NewStore(bucketName string) *s3Store {
	cfg, err := config.LoadDefaultConfig(context.TODO())
	if err != nil {
		log.Fatalf("unable to load SDK config, %v", err)
	}

	s3Client := s3.NewFromConfig(cfg)

	return &s3Store{
		s3Client: s3Client,
		bucket:   bucketName,
	}
}

// objectKey sanitizes the id (it must be a simple name, not a path)
// and prefixes it for the given object kind.
func objectKey(kind, id string) (string, error) {
	if path.Base(id) != id {
		return "", fmt.Errorf("invalid id: must not be a path")
	}
	if id == "" || id == "." || id == ".." {
		return "", fmt.Errorf("invalid id: must not be empty or a dot directory")
	}
	return path.Join(kind, id), nil
}

// SceneStore implementation
func (s *s3Store) List(ctx context.Context) ([]*core.SceneDoc, error) {
	output, err := s.s3Client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String("scenes/"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list scenes: %v", err)
	}

	docs := make([]*core.SceneDoc, 0, len(output.Contents))
	for _, object := range output.Contents {
		resp, err := s.s3Client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    object.Key,
		})
		if err != nil {
			log.Printf("warn: failed to get object %s: %v", *object.Key, err)
			continue
		}
		data, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			log.Printf("warn: failed to read object body %s: %v", *object.Key, err)
			continue
		}

		var doc core.SceneDoc
		if err := json.Unmarshal(data, &doc); err != nil {
			log.Printf("warn: failed to unmarshal scene %s: %v", *object.Key, err)
			continue
		}

		// For list view, we don't need the full element payload.
		doc.Elements = nil
		docs = append(docs, &doc)
	}

	return docs, nil
}

func (s *s3Store) Get(ctx context.Context, id string) (*core.SceneDoc, error) {
	key, err := objectKey("scenes", id)
	if err != nil {
		return nil, err
	}
	resp, err := s.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *s3types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("scene not found")
		}
		return nil, fmt.Errorf("failed to get scene %s: %v", id, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene data: %v", err)
	}

	var doc core.SceneDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal scene data: %v", err)
	}

	return &doc, nil
}

func (s *s3Store) Save(ctx context.Context, doc *core.SceneDoc) error {
	key, err := objectKey("scenes", doc.ID)
	if err != nil {
		return err
	}

	// Preserve CreatedAt on update
	if doc.CreatedAt.IsZero() {
		existing, err := s.Get(ctx, doc.ID)
		if err == nil && existing != nil {
			doc.CreatedAt = existing.CreatedAt
		} else {
			doc.CreatedAt = time.Now()
		}
	}
	doc.UpdatedAt = time.Now()

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal scene: %v", err)
	}

	_, err = s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("failed to save scene %s: %v", doc.ID, err)
	}
	return nil
}

func (s *s3Store) Delete(ctx context.Context, id string) error {
	key, err := objectKey("scenes", id)
	if err != nil {
		return err
	}
	_, err = s.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete scene %s: %v", id, err)
	}
	return nil
}

// BlobStore implementation
func (s *s3Store) PutBlob(ctx context.Context, elementID string, data []byte) error {
	key, err := objectKey("blobs", elementID)
	if err != nil {
		return err
	}
	_, err = s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("failed to upload blob for element %s: %v", elementID, err)
	}
	return nil
}

func (s *s3Store) GetBlob(ctx context.Context, elementID string) ([]byte, error) {
	key, err := objectKey("blobs", elementID)
	if err != nil {
		return nil, err
	}
	resp, err := s.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *s3types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("blob for element %s not found", elementID)
		}
		return nil, fmt.Errorf("failed to get blob for element %s: %v", elementID, err)
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

func (s *s3Store) DeleteBlob(ctx context.Context, elementID string) error {
	key, err := objectKey("blobs", elementID)
	if err != nil {
		return err
	}
	_, err = s.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete blob for element %s: %v", elementID, err)
	}
	return nil
}
