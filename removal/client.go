// Package removal is the client for the background-removal inference
// service: image bytes in, processed image bytes out. The service is
// opaque to the engine; failures surface as errors the session maps to
// a status message.
package removal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrNotConfigured is returned when no inference endpoint is set.
var ErrNotConfigured = errors.New("removal: REMOVAL_API_URL is not set")

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewFromEnv builds a client from REMOVAL_API_URL and REMOVAL_API_KEY.
func NewFromEnv() *Client {
	baseURL := os.Getenv("REMOVAL_API_URL")
	if baseURL == "" {
		logrus.Warn("REMOVAL_API_URL environment variable not set. Background removal will not work.")
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  os.Getenv("REMOVAL_API_KEY"),
		http:    &http.Client{Timeout: 120 * time.Second},
	}
}

// New builds a client for a known endpoint. Used by tests.
func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 120 * time.Second},
	}
}

// Remove posts the image to the inference service and returns the
// processed image. The element id travels along for server-side
// logging only.
func (c *Client) Remove(ctx context.Context, elementID string, blob []byte) ([]byte, error) {
	if c.baseURL == "" {
		return nil, ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/remove", bytes.NewReader(blob))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("X-Element-ID", elementID)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	log := logrus.WithFields(logrus.Fields{
		"element_id": elementID,
		"bytes":      len(blob),
	})
	log.Debug("Requesting background removal")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("removal service returned %d: %s", resp.StatusCode, body)
	}

	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	log.WithField("result_bytes", len(out)).Info("Background removal completed")
	return out, nil
}
