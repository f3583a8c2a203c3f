package removebg

import (
	"context"
	"errors"
	"net/http"

	"memeboard/removal"
	"memeboard/stores"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"
)

// Remover matches the inference collaborator: blob in, blob out.
type Remover interface {
	Remove(ctx context.Context, elementID string, blob []byte) ([]byte, error)
}

// HandleRemove runs background removal for an element's stored blob
// and overwrites it with the processed image. The original blob is
// kept untouched when the inference call fails.
func HandleRemove(store stores.Store, remover Remover) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		elementID := chi.URLParam(r, "elementID")
		if elementID == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "Element id is required"})
			return
		}
		log := logrus.WithField("element_id", elementID)

		blob, err := store.GetBlob(r.Context(), elementID)
		if err != nil {
			log.WithError(err).Warn("No blob for removal target")
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, map[string]string{"error": "Blob not found"})
			return
		}

		out, err := remover.Remove(r.Context(), elementID, blob)
		if err != nil {
			if errors.Is(err, removal.ErrNotConfigured) {
				render.Status(r, http.StatusServiceUnavailable)
				render.JSON(w, r, map[string]string{"error": "Background removal is not configured"})
				return
			}
			log.WithError(err).Error("Background removal failed")
			render.Status(r, http.StatusBadGateway)
			render.JSON(w, r, map[string]string{"error": "Background removal failed"})
			return
		}

		if err := store.PutBlob(r.Context(), elementID, out); err != nil {
			log.WithError(err).Error("Failed to store processed blob")
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, map[string]string{"error": "Failed to store processed image"})
			return
		}

		w.Header().Set("Content-Type", http.DetectContentType(out))
		w.Write(out)
	}
}
