package blobs

import (
	"io"
	"net/http"

	"memeboard/stores"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"
)

// maxBlobSize caps uploaded image payloads at 16 MiB.
const maxBlobSize = 16 << 20

func HandlePut(store stores.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		elementID := chi.URLParam(r, "elementID")
		if elementID == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "Element id is required"})
			return
		}

		data, err := io.ReadAll(io.LimitReader(r.Body, maxBlobSize+1))
		if err != nil {
			logrus.WithError(err).WithField("element_id", elementID).Error("Failed to read blob body")
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, map[string]string{"error": "Failed to read request body"})
			return
		}
		defer r.Body.Close()

		if len(data) == 0 {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "Empty blob"})
			return
		}
		if len(data) > maxBlobSize {
			render.Status(r, http.StatusRequestEntityTooLarge)
			render.JSON(w, r, map[string]string{"error": "Blob too large"})
			return
		}

		if err := store.PutBlob(r.Context(), elementID, data); err != nil {
			logrus.WithError(err).WithField("element_id", elementID).Error("Failed to store blob")
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, map[string]string{"error": "Failed to store blob"})
			return
		}

		render.Status(r, http.StatusOK)
	}
}

func HandleGet(store stores.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		elementID := chi.URLParam(r, "elementID")
		if elementID == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "Element id is required"})
			return
		}

		data, err := store.GetBlob(r.Context(), elementID)
		if err != nil {
			logrus.WithError(err).WithField("element_id", elementID).Warn("Failed to get blob")
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, map[string]string{"error": "Blob not found"})
			return
		}

		w.Header().Set("Content-Type", http.DetectContentType(data))
		w.Write(data)
	}
}

func HandleDelete(store stores.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		elementID := chi.URLParam(r, "elementID")
		if elementID == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "Element id is required"})
			return
		}

		if err := store.DeleteBlob(r.Context(), elementID); err != nil {
			logrus.WithError(err).WithField("element_id", elementID).Error("Failed to delete blob")
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, map[string]string{"error": "Failed to delete blob"})
			return
		}

		render.Status(r, http.StatusOK)
	}
}
