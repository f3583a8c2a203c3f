package scenes

import (
	"encoding/json"
	"io"
	"net/http"

	"memeboard/core"
	"memeboard/middleware"
	"memeboard/stores"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"
)

func HandleList(store stores.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		docs, err := store.List(r.Context())
		if err != nil {
			logrus.WithError(err).Error("Failed to list scenes")
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, map[string]string{"error": "Failed to list scenes"})
			return
		}

		// Return an empty slice instead of null when there are no scenes.
		if docs == nil {
			docs = []*core.SceneDoc{}
		}

		render.JSON(w, r, docs)
	}
}

func HandleGet(store stores.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "Scene id is required"})
			return
		}

		doc, err := store.Get(r.Context(), id)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"error":    err,
				"scene_id": id,
			}).Warn("Failed to get scene")
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, map[string]string{"error": "Scene not found"})
			return
		}

		render.JSON(w, r, doc)
	}
}

func HandleSave(store stores.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "Scene id is required"})
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"error":    err,
				"scene_id": id,
			}).Error("Failed to read request body")
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, map[string]string{"error": "Failed to read request body"})
			return
		}
		defer r.Body.Close()

		var doc core.SceneDoc
		if err := json.Unmarshal(body, &doc); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "Invalid scene document"})
			return
		}
		doc.ID = id
		if doc.Name == "" {
			doc.Name = id
		}

		// Element ids must stay unique within a scene.
		seen := make(map[string]struct{}, len(doc.Elements))
		for _, el := range doc.Elements {
			if _, dup := seen[el.ID]; dup {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, map[string]string{"error": "Duplicate element id: " + el.ID})
				return
			}
			seen[el.ID] = struct{}{}
		}

		if err := store.Save(r.Context(), &doc); err != nil {
			logrus.WithFields(logrus.Fields{
				"error":    err,
				"scene_id": id,
			}).Error("Failed to save scene")
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, map[string]string{"error": "Failed to save scene"})
			return
		}

		logrus.WithFields(logrus.Fields{
			"scene_id": id,
			"subject":  middleware.Subject(r.Context()),
			"elements": len(doc.Elements),
		}).Info("Scene saved")
		render.Status(r, http.StatusOK)
		render.JSON(w, r, map[string]string{"id": id})
	}
}

func HandleDelete(store stores.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "Scene id is required"})
			return
		}

		if err := store.Delete(r.Context(), id); err != nil {
			logrus.WithFields(logrus.Fields{
				"error":    err,
				"scene_id": id,
				"subject":  middleware.Subject(r.Context()),
			}).Error("Failed to delete scene")
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, map[string]string{"error": "Failed to delete scene"})
			return
		}

		render.Status(r, http.StatusOK)
	}
}
