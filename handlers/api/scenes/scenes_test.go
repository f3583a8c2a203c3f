package scenes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"memeboard/core"
	"memeboard/stores/memory"

	"github.com/go-chi/chi/v5"
)

func TestSaveAndGetRoundTrip(t *testing.T) {
	store := memory.NewStore()
	r := chi.NewRouter()
	r.Get("/scenes/{id}", HandleGet(store))
	r.Put("/scenes/{id}", HandleSave(store))

	body := `{"name":"My Meme","elements":[{"id":"e1","kind":"textbox","content":"top text","fontSize":32}],"scrollX":10}`
	req := httptest.NewRequest(http.MethodPut, "/scenes/s1", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("save status = %d, body = %s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/scenes/s1", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}

	var doc core.SceneDoc
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if doc.ID != "s1" || doc.Name != "My Meme" {
		t.Errorf("doc = %+v", doc)
	}
	if len(doc.Elements) != 1 || doc.Elements[0].Content != "top text" {
		t.Errorf("elements = %+v", doc.Elements)
	}
}

func TestSaveDefaultsNameToID(t *testing.T) {
	store := memory.NewStore()
	r := chi.NewRouter()
	r.Put("/scenes/{id}", HandleSave(store))

	req := httptest.NewRequest(http.MethodPut, "/scenes/s1", strings.NewReader(`{"elements":[]}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	doc, err := store.Get(req.Context(), "s1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if doc.Name != "s1" {
		t.Errorf("name = %q, want the id", doc.Name)
	}
}

func TestSaveRejectsDuplicateElementIDs(t *testing.T) {
	store := memory.NewStore()
	r := chi.NewRouter()
	r.Put("/scenes/{id}", HandleSave(store))

	body := `{"elements":[{"id":"e1","kind":"shape"},{"id":"e1","kind":"shape"}]}`
	req := httptest.NewRequest(http.MethodPut, "/scenes/s1", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for duplicate element ids", rec.Code)
	}
	if _, err := store.Get(req.Context(), "s1"); err == nil {
		t.Error("invalid scene was stored anyway")
	}
}

func TestSaveRejectsMalformedJSON(t *testing.T) {
	store := memory.NewStore()
	r := chi.NewRouter()
	r.Put("/scenes/{id}", HandleSave(store))

	req := httptest.NewRequest(http.MethodPut, "/scenes/s1", strings.NewReader("{nope"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestGetMissingScene(t *testing.T) {
	store := memory.NewStore()
	r := chi.NewRouter()
	r.Get("/scenes/{id}", HandleGet(store))

	req := httptest.NewRequest(http.MethodGet, "/scenes/nope", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestListReturnsEmptyArrayNotNull(t *testing.T) {
	store := memory.NewStore()
	r := chi.NewRouter()
	r.Get("/scenes", HandleList(store))

	req := httptest.NewRequest(http.MethodGet, "/scenes", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Errorf("body = %q, want []", got)
	}
}
