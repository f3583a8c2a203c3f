package blobs

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"memeboard/stores/memory"

	"github.com/go-chi/chi/v5"
)

func testRouter() *chi.Mux {
	store := memory.NewStore()
	r := chi.NewRouter()
	r.Put("/blobs/{elementID}", HandlePut(store))
	r.Get("/blobs/{elementID}", HandleGet(store))
	r.Delete("/blobs/{elementID}", HandleDelete(store))
	return r
}

// pngHeader makes DetectContentType classify the payload as image/png.
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}

func TestPutGetDeleteRoundTrip(t *testing.T) {
	r := testRouter()

	req := httptest.NewRequest(http.MethodPut, "/blobs/e1", bytes.NewReader(pngHeader))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("put status = %d, body = %s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/blobs/e1", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	if !bytes.Equal(rec.Body.Bytes(), pngHeader) {
		t.Error("payload did not survive the round-trip")
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q, want sniffed image/png", ct)
	}

	req = httptest.NewRequest(http.MethodDelete, "/blobs/e1", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/blobs/e1", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete = %d, want 404", rec.Code)
	}
}

func TestPutRejectsEmptyBody(t *testing.T) {
	r := testRouter()
	req := httptest.NewRequest(http.MethodPut, "/blobs/e1", strings.NewReader(""))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestPutRejectsOversizedBody(t *testing.T) {
	r := testRouter()
	big := bytes.Repeat([]byte{1}, maxBlobSize+1)
	req := httptest.NewRequest(http.MethodPut, "/blobs/e1", bytes.NewReader(big))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rec.Code)
	}
}

func TestGetMissingBlob(t *testing.T) {
	r := testRouter()
	req := httptest.NewRequest(http.MethodGet, "/blobs/nope", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
