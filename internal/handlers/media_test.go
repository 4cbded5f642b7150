package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/labstack/echo/v4"
)

type mediaListing struct {
	Media []struct {
		Filename  string `json:"filename"`
		Category  string `json:"category"`
		SizeBytes int64  `json:"size_bytes"`
	} `json:"media"`
}

func writeStored(t *testing.T, root, category, name, content string) {
	t.Helper()
	dir := filepath.Join(root, category)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestListAll(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeStored(t, root, "image", "a.jpg", "jpeg bytes")
	writeStored(t, root, "document", "b.pdf", "pdf bytes")
	writeStored(t, root, "image", ".spool-123.tmp", "partial")

	h := NewMediaHandler(nil, root)
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/media", nil)
	rec := httptest.NewRecorder()
	if err := h.ListAll(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var listing mediaListing
	if err := json.Unmarshal(rec.Body.Bytes(), &listing); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(listing.Media) != 2 {
		t.Fatalf("entries = %+v", listing.Media)
	}
	seen := map[string]string{}
	for _, entry := range listing.Media {
		seen[entry.Filename] = entry.Category
	}
	if seen["a.jpg"] != "image" || seen["b.pdf"] != "document" {
		t.Errorf("entries = %v", seen)
	}
}

func TestListCategory(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeStored(t, root, "audio", "note.mp3", "mp3 bytes")
	writeStored(t, root, "image", "a.jpg", "jpeg bytes")

	h := NewMediaHandler(nil, root)
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/media/audio", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("category")
	c.SetParamValues("audio")
	if err := h.ListCategory(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var listing mediaListing
	if err := json.Unmarshal(rec.Body.Bytes(), &listing); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(listing.Media) != 1 || listing.Media[0].Filename != "note.mp3" {
		t.Errorf("entries = %+v", listing.Media)
	}
	if listing.Media[0].SizeBytes != int64(len("mp3 bytes")) {
		t.Errorf("size = %d", listing.Media[0].SizeBytes)
	}
}

func TestListCategoryUnknown(t *testing.T) {
	t.Parallel()

	h := NewMediaHandler(nil, t.TempDir())
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/media/stickers", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("category")
	c.SetParamValues("stickers")

	err := h.ListCategory(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusNotFound {
		t.Errorf("err = %v", err)
	}
}

func TestListEmptyRoot(t *testing.T) {
	t.Parallel()

	h := NewMediaHandler(nil, t.TempDir())
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/media", nil)
	rec := httptest.NewRecorder()
	if err := h.ListAll(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var listing mediaListing
	if err := json.Unmarshal(rec.Body.Bytes(), &listing); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(listing.Media) != 0 {
		t.Errorf("entries = %+v", listing.Media)
	}
}
