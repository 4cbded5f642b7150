package handlers

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mediahook/mediahook/internal/media"
)

// MediaHandler lists stored media over the admin API. There is no metadata
// database; the storage root is the source of truth.
type MediaHandler struct {
	logger *slog.Logger
	root   string
}

type mediaEntry struct {
	Filename   string    `json:"filename"`
	Category   string    `json:"category"`
	SizeBytes  int64     `json:"size_bytes"`
	ModifiedAt time.Time `json:"modified_at"`
}

// NewMediaHandler creates a media listing handler over the storage root.
func NewMediaHandler(log *slog.Logger, root string) *MediaHandler {
	if log == nil {
		log = slog.Default()
	}
	return &MediaHandler{
		logger: log.With(slog.String("handler", "media")),
		root:   root,
	}
}

// Register registers the admin media routes.
func (h *MediaHandler) Register(e *echo.Echo) {
	e.GET("/api/media", h.ListAll)
	e.GET("/api/media/:category", h.ListCategory)
}

// ListAll lists stored files across all categories.
func (h *MediaHandler) ListAll(c echo.Context) error {
	entries := make([]mediaEntry, 0)
	for _, category := range media.Categories() {
		listed, err := h.listDir(category)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		entries = append(entries, listed...)
	}
	return c.JSON(http.StatusOK, map[string]any{"media": entries})
}

// ListCategory lists stored files for one category.
func (h *MediaHandler) ListCategory(c echo.Context) error {
	category := media.Category(strings.ToLower(c.Param("category")))
	if !validCategory(category) {
		return echo.NewHTTPError(http.StatusNotFound, "unknown media category")
	}
	entries, err := h.listDir(category)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]any{"media": entries})
}

func (h *MediaHandler) listDir(category media.Category) ([]mediaEntry, error) {
	dir := filepath.Join(h.root, string(category))
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	entries := make([]mediaEntry, 0, len(dirEntries))
	for _, entry := range dirEntries {
		name := entry.Name()
		// Skip spool files and anything hidden.
		if entry.IsDir() || strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".tmp") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		entries = append(entries, mediaEntry{
			Filename:   name,
			Category:   string(category),
			SizeBytes:  info.Size(),
			ModifiedAt: info.ModTime(),
		})
	}
	return entries, nil
}

func validCategory(category media.Category) bool {
	for _, known := range media.Categories() {
		if category == known {
			return true
		}
	}
	return false
}
