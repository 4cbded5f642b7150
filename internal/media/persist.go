package media

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// TempFilePattern names the spool files the persister writes before renaming
// into place. The janitor sweeps stale leftovers matching this pattern.
const TempFilePattern = ".spool-*.tmp"

// Persister writes acquired media under a category-partitioned storage root.
// Filenames are generated (UUID + registry extension), never derived from
// payload-supplied text, which closes off path traversal and extension
// spoofing. Writes are temp-file-then-rename so a concurrent reader never
// observes a partial file at the final path.
type Persister struct {
	root   string
	logger *slog.Logger
}

// NewPersister creates a persister and eagerly creates the category
// directories. Directory creation is an initialization step, not re-checked
// per write.
func NewPersister(log *slog.Logger, root string) (*Persister, error) {
	if log == nil {
		log = slog.Default()
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve storage root: %w", err)
	}
	for _, category := range Categories() {
		if err := os.MkdirAll(filepath.Join(abs, string(category)), 0o755); err != nil {
			return nil, fmt.Errorf("create category dir %s: %w", category, err)
		}
	}
	return &Persister{
		root:   abs,
		logger: log.With(slog.String("service", "media_persister")),
	}, nil
}

// Root returns the absolute storage root.
func (p *Persister) Root() string {
	return p.root
}

// Persist writes the acquired bytes and returns the stored record. The
// extension comes from the registry using the acquired (platform-confirmed)
// MIME type.
func (p *Persister) Persist(media Acquired, category Category) (StoredRecord, error) {
	entry, err := Resolve(media.Mime)
	if err != nil {
		return StoredRecord{}, err
	}

	filename := uuid.NewString() + entry.Ext
	dir := filepath.Join(p.root, string(category))
	final := filepath.Join(dir, filename)

	tmp, err := os.CreateTemp(dir, TempFilePattern)
	if err != nil {
		return StoredRecord{}, fmt.Errorf("%w: create temp file: %v", ErrStorageWrite, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(media.Data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return StoredRecord{}, fmt.Errorf("%w: write temp file: %v", ErrStorageWrite, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return StoredRecord{}, fmt.Errorf("%w: close temp file: %v", ErrStorageWrite, err)
	}
	if err := os.Rename(tmpName, final); err != nil {
		os.Remove(tmpName)
		return StoredRecord{}, fmt.Errorf("%w: finalize file: %v", ErrStorageWrite, err)
	}

	record := StoredRecord{
		Path:      final,
		Filename:  filename,
		Category:  category,
		Mime:      media.Mime,
		SizeBytes: media.Size,
		StoredAt:  time.Now(),
	}
	p.logger.Info("media stored",
		slog.String("path", final),
		slog.String("mime", media.Mime),
		slog.Int64("size", media.Size))
	return record, nil
}
