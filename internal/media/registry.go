package media

import (
	"fmt"
	"strings"
)

// Entry maps a MIME type to its canonical extension and category.
type Entry struct {
	Ext      string
	Category Category
}

// registry is the closed table of platform-supported MIME types. Adding a
// type is a data edit only.
var registry = map[string]Entry{
	"image/jpeg": {Ext: ".jpg", Category: CategoryImage},
	"image/png":  {Ext: ".png", Category: CategoryImage},
	"image/gif":  {Ext: ".gif", Category: CategoryImage},
	"image/webp": {Ext: ".webp", Category: CategoryImage},

	"audio/mpeg": {Ext: ".mp3", Category: CategoryAudio},
	"audio/mp4":  {Ext: ".m4a", Category: CategoryAudio},
	"audio/amr":  {Ext: ".amr", Category: CategoryAudio},
	"audio/ogg":  {Ext: ".ogg", Category: CategoryAudio},

	"video/mp4":  {Ext: ".mp4", Category: CategoryVideo},
	"video/3gpp": {Ext: ".3gp", Category: CategoryVideo},

	"application/pdf":    {Ext: ".pdf", Category: CategoryDocument},
	"application/msword": {Ext: ".doc", Category: CategoryDocument},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {Ext: ".docx", Category: CategoryDocument},
	"application/vnd.ms-excel": {Ext: ".xls", Category: CategoryDocument},
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": {Ext: ".xlsx", Category: CategoryDocument},
	"application/vnd.ms-powerpoint": {Ext: ".ppt", Category: CategoryDocument},
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": {Ext: ".pptx", Category: CategoryDocument},
	"text/plain": {Ext: ".txt", Category: CategoryDocument},
}

// Resolve looks up a MIME type in the registry. Matching is case-insensitive
// and ignores parameters after ";" (e.g. "audio/ogg; codecs=opus").
func Resolve(mime string) (Entry, error) {
	normalized := NormalizeMime(mime)
	if entry, ok := registry[normalized]; ok {
		return entry, nil
	}
	return Entry{}, fmt.Errorf("%w: %q", ErrUnsupportedMime, mime)
}

// NormalizeMime lowercases a MIME type and strips any parameter suffix.
func NormalizeMime(mime string) string {
	base := mime
	if idx := strings.IndexByte(base, ';'); idx >= 0 {
		base = base[:idx]
	}
	return strings.ToLower(strings.TrimSpace(base))
}

// Categories lists the storage partitions in a stable order.
func Categories() []Category {
	return []Category{CategoryImage, CategoryAudio, CategoryVideo, CategoryDocument}
}
