// Package media implements the inbound media pipeline: MIME registry,
// descriptor extraction, two-hop acquisition, and atomic persistence.
package media

import (
	"context"
	"time"
)

// Category is the coarse classification used for storage partitioning.
type Category string

const (
	CategoryImage    Category = "image"
	CategoryAudio    Category = "audio"
	CategoryVideo    Category = "video"
	CategoryDocument Category = "document"
)

// Descriptor is the normalized view of a media attachment carried by an
// inbound message, derived before any network call.
type Descriptor struct {
	MediaID string
	// Mime is the platform-declared MIME type. Extension resolution never
	// trusts it directly; the acquired MIME wins.
	Mime     string
	Category Category
	Caption  string
	// DeclaredSize is platform-reported and not verified at extraction time.
	DeclaredSize int64
	// FilenameHint is client-supplied and must never influence the stored
	// filename. Kept for logging only.
	FilenameHint string
}

// Acquired holds the downloaded attachment bytes and the MIME type the
// platform confirmed during URL resolution.
type Acquired struct {
	Data []byte
	Mime string
	Size int64
}

// StoredRecord describes one persisted attachment.
type StoredRecord struct {
	Path      string    `json:"path"`
	Filename  string    `json:"filename"`
	Category  Category  `json:"category"`
	Mime      string    `json:"mime"`
	SizeBytes int64     `json:"size_bytes"`
	StoredAt  time.Time `json:"stored_at"`
}

// Meta is the result of exchanging a media id for a short-lived download URL.
type Meta struct {
	URL       string
	Mime      string
	SizeBytes int64
}

// Source is the platform capability the acquirer depends on. Implemented by
// the whatsapp client; faked in tests.
type Source interface {
	// MediaURL exchanges a media id for a short-lived download URL plus the
	// platform-confirmed MIME type and size.
	MediaURL(ctx context.Context, mediaID string) (Meta, error)
	// Download fetches the binary content behind a resolved URL.
	Download(ctx context.Context, url string) ([]byte, error)
}
