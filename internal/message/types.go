// Package message models one webhook-delivered inbound message and its
// kind-specific payload variants, validated once at the deserialization
// boundary.
package message

import "time"

// Kind classifies an inbound message.
type Kind string

const (
	KindText        Kind = "text"
	KindImage       Kind = "image"
	KindAudio       Kind = "audio"
	KindVideo       Kind = "video"
	KindDocument    Kind = "document"
	KindLocation    Kind = "location"
	KindInteractive Kind = "interactive"
	KindUnknown     Kind = "unknown"
)

// String returns the kind as a plain string.
func (k Kind) String() string {
	return string(k)
}

// IsMedia reports whether the kind carries a downloadable attachment.
func (k Kind) IsMedia() bool {
	switch k {
	case KindImage, KindAudio, KindVideo, KindDocument:
		return true
	}
	return false
}

// Inbound is one parsed webhook message. Immutable once built; exactly one
// payload pointer matching Kind is set for recognized kinds.
type Inbound struct {
	SenderID   string
	SenderName string
	MessageID  string
	Kind       Kind
	// RawType preserves the platform type string for unknown kinds.
	RawType     string
	Text        *TextPayload
	Media       *MediaPayload
	Location    *LocationPayload
	Interactive *InteractivePayload
	ReceivedAt  time.Time
}

// TextPayload carries a plain text body.
type TextPayload struct {
	Body string
}

// MediaPayload carries the attachment reference of an image, audio, video,
// or document message.
type MediaPayload struct {
	ID       string
	Mime     string
	Caption  string
	Filename string
	SHA256   string
	FileSize int64
}

// LocationPayload carries shared coordinates.
type LocationPayload struct {
	Latitude  float64
	Longitude float64
	Name      string
	Address   string
}

// InteractivePayload carries a button or list reply selection.
type InteractivePayload struct {
	// ReplyType is "button_reply" or "list_reply".
	ReplyType   string
	ID          string
	Title       string
	Description string
}
