package media

import (
	"fmt"
	"strings"

	"github.com/mediahook/mediahook/internal/message"
)

// ExtractDescriptor derives a normalized media descriptor from an inbound
// message. Non-media kinds return (nil, nil): a normal branch, not a failure.
// A media message missing its media id or MIME type is a malformed delivery;
// a MIME type outside the registry is rejected here, before any network call.
func ExtractDescriptor(msg message.Inbound) (*Descriptor, error) {
	if !msg.Kind.IsMedia() {
		return nil, nil
	}
	payload := msg.Media
	if payload == nil {
		return nil, fmt.Errorf("%w: %s message has no media object", ErrMalformedPayload, msg.Kind)
	}
	if strings.TrimSpace(payload.ID) == "" {
		return nil, fmt.Errorf("%w: missing media id", ErrMalformedPayload)
	}
	if strings.TrimSpace(payload.Mime) == "" {
		return nil, fmt.Errorf("%w: missing mime type", ErrMalformedPayload)
	}
	entry, err := Resolve(payload.Mime)
	if err != nil {
		return nil, err
	}
	return &Descriptor{
		MediaID:      strings.TrimSpace(payload.ID),
		Mime:         NormalizeMime(payload.Mime),
		Category:     entry.Category,
		Caption:      payload.Caption,
		DeclaredSize: payload.FileSize,
		FilenameHint: payload.Filename,
	}, nil
}
