package media

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Acquirer performs the two-hop retrieval: media id to short-lived download
// URL, then URL to bytes. Both hops are sequential; a metadata failure means
// the binary fetch is never attempted. No retry is performed here: a download
// URL may be single-use, so blind retries belong to a caller that knows the
// platform semantics.
type Acquirer struct {
	source Source
	logger *slog.Logger
}

// NewAcquirer creates an acquirer over the given platform source.
func NewAcquirer(log *slog.Logger, source Source) *Acquirer {
	if log == nil {
		log = slog.Default()
	}
	return &Acquirer{
		source: source,
		logger: log.With(slog.String("service", "media_acquirer")),
	}
}

// Acquire resolves the descriptor's media id and downloads the content.
// The platform-confirmed MIME type from URL resolution wins over the
// descriptor's declared one.
func (a *Acquirer) Acquire(ctx context.Context, desc Descriptor) (Acquired, error) {
	if a.source == nil {
		return Acquired{}, fmt.Errorf("%w: no media source configured", ErrURLResolution)
	}

	meta, err := a.source.MediaURL(ctx, desc.MediaID)
	if err != nil {
		return Acquired{}, fmt.Errorf("%w: media %s: %v", ErrURLResolution, desc.MediaID, err)
	}
	if strings.TrimSpace(meta.URL) == "" {
		return Acquired{}, fmt.Errorf("%w: media %s: empty download url", ErrURLResolution, desc.MediaID)
	}

	data, err := a.source.Download(ctx, meta.URL)
	if err != nil {
		return Acquired{}, fmt.Errorf("%w: media %s: %v", ErrDownload, desc.MediaID, err)
	}
	if len(data) == 0 {
		return Acquired{}, fmt.Errorf("%w: media %s: empty body", ErrDownload, desc.MediaID)
	}
	if meta.SizeBytes > 0 && meta.SizeBytes != int64(len(data)) {
		return Acquired{}, fmt.Errorf("%w: media %s: size mismatch, declared %d got %d",
			ErrDownload, desc.MediaID, meta.SizeBytes, len(data))
	}

	mime := NormalizeMime(meta.Mime)
	if mime == "" {
		mime = desc.Mime
	}
	a.logger.Debug("media acquired",
		slog.String("media_id", desc.MediaID),
		slog.String("mime", mime),
		slog.Int("size", len(data)))

	return Acquired{
		Data: data,
		Mime: mime,
		Size: int64(len(data)),
	}, nil
}
