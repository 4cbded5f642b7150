package media

import "errors"

var (
	// ErrMalformedPayload indicates a media message missing its media id or
	// MIME type. Structural defect in the delivery, not retryable.
	ErrMalformedPayload = errors.New("malformed media payload")
	// ErrUnsupportedMime indicates a MIME type outside the registry table.
	ErrUnsupportedMime = errors.New("unsupported mime type")
	// ErrURLResolution indicates the metadata call for a short-lived download
	// URL failed. Possibly transient; the pipeline does not retry.
	ErrURLResolution = errors.New("media url resolution failed")
	// ErrDownload indicates the binary fetch failed or the content length did
	// not match the platform-declared size.
	ErrDownload = errors.New("media download failed")
	// ErrStorageWrite indicates a local filesystem fault while persisting.
	ErrStorageWrite = errors.New("storage write failed")
	// ErrTooLarge indicates the payload exceeds the configured size cap.
	ErrTooLarge = errors.New("media payload too large")
)
