// Package whatsapp is a WhatsApp Cloud API (Graph API) client. It covers the
// send surface, media upload, mark-as-read, and the two calls the media
// acquirer depends on: media-id metadata resolution and binary download.
package whatsapp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mediahook/mediahook/internal/media"
)

// Config carries the Graph API connection settings.
type Config struct {
	AccessToken   string
	PhoneNumberID string
	APIVersion    string
	// BaseURL defaults to the public Graph API host; overridable for tests.
	BaseURL          string
	MetadataTimeout  time.Duration
	DownloadTimeout  time.Duration
	MaxDownloadBytes int64
}

// Client talks to the Graph API with bearer authentication.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Graph API client. Zero-value timeouts get the platform
// defaults (10s metadata, 30s download).
func NewClient(log *slog.Logger, cfg Config) *Client {
	if log == nil {
		log = slog.Default()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://graph.facebook.com"
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = "v21.0"
	}
	if cfg.MetadataTimeout <= 0 {
		cfg.MetadataTimeout = 10 * time.Second
	}
	if cfg.DownloadTimeout <= 0 {
		cfg.DownloadTimeout = 30 * time.Second
	}
	if cfg.MaxDownloadBytes <= 0 {
		cfg.MaxDownloadBytes = 100 * 1024 * 1024
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{},
		logger:     log.With(slog.String("client", "whatsapp")),
	}
}

func (c *Client) endpoint(parts ...string) string {
	base := strings.TrimRight(c.cfg.BaseURL, "/") + "/" + c.cfg.APIVersion
	for _, part := range parts {
		base += "/" + part
	}
	return base
}

// MediaURL exchanges a media id for its short-lived download URL. Implements
// the first hop of media.Source.
func (c *Client) MediaURL(ctx context.Context, mediaID string) (media.Meta, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.MetadataTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(mediaID), nil)
	if err != nil {
		return media.Meta{}, fmt.Errorf("build metadata request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return media.Meta{}, fmt.Errorf("media metadata request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return media.Meta{}, fmt.Errorf("media metadata status %d: %s", resp.StatusCode, readErrorBody(resp.Body))
	}

	var meta mediaMetadata
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return media.Meta{}, fmt.Errorf("decode media metadata: %w", err)
	}
	return media.Meta{
		URL:       meta.URL,
		Mime:      meta.MimeType,
		SizeBytes: meta.FileSize,
	}, nil
}

// Download fetches the binary behind a resolved media URL. The URL host is
// not the Graph API host, but the platform still requires the same bearer
// token. Implements the second hop of media.Source.
func (c *Client) Download(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.DownloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build download request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("media download request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("media download status %d: %s", resp.StatusCode, readErrorBody(resp.Body))
	}
	data, err := media.ReadAllWithLimit(resp.Body, c.cfg.MaxDownloadBytes)
	if err != nil {
		return nil, fmt.Errorf("read media body: %w", err)
	}
	return data, nil
}

// MarkAsRead marks an inbound message as read. Best-effort for UX; callers
// log failures instead of failing the pipeline.
func (c *Client) MarkAsRead(ctx context.Context, messageID string) error {
	payload := messageEnvelope{
		MessagingProduct: "whatsapp",
		Status:           "read",
		MessageID:        messageID,
	}
	_, err := c.postMessage(ctx, payload)
	return err
}

// readErrorBody returns a trimmed error body for diagnostics. Upstream error
// payloads are small JSON; cap the read regardless.
func readErrorBody(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(body))
}
