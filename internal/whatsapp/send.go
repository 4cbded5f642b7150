package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
)

// SendText sends a plain text message.
func (c *Client) SendText(ctx context.Context, to, body string) error {
	payload := messageEnvelope{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               to,
		Type:             "text",
		Text:             &textBody{PreviewURL: false, Body: body},
	}
	_, err := c.postMessage(ctx, payload)
	return err
}

// SendImage sends an image by uploaded media id or public link.
func (c *Client) SendImage(ctx context.Context, to string, ref MediaRef, caption string) error {
	body, err := mediaBodyFromRef(ref)
	if err != nil {
		return err
	}
	body.Caption = caption
	payload := messageEnvelope{MessagingProduct: "whatsapp", To: to, Type: "image", Image: body}
	_, err = c.postMessage(ctx, payload)
	return err
}

// SendAudio sends an audio message. Audio messages do not support captions.
func (c *Client) SendAudio(ctx context.Context, to string, ref MediaRef) error {
	body, err := mediaBodyFromRef(ref)
	if err != nil {
		return err
	}
	payload := messageEnvelope{MessagingProduct: "whatsapp", To: to, Type: "audio", Audio: body}
	_, err = c.postMessage(ctx, payload)
	return err
}

// SendVideo sends a video by uploaded media id or public link.
func (c *Client) SendVideo(ctx context.Context, to string, ref MediaRef, caption string) error {
	body, err := mediaBodyFromRef(ref)
	if err != nil {
		return err
	}
	body.Caption = caption
	payload := messageEnvelope{MessagingProduct: "whatsapp", To: to, Type: "video", Video: body}
	_, err = c.postMessage(ctx, payload)
	return err
}

// SendDocument sends a document with an optional display filename.
func (c *Client) SendDocument(ctx context.Context, to string, ref MediaRef, filename, caption string) error {
	body, err := mediaBodyFromRef(ref)
	if err != nil {
		return err
	}
	body.Filename = filename
	body.Caption = caption
	payload := messageEnvelope{MessagingProduct: "whatsapp", To: to, Type: "document", Document: body}
	_, err = c.postMessage(ctx, payload)
	return err
}

// UploadMedia uploads a local file and returns the platform media id usable
// in Send* calls.
func (c *Client) UploadMedia(ctx context.Context, path, mimeType string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open media file: %w", err)
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return "", fmt.Errorf("build multipart form: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", fmt.Errorf("copy media file: %w", err)
	}
	if err := writer.WriteField("messaging_product", "whatsapp"); err != nil {
		return "", fmt.Errorf("build multipart form: %w", err)
	}
	if err := writer.WriteField("type", mimeType); err != nil {
		return "", fmt.Errorf("build multipart form: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("build multipart form: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.DownloadTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(c.cfg.PhoneNumberID, "media"), &buf)
	if err != nil {
		return "", fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload media request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("upload media status %d: %s", resp.StatusCode, readErrorBody(resp.Body))
	}
	var uploaded uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&uploaded); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	if uploaded.ID == "" {
		return "", fmt.Errorf("upload response missing media id")
	}
	return uploaded.ID, nil
}

func (c *Client) postMessage(ctx context.Context, payload messageEnvelope) (sendResponse, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return sendResponse{}, fmt.Errorf("encode message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.MetadataTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(c.cfg.PhoneNumberID, "messages"), bytes.NewReader(data))
	if err != nil {
		return sendResponse{}, fmt.Errorf("build message request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return sendResponse{}, fmt.Errorf("send message request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return sendResponse{}, fmt.Errorf("send message status %d: %s", resp.StatusCode, readErrorBody(resp.Body))
	}
	var sent sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&sent); err != nil {
		return sendResponse{}, fmt.Errorf("decode send response: %w", err)
	}
	if c.logger != nil && len(sent.Messages) > 0 {
		c.logger.Debug("message sent", slog.String("message_id", sent.Messages[0].ID), slog.String("type", payload.Type))
	}
	return sent, nil
}

func mediaBodyFromRef(ref MediaRef) (*mediaBody, error) {
	switch {
	case ref.ID != "":
		return &mediaBody{ID: ref.ID}, nil
	case ref.Link != "":
		return &mediaBody{Link: ref.Link}, nil
	default:
		return nil, fmt.Errorf("media ref requires an id or link")
	}
}
