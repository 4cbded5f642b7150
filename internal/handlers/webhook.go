package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mediahook/mediahook/internal/message"
	"github.com/mediahook/mediahook/internal/router"
)

const webhookMaxBodyBytes int64 = 1 << 20 // 1 MiB

type messageProcessor interface {
	Process(ctx context.Context, msg message.Inbound) router.Outcome
}

type replier interface {
	Respond(ctx context.Context, msg message.Inbound, outcome router.Outcome) error
}

type readMarker interface {
	MarkAsRead(ctx context.Context, messageID string) error
}

// WebhookHandler receives WhatsApp Cloud API callbacks: the GET verification
// handshake and POST message deliveries. Processed deliveries always get a
// 2xx acknowledgment; the platform retry-storms on anything else.
type WebhookHandler struct {
	logger      *slog.Logger
	verifyToken string
	processor   messageProcessor
	replies     replier
	marker      readMarker
}

// NewWebhookHandler creates the webhook handler.
func NewWebhookHandler(log *slog.Logger, verifyToken string, processor messageProcessor, replies replier, marker readMarker) *WebhookHandler {
	if log == nil {
		log = slog.Default()
	}
	return &WebhookHandler{
		logger:      log.With(slog.String("handler", "webhook")),
		verifyToken: verifyToken,
		processor:   processor,
		replies:     replies,
		marker:      marker,
	}
}

// Register registers the webhook routes.
func (h *WebhookHandler) Register(e *echo.Echo) {
	e.GET("/webhook", h.HandleVerify)
	e.POST("/webhook", h.HandleDelivery)
}

// HandleVerify answers the platform's subscription verification handshake.
func (h *WebhookHandler) HandleVerify(c echo.Context) error {
	mode := c.QueryParam("hub.mode")
	token := c.QueryParam("hub.verify_token")
	challenge := c.QueryParam("hub.challenge")

	if mode == "" || token == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"status":  "error",
			"message": "missing parameters",
		})
	}
	if mode != "subscribe" || token != h.verifyToken {
		h.logger.Warn("webhook verification failed", slog.String("mode", mode))
		return c.JSON(http.StatusForbidden, map[string]string{
			"status":  "error",
			"message": "verification failed",
		})
	}
	h.logger.Info("webhook verified")
	return c.String(http.StatusOK, challenge)
}

// HandleDelivery processes one webhook delivery.
func (h *WebhookHandler) HandleDelivery(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, webhookMaxBodyBytes+1))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("read body: %v", err))
	}
	if int64(len(body)) > webhookMaxBodyBytes {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, fmt.Sprintf("payload too large: max %d bytes", webhookMaxBodyBytes))
	}

	msg, err := message.Parse(body)
	if err != nil {
		if errors.Is(err, message.ErrStatusOnly) {
			// Delivery/read receipts; acknowledge and move on.
			return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
		}
		h.logger.Warn("invalid webhook payload", slog.Any("error", err))
		return c.JSON(http.StatusNotFound, map[string]string{
			"status":  "error",
			"message": "not a whatsapp api event",
		})
	}

	ctx := c.Request().Context()
	if h.marker != nil && msg.MessageID != "" {
		if err := h.marker.MarkAsRead(ctx, msg.MessageID); err != nil {
			h.logger.Warn("mark as read failed",
				slog.String("message_id", msg.MessageID),
				slog.Any("error", err))
		}
	}

	outcome := h.processor.Process(ctx, msg)
	if h.replies != nil {
		if err := h.replies.Respond(ctx, msg, outcome); err != nil {
			h.logger.Error("send reply failed",
				slog.String("sender", msg.SenderID),
				slog.Any("error", err))
		}
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
