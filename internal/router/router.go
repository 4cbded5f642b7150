// Package router classifies inbound messages and drives the media pipeline:
// extract, acquire, persist. Every message yields exactly one Outcome; no
// failure escapes past the router, so the webhook boundary can always return
// a prompt acknowledgment.
package router

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mediahook/mediahook/internal/media"
	"github.com/mediahook/mediahook/internal/message"
)

// Acquirer is the two-hop media retrieval dependency.
type Acquirer interface {
	Acquire(ctx context.Context, desc media.Descriptor) (media.Acquired, error)
}

// Persister writes acquired media to storage.
type Persister interface {
	Persist(acquired media.Acquired, category media.Category) (media.StoredRecord, error)
}

// Router processes one inbound message per call. Calls for distinct messages
// may run concurrently; the router holds no mutable state.
type Router struct {
	acquirer  Acquirer
	persister Persister
	logger    *slog.Logger
}

// NewRouter creates a router over the given pipeline stages.
func NewRouter(log *slog.Logger, acquirer Acquirer, persister Persister) *Router {
	if log == nil {
		log = slog.Default()
	}
	return &Router{
		acquirer:  acquirer,
		persister: persister,
		logger:    log.With(slog.String("service", "router")),
	}
}

// Process classifies the message and, for media kinds, runs the acquisition
// pipeline. The returned outcome is always well-formed.
func (r *Router) Process(ctx context.Context, msg message.Inbound) Outcome {
	switch {
	case msg.Kind == message.KindText:
		return r.processText(msg)
	case msg.Kind.IsMedia():
		return r.processMedia(ctx, msg)
	case msg.Kind == message.KindLocation:
		return r.processLocation(msg)
	case msg.Kind == message.KindInteractive:
		return r.processInteractive(msg)
	default:
		r.logger.Info("unrecognized message kind",
			slog.String("sender", msg.SenderID),
			slog.String("raw_type", msg.RawType))
		return failed(FailureUnrecognizedKind, StageClassified,
			fmt.Errorf("unrecognized message kind %q", msg.RawType))
	}
}

func (r *Router) processText(msg message.Inbound) Outcome {
	body := ""
	if msg.Text != nil {
		body = msg.Text.Body
	}
	if cmd, ok := ParseCommand(body); ok {
		return Outcome{Kind: OutcomeCommand, Command: cmd}
	}
	// Unrecognized text passes through as an echo, not a failure.
	return Outcome{Kind: OutcomeEcho, Echo: strings.ToUpper(strings.TrimSpace(body))}
}

func (r *Router) processMedia(ctx context.Context, msg message.Inbound) Outcome {
	desc, err := media.ExtractDescriptor(msg)
	if err != nil {
		r.logger.Error("media extraction failed",
			slog.String("sender", msg.SenderID),
			slog.String("kind", msg.Kind.String()),
			slog.Any("error", err))
		return failed(classifyFailure(err), StageClassified, err)
	}

	acquired, err := r.acquirer.Acquire(ctx, *desc)
	if err != nil {
		r.logger.Error("media acquisition failed",
			slog.String("media_id", desc.MediaID),
			slog.String("kind", msg.Kind.String()),
			slog.Any("error", err))
		return failed(classifyFailure(err), StageExtracted, err)
	}

	record, err := r.persister.Persist(acquired, desc.Category)
	if err != nil {
		r.logger.Error("media persistence failed",
			slog.String("media_id", desc.MediaID),
			slog.String("mime", acquired.Mime),
			slog.Any("error", err))
		return failed(classifyFailure(err), StageAcquired, err)
	}

	r.logger.Info("media processed",
		slog.String("media_id", desc.MediaID),
		slog.String("path", record.Path),
		slog.Int64("size", record.SizeBytes))
	return Outcome{
		Kind:    OutcomeStoredMedia,
		Stored:  &record,
		Caption: desc.Caption,
	}
}

func (r *Router) processLocation(msg message.Inbound) Outcome {
	if msg.Location == nil {
		err := fmt.Errorf("%w: location message has no coordinates", media.ErrMalformedPayload)
		return failed(FailureMalformedPayload, StageClassified, err)
	}
	return Outcome{Kind: OutcomeLocation, Location: msg.Location}
}

func (r *Router) processInteractive(msg message.Inbound) Outcome {
	if msg.Interactive == nil {
		err := fmt.Errorf("%w: interactive message has no reply object", media.ErrMalformedPayload)
		return failed(FailureMalformedPayload, StageClassified, err)
	}
	return Outcome{Kind: OutcomeInteractive, Interactive: msg.Interactive}
}
