// Package reply turns processing outcomes into user-facing confirmation
// messages and sends them through the platform client. Internal error detail
// stays in logs; users get generic failure text.
package reply

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mediahook/mediahook/internal/config"
	"github.com/mediahook/mediahook/internal/message"
	"github.com/mediahook/mediahook/internal/router"
	"github.com/mediahook/mediahook/internal/whatsapp"
)

const helpText = `Available commands:
- hello: get a greeting
- help: show this help message
- send image: get a sample image
- send audio: get a sample audio
- send video: get a sample video
- send document: get a sample document
Send me any media and I'll save it.`

// Sender is the outbound platform surface the reply layer uses.
type Sender interface {
	SendText(ctx context.Context, to, body string) error
	SendImage(ctx context.Context, to string, ref whatsapp.MediaRef, caption string) error
	SendAudio(ctx context.Context, to string, ref whatsapp.MediaRef) error
	SendVideo(ctx context.Context, to string, ref whatsapp.MediaRef, caption string) error
	SendDocument(ctx context.Context, to string, ref whatsapp.MediaRef, filename, caption string) error
	UploadMedia(ctx context.Context, path, mimeType string) (string, error)
}

// Service composes and sends replies for processed messages.
type Service struct {
	sender  Sender
	samples config.SamplesConfig
	logger  *slog.Logger
}

// NewService creates a reply service.
func NewService(log *slog.Logger, sender Sender, samples config.SamplesConfig) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		sender:  sender,
		samples: samples,
		logger:  log.With(slog.String("service", "reply")),
	}
}

// Respond sends the reply matching the outcome back to the message sender.
// Sample-media commands trigger the upload-and-send flow instead of a text
// reply.
func (s *Service) Respond(ctx context.Context, msg message.Inbound, outcome router.Outcome) error {
	if outcome.Kind == router.OutcomeCommand {
		if kind, ok := sampleKind(outcome.Command); ok {
			return s.sendSample(ctx, msg.SenderID, kind)
		}
	}
	text := s.Compose(msg, outcome)
	if text == "" {
		return nil
	}
	return s.sender.SendText(ctx, msg.SenderID, text)
}

// Compose renders the reply text for an outcome.
func (s *Service) Compose(msg message.Inbound, outcome router.Outcome) string {
	switch outcome.Kind {
	case router.OutcomeStoredMedia:
		return composeStored(outcome)
	case router.OutcomeCommand:
		return composeCommand(msg, outcome.Command)
	case router.OutcomeEcho:
		return "You said: " + outcome.Echo
	case router.OutcomeLocation:
		return composeLocation(outcome.Location)
	case router.OutcomeInteractive:
		return composeInteractive(outcome.Interactive)
	case router.OutcomeFailed:
		return composeFailure(msg, outcome.Failure)
	}
	return ""
}

func composeStored(outcome router.Outcome) string {
	record := outcome.Stored
	parts := []string{
		fmt.Sprintf("Got your %s!", record.Category),
		"Saved as: " + record.Filename,
		fmt.Sprintf("Size: %d bytes", record.SizeBytes),
	}
	if outcome.Caption != "" {
		parts = append(parts, "Caption: "+outcome.Caption)
	}
	return strings.Join(parts, "\n")
}

func composeCommand(msg message.Inbound, cmd router.Command) string {
	switch cmd {
	case router.CommandGreeting:
		name := msg.SenderName
		if name == "" {
			name = "there"
		}
		return fmt.Sprintf("Hello %s! How can I help you today?", name)
	case router.CommandHelp:
		return helpText
	}
	return ""
}

func composeLocation(loc *message.LocationPayload) string {
	parts := []string{
		"Thanks for sharing your location!",
		fmt.Sprintf("Coordinates: %g, %g", loc.Latitude, loc.Longitude),
	}
	if loc.Name != "" {
		parts = append(parts, "Name: "+loc.Name)
	}
	if loc.Address != "" {
		parts = append(parts, "Address: "+loc.Address)
	}
	return strings.Join(parts, "\n")
}

func composeInteractive(payload *message.InteractivePayload) string {
	switch payload.ReplyType {
	case "button_reply":
		return fmt.Sprintf("You clicked: %s (ID: %s)", payload.Title, payload.ID)
	case "list_reply":
		parts := []string{"You selected: " + payload.Title}
		if payload.Description != "" {
			parts = append(parts, "Description: "+payload.Description)
		}
		parts = append(parts, "ID: "+payload.ID)
		return strings.Join(parts, "\n")
	}
	return "Received an interactive reply of type: " + payload.ReplyType
}

func composeFailure(msg message.Inbound, failure *router.Failure) string {
	if failure.Kind == router.FailureUnrecognizedKind {
		kind := msg.RawType
		if kind == "" {
			kind = "that"
		}
		return fmt.Sprintf("Sorry, I don't support %s messages yet. Try text, images, audio, video, documents, or locations.", kind)
	}
	if msg.Kind.IsMedia() {
		return "Sorry, I couldn't process your media. Please try again."
	}
	return "Sorry, I couldn't process your message."
}
