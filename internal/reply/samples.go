package reply

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/mediahook/mediahook/internal/config"
	"github.com/mediahook/mediahook/internal/router"
	"github.com/mediahook/mediahook/internal/whatsapp"
)

func sampleKind(cmd router.Command) (string, bool) {
	switch cmd {
	case router.CommandSendImage:
		return "image", true
	case router.CommandSendAudio:
		return "audio", true
	case router.CommandSendVideo:
		return "video", true
	case router.CommandSendDocument:
		return "document", true
	}
	return "", false
}

func (s *Service) sampleFile(kind string) config.SampleFile {
	switch kind {
	case "image":
		return s.samples.Image
	case "audio":
		return s.samples.Audio
	case "video":
		return s.samples.Video
	case "document":
		return s.samples.Document
	}
	return config.SampleFile{}
}

// sendSample uploads the configured sample file for the kind and sends it to
// the recipient: acknowledgment first, then the media, then a confirmation.
func (s *Service) sendSample(ctx context.Context, to, kind string) error {
	sample := s.sampleFile(kind)
	if sample.Path == "" {
		return s.sender.SendText(ctx, to, fmt.Sprintf("Sorry, no sample %s is configured.", kind))
	}
	if _, err := os.Stat(sample.Path); err != nil {
		s.logger.Error("sample file missing",
			slog.String("kind", kind),
			slog.String("path", sample.Path),
			slog.Any("error", err))
		return s.sender.SendText(ctx, to, fmt.Sprintf("Sorry, the sample %s is unavailable right now.", kind))
	}

	if err := s.sender.SendText(ctx, to, fmt.Sprintf("Sending sample %s, please wait.", kind)); err != nil {
		s.logger.Warn("send acknowledgment failed", slog.Any("error", err))
	}

	mediaID, err := s.sender.UploadMedia(ctx, sample.Path, sample.Mime)
	if err != nil {
		s.logger.Error("sample upload failed",
			slog.String("kind", kind),
			slog.Any("error", err))
		return s.sender.SendText(ctx, to, fmt.Sprintf("Sorry, I couldn't send the sample %s. Please try again later.", kind))
	}

	ref := whatsapp.MediaRef{ID: mediaID}
	switch kind {
	case "image":
		err = s.sender.SendImage(ctx, to, ref, sample.Caption)
	case "audio":
		// Audio messages do not carry captions.
		err = s.sender.SendAudio(ctx, to, ref)
	case "video":
		err = s.sender.SendVideo(ctx, to, ref, sample.Caption)
	case "document":
		err = s.sender.SendDocument(ctx, to, ref, sample.Filename, sample.Caption)
	}
	if err != nil {
		s.logger.Error("sample send failed",
			slog.String("kind", kind),
			slog.Any("error", err))
		return s.sender.SendText(ctx, to, fmt.Sprintf("Sorry, I couldn't send the sample %s. Please try again later.", kind))
	}
	return s.sender.SendText(ctx, to, fmt.Sprintf("Sample %s sent successfully!", kind))
}
