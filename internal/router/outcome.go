package router

import (
	"errors"

	"github.com/mediahook/mediahook/internal/media"
	"github.com/mediahook/mediahook/internal/message"
)

// OutcomeKind tags the result of processing one inbound message.
type OutcomeKind string

const (
	OutcomeStoredMedia OutcomeKind = "stored_media"
	OutcomeCommand     OutcomeKind = "command"
	OutcomeEcho        OutcomeKind = "echo"
	OutcomeLocation    OutcomeKind = "location"
	OutcomeInteractive OutcomeKind = "interactive"
	OutcomeFailed      OutcomeKind = "failed"
)

// FailureKind is the typed error taxonomy surfaced to the reply and logging
// layers.
type FailureKind string

const (
	FailureMalformedPayload FailureKind = "malformed_payload"
	FailureUnsupportedMime  FailureKind = "unsupported_mime_type"
	FailureURLResolution    FailureKind = "media_url_resolution_failed"
	FailureDownload         FailureKind = "media_download_failed"
	FailureStorageWrite     FailureKind = "storage_write_failed"
	FailureUnrecognizedKind FailureKind = "unrecognized_message_kind"
	FailureInternal         FailureKind = "internal"
)

// Stage names the last pipeline stage that completed before a failure.
type Stage string

const (
	StageClassified Stage = "classified"
	StageExtracted  Stage = "extracted"
	StageAcquired   Stage = "acquired"
	StagePersisted  Stage = "persisted"
)

// Outcome is the tagged result for one inbound message. Exactly one of the
// payload fields matching Kind is set. Failures never escape the router as
// errors; they are carried here so the webhook boundary can still acknowledge
// the delivery.
type Outcome struct {
	Kind        OutcomeKind
	Stored      *media.StoredRecord
	Caption     string
	Command     Command
	Echo        string
	Location    *message.LocationPayload
	Interactive *message.InteractivePayload
	Failure     *Failure
}

// Failure records a typed pipeline failure and how far processing got.
type Failure struct {
	Kind FailureKind
	// CompletedStage is the last stage that finished before the fault.
	CompletedStage Stage
	Err            error
}

func failed(kind FailureKind, stage Stage, err error) Outcome {
	return Outcome{
		Kind: OutcomeFailed,
		Failure: &Failure{
			Kind:           kind,
			CompletedStage: stage,
			Err:            err,
		},
	}
}

// classifyFailure maps a media pipeline error onto the failure taxonomy.
func classifyFailure(err error) FailureKind {
	switch {
	case errors.Is(err, media.ErrMalformedPayload):
		return FailureMalformedPayload
	case errors.Is(err, media.ErrUnsupportedMime):
		return FailureUnsupportedMime
	case errors.Is(err, media.ErrURLResolution):
		return FailureURLResolution
	case errors.Is(err, media.ErrDownload), errors.Is(err, media.ErrTooLarge):
		return FailureDownload
	case errors.Is(err, media.ErrStorageWrite):
		return FailureStorageWrite
	default:
		return FailureInternal
	}
}
