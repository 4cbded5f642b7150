package message

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrStatusOnly indicates the delivery carries only delivery/read status
	// updates. Acknowledged but not processed.
	ErrStatusOnly = errors.New("status-only webhook delivery")
	// ErrInvalidEnvelope indicates the body is not a WhatsApp message event.
	ErrInvalidEnvelope = errors.New("not a whatsapp api event")
)

// Webhook envelope shapes, as delivered by the Graph API. Only the fields the
// pipeline consumes are declared.
type envelope struct {
	Object string  `json:"object"`
	Entry  []entry `json:"entry"`
}

type entry struct {
	Changes []change `json:"changes"`
}

type change struct {
	Value changeValue `json:"value"`
}

type changeValue struct {
	Statuses []json.RawMessage `json:"statuses"`
	Contacts []contact         `json:"contacts"`
	Messages []rawMessage      `json:"messages"`
}

type contact struct {
	WaID    string `json:"wa_id"`
	Profile struct {
		Name string `json:"name"`
	} `json:"profile"`
}

type rawMessage struct {
	ID          string          `json:"id"`
	From        string          `json:"from"`
	Type        string          `json:"type"`
	Text        *rawText        `json:"text"`
	Image       *rawMedia       `json:"image"`
	Audio       *rawMedia       `json:"audio"`
	Video       *rawMedia       `json:"video"`
	Document    *rawMedia       `json:"document"`
	Location    *rawLocation    `json:"location"`
	Interactive *rawInteractive `json:"interactive"`
}

type rawText struct {
	Body string `json:"body"`
}

type rawMedia struct {
	ID       string `json:"id"`
	MimeType string `json:"mime_type"`
	Caption  string `json:"caption"`
	Filename string `json:"filename"`
	SHA256   string `json:"sha256"`
	FileSize int64  `json:"file_size"`
}

type rawLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Name      string  `json:"name"`
	Address   string  `json:"address"`
}

type rawInteractive struct {
	Type        string    `json:"type"`
	ButtonReply *rawReply `json:"button_reply"`
	ListReply   *rawReply `json:"list_reply"`
}

type rawReply struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Parse decodes one webhook delivery into an Inbound message. Status-only
// deliveries return ErrStatusOnly; anything without a message event returns
// ErrInvalidEnvelope.
func Parse(body []byte) (Inbound, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Inbound{}, fmt.Errorf("%w: %v", ErrInvalidEnvelope, err)
	}
	if len(env.Entry) == 0 || len(env.Entry[0].Changes) == 0 {
		return Inbound{}, ErrInvalidEnvelope
	}
	value := env.Entry[0].Changes[0].Value
	if len(value.Statuses) > 0 {
		return Inbound{}, ErrStatusOnly
	}
	if len(value.Messages) == 0 {
		return Inbound{}, ErrInvalidEnvelope
	}

	raw := value.Messages[0]
	msg := Inbound{
		SenderID:   raw.From,
		MessageID:  raw.ID,
		RawType:    raw.Type,
		ReceivedAt: time.Now(),
	}
	if len(value.Contacts) > 0 {
		if msg.SenderID == "" {
			msg.SenderID = value.Contacts[0].WaID
		}
		msg.SenderName = value.Contacts[0].Profile.Name
	}

	switch raw.Type {
	case "text":
		msg.Kind = KindText
		msg.Text = &TextPayload{}
		if raw.Text != nil {
			msg.Text.Body = raw.Text.Body
		}
	case "image":
		msg.Kind = KindImage
		msg.Media = convertMedia(raw.Image)
	case "audio":
		msg.Kind = KindAudio
		msg.Media = convertMedia(raw.Audio)
	case "video":
		msg.Kind = KindVideo
		msg.Media = convertMedia(raw.Video)
	case "document":
		msg.Kind = KindDocument
		msg.Media = convertMedia(raw.Document)
	case "location":
		msg.Kind = KindLocation
		if raw.Location != nil {
			msg.Location = &LocationPayload{
				Latitude:  raw.Location.Latitude,
				Longitude: raw.Location.Longitude,
				Name:      raw.Location.Name,
				Address:   raw.Location.Address,
			}
		}
	case "interactive":
		msg.Kind = KindInteractive
		msg.Interactive = convertInteractive(raw.Interactive)
	default:
		msg.Kind = KindUnknown
	}
	return msg, nil
}

func convertMedia(raw *rawMedia) *MediaPayload {
	if raw == nil {
		return nil
	}
	return &MediaPayload{
		ID:       raw.ID,
		Mime:     raw.MimeType,
		Caption:  raw.Caption,
		Filename: raw.Filename,
		SHA256:   raw.SHA256,
		FileSize: raw.FileSize,
	}
}

func convertInteractive(raw *rawInteractive) *InteractivePayload {
	if raw == nil {
		return nil
	}
	payload := &InteractivePayload{ReplyType: raw.Type}
	switch raw.Type {
	case "button_reply":
		if raw.ButtonReply != nil {
			payload.ID = raw.ButtonReply.ID
			payload.Title = raw.ButtonReply.Title
		}
	case "list_reply":
		if raw.ListReply != nil {
			payload.ID = raw.ListReply.ID
			payload.Title = raw.ListReply.Title
			payload.Description = raw.ListReply.Description
		}
	}
	return payload
}
