package whatsapp

// Wire shapes for the Graph API messages endpoint. Only one media body is set
// per envelope, matching the Type field.
type messageEnvelope struct {
	MessagingProduct string     `json:"messaging_product"`
	RecipientType    string     `json:"recipient_type,omitempty"`
	To               string     `json:"to,omitempty"`
	Type             string     `json:"type,omitempty"`
	Text             *textBody  `json:"text,omitempty"`
	Image            *mediaBody `json:"image,omitempty"`
	Audio            *mediaBody `json:"audio,omitempty"`
	Video            *mediaBody `json:"video,omitempty"`
	Document         *mediaBody `json:"document,omitempty"`
	Status           string     `json:"status,omitempty"`
	MessageID        string     `json:"message_id,omitempty"`
}

type textBody struct {
	PreviewURL bool   `json:"preview_url"`
	Body       string `json:"body"`
}

type mediaBody struct {
	ID       string `json:"id,omitempty"`
	Link     string `json:"link,omitempty"`
	Caption  string `json:"caption,omitempty"`
	Filename string `json:"filename,omitempty"`
}

type sendResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

// mediaMetadata is the response of GET /{media_id}: the short-lived download
// URL plus the platform-confirmed MIME type and size.
type mediaMetadata struct {
	URL      string `json:"url"`
	MimeType string `json:"mime_type"`
	SHA256   string `json:"sha256"`
	FileSize int64  `json:"file_size"`
	ID       string `json:"id"`
}

type uploadResponse struct {
	ID string `json:"id"`
}

// MediaRef addresses outbound media either by an uploaded media id or a
// public link. Exactly one should be set.
type MediaRef struct {
	ID   string
	Link string
}
