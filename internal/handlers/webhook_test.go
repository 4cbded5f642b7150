package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mediahook/mediahook/internal/media"
	"github.com/mediahook/mediahook/internal/message"
	"github.com/mediahook/mediahook/internal/router"
	"github.com/mediahook/mediahook/internal/whatsapp"
)

type fakeProcessor struct {
	calls   int
	lastMsg message.Inbound
	outcome router.Outcome
}

func (f *fakeProcessor) Process(_ context.Context, msg message.Inbound) router.Outcome {
	f.calls++
	f.lastMsg = msg
	return f.outcome
}

type fakeReplier struct {
	calls    int
	outcomes []router.Outcome
	err      error
}

func (f *fakeReplier) Respond(_ context.Context, _ message.Inbound, outcome router.Outcome) error {
	f.calls++
	f.outcomes = append(f.outcomes, outcome)
	return f.err
}

type fakeMarker struct {
	ids []string
	err error
}

func (f *fakeMarker) MarkAsRead(_ context.Context, messageID string) error {
	f.ids = append(f.ids, messageID)
	return f.err
}

func deliverJSON(h *WebhookHandler, body string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	if err := h.HandleDelivery(e.NewContext(req, rec)); err != nil {
		e.HTTPErrorHandler(err, e.NewContext(req, rec))
	}
	return rec
}

func wrapMessage(messageJSON string) string {
	return fmt.Sprintf(`{
		"object": "whatsapp_business_account",
		"entry": [{
			"changes": [{
				"value": {
					"contacts": [{"wa_id": "15551234567", "profile": {"name": "Ada"}}],
					"messages": [%s]
				}
			}]
		}]
	}`, messageJSON)
}

func TestHandleVerify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantBody   string
	}{
		{
			name:       "valid handshake",
			query:      "hub.mode=subscribe&hub.verify_token=secret-token&hub.challenge=12345",
			wantStatus: http.StatusOK,
			wantBody:   "12345",
		},
		{
			name:       "wrong token",
			query:      "hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=12345",
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "wrong mode",
			query:      "hub.mode=unsubscribe&hub.verify_token=secret-token&hub.challenge=12345",
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "missing parameters",
			query:      "hub.challenge=12345",
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := NewWebhookHandler(nil, "secret-token", &fakeProcessor{}, &fakeReplier{}, nil)
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/webhook?"+tt.query, nil)
			rec := httptest.NewRecorder()
			if err := h.HandleVerify(e.NewContext(req, rec)); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantBody != "" && rec.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestHandleDeliveryStatusOnly(t *testing.T) {
	t.Parallel()

	processor := &fakeProcessor{}
	h := NewWebhookHandler(nil, "secret-token", processor, &fakeReplier{}, nil)

	rec := deliverJSON(h, `{
		"object": "whatsapp_business_account",
		"entry": [{
			"changes": [{
				"value": {
					"statuses": [{"id": "wamid.1", "status": "delivered"}]
				}
			}]
		}]
	}`)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
	if processor.calls != 0 {
		t.Errorf("processor called %d times for status delivery", processor.calls)
	}
}

func TestHandleDeliveryInvalidEnvelope(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{"not json", "not json at all"},
		{"empty object", "{}"},
		{"empty entry", `{"object": "whatsapp_business_account", "entry": []}`},
		{"no messages or statuses", `{"object": "whatsapp_business_account", "entry": [{"changes": [{"value": {}}]}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			processor := &fakeProcessor{}
			h := NewWebhookHandler(nil, "secret-token", processor, &fakeReplier{}, nil)
			rec := deliverJSON(h, tt.body)
			if rec.Code != http.StatusNotFound {
				t.Errorf("status = %d, want 404", rec.Code)
			}
			if processor.calls != 0 {
				t.Errorf("processor called for invalid envelope")
			}
		})
	}
}

func TestHandleDeliveryOversizedBody(t *testing.T) {
	t.Parallel()

	h := NewWebhookHandler(nil, "secret-token", &fakeProcessor{}, &fakeReplier{}, nil)
	rec := deliverJSON(h, strings.Repeat("x", int(webhookMaxBodyBytes)+1))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rec.Code)
	}
}

func TestHandleDeliveryProcessesAndReplies(t *testing.T) {
	t.Parallel()

	processor := &fakeProcessor{outcome: router.Outcome{Kind: router.OutcomeEcho, Echo: "HELLO"}}
	replier := &fakeReplier{}
	marker := &fakeMarker{}
	h := NewWebhookHandler(nil, "secret-token", processor, replier, marker)

	rec := deliverJSON(h, wrapMessage(`{"id": "wamid.77", "from": "15551234567", "type": "text", "text": {"body": "hello"}}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if processor.calls != 1 {
		t.Errorf("processor calls = %d", processor.calls)
	}
	if processor.lastMsg.SenderID != "15551234567" || processor.lastMsg.Text == nil {
		t.Errorf("processed message = %+v", processor.lastMsg)
	}
	if replier.calls != 1 || replier.outcomes[0].Kind != router.OutcomeEcho {
		t.Errorf("replier calls = %d, outcomes = %+v", replier.calls, replier.outcomes)
	}
	if len(marker.ids) != 1 || marker.ids[0] != "wamid.77" {
		t.Errorf("marked ids = %v", marker.ids)
	}
}

func TestHandleDeliveryReplyFailureStillAcks(t *testing.T) {
	t.Parallel()

	processor := &fakeProcessor{outcome: router.Outcome{Kind: router.OutcomeEcho, Echo: "HI"}}
	replier := &fakeReplier{err: fmt.Errorf("recipient unreachable")}
	marker := &fakeMarker{err: fmt.Errorf("upstream 500")}
	h := NewWebhookHandler(nil, "secret-token", processor, replier, marker)

	rec := deliverJSON(h, wrapMessage(`{"id": "wamid.9", "from": "1555", "type": "text", "text": {"body": "hi"}}`))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 despite downstream failures", rec.Code)
	}
}

// End-to-end: an image delivery drives the two-hop Graph API fetch and lands
// the bytes on disk, and the webhook still answers 200.
func TestHandleDeliveryImageEndToEnd(t *testing.T) {
	t.Parallel()

	imageBytes := []byte("\xff\xd8\xff\xe0 fake jpeg payload")

	var upstream *httptest.Server
	upstream = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "Bearer TEST-TOKEN" {
			t.Errorf("authorization = %q", auth)
		}
		switch r.URL.Path {
		case "/v21.0/MEDIA-42":
			json.NewEncoder(w).Encode(map[string]any{
				"url":       upstream.URL + "/download/MEDIA-42",
				"mime_type": "image/jpeg",
				"file_size": len(imageBytes),
				"id":        "MEDIA-42",
			})
		case "/download/MEDIA-42":
			w.Write(imageBytes)
		default:
			t.Errorf("unexpected request: %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer upstream.Close()

	client := whatsapp.NewClient(nil, whatsapp.Config{
		AccessToken:     "TEST-TOKEN",
		PhoneNumberID:   "PHONE-1",
		BaseURL:         upstream.URL,
		MetadataTimeout: 5 * time.Second,
		DownloadTimeout: 5 * time.Second,
	})

	root := t.TempDir()
	persister, err := media.NewPersister(nil, root)
	if err != nil {
		t.Fatalf("new persister: %v", err)
	}
	rt := router.NewRouter(nil, media.NewAcquirer(nil, client), persister)

	replier := &fakeReplier{}
	h := NewWebhookHandler(nil, "secret-token", rt, replier, nil)

	rec := deliverJSON(h, wrapMessage(`{"id": "wamid.img", "from": "1555", "type": "image",
		"image": {"id": "MEDIA-42", "mime_type": "image/jpeg", "caption": "look at this"}}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	if replier.calls != 1 {
		t.Fatalf("replier calls = %d", replier.calls)
	}
	outcome := replier.outcomes[0]
	if outcome.Kind != router.OutcomeStoredMedia {
		t.Fatalf("outcome = %+v", outcome)
	}
	if outcome.Stored.Category != media.CategoryImage || outcome.Caption != "look at this" {
		t.Errorf("stored = %+v, caption = %q", outcome.Stored, outcome.Caption)
	}

	got, err := os.ReadFile(outcome.Stored.Path)
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if string(got) != string(imageBytes) {
		t.Errorf("stored bytes differ from upstream payload")
	}
	if filepath.Ext(outcome.Stored.Filename) != ".jpg" {
		t.Errorf("filename = %q", outcome.Stored.Filename)
	}
}

// A help command round-trips without touching the network or the filesystem.
func TestHandleDeliveryHelpNoSideEffects(t *testing.T) {
	t.Parallel()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected upstream request: %s %s", r.Method, r.URL.Path)
	}))
	defer upstream.Close()

	client := whatsapp.NewClient(nil, whatsapp.Config{
		AccessToken:   "TEST-TOKEN",
		PhoneNumberID: "PHONE-1",
		BaseURL:       upstream.URL,
	})

	root := t.TempDir()
	persister, err := media.NewPersister(nil, root)
	if err != nil {
		t.Fatalf("new persister: %v", err)
	}
	rt := router.NewRouter(nil, media.NewAcquirer(nil, client), persister)

	replier := &fakeReplier{}
	h := NewWebhookHandler(nil, "secret-token", rt, replier, nil)

	rec := deliverJSON(h, wrapMessage(`{"id": "wamid.help", "from": "1555", "type": "text", "text": {"body": "help"}}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if replier.outcomes[0].Kind != router.OutcomeCommand || replier.outcomes[0].Command != router.CommandHelp {
		t.Errorf("outcome = %+v", replier.outcomes[0])
	}

	for _, cat := range media.Categories() {
		entries, err := os.ReadDir(filepath.Join(root, string(cat)))
		if err != nil {
			t.Fatalf("read dir: %v", err)
		}
		if len(entries) != 0 {
			t.Errorf("unexpected files in %s: %v", cat, entries)
		}
	}
}
