package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

type fakeMailer struct {
	errs []error
	sent []*Message
}

func (f *fakeMailer) Send(_ context.Context, msg *Message) error {
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return err
		}
	}
	f.sent = append(f.sent, msg)
	return nil
}

func TestGraphMailer_Send(t *testing.T) {
	var path string
	var payload struct {
		Message struct {
			Subject string `json:"subject"`
			Body    struct {
				ContentType string `json:"contentType"`
				Content     string `json:"content"`
			} `json:"body"`
			ToRecipients []struct {
				EmailAddress struct {
					Address string `json:"address"`
				} `json:"emailAddress"`
			} `json:"toRecipients"`
			CcRecipients []json.RawMessage `json:"ccRecipients"`
			Attachments  []struct {
				ODataType    string `json:"@odata.type"`
				Name         string `json:"name"`
				ContentBytes string `json:"contentBytes"`
			} `json:"attachments"`
		} `json:"message"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	m := NewGraphMailer(srv.Client(), srv.URL+"/", "rfp@example.com")
	err := m.Send(context.Background(), &Message{
		To:          []string{"ops@example.com"},
		Subject:     "Test",
		Body:        "<b>hi</b>",
		HTML:        true,
		Attachments: []Attachment{{Name: "cv.pdf", Content: []byte("%PDF")}},
	})
	require.NoError(t, err)

	assert.Equal(t, "/v1.0/users/rfp@example.com/sendMail", path)
	assert.Equal(t, "Test", payload.Message.Subject)
	assert.Equal(t, "HTML", payload.Message.Body.ContentType)
	require.Len(t, payload.Message.ToRecipients, 1)
	assert.Equal(t, "ops@example.com", payload.Message.ToRecipients[0].EmailAddress.Address)
	assert.Empty(t, payload.Message.CcRecipients)
	require.Len(t, payload.Message.Attachments, 1)
	assert.Equal(t, "#microsoft.graph.fileAttachment", payload.Message.Attachments[0].ODataType)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("%PDF")), payload.Message.Attachments[0].ContentBytes)
}

func TestGraphMailer_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":"ErrorInvalidRecipients"}}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	err := NewGraphMailer(srv.Client(), srv.URL, "rfp@example.com").Send(context.Background(), &Message{To: []string{"x@example.com"}})
	var gErr *GraphError
	require.True(t, errors.As(err, &gErr))
	assert.Equal(t, http.StatusBadRequest, gErr.StatusCode)
	assert.Contains(t, gErr.Body, "ErrorInvalidRecipients")
}

func TestGmailMailer_SendsRFC822(t *testing.T) {
	var raw string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/users/me/messages/send"), r.URL.Path)
		var m gmail.Message
		require.NoError(t, json.NewDecoder(r.Body).Decode(&m))
		raw = m.Raw
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"1"}`))
	}))
	defer srv.Close()

	svc, err := gmail.NewService(context.Background(), option.WithHTTPClient(srv.Client()), option.WithEndpoint(srv.URL+"/"))
	require.NoError(t, err)

	err = NewGmailMailer(svc).Send(context.Background(), &Message{
		To:      []string{"ops@example.com"},
		Subject: "Nouvelle offre: Développeur",
		Body:    "plain body",
	})
	require.NoError(t, err)

	decoded, err := base64.URLEncoding.DecodeString(raw)
	require.NoError(t, err)
	msg, err := mail.ReadMessage(strings.NewReader(string(decoded)))
	require.NoError(t, err)

	subject, err := new(mime.WordDecoder).DecodeHeader(msg.Header.Get("Subject"))
	require.NoError(t, err)
	assert.Equal(t, "Nouvelle offre: Développeur", subject)
	body, _ := io.ReadAll(msg.Body)
	assert.Equal(t, "plain body", string(body))
}

func TestBuildRFC822_WithAttachment(t *testing.T) {
	raw, err := buildRFC822(&Message{
		To:          []string{"a@example.com"},
		Cc:          []string{"b@example.com"},
		Subject:     "RFP",
		Body:        "<p>see attached</p>",
		HTML:        true,
		Attachments: []Attachment{{Name: "rfp.txt", Content: []byte(strings.Repeat("x", 200))}},
	})
	require.NoError(t, err)

	msg, err := mail.ReadMessage(strings.NewReader(string(raw)))
	require.NoError(t, err)
	assert.Equal(t, "b@example.com", msg.Header.Get("Cc"))

	mediaType, params, err := mime.ParseMediaType(msg.Header.Get("Content-Type"))
	require.NoError(t, err)
	assert.Equal(t, "multipart/mixed", mediaType)

	mr := multipart.NewReader(msg.Body, params["boundary"])
	body, err := mr.NextPart()
	require.NoError(t, err)
	assert.Contains(t, body.Header.Get("Content-Type"), "text/html")

	att, err := mr.NextPart()
	require.NoError(t, err)
	assert.Equal(t, "rfp.txt", att.FileName())
	enc, _ := io.ReadAll(att)
	content, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(string(enc), "\r\n", ""))
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("x", 200), string(content))
}

func TestLoadAttachments_SkipsMissingAndOversized(t *testing.T) {
	dir := t.TempDir()
	small := filepath.Join(dir, "brief.txt")
	require.NoError(t, os.WriteFile(small, []byte("hello"), 0o600))

	big := filepath.Join(dir, "huge.bin")
	f, err := os.Create(big)
	require.NoError(t, err)
	require.NoError(t, f.Truncate(MaxAttachmentSize+1))
	require.NoError(t, f.Close())

	got := LoadAttachments([]string{small, filepath.Join(dir, "missing.pdf"), big})
	require.Len(t, got, 1)
	assert.Equal(t, "brief.txt", got[0].Name)
	assert.Equal(t, []byte("hello"), got[0].Content)
	assert.Contains(t, got[0].ContentType, "text/plain")
}

func TestMailService_RetriesTransientErrors(t *testing.T) {
	fake := &fakeMailer{errs: []error{errors.New("connection reset"), nil}}
	svc := NewMailService(fake, nil, nil)
	svc.Backoff = time.Millisecond

	require.NoError(t, svc.Send(context.Background(), &Message{To: []string{"a@example.com"}, Subject: "s"}, ""))
	assert.Len(t, fake.sent, 1)
}

func TestMailService_PermanentErrorFailsFast(t *testing.T) {
	fake := &fakeMailer{errs: []error{&googleapi.Error{Code: 403}, nil}}
	svc := NewMailService(fake, nil, nil)
	svc.Backoff = time.Millisecond

	err := svc.Send(context.Background(), &Message{To: []string{"a@example.com"}}, "")
	var gErr *googleapi.Error
	require.True(t, errors.As(err, &gErr))
	assert.Empty(t, fake.sent)
}

func TestMailService_GivesUp(t *testing.T) {
	boom := errors.New("timeout")
	fake := &fakeMailer{errs: []error{boom, boom, boom}}
	svc := NewMailService(fake, nil, nil)
	svc.Backoff = time.Millisecond

	err := svc.Send(context.Background(), &Message{To: []string{"a@example.com"}}, "")
	assert.ErrorIs(t, err, boom)
}

func TestMailService_Disabled(t *testing.T) {
	var svc *MailService
	assert.ErrorIs(t, svc.Send(context.Background(), &Message{}, ""), ErrMailerDisabled)
	assert.ErrorIs(t, NewMailService(nil, nil, nil).Send(context.Background(), &Message{}, ""), ErrMailerDisabled)
}

func TestMailService_NotifyRFPCreated(t *testing.T) {
	rfps := NewRFPService(newTestDB(t))
	rfp, err := rfps.Create(sampleCreation())
	require.NoError(t, err)

	fake := &fakeMailer{}
	svc := NewMailService(fake, rfps, []string{"sales@example.com"})
	svc.NotifyRFPCreated(context.Background(), rfp)

	require.Len(t, fake.sent, 1)
	assert.Equal(t, "New RFP: Data Engineer at TechCorp", fake.sent[0].Subject)
	assert.Contains(t, fake.sent[0].Body, "Skills: Python")

	events, err := rfps.Events(rfp.ID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, EventMailed, events[1].EventType)
}
