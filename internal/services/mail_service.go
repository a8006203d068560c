package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/justsurfingit/rfp-manager/internal/models"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
)

// MaxAttachmentSize is the largest file accepted as an attachment.
const MaxAttachmentSize = 25 * 1024 * 1024

type Attachment struct {
	Name        string
	ContentType string
	Content     []byte
}

type Message struct {
	To          []string
	Cc          []string
	Bcc         []string
	Subject     string
	Body        string
	HTML        bool
	Attachments []Attachment
}

// Mailer delivers a single message through a mail provider.
type Mailer interface {
	Send(ctx context.Context, msg *Message) error
}

// GraphError is a non-success answer from Microsoft Graph.
type GraphError struct {
	StatusCode int
	Body       string
}

func (e *GraphError) Error() string {
	return fmt.Sprintf("graph sendMail failed with status %d: %s", e.StatusCode, e.Body)
}

// LoadAttachments reads files for attaching. Missing files and files over
// MaxAttachmentSize are skipped with a warning.
func LoadAttachments(paths []string) []Attachment {
	var out []Attachment
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			log.Printf("⚠️  Attachment skipped, file not found: %s", p)
			continue
		}
		if info.Size() > MaxAttachmentSize {
			log.Printf("⚠️  Attachment skipped, %s is %d bytes (limit %d)", p, info.Size(), MaxAttachmentSize)
			continue
		}
		data, err := os.ReadFile(p)
		if err != nil {
			log.Printf("⚠️  Attachment skipped, %s: %v", p, err)
			continue
		}
		out = append(out, Attachment{Name: filepath.Base(p), ContentType: contentTypeFor(p, ""), Content: data})
	}
	return out
}

func contentTypeFor(name, given string) string {
	if given != "" {
		return given
	}
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// --- Microsoft Graph ---

type GraphMailer struct {
	Client  *http.Client // must carry the app token, see auth.GraphClient
	BaseURL string
	Mailbox string
}

func NewGraphMailer(client *http.Client, baseURL, mailbox string) *GraphMailer {
	return &GraphMailer{Client: client, BaseURL: strings.TrimRight(baseURL, "/"), Mailbox: mailbox}
}

type graphAddress struct {
	EmailAddress struct {
		Address string `json:"address"`
	} `json:"emailAddress"`
}

type graphAttachment struct {
	ODataType    string `json:"@odata.type"`
	Name         string `json:"name"`
	ContentType  string `json:"contentType"`
	ContentBytes string `json:"contentBytes"`
}

type graphMessage struct {
	Subject string `json:"subject"`
	Body    struct {
		ContentType string `json:"contentType"`
		Content     string `json:"content"`
	} `json:"body"`
	ToRecipients  []graphAddress    `json:"toRecipients"`
	CcRecipients  []graphAddress    `json:"ccRecipients,omitempty"`
	BccRecipients []graphAddress    `json:"bccRecipients,omitempty"`
	Attachments   []graphAttachment `json:"attachments,omitempty"`
}

func graphAddresses(addrs []string) []graphAddress {
	out := make([]graphAddress, 0, len(addrs))
	for _, a := range addrs {
		var ga graphAddress
		ga.EmailAddress.Address = a
		out = append(out, ga)
	}
	return out
}

func (g *GraphMailer) Send(ctx context.Context, msg *Message) error {
	var gm graphMessage
	gm.Subject = msg.Subject
	gm.Body.ContentType = "Text"
	if msg.HTML {
		gm.Body.ContentType = "HTML"
	}
	gm.Body.Content = msg.Body
	gm.ToRecipients = graphAddresses(msg.To)
	if len(msg.Cc) > 0 {
		gm.CcRecipients = graphAddresses(msg.Cc)
	}
	if len(msg.Bcc) > 0 {
		gm.BccRecipients = graphAddresses(msg.Bcc)
	}
	for _, a := range msg.Attachments {
		gm.Attachments = append(gm.Attachments, graphAttachment{
			ODataType:    "#microsoft.graph.fileAttachment",
			Name:         a.Name,
			ContentType:  contentTypeFor(a.Name, a.ContentType),
			ContentBytes: base64.StdEncoding.EncodeToString(a.Content),
		})
	}

	payload, err := json.Marshal(map[string]any{"message": gm, "saveToSentItems": true})
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/v1.0/users/%s/sendMail", g.BaseURL, url.PathEscape(g.Mailbox))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &GraphError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return nil
}

// --- Gmail ---

type GmailMailer struct {
	Service *gmail.Service
}

func NewGmailMailer(svc *gmail.Service) *GmailMailer {
	return &GmailMailer{Service: svc}
}

func (g *GmailMailer) Send(ctx context.Context, msg *Message) error {
	raw, err := buildRFC822(msg)
	if err != nil {
		return err
	}
	_, err = g.Service.Users.Messages.Send("me", &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString(raw),
	}).Context(ctx).Do()
	return err
}

// buildRFC822 renders msg as a MIME message. Attachments turn it into multipart/mixed.
func buildRFC822(msg *Message) ([]byte, error) {
	var buf bytes.Buffer
	header := func(k, v string) { fmt.Fprintf(&buf, "%s: %s\r\n", k, v) }

	header("To", strings.Join(msg.To, ", "))
	if len(msg.Cc) > 0 {
		header("Cc", strings.Join(msg.Cc, ", "))
	}
	if len(msg.Bcc) > 0 {
		header("Bcc", strings.Join(msg.Bcc, ", "))
	}
	header("Subject", mime.QEncoding.Encode("utf-8", msg.Subject))
	header("MIME-Version", "1.0")

	bodyType := `text/plain; charset="UTF-8"`
	if msg.HTML {
		bodyType = `text/html; charset="UTF-8"`
	}

	if len(msg.Attachments) == 0 {
		header("Content-Type", bodyType)
		buf.WriteString("\r\n")
		buf.WriteString(msg.Body)
		return buf.Bytes(), nil
	}

	var parts bytes.Buffer
	mw := multipart.NewWriter(&parts)
	header("Content-Type", "multipart/mixed; boundary="+mw.Boundary())
	buf.WriteString("\r\n")

	bw, err := mw.CreatePart(textproto.MIMEHeader{"Content-Type": {bodyType}})
	if err != nil {
		return nil, err
	}
	if _, err := io.WriteString(bw, msg.Body); err != nil {
		return nil, err
	}

	for _, a := range msg.Attachments {
		aw, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {contentTypeFor(a.Name, a.ContentType)},
			"Content-Disposition":       {mime.FormatMediaType("attachment", map[string]string{"filename": a.Name})},
			"Content-Transfer-Encoding": {"base64"},
		})
		if err != nil {
			return nil, err
		}
		enc := base64.StdEncoding.EncodeToString(a.Content)
		for len(enc) > 76 {
			io.WriteString(aw, enc[:76]+"\r\n")
			enc = enc[76:]
		}
		io.WriteString(aw, enc+"\r\n")
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}
	buf.Write(parts.Bytes())
	return buf.Bytes(), nil
}

// --- Service ---

type MailService struct {
	Mailer   Mailer
	RFPs     *RFPService
	NotifyTo []string
	Attempts int
	Backoff  time.Duration
}

func NewMailService(mailer Mailer, rfps *RFPService, notifyTo []string) *MailService {
	return &MailService{Mailer: mailer, RFPs: rfps, NotifyTo: notifyTo, Attempts: 3, Backoff: time.Second}
}

var ErrMailerDisabled = errors.New("no mail provider configured")

// Send delivers msg with retries. A non-empty rfpID records a MAILED event on that RFP.
func (s *MailService) Send(ctx context.Context, msg *Message, rfpID string) error {
	if s == nil || s.Mailer == nil {
		return ErrMailerDisabled
	}

	err := retry(ctx, s.Attempts, s.Backoff, func() error {
		return s.Mailer.Send(ctx, msg)
	})
	if err != nil {
		log.Printf("❌ Mail %q to %v failed: %v", msg.Subject, msg.To, err)
		return err
	}
	log.Printf("📤 Mail %q sent to %v", msg.Subject, msg.To)

	if rfpID != "" && s.RFPs != nil {
		s.RFPs.LogEvent(rfpID, EventMailed, fmt.Sprintf("%q sent to %s", msg.Subject, strings.Join(msg.To, ", ")))
	}
	return nil
}

// NotifyRFPCreated tells the configured recipients about a new RFP. It is a
// no-op when nobody is configured or no mailer is set.
func (s *MailService) NotifyRFPCreated(ctx context.Context, rfp *models.RFP) {
	if s == nil || s.Mailer == nil || len(s.NotifyTo) == 0 {
		return
	}

	var skills []string
	for _, sk := range rfp.Skills {
		skills = append(skills, sk.Name)
	}
	body := fmt.Sprintf("A new RFP was registered.\n\nRole: %s\nCompany: %s (%s)\nSource: %s\nSkills: %s\n",
		rfp.Role, rfp.CompanyName, rfp.CompanyCity, rfp.Source, strings.Join(skills, ", "))

	msg := &Message{
		To:      s.NotifyTo,
		Subject: fmt.Sprintf("New RFP: %s at %s", rfp.Role, rfp.CompanyName),
		Body:    body,
	}
	if err := s.Send(ctx, msg, rfp.ID); err != nil {
		log.Printf("⚠️  RFP %s notification not sent: %v", rfp.ID, err)
	}
}

// retry runs f with exponential backoff. Client errors from the providers
// fail fast since repeating the same request cannot succeed.
func retry(ctx context.Context, attempts int, sleep time.Duration, f func() error) error {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for i := 0; i < attempts; i++ {
		if err = f(); err == nil {
			return nil
		}
		if isPermanent(err) {
			return err
		}
		if i == attempts-1 {
			break
		}

		log.Printf("⚠️ API Error: %v. Retrying in %v...", err, sleep)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleep):
		}
		sleep *= 2
	}
	return fmt.Errorf("failed after %d attempts: %w", attempts, err)
}

func isPermanent(err error) bool {
	code := 0
	var gErr *googleapi.Error
	var grErr *GraphError
	switch {
	case errors.As(err, &gErr):
		code = gErr.Code
	case errors.As(err, &grErr):
		code = grErr.StatusCode
	default:
		return false
	}
	return code >= 400 && code < 500 && code != http.StatusTooManyRequests
}
