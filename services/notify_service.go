package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

var (
	ErrNotifierNotConfigured = errors.New("notification channel is not configured")
	ErrContactFieldsMissing  = errors.New("name, email and message are required")
	ErrUnknownForm           = errors.New("unable to determine form type")
	ErrDispatchTimeout       = errors.New("notification dispatch timed out")
	ErrDispatchNetwork       = errors.New("network error while sending notification")
)

// ChannelError is a delivery refused by the notification channel itself
type ChannelError struct {
	Description string
}

func (e *ChannelError) Error() string {
	return "Telegram API error: " + e.Description
}

// Notifier delivers an already formatted MarkdownV2 message
type Notifier interface {
	Configured() bool
	Send(ctx context.Context, text string) error
}

// NotifyRequest is a website form submission. Both the contact form and
// the quick enquiry widget post this shape with different fields filled.
type NotifyRequest struct {
	Name           string `json:"name"`
	Phone          string `json:"phone"`
	Email          string `json:"email"`
	Subject        string `json:"subject"`
	Message        string `json:"message"`
	UniversityName string `json:"universityName"`
}

// ParseNotifyRequest decodes a JSON object leniently: numbers and true are
// accepted as text, zero, false and null read as empty, and unknown fields
// are ignored
func ParseNotifyRequest(body []byte) (NotifyRequest, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return NotifyRequest{}, err
	}

	field := func(name string) string {
		v, ok := raw[name]
		if !ok {
			return ""
		}
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			return s
		}
		var n json.Number
		if err := json.Unmarshal(v, &n); err == nil {
			// zero counts as not filled in, like false and null
			if f, err := n.Float64(); err == nil && f == 0 {
				return ""
			}
			return n.String()
		}
		var b bool
		if err := json.Unmarshal(v, &b); err == nil && b {
			return "true"
		}
		return ""
	}

	return NotifyRequest{
		Name:           field("name"),
		Phone:          field("phone"),
		Email:          field("email"),
		Subject:        field("subject"),
		Message:        field("message"),
		UniversityName: field("universityName"),
	}, nil
}

const (
	FormContact      = "📬 Contact form"
	FormQuickEnquiry = "⚡ Quick enquiry"
)

// ComposeNotification classifies the request and renders the message text.
// Any of email, subject or message makes it a contact form, which then
// needs name, email and message. Otherwise name and phone make a quick
// enquiry.
func ComposeNotification(req NotifyRequest) (kind string, text string, err error) {
	var lines []string

	switch {
	case req.Email != "" || req.Subject != "" || req.Message != "":
		kind = FormContact
		if req.Name == "" || req.Email == "" || req.Message == "" {
			return kind, "", ErrContactFieldsMissing
		}
		lines = append(lines,
			"👤 Name: "+EscapeMarkdownV2(req.Name),
			"✉️ Email: "+EscapeMarkdownV2(req.Email),
		)
		if req.Phone != "" {
			lines = append(lines, "📞 Phone: "+EscapeMarkdownV2(req.Phone))
		}
		if req.Subject != "" {
			lines = append(lines, "🏷️ Subject: "+EscapeMarkdownV2(req.Subject))
		}
		lines = append(lines, "\n📝 Message:\n"+EscapeMarkdownV2(req.Message))

	case req.Name != "" && req.Phone != "":
		kind = FormQuickEnquiry
		lines = append(lines,
			"👤 Name: "+EscapeMarkdownV2(req.Name),
			"📞 Phone: "+EscapeMarkdownV2(req.Phone),
		)
		if req.UniversityName != "" {
			lines = append(lines, "🎓 University: "+EscapeMarkdownV2(req.UniversityName))
		}

	default:
		return "", "", ErrUnknownForm
	}

	text = "*" + EscapeMarkdownV2(kind) + "*\n\n" + strings.Join(lines, "\n")
	return kind, text, nil
}

var markdownV2Escaper = func() *strings.Replacer {
	var pairs []string
	for _, c := range "_*[]()~`>#+-=|{}.!" {
		pairs = append(pairs, string(c), `\`+string(c))
	}
	return strings.NewReplacer(pairs...)
}()

// EscapeMarkdownV2 backslash-escapes Telegram's MarkdownV2 reserved characters
func EscapeMarkdownV2(s string) string {
	return markdownV2Escaper.Replace(s)
}

// NotifyService relays website forms to the configured Notifier
type NotifyService struct {
	notifier Notifier
	log      *zap.Logger
}

func NewNotifyService(notifier Notifier, logger *zap.Logger) *NotifyService {
	return &NotifyService{
		notifier: notifier,
		log:      logger.Named("notify"),
	}
}

// Configured reports whether a delivery channel is set up
func (s *NotifyService) Configured() bool {
	return s.notifier != nil && s.notifier.Configured()
}

// Notify validates, formats and delivers one submission. There is no retry.
func (s *NotifyService) Notify(ctx context.Context, req NotifyRequest) error {
	if !s.Configured() {
		s.log.Error("notify channel missing TELEGRAM_BOT_TOKEN or TELEGRAM_CHAT_ID")
		return ErrNotifierNotConfigured
	}

	kind, text, err := ComposeNotification(req)
	if err != nil {
		s.log.Info("notify payload rejected", zap.String("form", kind), zap.Error(err))
		return err
	}

	if err := s.notifier.Send(ctx, text); err != nil {
		s.log.Error("notification delivery failed", zap.String("form", kind), zap.Error(err))
		return fmt.Errorf("deliver %s: %w", kind, err)
	}

	s.log.Info("notification delivered", zap.String("form", kind))
	return nil
}
