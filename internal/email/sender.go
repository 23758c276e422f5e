package email

import (
	"fmt"
	"net/smtp"
	"strings"
)

// SenderConfig carries SMTP connection settings.
type SenderConfig struct {
	Host     string
	Port     int
	From     string
	Username string
	Password string
}

// Sender delivers drafts over SMTP.
type Sender struct {
	cfg SenderConfig
}

// NewSender validates the configuration and returns a Sender.
func NewSender(cfg SenderConfig) (*Sender, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("smtp from address is required")
	}
	if cfg.Port <= 0 {
		cfg.Port = 587
	}
	return &Sender{cfg: cfg}, nil
}

// Send delivers the draft. smtp.SendMail upgrades the connection with
// STARTTLS when the server supports it.
func (s *Sender) Send(draft Draft) error {
	if draft.To == "" {
		return fmt.Errorf("draft has no recipient")
	}

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	msg := buildMessage(s.cfg.From, draft)
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	if err := smtp.SendMail(addr, auth, s.cfg.From, []string{draft.To}, msg); err != nil {
		return fmt.Errorf("send mail via %s: %w", addr, err)
	}
	return nil
}

func buildMessage(from string, draft Draft) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", draft.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", draft.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(draft.Body)
	return []byte(b.String())
}
