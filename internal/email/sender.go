package email

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

// Sender is one email transport, named so a user preference can select it.
type Sender interface {
	Name() string
	Send(ctx context.Context, to string, msg Message) error
}

// SMTPConfig holds the connection settings for the SMTP transport.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPSender sends mail over plain SMTP with AUTH.
type SMTPSender struct {
	cfg SMTPConfig
}

func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

func (s *SMTPSender) Name() string { return "smtp" }

func (s *SMTPSender) Send(_ context.Context, to string, msg Message) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", s.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(msg.Body)

	if err := smtp.SendMail(addr, auth, s.cfg.From, []string{to}, []byte(b.String())); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// LogSender writes the message to the log instead of delivering it, for
// running without SMTP credentials.
type LogSender struct{}

func NewLogSender() *LogSender { return &LogSender{} }

func (*LogSender) Name() string { return "log" }

func (*LogSender) Send(_ context.Context, to string, msg Message) error {
	log.Info().Str("to", to).Str("subject", msg.Subject).Msg("email (log transport)")
	return nil
}

// Registry holds the available transports and the user's remembered
// preference. When the preferred transport is gone, Pick falls back to the
// first registered one instead of failing.
type Registry struct {
	mu        sync.Mutex
	order     []string
	senders   map[string]Sender
	preferred string
}

func NewRegistry(senders ...Sender) *Registry {
	r := &Registry{senders: make(map[string]Sender)}
	for _, s := range senders {
		r.order = append(r.order, s.Name())
		r.senders[s.Name()] = s
	}
	return r
}

// Remember records the transport to use for future sends.
func (r *Registry) Remember(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.preferred = name
}

// Pick returns the preferred transport when it is still registered, else the
// first registered one. The second return is false when none exist.
func (r *Registry) Pick() (Sender, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.preferred != "" {
		if s, ok := r.senders[r.preferred]; ok {
			return s, true
		}
		log.Warn().Str("preferred", r.preferred).Msg("preferred email transport gone, falling back")
	}
	if len(r.order) == 0 {
		return nil, false
	}
	return r.senders[r.order[0]], true
}
