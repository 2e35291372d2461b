package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
)

// Message is a plain-text email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers a message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPConfig carries the outbound mail settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPSender delivers mail over plain SMTP. When no host is configured it
// degrades to logging the message, which keeps local development working
// without a mail server.
type SMTPSender struct {
	cfg    SMTPConfig
	logger *slog.Logger
}

// NewSMTPSender constructs an SMTPSender.
func NewSMTPSender(cfg SMTPConfig, logger *slog.Logger) *SMTPSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &SMTPSender{cfg: cfg, logger: logger}
}

// Send implements Sender.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if s.cfg.Host == "" {
		s.logger.Info("smtp host not configured, logging message instead",
			slog.String("to", msg.To),
			slog.String("subject", msg.Subject),
			slog.String("body", msg.Body))
		return nil
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", s.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(msg.Body)

	if err := smtp.SendMail(addr, auth, s.cfg.From, []string{msg.To}, []byte(b.String())); err != nil {
		return fmt.Errorf("mailer: send to %s: %w", msg.To, err)
	}
	return nil
}

// ContactMessage builds the notification email for a contact form submission.
func ContactMessage(to, name, email, service, message string) Message {
	if service == "" {
		service = "general"
	}
	body := fmt.Sprintf(
		"New contact form submission.\n\nName: %s\nEmail: %s\nService: %s\n\n%s\n",
		name, email, service, message)
	return Message{
		To:      to,
		Subject: "Contact form: " + name,
		Body:    body,
	}
}

// ActivationMessage builds the activation email for a new account.
func ActivationMessage(toEmail, recipientName, activationURL string) Message {
	body := fmt.Sprintf(
		"Hello %s,\n\nThanks for registering with Carmine Visuals.\n\nPlease activate your account by visiting the link below:\n\n%s\n\nThe link is valid for 24 hours. If you did not register, ignore this email.\n",
		recipientName, activationURL)
	return Message{
		To:      toEmail,
		Subject: "Activate your Carmine Visuals account",
		Body:    body,
	}
}
