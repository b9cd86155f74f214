// Package mailer delivers outbound email.
package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// Sender delivers a plain-text message to one recipient.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPSender sends through an SMTP relay. Port 465 uses implicit TLS, any
// other port lets net/smtp negotiate STARTTLS.
type SMTPSender struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func (s *SMTPSender) addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

func (s *SMTPSender) from() string {
	if s.From != "" {
		return s.From
	}
	return s.Username
}

// Send delivers the message. ctx only bounds the dial.
func (s *SMTPSender) Send(ctx context.Context, to, subject, body string) error {
	msg := buildMessage(s.from(), to, subject, body)

	var auth smtp.Auth
	if s.Username != "" {
		auth = smtp.PlainAuth("", s.Username, s.Password, s.Host)
	}

	if s.Port != 465 {
		if err := smtp.SendMail(s.addr(), auth, s.from(), []string{to}, msg); err != nil {
			return fmt.Errorf("smtp send to %s: %w", to, err)
		}
		return nil
	}

	dialer := &tls.Dialer{Config: &tls.Config{ServerName: s.Host}}
	conn, err := dialer.DialContext(ctx, "tcp", s.addr())
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}
	c, err := smtp.NewClient(conn, s.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer c.Close()

	if auth != nil {
		if err := c.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}
	if err := c.Mail(s.from()); err != nil {
		return err
	}
	if err := c.Rcpt(to); err != nil {
		return err
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

func buildMessage(from, to, subject, body string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	b.WriteString("\r\n")
	return []byte(b.String())
}

// LogSender writes messages to the log instead of delivering them. Used in
// development.
type LogSender struct{}

func (LogSender) Send(_ context.Context, to, subject, body string) error {
	log.Info().Str("to", to).Str("subject", subject).Str("body", body).Msg("Mail (log driver)")
	return nil
}
