package mailer

import (
	"context"
	"strings"
	"testing"
)

func TestBuildMessage(t *testing.T) {
	msg := string(buildMessage("clinic@x.com", "a@x.com", "Hello", "line1\nline2"))

	for _, want := range []string{
		"From: clinic@x.com\r\n",
		"To: a@x.com\r\n",
		"Subject: Hello\r\n",
		"\r\n\r\nline1\r\nline2\r\n",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}
}

func TestSMTPSenderFromFallback(t *testing.T) {
	s := &SMTPSender{Host: "smtp.x.com", Port: 587, Username: "user@x.com"}
	if s.from() != "user@x.com" {
		t.Errorf("from: %s", s.from())
	}
	if s.addr() != "smtp.x.com:587" {
		t.Errorf("addr: %s", s.addr())
	}
}

func TestLogSender(t *testing.T) {
	if err := (LogSender{}).Send(context.Background(), "a@x.com", "s", "b"); err != nil {
		t.Fatalf("log sender: %v", err)
	}
}
