package notification

import (
	"bytes"
	"encoding/base64"
	"strings"
	"testing"
)

func testSender() *EmailSender {
	return &EmailSender{
		Host:     "smtp.example.com",
		Port:     "587",
		Username: "mailer",
		Password: "secret",
		FromName: "Seva Setu Foundation",
		FromAddr: "receipts@sevasetu.org",
	}
}

func TestBuildMessageHeaders(t *testing.T) {
	msg := string(testSender().buildMessage(
		"asha@example.com",
		"Donation Receipt - SF/2024/0007",
		"<p>Thank you</p>",
		nil,
		"<id-1@smtp.example.com>",
	))

	for _, want := range []string{
		"From: Seva Setu Foundation <receipts@sevasetu.org>\r\n",
		"To: asha@example.com\r\n",
		"Subject: Donation Receipt - SF/2024/0007\r\n",
		"Message-ID: <id-1@smtp.example.com>\r\n",
		"MIME-Version: 1.0\r\n",
		"Content-Type: multipart/mixed; boundary=",
		"Content-Type: text/html; charset=\"UTF-8\"\r\n",
		"<p>Thank you</p>",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q", want)
		}
	}
}

func TestBuildMessageAttachment(t *testing.T) {
	content := bytes.Repeat([]byte("%PDF-1.4 fake content "), 20)
	msg := string(testSender().buildMessage(
		"asha@example.com",
		"Donation Receipt",
		"<p>Thank you</p>",
		&Attachment{Filename: "SF-2024-0007.pdf", Content: content},
		"<id-2@smtp.example.com>",
	))

	if !strings.Contains(msg, "Content-Type: application/pdf\r\n") {
		t.Error("missing pdf part header")
	}
	if !strings.Contains(msg, "Content-Disposition: attachment; filename=\"SF-2024-0007.pdf\"\r\n") {
		t.Error("missing attachment disposition")
	}
	if !strings.Contains(msg, "Content-Transfer-Encoding: base64\r\n") {
		t.Error("missing transfer encoding header")
	}

	// The encoded payload must round-trip after stripping line breaks.
	encoded := base64.StdEncoding.EncodeToString(content)
	compact := strings.ReplaceAll(msg, "\r\n", "")
	if !strings.Contains(compact, encoded) {
		t.Error("attachment content does not survive base64 wrapping")
	}

	// Encoded lines stay within the RFC 2045 limit.
	inBody := false
	for _, line := range strings.Split(msg, "\r\n") {
		if strings.HasPrefix(line, "Content-Transfer-Encoding") {
			inBody = true
			continue
		}
		if inBody && strings.HasPrefix(line, "--") {
			break
		}
		if inBody && len(line) > 76 {
			t.Errorf("encoded line exceeds 76 chars: %d", len(line))
		}
	}
}

func TestBuildMessageWithoutFromName(t *testing.T) {
	s := testSender()
	s.FromName = ""
	msg := string(s.buildMessage("asha@example.com", "Subject", "body", nil, "<id-3@smtp.example.com>"))

	if !strings.Contains(msg, "From: receipts@sevasetu.org\r\n") {
		t.Error("bare address expected when from name is empty")
	}
}
