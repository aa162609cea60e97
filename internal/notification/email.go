package notification

import (
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/google/uuid"

	"github.com/sevasetu/foundation-backend/config"
)

// Attachment is a file sent along with an email.
type Attachment struct {
	Filename string
	Content  []byte
}

// SendResult reports the outcome of a dispatch attempt.
type SendResult struct {
	Success   bool
	MessageID string
}

// Dispatcher sends transactional email. Implementations must be safe for
// concurrent use by the worker pool.
type Dispatcher interface {
	Send(to, subject, htmlBody string, attachment *Attachment) (SendResult, error)
}

// EmailSender implements Dispatcher over SMTP with STARTTLS.
type EmailSender struct {
	Host     string
	Port     string
	Username string
	Password string
	FromName string
	FromAddr string
}

func NewEmailSender(cfg *config.Config) *EmailSender {
	return &EmailSender{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		FromName: cfg.SMTPFromName,
		FromAddr: cfg.SMTPFromEmail,
	}
}

// Send builds a multipart MIME message with the HTML body and optional PDF
// attachment, then delivers it over SMTP.
func (e *EmailSender) Send(to, subject, htmlBody string, attachment *Attachment) (SendResult, error) {
	messageID := fmt.Sprintf("<%s@%s>", uuid.NewString(), e.Host)
	message := e.buildMessage(to, subject, htmlBody, attachment, messageID)

	addr := fmt.Sprintf("%s:%s", e.Host, e.Port)
	if err := e.sendMailWithTLS(addr, to, message); err != nil {
		return SendResult{}, fmt.Errorf("failed to send email: %w", err)
	}

	return SendResult{Success: true, MessageID: messageID}, nil
}

func (e *EmailSender) buildMessage(to, subject, htmlBody string, attachment *Attachment, messageID string) []byte {
	from := e.FromAddr
	if e.FromName != "" {
		from = fmt.Sprintf("%s <%s>", e.FromName, e.FromAddr)
	}

	boundary := "mixed-" + uuid.NewString()

	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("From: %s\r\n", from))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", to))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	msg.WriteString(fmt.Sprintf("Message-ID: %s\r\n", messageID))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString(fmt.Sprintf("Content-Type: multipart/mixed; boundary=\"%s\"\r\n", boundary))
	msg.WriteString("\r\n")

	msg.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)
	msg.WriteString("\r\n")

	if attachment != nil {
		msg.WriteString(fmt.Sprintf("--%s\r\n", boundary))
		msg.WriteString("Content-Type: application/pdf\r\n")
		msg.WriteString("Content-Transfer-Encoding: base64\r\n")
		msg.WriteString(fmt.Sprintf("Content-Disposition: attachment; filename=\"%s\"\r\n", attachment.Filename))
		msg.WriteString("\r\n")

		encoded := base64.StdEncoding.EncodeToString(attachment.Content)
		// 76-char lines per RFC 2045
		for len(encoded) > 76 {
			msg.WriteString(encoded[:76] + "\r\n")
			encoded = encoded[76:]
		}
		msg.WriteString(encoded + "\r\n")
	}

	msg.WriteString(fmt.Sprintf("--%s--\r\n", boundary))
	return []byte(msg.String())
}

func (e *EmailSender) sendMailWithTLS(addr string, to string, message []byte) error {
	tlsConfig := &tls.Config{
		InsecureSkipVerify: true,
		ServerName:         e.Host,
	}

	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("failed to dial SMTP server: %w", err)
	}
	defer client.Close()

	if err = client.StartTLS(tlsConfig); err != nil {
		return fmt.Errorf("failed to start TLS: %w", err)
	}

	auth := smtp.PlainAuth("", e.Username, e.Password, e.Host)
	if err = client.Auth(auth); err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	if err = client.Mail(e.FromAddr); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}

	if err = client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient %s: %w", to, err)
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}

	if _, err = writer.Write(message); err != nil {
		writer.Close()
		return fmt.Errorf("failed to write message: %w", err)
	}

	if err = writer.Close(); err != nil {
		return fmt.Errorf("failed to close writer: %w", err)
	}

	return client.Quit()
}
