// Package mail delivers notification emails without blocking the request
// that triggered them. Every attempt is recorded in the email log.
package mail

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"strings"
	"time"
)

// LogCollection is the store collection holding delivery records.
const LogCollection = "email_logs"

// Delivery statuses recorded in the email log.
const (
	StatusSent    = "sent"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// Message is a plain-text notification.
type Message struct {
	Subject string
	Body    string
	ReplyTo string
	// Reference links the log entry to the record that caused the email,
	// such as a submission id.
	Reference string
}

// Transport hands a fully built message to a mail server.
type Transport interface {
	Send(ctx context.Context, from string, to []string, message []byte) error
}

// LogEntry is one delivery attempt.
type LogEntry struct {
	ID           string    `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	Subject      string    `json:"subject"`
	To           []string  `json:"to"`
	Reference    string    `json:"reference,omitempty"`
	Status       string    `json:"status"`
	ErrorCode    string    `json:"error_code,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
}

func buildMessage(from string, to []string, msg Message, now time.Time) []byte {
	var buf bytes.Buffer
	writeHeader(&buf, "From", from)
	writeHeader(&buf, "To", strings.Join(to, ", "))
	if msg.ReplyTo != "" {
		writeHeader(&buf, "Reply-To", msg.ReplyTo)
	}
	writeHeader(&buf, "Subject", mime.QEncoding.Encode("utf-8", headerValue(msg.Subject)))
	writeHeader(&buf, "Date", now.Format(time.RFC1123Z))
	writeHeader(&buf, "MIME-Version", "1.0")
	writeHeader(&buf, "Content-Type", "text/plain; charset=UTF-8")
	buf.WriteString("\r\n")
	body := strings.ReplaceAll(msg.Body, "\r\n", "\n")
	buf.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	buf.WriteString("\r\n")
	return buf.Bytes()
}

func writeHeader(buf *bytes.Buffer, name, value string) {
	fmt.Fprintf(buf, "%s: %s\r\n", name, headerValue(value))
}

// headerValue strips line breaks so user input cannot inject headers.
func headerValue(value string) string {
	return strings.Join(strings.Fields(value), " ")
}
