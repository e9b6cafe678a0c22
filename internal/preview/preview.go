// Package preview renders mail/send requests in a human-readable format.
package preview

import (
	"encoding/base64"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/shineum/sendgrid-kit/sendgrid"
)

const separator = "========================================\n"

// Writer prints one block per personalization of a request.
type Writer struct {
	// writer is the output destination.
	writer io.Writer
}

// NewWithWriter creates a new Writer that writes to the given writer.
func NewWithWriter(w io.Writer) *Writer {
	return &Writer{writer: w}
}

// Write prints the request as it would be delivered to each personalization,
// with per-personalization overrides of from, subject and send_at applied.
func (w *Writer) Write(e *sendgrid.Email) error {
	var b strings.Builder

	for i, p := range e.Personalizations {
		b.WriteString(separator)
		if len(e.Personalizations) > 1 {
			b.WriteString(fmt.Sprintf("Personalization: %d/%d\n", i+1, len(e.Personalizations)))
		}
		b.WriteString(fmt.Sprintf("From: %s\n", formatAddress(e.EffectiveFrom(p))))
		b.WriteString(fmt.Sprintf("To: %s\n", formatAddresses(p.To)))

		if len(p.Cc) > 0 {
			b.WriteString(fmt.Sprintf("Cc: %s\n", formatAddresses(p.Cc)))
		}
		if len(p.Bcc) > 0 {
			b.WriteString(fmt.Sprintf("Bcc: %s\n", formatAddresses(p.Bcc)))
		}
		if e.ReplyTo != nil {
			b.WriteString(fmt.Sprintf("Reply-To: %s\n", formatAddress(*e.ReplyTo)))
		}

		b.WriteString(fmt.Sprintf("Subject: %s\n", e.EffectiveSubject(p)))

		if sendAt := e.EffectiveSendAt(p); sendAt != nil {
			b.WriteString(fmt.Sprintf("Send-At: %s\n", sendAt.UTC().Format(time.RFC3339)))
		}
		if e.TemplateID != nil {
			b.WriteString(fmt.Sprintf("Template: %s\n", *e.TemplateID))
		}
		if len(e.Categories) > 0 {
			b.WriteString(fmt.Sprintf("Categories: %s\n", strings.Join(e.Categories, ", ")))
		}
		if isSandbox(e) {
			b.WriteString("Sandbox: on\n")
		}

		if len(p.DynamicTemplateData) > 0 {
			keys := make([]string, 0, len(p.DynamicTemplateData))
			for k := range p.DynamicTemplateData {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			b.WriteString(fmt.Sprintf("Template-Data: %s\n", strings.Join(keys, ", ")))
		}

		b.WriteString("Body:\n")
		b.WriteString(body(e.Content) + "\n")

		if len(e.Attachments) > 0 {
			attachments := make([]string, 0, len(e.Attachments))
			for _, att := range e.Attachments {
				attachments = append(attachments, fmt.Sprintf("%s (%s)", att.Filename, formatSize(decodedSize(att.Content))))
			}
			b.WriteString(fmt.Sprintf("Attachments: %s\n", strings.Join(attachments, ", ")))
		}
	}

	b.WriteString(separator)

	if _, err := fmt.Fprint(w.writer, b.String()); err != nil {
		return fmt.Errorf("failed to write preview: %w", err)
	}
	return nil
}

// body returns the plain text content, falling back to the first other content.
func body(content []sendgrid.Content) string {
	for _, c := range content {
		if c.Type == sendgrid.MIMETextPlain {
			return c.Value
		}
	}
	if len(content) > 0 {
		return content[0].Value
	}
	return ""
}

func isSandbox(e *sendgrid.Email) bool {
	ms := e.MailSettings
	return ms != nil && ms.SandboxMode != nil && ms.SandboxMode.Enable != nil && *ms.SandboxMode.Enable
}

func formatAddress(a sendgrid.Address) string {
	if a.Name == nil || *a.Name == "" {
		return a.Email
	}
	return fmt.Sprintf("%s <%s>", *a.Name, a.Email)
}

func formatAddresses(list []sendgrid.Address) string {
	out := make([]string, 0, len(list))
	for _, a := range list {
		out = append(out, formatAddress(a))
	}
	return strings.Join(out, ", ")
}

// decodedSize returns the byte size of base64 content, or its encoded length
// when the content is not valid base64.
func decodedSize(content string) int {
	decoded, err := base64.StdEncoding.DecodeString(content)
	if err != nil {
		return len(content)
	}
	return len(decoded)
}

// formatSize formats a byte count into a human-readable string.
func formatSize(bytes int) string {
	const (
		kb = 1024
		mb = kb * 1024
	)

	switch {
	case bytes >= mb:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(mb))
	case bytes >= kb:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(kb))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
