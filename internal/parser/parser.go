// Package parser converts RFC 5322 messages with MIME multipart bodies into
// mail/send request drafts.
package parser

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/shineum/sendgrid-kit/sendgrid"
)

// forwardedHeaders are copied into the request headers when present.
// Address, subject and MIME structure headers are carried by dedicated fields.
var forwardedHeaders = []string{"Message-Id", "In-Reply-To", "References", "List-Unsubscribe"}

// part is a decoded non-body MIME part.
type part struct {
	filename    string
	contentType string
	contentID   string
	inline      bool
	content     []byte
}

// message accumulates the bodies and attachments found while walking the MIME tree.
type message struct {
	text        string
	html        string
	attachments []part
}

// Parse parses a raw RFC 5322 message into a request with a single personalization
// addressed to the To, Cc and Bcc recipients of the message. Text and HTML bodies
// become content entries (text first) and attachments are base64 encoded.
// Unrecognized MIME parts are logged as warnings.
func Parse(raw []byte) (*sendgrid.Email, error) {
	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}

	result := &message{}

	contentType := msg.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "text/plain"
	}

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		// If content type is unparseable, treat as plain text
		zap.L().Warn("failed to parse content type, treating as plain text",
			zap.String("content_type", contentType),
			zap.Error(err),
		)
		body, readErr := io.ReadAll(msg.Body)
		if readErr != nil {
			return nil, fmt.Errorf("failed to read message body: %w", readErr)
		}
		result.text = string(body)
		return buildEmail(msg.Header, result), nil
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		boundary := params["boundary"]
		if boundary == "" {
			return nil, fmt.Errorf("multipart message missing boundary")
		}
		if err := parseMultipart(msg.Body, boundary, result); err != nil {
			return nil, fmt.Errorf("failed to parse multipart message: %w", err)
		}
	} else {
		body, err := io.ReadAll(msg.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read message body: %w", err)
		}
		switch mediaType {
		case sendgrid.MIMETextPlain:
			result.text = string(body)
		case sendgrid.MIMETextHTML:
			result.html = string(body)
		default:
			zap.L().Warn("unrecognized top-level content type",
				zap.String("content_type", mediaType),
			)
			result.text = string(body)
		}
	}

	return buildEmail(msg.Header, result), nil
}

// buildEmail assembles the request from the message headers and walked parts.
func buildEmail(header mail.Header, result *message) *sendgrid.Email {
	p := sendgrid.Personalization{
		To:  parseAddressList(header.Get("To")),
		Cc:  parseAddressList(header.Get("Cc")),
		Bcc: parseAddressList(header.Get("Bcc")),
	}

	e := &sendgrid.Email{
		Personalizations: []sendgrid.Personalization{p},
		Subject:          decodeHeader(header.Get("Subject")),
	}

	if from := parseAddressList(header.Get("From")); len(from) > 0 {
		e.From = from[0]
	}
	if replyTo := parseAddressList(header.Get("Reply-To")); len(replyTo) > 0 {
		e.ReplyTo = &replyTo[0]
	}

	if result.text != "" {
		e.Content = append(e.Content, sendgrid.PlainText(result.text))
	}
	if result.html != "" {
		e.Content = append(e.Content, sendgrid.HTML(result.html))
	}

	for _, att := range result.attachments {
		a := sendgrid.Attachment{
			Content:     base64.StdEncoding.EncodeToString(att.content),
			Type:        sendgrid.String(att.contentType),
			Filename:    att.filename,
			Disposition: sendgrid.String("attachment"),
		}
		if att.inline {
			a.Disposition = sendgrid.String("inline")
		}
		if att.contentID != "" {
			a.ContentID = sendgrid.String(att.contentID)
		}
		e.Attachments = append(e.Attachments, a)
	}

	e.Headers = extractHeaders(header)

	return e
}

// extractHeaders returns the forwarded and X- prefixed headers of the message,
// or nil when there are none.
func extractHeaders(header mail.Header) map[string]string {
	headers := make(map[string]string)
	for _, key := range forwardedHeaders {
		if v := header.Get(key); v != "" {
			headers[key] = v
		}
	}

	keys := make([]string, 0, len(header))
	for key := range header {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if strings.HasPrefix(key, "X-") && len(header[key]) > 0 {
			headers[key] = header[key][0]
		}
	}

	if len(headers) == 0 {
		return nil
	}
	return headers
}

// parseMultipart processes a multipart MIME message body, extracting text/plain,
// text/html parts and attachments.
func parseMultipart(body io.Reader, boundary string, result *message) error {
	reader := multipart.NewReader(body, boundary)

	for {
		p, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read next part: %w", err)
		}

		partContentType := p.Header.Get("Content-Type")
		if partContentType == "" {
			partContentType = "text/plain"
		}

		mediaType, params, err := mime.ParseMediaType(partContentType)
		if err != nil {
			zap.L().Warn("failed to parse part content type, skipping",
				zap.String("content_type", partContentType),
				zap.Error(err),
			)
			continue
		}

		contentDisposition := p.Header.Get("Content-Disposition")
		isAttachment := strings.HasPrefix(contentDisposition, "attachment")
		isInline := strings.HasPrefix(contentDisposition, "inline")

		// Check for nested multipart
		if strings.HasPrefix(mediaType, "multipart/") {
			nestedBoundary := params["boundary"]
			if nestedBoundary == "" {
				zap.L().Warn("nested multipart missing boundary, skipping")
				continue
			}
			if err := parseMultipart(p, nestedBoundary, result); err != nil {
				zap.L().Warn("failed to parse nested multipart", zap.Error(err))
			}
			continue
		}

		content, err := readPartContent(p)
		if err != nil {
			zap.L().Warn("failed to read part content",
				zap.String("content_type", mediaType),
				zap.Error(err),
			)
			continue
		}

		contentID := strings.Trim(p.Header.Get("Content-Id"), "<>")

		if isAttachment {
			result.attachments = append(result.attachments, part{
				filename:    extractFilename(p, params),
				contentType: mediaType,
				contentID:   contentID,
				content:     content,
			})
			continue
		}

		switch mediaType {
		case sendgrid.MIMETextPlain:
			if result.text == "" {
				result.text = string(content)
			}
		case sendgrid.MIMETextHTML:
			if result.html == "" {
				result.html = string(content)
			}
		default:
			// Inline parts and named parts are attachments even without an
			// attachment disposition.
			filename := extractFilename(p, params)
			if isInline || contentID != "" || p.FileName() != "" || params["name"] != "" {
				result.attachments = append(result.attachments, part{
					filename:    filename,
					contentType: mediaType,
					contentID:   contentID,
					inline:      isInline || contentID != "",
					content:     content,
				})
			} else {
				zap.L().Warn("unrecognized MIME part, skipping",
					zap.String("content_type", mediaType),
					zap.String("disposition", contentDisposition),
				)
			}
		}
	}

	return nil
}

// readPartContent reads the full content of a MIME part, handling
// Content-Transfer-Encoding (base64, quoted-printable).
func readPartContent(p *multipart.Part) ([]byte, error) {
	encoding := p.Header.Get("Content-Transfer-Encoding")
	encoding = strings.ToLower(strings.TrimSpace(encoding))

	raw, err := io.ReadAll(p)
	if err != nil {
		return nil, err
	}

	switch encoding {
	case "base64":
		cleaned := strings.NewReplacer("\r", "", "\n", "").Replace(string(raw))
		decoded, err := base64.StdEncoding.DecodeString(cleaned)
		if err != nil {
			// Try with RawStdEncoding for unpadded base64
			decoded, err = base64.RawStdEncoding.DecodeString(cleaned)
			if err != nil {
				return nil, fmt.Errorf("failed to decode base64 content: %w", err)
			}
		}
		return decoded, nil
	default:
		// For "7bit", "8bit", "binary", "quoted-printable", or empty,
		// return raw content. Go's multipart reader handles QP internally.
		return raw, nil
	}
}

// extractFilename extracts the filename from a MIME part, checking both
// Content-Disposition and Content-Type parameters. The API requires a filename,
// so a name is derived from the media type when neither is present.
func extractFilename(p *multipart.Part, params map[string]string) string {
	if fn := p.FileName(); fn != "" {
		return fn
	}
	if name, ok := params["name"]; ok && name != "" {
		return name
	}
	if mediaType, _, err := mime.ParseMediaType(p.Header.Get("Content-Type")); err == nil {
		parts := strings.SplitN(mediaType, "/", 2)
		if len(parts) == 2 {
			return "attachment." + parts[1]
		}
	}
	return "attachment"
}

// decodeHeader decodes RFC 2047 encoded words, returning the input on failure.
func decodeHeader(v string) string {
	decoded, err := new(mime.WordDecoder).DecodeHeader(v)
	if err != nil {
		return v
	}
	return decoded
}

// parseAddressList splits an address list header into addresses.
func parseAddressList(raw string) []sendgrid.Address {
	if raw == "" {
		return nil
	}

	addresses, err := mail.ParseAddressList(raw)
	if err != nil {
		// Fall back to simple comma split if RFC 5322 parsing fails
		parts := strings.Split(raw, ",")
		result := make([]sendgrid.Address, 0, len(parts))
		for _, p := range parts {
			trimmed := strings.TrimSpace(p)
			if trimmed != "" {
				result = append(result, sendgrid.NewAddress(trimmed, ""))
			}
		}
		return result
	}

	result := make([]sendgrid.Address, 0, len(addresses))
	for _, addr := range addresses {
		result = append(result, sendgrid.NewAddress(addr.Address, addr.Name))
	}
	return result
}
