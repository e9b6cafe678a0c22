// Package ses maps mail/send requests onto AWS SES v2 SendEmail inputs.
package ses

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net/mail"
	"net/textproto"
	"regexp"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	sesv2 "github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/segmentio/encoding/json"
	"go.uber.org/zap"

	"github.com/shineum/sendgrid-kit/sendgrid"
)

var (
	// ErrNoBody is returned for a non-template request without text or html content.
	ErrNoBody = errors.New("request has no text/plain or text/html content")

	// ErrInvalidHeader is returned when a header, address or attachment field
	// cannot be written into a MIME header safely.
	ErrInvalidHeader = errors.New("invalid header")
)

// tagCategory is the message tag name categories are mapped to.
const tagCategory = "category"

// invalidTagChars matches characters SES does not accept in tag names and values.
var invalidTagChars = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// Options controls the mapping.
type Options struct {
	// ConfigurationSet is applied to every input when set.
	ConfigurationSet string
}

// Build maps e to one SendEmailInput per personalization.
// Template requests use the SES template content; requests with attachments or
// headers are rendered as raw MIME messages; everything else uses the simple
// message format. Fields SES has no equivalent for are logged and skipped.
func Build(e *sendgrid.Email, opts Options) ([]*sesv2.SendEmailInput, error) {
	if err := checkHeaders(e); err != nil {
		return nil, err
	}
	warnUnsupported(e)

	text, html := bodies(e.Content)
	if e.TemplateID == nil && text == "" && html == "" {
		return nil, ErrNoBody
	}

	inputs := make([]*sesv2.SendEmailInput, 0, len(e.Personalizations))
	for i, p := range e.Personalizations {
		if len(p.Substitutions) > 0 {
			zap.L().Warn("substitutions are not supported by SES, skipping",
				zap.Int("personalization", i),
			)
		}

		input, err := buildInput(e, p, text, html)
		if err != nil {
			return nil, fmt.Errorf("failed to build input for personalization %d: %w", i, err)
		}
		if opts.ConfigurationSet != "" {
			input.ConfigurationSetName = aws.String(opts.ConfigurationSet)
		}
		inputs = append(inputs, input)
	}

	return inputs, nil
}

func buildInput(e *sendgrid.Email, p sendgrid.Personalization, text, html string) (*sesv2.SendEmailInput, error) {
	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(formatAddress(e.EffectiveFrom(p))),
		Destination: &types.Destination{
			ToAddresses:  formatAddresses(p.To),
			CcAddresses:  formatAddresses(p.Cc),
			BccAddresses: formatAddresses(p.Bcc),
		},
		EmailTags: buildTags(e, p),
	}
	if e.ReplyTo != nil {
		input.ReplyToAddresses = []string{formatAddress(*e.ReplyTo)}
	}

	subject := e.EffectiveSubject(p)
	headers := mergeStrings(e.Headers, p.Headers)

	switch {
	case e.TemplateID != nil:
		data, err := templateData(p.DynamicTemplateData)
		if err != nil {
			return nil, err
		}
		input.Content = &types.EmailContent{
			Template: &types.Template{
				TemplateName: e.TemplateID,
				TemplateData: aws.String(data),
			},
		}
	case len(e.Attachments) > 0 || len(headers) > 0:
		raw, err := buildRawMessage(e, p, headers, text, html)
		if err != nil {
			return nil, fmt.Errorf("failed to build raw message: %w", err)
		}
		input.Content = &types.EmailContent{
			Raw: &types.RawMessage{
				Data: raw,
			},
		}
	default:
		input.Content = &types.EmailContent{
			Simple: buildSimpleMessage(subject, text, html),
		}
	}

	return input, nil
}

// buildSimpleMessage creates a SES simple message for requests without attachments.
func buildSimpleMessage(subject, text, html string) *types.Message {
	body := &types.Body{}

	if html != "" {
		body.Html = &types.Content{
			Data:    aws.String(html),
			Charset: aws.String("UTF-8"),
		}
	}
	if text != "" {
		body.Text = &types.Content{
			Data:    aws.String(text),
			Charset: aws.String("UTF-8"),
		}
	}

	return &types.Message{
		Subject: &types.Content{
			Data:    aws.String(subject),
			Charset: aws.String("UTF-8"),
		},
		Body: body,
	}
}

// buildRawMessage constructs a raw MIME message for requests with attachments or headers.
func buildRawMessage(e *sendgrid.Email, p sendgrid.Personalization, headers map[string]string, text, html string) ([]byte, error) {
	var buf bytes.Buffer

	// Write headers
	fmt.Fprintf(&buf, "From: %s\r\n", formatAddress(e.EffectiveFrom(p)))
	if len(p.To) > 0 {
		fmt.Fprintf(&buf, "To: %s\r\n", strings.Join(formatAddresses(p.To), ", "))
	}
	if len(p.Cc) > 0 {
		fmt.Fprintf(&buf, "Cc: %s\r\n", strings.Join(formatAddresses(p.Cc), ", "))
	}
	if e.ReplyTo != nil {
		fmt.Fprintf(&buf, "Reply-To: %s\r\n", formatAddress(*e.ReplyTo))
	}
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("UTF-8", e.EffectiveSubject(p)))
	for _, key := range sortedKeys(headers) {
		fmt.Fprintf(&buf, "%s: %s\r\n", textproto.CanonicalMIMEHeaderKey(key), headers[key])
	}
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")

	writer := multipart.NewWriter(&buf)
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", writer.Boundary())

	if err := writeBody(writer, text, html); err != nil {
		return nil, err
	}

	// Write attachments
	for _, att := range e.Attachments {
		if _, err := base64.StdEncoding.DecodeString(att.Content); err != nil {
			return nil, fmt.Errorf("attachment %q has invalid base64 content: %w", att.Filename, err)
		}

		contentType := "application/octet-stream"
		if att.Type != nil && *att.Type != "" {
			contentType = *att.Type
		}
		disposition := "attachment"
		if att.Disposition != nil && *att.Disposition != "" {
			disposition = *att.Disposition
		}

		attHeader := make(textproto.MIMEHeader)
		attHeader.Set("Content-Type", contentType)
		attHeader.Set("Content-Transfer-Encoding", "base64")
		dispositionHeader := mime.FormatMediaType(disposition, map[string]string{"filename": att.Filename})
		if dispositionHeader == "" {
			return nil, fmt.Errorf("%w: attachment %q has disposition %q", ErrInvalidHeader, att.Filename, disposition)
		}
		attHeader.Set("Content-Disposition", dispositionHeader)
		if att.ContentID != nil && *att.ContentID != "" {
			attHeader.Set("Content-Id", "<"+*att.ContentID+">")
		}

		part, err := writer.CreatePart(attHeader)
		if err != nil {
			return nil, fmt.Errorf("failed to create attachment part: %w", err)
		}
		if _, err := part.Write([]byte(wrapBase64Lines(att.Content))); err != nil {
			return nil, fmt.Errorf("failed to write attachment part: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}
	return buf.Bytes(), nil
}

// writeBody writes the text and html bodies, nested in multipart/alternative when
// both are present.
func writeBody(writer *multipart.Writer, text, html string) error {
	if text != "" && html != "" {
		var alt bytes.Buffer
		altWriter := multipart.NewWriter(&alt)
		if err := writeBodyPart(altWriter, sendgrid.MIMETextPlain, text); err != nil {
			return err
		}
		if err := writeBodyPart(altWriter, sendgrid.MIMETextHTML, html); err != nil {
			return err
		}
		if err := altWriter.Close(); err != nil {
			return fmt.Errorf("failed to close alternative writer: %w", err)
		}

		header := make(textproto.MIMEHeader)
		header.Set("Content-Type", fmt.Sprintf("multipart/alternative; boundary=%q", altWriter.Boundary()))
		part, err := writer.CreatePart(header)
		if err != nil {
			return fmt.Errorf("failed to create body part: %w", err)
		}
		if _, err := part.Write(alt.Bytes()); err != nil {
			return fmt.Errorf("failed to write body part: %w", err)
		}
		return nil
	}

	if html != "" {
		return writeBodyPart(writer, sendgrid.MIMETextHTML, html)
	}
	if text != "" {
		return writeBodyPart(writer, sendgrid.MIMETextPlain, text)
	}
	return nil
}

func writeBodyPart(writer *multipart.Writer, mediaType, value string) error {
	header := make(textproto.MIMEHeader)
	header.Set("Content-Type", mediaType+"; charset=UTF-8")
	part, err := writer.CreatePart(header)
	if err != nil {
		return fmt.Errorf("failed to create body part: %w", err)
	}
	if _, err := part.Write([]byte(value)); err != nil {
		return fmt.Errorf("failed to write body part: %w", err)
	}
	return nil
}

// checkHeaders rejects request values that would end up verbatim in a MIME header
// and could break out of it: header names that are not RFC 5322 field names,
// and header values, addresses or attachment metadata containing CR or LF.
func checkHeaders(e *sendgrid.Email) error {
	if err := checkHeaderMap("headers", e.Headers); err != nil {
		return err
	}

	addresses := []sendgrid.Address{e.From}
	if e.ReplyTo != nil {
		addresses = append(addresses, *e.ReplyTo)
	}
	for i, p := range e.Personalizations {
		if err := checkHeaderMap(fmt.Sprintf("personalizations[%d].headers", i), p.Headers); err != nil {
			return err
		}
		if p.From != nil {
			addresses = append(addresses, *p.From)
		}
		addresses = append(addresses, p.To...)
		addresses = append(addresses, p.Cc...)
		addresses = append(addresses, p.Bcc...)
	}
	for _, a := range addresses {
		if hasLineBreak(a.Email) {
			return fmt.Errorf("%w: address %q contains a line break", ErrInvalidHeader, a.Email)
		}
	}

	for i, att := range e.Attachments {
		values := []string{att.Filename}
		for _, v := range []*string{att.Type, att.Disposition, att.ContentID} {
			if v != nil {
				values = append(values, *v)
			}
		}
		for _, v := range values {
			if hasLineBreak(v) {
				return fmt.Errorf("%w: attachments[%d] contains a line break", ErrInvalidHeader, i)
			}
		}
	}
	return nil
}

func checkHeaderMap(field string, headers map[string]string) error {
	for _, key := range sortedKeys(headers) {
		if !isFieldName(key) {
			return fmt.Errorf("%w: %s has invalid name %q", ErrInvalidHeader, field, key)
		}
		if hasLineBreak(headers[key]) {
			return fmt.Errorf("%w: %s.%s contains a line break", ErrInvalidHeader, field, key)
		}
	}
	return nil
}

// isFieldName reports whether name is an RFC 5322 field name: one or more
// printable US-ASCII characters other than colon.
func isFieldName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		if c := name[i]; c < 33 || c > 126 || c == ':' {
			return false
		}
	}
	return true
}

func hasLineBreak(v string) bool {
	return strings.ContainsAny(v, "\r\n")
}

// wrapBase64Lines breaks base64 content into 76-character lines per RFC 2045.
func wrapBase64Lines(encoded string) string {
	var lines []string
	for i := 0; i < len(encoded); i += 76 {
		end := i + 76
		if end > len(encoded) {
			end = len(encoded)
		}
		lines = append(lines, encoded[i:end])
	}
	return strings.Join(lines, "\r\n")
}

// buildTags maps categories and custom args onto message tags.
// Personalization custom args override message-level ones with the same key.
func buildTags(e *sendgrid.Email, p sendgrid.Personalization) []types.MessageTag {
	var tags []types.MessageTag

	for i, category := range e.Categories {
		name := tagCategory
		if len(e.Categories) > 1 {
			name = fmt.Sprintf("%s_%d", tagCategory, i+1)
		}
		tags = append(tags, types.MessageTag{
			Name:  aws.String(name),
			Value: aws.String(sanitizeTag(category)),
		})
	}

	args := mergeStrings(e.CustomArgs, p.CustomArgs)
	for _, key := range sortedKeys(args) {
		tags = append(tags, types.MessageTag{
			Name:  aws.String(sanitizeTag(key)),
			Value: aws.String(sanitizeTag(args[key])),
		})
	}

	return tags
}

func sanitizeTag(v string) string {
	return invalidTagChars.ReplaceAllString(v, "_")
}

// templateData renders dynamic template data as the JSON object SES expects.
func templateData(data map[string]any) (string, error) {
	if data == nil {
		return "{}", nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to marshal template data: %w", err)
	}
	return string(b), nil
}

// warnUnsupported logs the request fields that have no SES equivalent.
func warnUnsupported(e *sendgrid.Email) {
	var fields []string
	if e.SendAt != nil {
		fields = append(fields, "send_at")
	}
	for _, p := range e.Personalizations {
		if p.SendAt != nil {
			fields = append(fields, "personalizations.send_at")
			break
		}
	}
	if e.BatchID != nil {
		fields = append(fields, "batch_id")
	}
	if e.ASM != nil {
		fields = append(fields, "asm")
	}
	if e.IPPoolName != nil {
		fields = append(fields, "ip_pool_name")
	}
	if len(e.Sections) > 0 {
		fields = append(fields, "sections")
	}
	if e.MailSettings != nil {
		fields = append(fields, "mail_settings")
	}
	if e.TrackingSettings != nil {
		fields = append(fields, "tracking_settings")
	}
	if len(fields) > 0 {
		zap.L().Warn("request fields have no SES equivalent, skipping",
			zap.Strings("fields", fields),
		)
	}
}

// bodies returns the first text/plain and text/html content values.
func bodies(content []sendgrid.Content) (text, html string) {
	for _, c := range content {
		switch c.Type {
		case sendgrid.MIMETextPlain:
			if text == "" {
				text = c.Value
			}
		case sendgrid.MIMETextHTML:
			if html == "" {
				html = c.Value
			}
		default:
			zap.L().Warn("content type is not supported by SES, skipping",
				zap.String("content_type", c.Type),
			)
		}
	}
	return text, html
}

// formatAddress renders a as an RFC 5322 address, encoding non-ASCII names.
func formatAddress(a sendgrid.Address) string {
	if a.Name == nil || *a.Name == "" {
		return a.Email
	}
	addr := mail.Address{Name: *a.Name, Address: a.Email}
	return addr.String()
}

func formatAddresses(list []sendgrid.Address) []string {
	if len(list) == 0 {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, a := range list {
		out = append(out, formatAddress(a))
	}
	return out
}

// mergeStrings returns base overlaid with override, or nil when both are empty.
func mergeStrings(base, override map[string]string) map[string]string {
	if len(base) == 0 && len(override) == 0 {
		return nil
	}
	out := make(map[string]string, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		out[k] = v
	}
	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
