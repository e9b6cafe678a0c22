package ses

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/require"

	"github.com/shineum/sendgrid-kit/sendgrid"
)

func simpleEmail() *sendgrid.Email {
	return &sendgrid.Email{
		Personalizations: []sendgrid.Personalization{{
			To: []sendgrid.Address{sendgrid.NewAddress("to@example.com", "")},
		}},
		From:    sendgrid.NewAddress("sender@example.com", ""),
		Subject: "Test Subject",
		Content: []sendgrid.Content{sendgrid.PlainText("Hello, World!")},
	}
}

func TestBuild_SimpleTextEmail(t *testing.T) {
	t.Parallel()

	inputs, err := Build(simpleEmail(), Options{})
	require.NoError(t, err)
	require.Len(t, inputs, 1)

	input := inputs[0]
	require.NotNil(t, input.Content.Simple)
	require.Nil(t, input.Content.Raw)
	require.Nil(t, input.Content.Template)
	require.Equal(t, "sender@example.com", aws.ToString(input.FromEmailAddress))
	require.Equal(t, []string{"to@example.com"}, input.Destination.ToAddresses)
	require.Nil(t, input.Destination.CcAddresses)
	require.Equal(t, "Test Subject", aws.ToString(input.Content.Simple.Subject.Data))
	require.Equal(t, "Hello, World!", aws.ToString(input.Content.Simple.Body.Text.Data))
	require.Nil(t, input.Content.Simple.Body.Html)
	require.Nil(t, input.ConfigurationSetName)
	require.Empty(t, input.EmailTags)
}

func TestBuild_TextAndHTML(t *testing.T) {
	t.Parallel()

	e := simpleEmail()
	e.Content = append(e.Content, sendgrid.HTML("<h1>Hello</h1>"))

	inputs, err := Build(e, Options{})
	require.NoError(t, err)

	body := inputs[0].Content.Simple.Body
	require.Equal(t, "<h1>Hello</h1>", aws.ToString(body.Html.Data))
	require.Equal(t, "UTF-8", aws.ToString(body.Html.Charset))
	require.Equal(t, "Hello, World!", aws.ToString(body.Text.Data))
}

func TestBuild_OneInputPerPersonalization(t *testing.T) {
	t.Parallel()

	override := sendgrid.NewAddress("team@example.com", "Team")
	e := simpleEmail()
	e.ReplyTo = &sendgrid.Address{Email: "support@example.com"}
	e.Personalizations = append(e.Personalizations, sendgrid.Personalization{
		From:    &override,
		To:      []sendgrid.Address{sendgrid.NewAddress("a@example.com", "Alice")},
		Cc:      []sendgrid.Address{sendgrid.NewAddress("cc@example.com", "")},
		Bcc:     []sendgrid.Address{sendgrid.NewAddress("bcc@example.com", "")},
		Subject: sendgrid.String("Override"),
	})

	inputs, err := Build(e, Options{ConfigurationSet: "tracking"})
	require.NoError(t, err)
	require.Len(t, inputs, 2)

	first, second := inputs[0], inputs[1]
	require.Equal(t, "sender@example.com", aws.ToString(first.FromEmailAddress))
	require.Equal(t, "Test Subject", aws.ToString(first.Content.Simple.Subject.Data))

	require.Equal(t, `"Team" <team@example.com>`, aws.ToString(second.FromEmailAddress))
	require.Equal(t, []string{`"Alice" <a@example.com>`}, second.Destination.ToAddresses)
	require.Equal(t, []string{"cc@example.com"}, second.Destination.CcAddresses)
	require.Equal(t, []string{"bcc@example.com"}, second.Destination.BccAddresses)
	require.Equal(t, "Override", aws.ToString(second.Content.Simple.Subject.Data))

	for _, input := range inputs {
		require.Equal(t, []string{"support@example.com"}, input.ReplyToAddresses)
		require.Equal(t, "tracking", aws.ToString(input.ConfigurationSetName))
	}
}

func TestBuild_Template(t *testing.T) {
	t.Parallel()

	e := simpleEmail()
	e.Content = nil
	e.TemplateID = sendgrid.String("welcome")
	e.Personalizations[0].DynamicTemplateData = map[string]any{"name": "Alice", "items": []any{"a", "b"}}
	e.Personalizations = append(e.Personalizations, sendgrid.Personalization{
		To: []sendgrid.Address{sendgrid.NewAddress("b@example.com", "")},
	})

	inputs, err := Build(e, Options{})
	require.NoError(t, err)
	require.Len(t, inputs, 2)

	tmpl := inputs[0].Content.Template
	require.NotNil(t, tmpl)
	require.Equal(t, "welcome", aws.ToString(tmpl.TemplateName))
	require.JSONEq(t, `{"name":"Alice","items":["a","b"]}`, aws.ToString(tmpl.TemplateData))

	require.Equal(t, "{}", aws.ToString(inputs[1].Content.Template.TemplateData))
}

func TestBuild_NoBody(t *testing.T) {
	t.Parallel()

	e := simpleEmail()
	e.Content = []sendgrid.Content{{Type: "text/calendar", Value: "BEGIN:VCALENDAR"}}

	_, err := Build(e, Options{})
	require.ErrorIs(t, err, ErrNoBody)
}

func TestBuild_Tags(t *testing.T) {
	t.Parallel()

	e := simpleEmail()
	e.Categories = []string{"news letter", "weekly"}
	e.CustomArgs = map[string]string{"campaign": "spring", "user": "1"}
	e.Personalizations[0].CustomArgs = map[string]string{"user": "42"}

	inputs, err := Build(e, Options{})
	require.NoError(t, err)

	require.Equal(t, []types.MessageTag{
		{Name: aws.String("category_1"), Value: aws.String("news_letter")},
		{Name: aws.String("category_2"), Value: aws.String("weekly")},
		{Name: aws.String("campaign"), Value: aws.String("spring")},
		{Name: aws.String("user"), Value: aws.String("42")},
	}, inputs[0].EmailTags)
}

func TestBuild_SingleCategoryTag(t *testing.T) {
	t.Parallel()

	e := simpleEmail()
	e.Categories = []string{"alerts"}

	inputs, err := Build(e, Options{})
	require.NoError(t, err)
	require.Equal(t, []types.MessageTag{
		{Name: aws.String("category"), Value: aws.String("alerts")},
	}, inputs[0].EmailTags)
}

func TestBuild_UnsupportedFieldsAreSkipped(t *testing.T) {
	t.Parallel()

	e := simpleEmail()
	e.SendAt = sendgrid.Time(time.Unix(1700000000, 0))
	e.BatchID = sendgrid.String("batch")
	e.ASM = &sendgrid.AdvancedSuppressionManager{GroupID: 1}
	e.MailSettings = &sendgrid.MailSettings{SandboxMode: &sendgrid.SandboxMode{Enable: sendgrid.Bool(true)}}

	inputs, err := Build(e, Options{})
	require.NoError(t, err)
	require.NotNil(t, inputs[0].Content.Simple)
}

func TestBuild_RawMessageWithAttachments(t *testing.T) {
	t.Parallel()

	e := simpleEmail()
	e.Content = append(e.Content, sendgrid.HTML("<p>html body</p>"))
	e.Personalizations[0].Cc = []sendgrid.Address{sendgrid.NewAddress("cc@example.com", "")}
	e.Personalizations[0].Bcc = []sendgrid.Address{sendgrid.NewAddress("hidden@example.com", "")}
	e.Headers = map[string]string{"X-Campaign": "spring"}
	e.Attachments = []sendgrid.Attachment{
		{
			Content:  "cGRmIGNvbnRlbnQ=",
			Type:     sendgrid.String("application/pdf"),
			Filename: "doc.pdf",
		},
		{
			Content:     "aW1hZ2U=",
			Type:        sendgrid.String("image/png"),
			Filename:    "logo.png",
			Disposition: sendgrid.String("inline"),
			ContentID:   sendgrid.String("logo"),
		},
	}

	inputs, err := Build(e, Options{})
	require.NoError(t, err)

	input := inputs[0]
	require.Nil(t, input.Content.Simple)
	require.NotNil(t, input.Content.Raw)
	require.Equal(t, []string{"hidden@example.com"}, input.Destination.BccAddresses)

	msg, err := mail.ReadMessage(bytes.NewReader(input.Content.Raw.Data))
	require.NoError(t, err)
	require.Equal(t, "sender@example.com", msg.Header.Get("From"))
	require.Equal(t, "to@example.com", msg.Header.Get("To"))
	require.Equal(t, "cc@example.com", msg.Header.Get("Cc"))
	require.Empty(t, msg.Header.Get("Bcc"))
	require.Equal(t, "Test Subject", msg.Header.Get("Subject"))
	require.Equal(t, "spring", msg.Header.Get("X-Campaign"))
	require.Equal(t, "1.0", msg.Header.Get("MIME-Version"))

	mediaType, params, err := mime.ParseMediaType(msg.Header.Get("Content-Type"))
	require.NoError(t, err)
	require.Equal(t, "multipart/mixed", mediaType)

	reader := multipart.NewReader(msg.Body, params["boundary"])

	body, err := reader.NextPart()
	require.NoError(t, err)
	altType, altParams, err := mime.ParseMediaType(body.Header.Get("Content-Type"))
	require.NoError(t, err)
	require.Equal(t, "multipart/alternative", altType)

	alt := multipart.NewReader(body, altParams["boundary"])
	textPart, err := alt.NextPart()
	require.NoError(t, err)
	require.Equal(t, "text/plain; charset=UTF-8", textPart.Header.Get("Content-Type"))
	text, err := io.ReadAll(textPart)
	require.NoError(t, err)
	require.Equal(t, "Hello, World!", string(text))

	htmlPart, err := alt.NextPart()
	require.NoError(t, err)
	require.Equal(t, "text/html; charset=UTF-8", htmlPart.Header.Get("Content-Type"))

	pdf, err := reader.NextPart()
	require.NoError(t, err)
	require.Equal(t, "application/pdf", pdf.Header.Get("Content-Type"))
	require.Equal(t, "doc.pdf", pdf.FileName())
	require.Equal(t, "base64", pdf.Header.Get("Content-Transfer-Encoding"))
	pdfBody, err := io.ReadAll(pdf)
	require.NoError(t, err)
	require.Equal(t, "cGRmIGNvbnRlbnQ=", string(pdfBody))

	logo, err := reader.NextPart()
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(logo.Header.Get("Content-Disposition"), "inline"))
	require.Equal(t, "<logo>", logo.Header.Get("Content-Id"))

	_, err = reader.NextPart()
	require.ErrorIs(t, err, io.EOF)
}

func TestBuild_RawMessageForHeadersOnly(t *testing.T) {
	t.Parallel()

	e := simpleEmail()
	e.Personalizations[0].Headers = map[string]string{"x-priority": "1"}

	inputs, err := Build(e, Options{})
	require.NoError(t, err)
	require.NotNil(t, inputs[0].Content.Raw)
	require.Contains(t, string(inputs[0].Content.Raw.Data), "X-Priority: 1\r\n")
	require.Contains(t, string(inputs[0].Content.Raw.Data), "Content-Type: text/plain; charset=UTF-8")
}

func TestBuild_InvalidAttachmentContent(t *testing.T) {
	t.Parallel()

	e := simpleEmail()
	e.Attachments = []sendgrid.Attachment{{Content: "not base64!", Filename: "a.txt"}}

	_, err := Build(e, Options{})
	require.Error(t, err)
	require.Contains(t, err.Error(), `"a.txt"`)
}

func TestBuild_InputsMarshalToJSON(t *testing.T) {
	t.Parallel()

	inputs, err := Build(simpleEmail(), Options{ConfigurationSet: "cs"})
	require.NoError(t, err)

	out, err := json.Marshal(inputs)
	require.NoError(t, err)
	require.Contains(t, string(out), `"ConfigurationSetName":"cs"`)
}

func TestWrapBase64Lines(t *testing.T) {
	t.Parallel()

	encoded := strings.Repeat("QUJD", 40)

	lines := strings.Split(wrapBase64Lines(encoded), "\r\n")
	require.Len(t, lines, 3)
	for i, line := range lines {
		if i < len(lines)-1 {
			require.Len(t, line, 76)
		}
		require.LessOrEqual(t, len(line), 76)
	}
	require.Equal(t, encoded, strings.Join(lines, ""))
}

func TestSanitizeTag(t *testing.T) {
	t.Parallel()

	require.Equal(t, "a_b-c_d", sanitizeTag("a b-c.d"))
}

func TestBuild_RejectsHeaderInjection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(e *sendgrid.Email)
	}{
		{
			name: "header value with CRLF",
			mutate: func(e *sendgrid.Email) {
				e.Headers = map[string]string{"X-Tag": "v\r\nContent-Type: text/html\r\n\r\n<b>injected</b>"}
			},
		},
		{
			name: "personalization header value with LF",
			mutate: func(e *sendgrid.Email) {
				e.Personalizations[0].Headers = map[string]string{"X-Tag": "v\nBcc: x@example.com"}
			},
		},
		{
			name: "header name with colon",
			mutate: func(e *sendgrid.Email) {
				e.Headers = map[string]string{"X-Tag: v\r\nX-Other": "1"}
			},
		},
		{
			name: "header name with space",
			mutate: func(e *sendgrid.Email) {
				e.Headers = map[string]string{"X Tag": "1"}
			},
		},
		{
			name: "recipient address with CRLF",
			mutate: func(e *sendgrid.Email) {
				e.Personalizations[0].To[0].Email = "to@example.com\r\nBcc: x@example.com"
			},
		},
		{
			name: "attachment type with CRLF",
			mutate: func(e *sendgrid.Email) {
				e.Attachments = []sendgrid.Attachment{{
					Content:  "aGk=",
					Filename: "a.txt",
					Type:     sendgrid.String("text/plain\r\nX-Injected: 1"),
				}}
			},
		},
		{
			name: "attachment content id with LF",
			mutate: func(e *sendgrid.Email) {
				e.Attachments = []sendgrid.Attachment{{
					Content:   "aGk=",
					Filename:  "a.txt",
					ContentID: sendgrid.String("logo\n\nbody"),
				}}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := simpleEmail()
			tt.mutate(e)

			_, err := Build(e, Options{})
			require.ErrorIs(t, err, ErrInvalidHeader)
		})
	}
}

func TestBuild_QuotesAttachmentFilename(t *testing.T) {
	t.Parallel()

	e := simpleEmail()
	e.Attachments = []sendgrid.Attachment{{
		Content:  "aGk=",
		Filename: "Q3 report; final.pdf",
		Type:     sendgrid.String("application/pdf"),
	}}

	inputs, err := Build(e, Options{})
	require.NoError(t, err)

	msg, err := mail.ReadMessage(bytes.NewReader(inputs[0].Content.Raw.Data))
	require.NoError(t, err)
	_, params, err := mime.ParseMediaType(msg.Header.Get("Content-Type"))
	require.NoError(t, err)

	reader := multipart.NewReader(msg.Body, params["boundary"])
	_, err = reader.NextPart()
	require.NoError(t, err)

	att, err := reader.NextPart()
	require.NoError(t, err)
	require.Equal(t, `attachment; filename="Q3 report; final.pdf"`, att.Header.Get("Content-Disposition"))
	require.Equal(t, "Q3 report; final.pdf", att.FileName())
}

func TestBuild_RejectsInvalidDisposition(t *testing.T) {
	t.Parallel()

	e := simpleEmail()
	e.Attachments = []sendgrid.Attachment{{
		Content:     "aGk=",
		Filename:    "a.txt",
		Disposition: sendgrid.String("not a token"),
	}}

	_, err := Build(e, Options{})
	require.ErrorIs(t, err, ErrInvalidHeader)
}
