package preview

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/shineum/sendgrid-kit/sendgrid"
)

func basicEmail() *sendgrid.Email {
	return &sendgrid.Email{
		Personalizations: []sendgrid.Personalization{{
			To: []sendgrid.Address{
				sendgrid.NewAddress("alice@example.com", ""),
				sendgrid.NewAddress("bob@example.com", "Bob"),
			},
		}},
		From:    sendgrid.NewAddress("sender@example.com", ""),
		Subject: "Monthly Report",
		Content: []sendgrid.Content{sendgrid.PlainText("Please find the report attached.")},
	}
}

func TestWrite_BasicEmail(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, NewWithWriter(&buf).Write(basicEmail()))

	output := buf.String()
	require.Contains(t, output, "From: sender@example.com\n")
	require.Contains(t, output, "To: alice@example.com, Bob <bob@example.com>\n")
	require.Contains(t, output, "Subject: Monthly Report\n")
	require.Contains(t, output, "Please find the report attached.")
	require.NotContains(t, output, "Attachments:")
	require.NotContains(t, output, "Cc:")
	require.NotContains(t, output, "Personalization:")
	require.True(t, strings.HasPrefix(output, separator))
	require.True(t, strings.HasSuffix(output, separator))
}

func TestWrite_WithCcAndBcc(t *testing.T) {
	t.Parallel()

	e := basicEmail()
	e.Personalizations[0].Cc = []sendgrid.Address{sendgrid.NewAddress("carol@example.com", "")}
	e.Personalizations[0].Bcc = []sendgrid.Address{sendgrid.NewAddress("dave@example.com", "")}
	e.ReplyTo = &sendgrid.Address{Email: "support@example.com"}

	var buf bytes.Buffer
	require.NoError(t, NewWithWriter(&buf).Write(e))

	output := buf.String()
	require.Contains(t, output, "Cc: carol@example.com\n")
	require.Contains(t, output, "Bcc: dave@example.com\n")
	require.Contains(t, output, "Reply-To: support@example.com\n")
}

func TestWrite_WithAttachments(t *testing.T) {
	t.Parallel()

	e := basicEmail()
	e.Attachments = []sendgrid.Attachment{
		{Filename: "report.pdf", Content: strings.Repeat("A", 1677724)}, // ~1.2 MB decoded
		{Filename: "summary.xlsx", Content: strings.Repeat("A", 61440)}, // 45 KB decoded
		{Filename: "notes.txt", Content: "not base64!"},
	}

	var buf bytes.Buffer
	require.NoError(t, NewWithWriter(&buf).Write(e))

	output := buf.String()
	require.Contains(t, output, "Attachments: report.pdf (1.2 MB), summary.xlsx (45.0 KB), notes.txt (11 B)\n")
}

func TestWrite_HTMLBodyFallback(t *testing.T) {
	t.Parallel()

	e := basicEmail()
	e.Content = []sendgrid.Content{sendgrid.HTML("<p>HTML content</p>")}

	var buf bytes.Buffer
	require.NoError(t, NewWithWriter(&buf).Write(e))
	require.Contains(t, buf.String(), "<p>HTML content</p>")
}

func TestWrite_PrefersPlainText(t *testing.T) {
	t.Parallel()

	e := basicEmail()
	e.Content = []sendgrid.Content{sendgrid.HTML("<p>HTML</p>"), sendgrid.PlainText("text")}

	var buf bytes.Buffer
	require.NoError(t, NewWithWriter(&buf).Write(e))
	require.Contains(t, buf.String(), "Body:\ntext\n")
	require.NotContains(t, buf.String(), "<p>HTML</p>")
}

func TestWrite_PersonalizationOverrides(t *testing.T) {
	t.Parallel()

	sendAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	override := sendgrid.NewAddress("team@example.com", "Team")

	e := basicEmail()
	e.TemplateID = sendgrid.String("d-123")
	e.Categories = []string{"news", "weekly"}
	e.MailSettings = &sendgrid.MailSettings{SandboxMode: &sendgrid.SandboxMode{Enable: sendgrid.Bool(true)}}
	e.Personalizations = append(e.Personalizations, sendgrid.Personalization{
		From:                &override,
		To:                  []sendgrid.Address{sendgrid.NewAddress("erin@example.com", "")},
		Subject:             sendgrid.String("Hi Erin"),
		SendAt:              &sendAt,
		DynamicTemplateData: map[string]any{"name": "Erin", "count": 2},
	})

	var buf bytes.Buffer
	require.NoError(t, NewWithWriter(&buf).Write(e))

	blocks := strings.Split(strings.TrimSuffix(buf.String(), separator), separator)
	require.Len(t, blocks, 3)
	require.Empty(t, blocks[0])

	first, second := blocks[1], blocks[2]
	require.Contains(t, first, "Personalization: 1/2\n")
	require.Contains(t, first, "Subject: Monthly Report\n")
	require.NotContains(t, first, "Send-At:")

	require.Contains(t, second, "Personalization: 2/2\n")
	require.Contains(t, second, "From: Team <team@example.com>\n")
	require.Contains(t, second, "Subject: Hi Erin\n")
	require.Contains(t, second, "Send-At: 2024-05-01T12:00:00Z\n")
	require.Contains(t, second, "Template-Data: count, name\n")

	for _, block := range []string{first, second} {
		require.Contains(t, block, "Template: d-123\n")
		require.Contains(t, block, "Categories: news, weekly\n")
		require.Contains(t, block, "Sandbox: on\n")
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWrite_PropagatesWriterError(t *testing.T) {
	t.Parallel()

	err := NewWithWriter(failingWriter{}).Write(basicEmail())
	require.Error(t, err)
	require.Contains(t, err.Error(), "disk full")
}

func TestFormatSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		bytes int
		want  string
	}{
		{name: "zero bytes", bytes: 0, want: "0 B"},
		{name: "small bytes", bytes: 512, want: "512 B"},
		{name: "kilobytes", bytes: 46080, want: "45.0 KB"},
		{name: "megabytes", bytes: 1258291, want: "1.2 MB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, formatSize(tt.bytes))
		})
	}
}
