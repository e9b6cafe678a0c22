package sendgrid

// MIME types accepted by the API for message bodies.
const (
	MIMETextPlain = "text/plain"
	MIMETextHTML  = "text/html"
)

// Content is one body variant of the message.
type Content struct {
	// Type is the MIME type of Value, e.g. "text/plain" or "text/html".
	Type string `validate:"required"`
	// Value must not be empty.
	Value string `validate:"required"`
}

// PlainText returns a text/plain Content holding value.
func PlainText(value string) Content {
	return Content{Type: MIMETextPlain, Value: value}
}

// HTML returns a text/html Content holding value.
func HTML(value string) Content {
	return Content{Type: MIMETextHTML, Value: value}
}

// Encode returns the wire form of c.
func (c Content) Encode() map[string]any {
	return map[string]any{
		"type":  c.Type,
		"value": c.Value,
	}
}

// DecodeContent decodes a Content from its wire form.
func DecodeContent(m map[string]any) (Content, error) {
	return decodeContent(newObject("", m))
}

func decodeContent(o object) (c Content, err error) {
	if c.Type, err = o.requiredString("type"); err != nil {
		return Content{}, err
	}
	if c.Value, err = o.requiredString("value"); err != nil {
		return Content{}, err
	}
	return c, nil
}
