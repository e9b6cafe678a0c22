package sendgrid

// Attachment is a file carried with the message. Content holds the file bytes
// already base64 encoded; this package does not encode or inspect it.
type Attachment struct {
	Content     string `validate:"required"`
	Type        *string
	Filename    string `validate:"required"`
	Disposition *string
	ContentID   *string
}

// Encode returns the wire form of a.
func (a Attachment) Encode() map[string]any {
	m := map[string]any{
		"content":  a.Content,
		"filename": a.Filename,
	}
	putString(m, "type", a.Type)
	putString(m, "disposition", a.Disposition)
	putString(m, "content_id", a.ContentID)
	return m
}

// DecodeAttachment decodes an Attachment from its wire form.
func DecodeAttachment(m map[string]any) (Attachment, error) {
	return decodeAttachment(newObject("", m))
}

func decodeAttachment(o object) (a Attachment, err error) {
	if a.Content, err = o.requiredString("content"); err != nil {
		return Attachment{}, err
	}
	if a.Type, err = o.optString("type"); err != nil {
		return Attachment{}, err
	}
	if a.Filename, err = o.requiredString("filename"); err != nil {
		return Attachment{}, err
	}
	if a.Disposition, err = o.optString("disposition"); err != nil {
		return Attachment{}, err
	}
	if a.ContentID, err = o.optString("content_id"); err != nil {
		return Attachment{}, err
	}
	return a, nil
}
