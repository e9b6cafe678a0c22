package sendgrid

import "time"

// Email is the root mail/send request.
type Email struct {
	// Personalizations holds the delivery envelopes; at least one is expected.
	Personalizations []Personalization `validate:"required,min=1,dive"`
	From             Address
	ReplyTo          *Address
	// Subject is the message-level subject, overridable per personalization.
	// It may be empty when TemplateID names a template that supplies one.
	Subject string
	// Content lists the body variants. It may be empty when TemplateID names a
	// template that supplies the content.
	Content     []Content    `validate:"dive"`
	Attachments []Attachment `validate:"dive"`
	TemplateID  *string
	// Sections define block sections of code used as substitutions.
	Sections map[string]string
	// Headers must not contain reserved headers and must be properly encoded.
	Headers    map[string]string
	Categories []string
	CustomArgs map[string]string
	// SendAt schedules delivery for every personalization that does not set its own.
	SendAt *time.Time
	// BatchID groups the message into a batch that can be paused or cancelled.
	BatchID          *string
	ASM              *AdvancedSuppressionManager
	IPPoolName       *string
	MailSettings     *MailSettings
	TrackingSettings *TrackingSettings
}

// Encode returns the wire form of e. Required fields are always present.
func (e Email) Encode() map[string]any {
	m := map[string]any{
		"personalizations": encodeList(e.Personalizations),
		"from":             e.From.Encode(),
		"subject":          e.Subject,
		"content":          encodeList(e.Content),
	}
	if e.ReplyTo != nil {
		putObject(m, "reply_to", e.ReplyTo)
	}
	if e.Attachments != nil {
		m["attachments"] = encodeList(e.Attachments)
	}
	putString(m, "template_id", e.TemplateID)
	putStringMap(m, "sections", e.Sections)
	putStringMap(m, "headers", e.Headers)
	putStrings(m, "categories", e.Categories)
	putStringMap(m, "custom_args", e.CustomArgs)
	putTime(m, "send_at", e.SendAt)
	putString(m, "batch_id", e.BatchID)
	if e.ASM != nil {
		putObject(m, "asm", e.ASM)
	}
	putString(m, "ip_pool_name", e.IPPoolName)
	if e.MailSettings != nil {
		putObject(m, "mail_settings", e.MailSettings)
	}
	if e.TrackingSettings != nil {
		putObject(m, "tracking_settings", e.TrackingSettings)
	}
	return m
}

// DecodeEmail decodes an Email from its wire form. Unknown keys are ignored.
func DecodeEmail(m map[string]any) (Email, error) {
	return decodeEmail(newObject("", m))
}

func decodeEmail(o object) (e Email, err error) {
	if e.Personalizations, err = list(o, "personalizations", true, decodePersonalization); err != nil {
		return Email{}, err
	}

	from, _, err := o.child("from", true)
	if err != nil {
		return Email{}, err
	}
	if e.From, err = decodeAddress(from); err != nil {
		return Email{}, err
	}

	if e.ReplyTo, err = nested(o, "reply_to", decodeAddress); err != nil {
		return Email{}, err
	}
	if e.Subject, err = o.requiredString("subject"); err != nil {
		return Email{}, err
	}
	if e.Content, err = list(o, "content", true, decodeContent); err != nil {
		return Email{}, err
	}
	if e.Attachments, err = list(o, "attachments", false, decodeAttachment); err != nil {
		return Email{}, err
	}
	if e.TemplateID, err = o.optString("template_id"); err != nil {
		return Email{}, err
	}
	if e.Sections, err = o.optStringMap("sections"); err != nil {
		return Email{}, err
	}
	if e.Headers, err = o.optStringMap("headers"); err != nil {
		return Email{}, err
	}
	if e.Categories, err = o.optStrings("categories"); err != nil {
		return Email{}, err
	}
	if e.CustomArgs, err = o.optStringMap("custom_args"); err != nil {
		return Email{}, err
	}
	if e.SendAt, err = o.optTime("send_at"); err != nil {
		return Email{}, err
	}
	if e.BatchID, err = o.optString("batch_id"); err != nil {
		return Email{}, err
	}
	if e.ASM, err = nested(o, "asm", decodeASM); err != nil {
		return Email{}, err
	}
	if e.IPPoolName, err = o.optString("ip_pool_name"); err != nil {
		return Email{}, err
	}
	if e.MailSettings, err = nested(o, "mail_settings", decodeMailSettings); err != nil {
		return Email{}, err
	}
	if e.TrackingSettings, err = nested(o, "tracking_settings", decodeTrackingSettings); err != nil {
		return Email{}, err
	}
	return e, nil
}

// EffectiveSubject returns the subject that applies to p: its own override, or the
// message-level subject.
func (e Email) EffectiveSubject(p Personalization) string {
	if p.Subject != nil {
		return *p.Subject
	}
	return e.Subject
}

// EffectiveFrom returns the sender that applies to p.
func (e Email) EffectiveFrom(p Personalization) Address {
	if p.From != nil {
		return *p.From
	}
	return e.From
}

// EffectiveSendAt returns the schedule that applies to p, or nil for immediate delivery.
func (e Email) EffectiveSendAt(p Personalization) *time.Time {
	if p.SendAt != nil {
		return p.SendAt
	}
	return e.SendAt
}
