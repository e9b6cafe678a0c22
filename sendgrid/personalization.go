package sendgrid

import "time"

// Personalization is one delivery envelope: who receives a copy of the message
// and how that copy is handled. Subject and SendAt override the message-level values.
type Personalization struct {
	// From overrides the message sender for this envelope.
	From *Address
	// To must contain at least one recipient.
	To  []Address `validate:"required,min=1,dive"`
	Cc  []Address `validate:"dive"`
	Bcc []Address `validate:"dive"`

	Subject *string
	// Headers are specific handling instructions for this envelope.
	Headers map[string]string
	// Substitutions follow the pattern "substitution_tag": "value to substitute".
	Substitutions map[string]string
	// DynamicTemplateData is handlebars data for dynamic templates. Values must be
	// JSON-compatible; they are carried through the codec untouched.
	DynamicTemplateData map[string]any
	// CustomArgs are carried along with the email and its activity data.
	CustomArgs map[string]string
	// SendAt schedules delivery; encoded as Unix epoch seconds.
	SendAt *time.Time
}

// Encode returns the wire form of p.
func (p Personalization) Encode() map[string]any {
	m := map[string]any{"to": encodeList(p.To)}
	if p.From != nil {
		putObject(m, "from", p.From)
	}
	if p.Cc != nil {
		m["cc"] = encodeList(p.Cc)
	}
	if p.Bcc != nil {
		m["bcc"] = encodeList(p.Bcc)
	}
	putString(m, "subject", p.Subject)
	putStringMap(m, "headers", p.Headers)
	putStringMap(m, "substitutions", p.Substitutions)
	putAnyMap(m, "dynamic_template_data", p.DynamicTemplateData)
	putStringMap(m, "custom_args", p.CustomArgs)
	putTime(m, "send_at", p.SendAt)
	return m
}

// DecodePersonalization decodes a Personalization from its wire form.
func DecodePersonalization(m map[string]any) (Personalization, error) {
	return decodePersonalization(newObject("", m))
}

func decodePersonalization(o object) (p Personalization, err error) {
	if p.From, err = nested(o, "from", decodeAddress); err != nil {
		return Personalization{}, err
	}
	if p.To, err = list(o, "to", true, decodeAddress); err != nil {
		return Personalization{}, err
	}
	if p.Cc, err = list(o, "cc", false, decodeAddress); err != nil {
		return Personalization{}, err
	}
	if p.Bcc, err = list(o, "bcc", false, decodeAddress); err != nil {
		return Personalization{}, err
	}
	if p.Subject, err = o.optString("subject"); err != nil {
		return Personalization{}, err
	}
	if p.Headers, err = o.optStringMap("headers"); err != nil {
		return Personalization{}, err
	}
	if p.Substitutions, err = o.optStringMap("substitutions"); err != nil {
		return Personalization{}, err
	}
	if p.DynamicTemplateData, err = o.optAnyMap("dynamic_template_data"); err != nil {
		return Personalization{}, err
	}
	if p.CustomArgs, err = o.optStringMap("custom_args"); err != nil {
		return Personalization{}, err
	}
	if p.SendAt, err = o.optTime("send_at"); err != nil {
		return Personalization{}, err
	}
	return p, nil
}
