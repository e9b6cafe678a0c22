package sendgrid

// MailSettings bundles delivery toggles. Each setting is independently optional.
type MailSettings struct {
	// BCC sends a blind carbon copy of every email to the given address.
	BCC *BCC
	// BypassListManagement delivers to every recipient regardless of unsubscribe
	// groups and suppressions. Only for emergencies.
	BypassListManagement *BypassListManagement
	// Footer is the default footer included on every email.
	Footer *Footer
	// SandboxMode validates the request without delivering it.
	SandboxMode *SandboxMode
	// SpamCheck tests the content of the email for spam.
	SpamCheck *SpamCheck
}

// BCC is the automatic blind carbon copy setting.
type BCC struct {
	Enable *bool
	Email  *string
}

// BypassListManagement is the list management bypass setting.
type BypassListManagement struct {
	Enable *bool
}

// Footer is the default footer setting.
type Footer struct {
	Enable *bool
	Text   *string
	HTML   *string
}

// SandboxMode is the sandbox setting.
type SandboxMode struct {
	Enable *bool
}

// SpamCheck is the spam testing setting.
type SpamCheck struct {
	Enable *bool
	// Threshold is on a scale from 1 to 10; 10 is the most strict.
	Threshold *int `validate:"omitempty,min=1,max=10"`
	// PostToURL is an Inbound Parse URL that receives a copy of the email and its spam report.
	PostToURL *string
}

// Encode returns the wire form of s.
func (s MailSettings) Encode() map[string]any {
	m := map[string]any{}
	if s.BCC != nil {
		putObject(m, "bcc", s.BCC)
	}
	if s.BypassListManagement != nil {
		putObject(m, "bypass_list_management", s.BypassListManagement)
	}
	if s.Footer != nil {
		putObject(m, "footer", s.Footer)
	}
	if s.SandboxMode != nil {
		putObject(m, "sandbox_mode", s.SandboxMode)
	}
	if s.SpamCheck != nil {
		putObject(m, "spam_check", s.SpamCheck)
	}
	return m
}

// Encode returns the wire form of b.
func (b BCC) Encode() map[string]any {
	m := map[string]any{}
	putBool(m, "enable", b.Enable)
	putString(m, "email", b.Email)
	return m
}

// Encode returns the wire form of b.
func (b BypassListManagement) Encode() map[string]any {
	m := map[string]any{}
	putBool(m, "enable", b.Enable)
	return m
}

// Encode returns the wire form of f.
func (f Footer) Encode() map[string]any {
	m := map[string]any{}
	putBool(m, "enable", f.Enable)
	putString(m, "text", f.Text)
	putString(m, "html", f.HTML)
	return m
}

// Encode returns the wire form of s.
func (s SandboxMode) Encode() map[string]any {
	m := map[string]any{}
	putBool(m, "enable", s.Enable)
	return m
}

// Encode returns the wire form of s.
func (s SpamCheck) Encode() map[string]any {
	m := map[string]any{}
	putBool(m, "enable", s.Enable)
	putInt(m, "threshold", s.Threshold)
	putString(m, "post_to_url", s.PostToURL)
	return m
}

// DecodeMailSettings decodes MailSettings from its wire form.
func DecodeMailSettings(m map[string]any) (MailSettings, error) {
	return decodeMailSettings(newObject("", m))
}

// DecodeBCC decodes a BCC setting from its wire form.
func DecodeBCC(m map[string]any) (BCC, error) {
	return decodeBCC(newObject("", m))
}

// DecodeBypassListManagement decodes a BypassListManagement setting from its wire form.
func DecodeBypassListManagement(m map[string]any) (BypassListManagement, error) {
	return decodeBypassListManagement(newObject("", m))
}

// DecodeFooter decodes a Footer setting from its wire form.
func DecodeFooter(m map[string]any) (Footer, error) {
	return decodeFooter(newObject("", m))
}

// DecodeSandboxMode decodes a SandboxMode setting from its wire form.
func DecodeSandboxMode(m map[string]any) (SandboxMode, error) {
	return decodeSandboxMode(newObject("", m))
}

// DecodeSpamCheck decodes a SpamCheck setting from its wire form.
func DecodeSpamCheck(m map[string]any) (SpamCheck, error) {
	return decodeSpamCheck(newObject("", m))
}

func decodeMailSettings(o object) (s MailSettings, err error) {
	if s.BCC, err = nested(o, "bcc", decodeBCC); err != nil {
		return MailSettings{}, err
	}
	if s.BypassListManagement, err = nested(o, "bypass_list_management", decodeBypassListManagement); err != nil {
		return MailSettings{}, err
	}
	if s.Footer, err = nested(o, "footer", decodeFooter); err != nil {
		return MailSettings{}, err
	}
	if s.SandboxMode, err = nested(o, "sandbox_mode", decodeSandboxMode); err != nil {
		return MailSettings{}, err
	}
	if s.SpamCheck, err = nested(o, "spam_check", decodeSpamCheck); err != nil {
		return MailSettings{}, err
	}
	return s, nil
}

func decodeBCC(o object) (b BCC, err error) {
	if b.Enable, err = o.optBool("enable"); err != nil {
		return BCC{}, err
	}
	if b.Email, err = o.optString("email"); err != nil {
		return BCC{}, err
	}
	return b, nil
}

func decodeBypassListManagement(o object) (b BypassListManagement, err error) {
	b.Enable, err = o.optBool("enable")
	return b, err
}

func decodeFooter(o object) (f Footer, err error) {
	if f.Enable, err = o.optBool("enable"); err != nil {
		return Footer{}, err
	}
	if f.Text, err = o.optString("text"); err != nil {
		return Footer{}, err
	}
	if f.HTML, err = o.optString("html"); err != nil {
		return Footer{}, err
	}
	return f, nil
}

func decodeSandboxMode(o object) (s SandboxMode, err error) {
	s.Enable, err = o.optBool("enable")
	return s, err
}

func decodeSpamCheck(o object) (s SpamCheck, err error) {
	if s.Enable, err = o.optBool("enable"); err != nil {
		return SpamCheck{}, err
	}
	if s.Threshold, err = o.optInt("threshold"); err != nil {
		return SpamCheck{}, err
	}
	if s.PostToURL, err = o.optString("post_to_url"); err != nil {
		return SpamCheck{}, err
	}
	return s, nil
}
