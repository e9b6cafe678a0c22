package sendgrid

// TrackingSettings controls how recipient interaction with the email is tracked.
type TrackingSettings struct {
	ClickTracking        *ClickTracking
	OpenTracking         *OpenTracking
	SubscriptionTracking *SubscriptionTracking
	GoogleAnalytics      *GoogleAnalytics
}

// ClickTracking rewrites links to track clicks.
type ClickTracking struct {
	Enable *bool
	// EnableText also rewrites links in the text/plain body.
	EnableText *bool
}

// OpenTracking inserts a tracking pixel.
type OpenTracking struct {
	Enable          *bool
	SubstitutionTag *string
}

// SubscriptionTracking appends an unsubscribe link.
type SubscriptionTracking struct {
	Enable          *bool
	Text            *string
	HTML            *string
	SubstitutionTag *string
}

// GoogleAnalytics appends utm parameters to links.
type GoogleAnalytics struct {
	Enable      *bool
	UTMSource   *string
	UTMMedium   *string
	UTMTerm     *string
	UTMContent  *string
	UTMCampaign *string
}

// Encode returns the wire form of t.
func (t TrackingSettings) Encode() map[string]any {
	m := map[string]any{}
	if t.ClickTracking != nil {
		putObject(m, "click_tracking", t.ClickTracking)
	}
	if t.OpenTracking != nil {
		putObject(m, "open_tracking", t.OpenTracking)
	}
	if t.SubscriptionTracking != nil {
		putObject(m, "subscription_tracking", t.SubscriptionTracking)
	}
	if t.GoogleAnalytics != nil {
		putObject(m, "ganalytics", t.GoogleAnalytics)
	}
	return m
}

// Encode returns the wire form of c.
func (c ClickTracking) Encode() map[string]any {
	m := map[string]any{}
	putBool(m, "enable", c.Enable)
	putBool(m, "enable_text", c.EnableText)
	return m
}

// Encode returns the wire form of o.
func (o OpenTracking) Encode() map[string]any {
	m := map[string]any{}
	putBool(m, "enable", o.Enable)
	putString(m, "substitution_tag", o.SubstitutionTag)
	return m
}

// Encode returns the wire form of s.
func (s SubscriptionTracking) Encode() map[string]any {
	m := map[string]any{}
	putBool(m, "enable", s.Enable)
	putString(m, "text", s.Text)
	putString(m, "html", s.HTML)
	putString(m, "substitution_tag", s.SubstitutionTag)
	return m
}

// Encode returns the wire form of g.
func (g GoogleAnalytics) Encode() map[string]any {
	m := map[string]any{}
	putBool(m, "enable", g.Enable)
	putString(m, "utm_source", g.UTMSource)
	putString(m, "utm_medium", g.UTMMedium)
	putString(m, "utm_term", g.UTMTerm)
	putString(m, "utm_content", g.UTMContent)
	putString(m, "utm_campaign", g.UTMCampaign)
	return m
}

// DecodeTrackingSettings decodes TrackingSettings from its wire form.
func DecodeTrackingSettings(m map[string]any) (TrackingSettings, error) {
	return decodeTrackingSettings(newObject("", m))
}

func decodeTrackingSettings(o object) (t TrackingSettings, err error) {
	if t.ClickTracking, err = nested(o, "click_tracking", decodeClickTracking); err != nil {
		return TrackingSettings{}, err
	}
	if t.OpenTracking, err = nested(o, "open_tracking", decodeOpenTracking); err != nil {
		return TrackingSettings{}, err
	}
	if t.SubscriptionTracking, err = nested(o, "subscription_tracking", decodeSubscriptionTracking); err != nil {
		return TrackingSettings{}, err
	}
	if t.GoogleAnalytics, err = nested(o, "ganalytics", decodeGoogleAnalytics); err != nil {
		return TrackingSettings{}, err
	}
	return t, nil
}

func decodeClickTracking(o object) (c ClickTracking, err error) {
	if c.Enable, err = o.optBool("enable"); err != nil {
		return ClickTracking{}, err
	}
	if c.EnableText, err = o.optBool("enable_text"); err != nil {
		return ClickTracking{}, err
	}
	return c, nil
}

func decodeOpenTracking(o object) (t OpenTracking, err error) {
	if t.Enable, err = o.optBool("enable"); err != nil {
		return OpenTracking{}, err
	}
	if t.SubstitutionTag, err = o.optString("substitution_tag"); err != nil {
		return OpenTracking{}, err
	}
	return t, nil
}

func decodeSubscriptionTracking(o object) (s SubscriptionTracking, err error) {
	if s.Enable, err = o.optBool("enable"); err != nil {
		return SubscriptionTracking{}, err
	}
	if s.Text, err = o.optString("text"); err != nil {
		return SubscriptionTracking{}, err
	}
	if s.HTML, err = o.optString("html"); err != nil {
		return SubscriptionTracking{}, err
	}
	if s.SubstitutionTag, err = o.optString("substitution_tag"); err != nil {
		return SubscriptionTracking{}, err
	}
	return s, nil
}

func decodeGoogleAnalytics(o object) (g GoogleAnalytics, err error) {
	fields := []struct {
		key string
		dst **string
	}{
		{"utm_source", &g.UTMSource},
		{"utm_medium", &g.UTMMedium},
		{"utm_term", &g.UTMTerm},
		{"utm_content", &g.UTMContent},
		{"utm_campaign", &g.UTMCampaign},
	}
	if g.Enable, err = o.optBool("enable"); err != nil {
		return GoogleAnalytics{}, err
	}
	for _, f := range fields {
		if *f.dst, err = o.optString(f.key); err != nil {
			return GoogleAnalytics{}, err
		}
	}
	return g, nil
}
