package main

import (
	"github.com/shineum/sendgrid-kit/internal/config"
)

// applyDefaults fills the wire-form draft m with configured defaults for the
// keys the draft leaves unset. Values already present in the draft win.
func applyDefaults(m map[string]any, d config.DefaultsConfig) {
	if d.From != "" && !hasAddress(m["from"]) {
		from := map[string]any{"email": d.From}
		if d.FromName != "" {
			from["name"] = d.FromName
		}
		m["from"] = from
	}

	if d.ReplyTo != "" && !hasAddress(m["reply_to"]) {
		m["reply_to"] = map[string]any{"email": d.ReplyTo}
	}

	if d.IPPoolName != "" && m["ip_pool_name"] == nil {
		m["ip_pool_name"] = d.IPPoolName
	}

	if len(d.Categories) > 0 && m["categories"] == nil {
		categories := make([]any, len(d.Categories))
		for i, c := range d.Categories {
			categories[i] = c
		}
		m["categories"] = categories
	}

	if d.Sandbox {
		enableSandbox(m)
	}
}

// hasAddress reports whether v is an address object with a non-empty email.
func hasAddress(v any) bool {
	a, ok := v.(map[string]any)
	if !ok {
		return v != nil
	}
	email, _ := a["email"].(string)
	return email != ""
}

// enableSandbox sets mail_settings.sandbox_mode.enable unless the draft sets it.
func enableSandbox(m map[string]any) {
	settings, ok := m["mail_settings"].(map[string]any)
	if !ok {
		if m["mail_settings"] != nil {
			return
		}
		settings = map[string]any{}
		m["mail_settings"] = settings
	}

	sandbox, ok := settings["sandbox_mode"].(map[string]any)
	if !ok {
		if settings["sandbox_mode"] != nil {
			return
		}
		sandbox = map[string]any{}
		settings["sandbox_mode"] = sandbox
	}

	if sandbox["enable"] == nil {
		sandbox["enable"] = true
	}
}
