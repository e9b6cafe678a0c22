package sendgrid

import "time"

// String returns a pointer to v.
func String(v string) *string { return &v }

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// Time returns a pointer to v truncated to whole seconds in UTC, the precision
// send_at carries on the wire.
func Time(v time.Time) *time.Time {
	t := time.Unix(v.Unix(), 0).UTC()
	return &t
}
