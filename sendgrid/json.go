package sendgrid

import (
	"fmt"

	"github.com/segmentio/encoding/json"
)

// MarshalJSON encodes e in its wire form.
func (e Email) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Encode())
}

// UnmarshalJSON decodes e from its wire form.
func (e *Email) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("failed to parse request body: %w", err)
	}
	if m == nil {
		return &TypeMismatchError{Field: "", Expected: "object", Actual: "null"}
	}

	decoded, err := DecodeEmail(m)
	if err != nil {
		return err
	}
	*e = decoded
	return nil
}

// MarshalIndent encodes e in its wire form with indentation, for humans.
func MarshalIndent(e Email, prefix, indent string) ([]byte, error) {
	return json.MarshalIndent(e.Encode(), prefix, indent)
}
