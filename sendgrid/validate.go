package sendgrid

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var v = validator.New()

// Validate checks the structural rules of e that the codec leaves to the caller:
// at least one personalization, at least one recipient in each, non-empty
// addresses and content, complete attachments and a spam threshold within 1..10.
// API business rules are not checked.
func Validate(e Email) error {
	if err := v.Struct(e); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}
	return nil
}
