// Package sendgrid defines the request schema of a SendGrid-style v3 mail/send call
// and a codec between the schema and its wire representation.
//
// Every record type encodes to a JSON-compatible tree (map[string]any, []any,
// string, bool and integer leaves) using the API's field names, and decodes back
// from such a tree, whether it came from encoding/json, segmentio/encoding/json or
// a YAML decoder. Optional values are pointers or nil collections; absent optional
// fields are omitted on encode and a null value decodes the same as a missing one.
//
//	msg := sendgrid.Email{
//		Personalizations: []sendgrid.Personalization{{
//			To: []sendgrid.Address{sendgrid.NewAddress("bob@example.com", "Bob")},
//		}},
//		From:    sendgrid.NewAddress("noreply@example.com", ""),
//		Subject: "Hello",
//		Content: []sendgrid.Content{sendgrid.PlainText("Hi Bob")},
//	}
//	body, err := json.Marshal(msg)
//
// Decoding reports a *MissingFieldError for absent required fields and a
// *TypeMismatchError for values of the wrong kind. Neither the codec nor Validate
// enforce API business rules such as scheduling windows or category lengths.
package sendgrid
