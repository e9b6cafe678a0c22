package sendgrid

// Address is a name and email pair.
type Address struct {
	Email string `validate:"required"`
	Name  *string
}

// NewAddress returns an Address. An empty name is left absent.
func NewAddress(email, name string) Address {
	a := Address{Email: email}
	if name != "" {
		a.Name = &name
	}
	return a
}

// Encode returns the wire form of a.
func (a Address) Encode() map[string]any {
	m := map[string]any{"email": a.Email}
	putString(m, "name", a.Name)
	return m
}

// DecodeAddress decodes an Address from its wire form.
func DecodeAddress(m map[string]any) (Address, error) {
	return decodeAddress(newObject("", m))
}

func decodeAddress(o object) (a Address, err error) {
	if a.Email, err = o.requiredString("email"); err != nil {
		return Address{}, err
	}
	if a.Name, err = o.optString("name"); err != nil {
		return Address{}, err
	}
	return a, nil
}
