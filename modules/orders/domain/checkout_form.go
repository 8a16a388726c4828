package domain

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// CheckoutForm is the buyer's contact and fulfillment input as submitted.
type CheckoutForm struct {
	FullName        string
	Email           string
	Phone           string
	Fulfillment     string
	DeliveryAddress string
	Notes           string
}

// Contact is a validated CheckoutForm.
type Contact struct {
	FullName        string
	Email           string
	Phone           string
	Fulfillment     Fulfillment
	DeliveryAddress string
	Notes           string
}

// FormError carries one message per invalid field.
type FormError struct {
	Fields map[string]string
}

func (e *FormError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return ErrInvalidCheckoutForm.Error() + ": " + strings.Join(names, ", ")
}

func (e *FormError) Is(target error) bool { return target == ErrInvalidCheckoutForm }

const (
	maxNotesLength   = 500
	maxAddressLength = 300
)

var formEmailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Validate checks every field and reports all failures at once.
func (f CheckoutForm) Validate() (Contact, error) {
	fields := make(map[string]string)
	c := Contact{
		FullName:        strings.Join(strings.Fields(f.FullName), " "),
		Email:           strings.ToLower(strings.TrimSpace(f.Email)),
		Phone:           strings.TrimSpace(f.Phone),
		DeliveryAddress: strings.TrimSpace(f.DeliveryAddress),
		Notes:           strings.TrimSpace(f.Notes),
	}

	switch n := utf8.RuneCountInString(c.FullName); {
	case n == 0:
		fields["full_name"] = "full name is required"
	case n < 2 || n > 100:
		fields["full_name"] = "full name must be 2-100 characters"
	}

	switch {
	case c.Email == "":
		fields["email"] = "email is required"
	case !formEmailRegex.MatchString(c.Email):
		fields["email"] = "email format is invalid"
	}

	if c.Phone == "" {
		fields["phone"] = "phone is required"
	} else if !validPhone(c.Phone) {
		fields["phone"] = "phone must contain 7-20 digits"
	}

	fulfillment, err := ParseFulfillment(f.Fulfillment)
	if err != nil {
		fields["fulfillment"] = "choose pickup or delivery"
	}
	c.Fulfillment = fulfillment

	if fulfillment == FulfillmentDelivery {
		switch {
		case c.DeliveryAddress == "":
			fields["delivery_address"] = "delivery address is required for delivery"
		case utf8.RuneCountInString(c.DeliveryAddress) > maxAddressLength:
			fields["delivery_address"] = "delivery address is too long"
		}
	} else {
		c.DeliveryAddress = ""
	}

	if utf8.RuneCountInString(c.Notes) > maxNotesLength {
		fields["notes"] = "notes must be at most 500 characters"
	}

	if len(fields) > 0 {
		return Contact{}, &FormError{Fields: fields}
	}
	return c, nil
}

// validPhone accepts 7-20 digits with spaces, dashes, dots, parentheses and
// a leading plus.
func validPhone(s string) bool {
	digits := 0
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '+' && i == 0:
		case r == ' ' || r == '-' || r == '.' || r == '(' || r == ')':
		default:
			return false
		}
	}
	return digits >= 7 && digits <= 20
}
