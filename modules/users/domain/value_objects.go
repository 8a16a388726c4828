package domain

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Email is a value object representing a validated email address.
// Value objects are immutable and compared by value.
type Email struct {
	value string
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// NewEmail creates a validated Email value object.
func NewEmail(value string) (Email, error) {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return Email{}, ErrEmailRequired
	}
	if !emailRegex.MatchString(value) {
		return Email{}, ErrEmailInvalid
	}
	return Email{value: value}, nil
}

func (e Email) String() string { return e.value }
func (e Email) IsZero() bool   { return e.value == "" }

func (e Email) Equals(other Email) bool {
	return e.value == other.value
}

// Password is a sign-up password that satisfies the local policy.
// The hosted identity service applies its own checks on top.
type Password struct {
	value string
}

const (
	minPasswordLength = 8
	// bcrypt ignores input beyond 72 bytes.
	maxPasswordLength = 72
)

func NewPassword(value string) (Password, error) {
	if len(value) < minPasswordLength || len(value) > maxPasswordLength {
		return Password{}, ErrPasswordWeak
	}
	var letter, digit bool
	for _, r := range value {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !letter || !digit {
		return Password{}, ErrPasswordWeak
	}
	return Password{value: value}, nil
}

// Reveal returns the raw password for handing to the identity provider.
func (p Password) Reveal() string { return p.value }

// String never prints the secret.
func (p Password) String() string { return "********" }

// Name is a person's full name as shown on their profile.
type Name struct {
	value string
}

func NewName(value string) (Name, error) {
	value = strings.Join(strings.Fields(value), " ")
	if value == "" {
		return Name{}, ErrNameRequired
	}
	if n := utf8.RuneCountInString(value); n < 2 || n > 100 {
		return Name{}, ErrNameLength
	}
	return Name{value: value}, nil
}

func (n Name) String() string { return n.value }
func (n Name) IsZero() bool   { return n.value == "" }

// Role distinguishes sellers from shoppers.
type Role string

const (
	RoleFarmer Role = "farmer"
	RoleBuyer  Role = "buyer"
)

func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleFarmer, RoleBuyer:
		return r, nil
	default:
		return "", ErrRoleInvalid
	}
}

func (r Role) String() string { return string(r) }

// Phone is an optional contact number. The zero value means "not given".
type Phone struct {
	value string
}

// NewPhone accepts digits with common separators; an empty input yields the
// zero Phone.
func NewPhone(value string) (Phone, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Phone{}, nil
	}
	digits := 0
	for i, r := range value {
		switch {
		case unicode.IsDigit(r):
			digits++
		case r == '+' && i == 0:
		case r == ' ', r == '-', r == '(', r == ')', r == '.':
		default:
			return Phone{}, ErrPhoneInvalid
		}
	}
	if digits < 7 || digits > 20 {
		return Phone{}, ErrPhoneInvalid
	}
	return Phone{value: value}, nil
}

func (p Phone) String() string { return p.value }
func (p Phone) IsZero() bool   { return p.value == "" }

// Status represents the profile status.
type Status string

const (
	StatusActive  Status = "active"
	StatusDeleted Status = "deleted"
)

func (s Status) String() string { return string(s) }

func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusDeleted:
		return true
	default:
		return false
	}
}
