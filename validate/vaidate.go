// Package calidate contains custom validation functions
package validate

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var phoneRegex = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

// Phone is a custom validation function that is used to validate phone numbers
func Phone(fl validator.FieldLevel) bool {
	return phoneRegex.MatchString(fl.Field().String())
}

// Identifier is a custom validation function that is used to validate the identifier,
// the identifier can either be an email address or a phone number
func Identifier(fl validator.FieldLevel) bool {
	identifier := fl.Field().String()
	if identifier == "" {
		return false
	}

	if strings.Contains(identifier, "@") {
		regex, err := regexp.Compile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
		if err != nil {
			return false
		}
		return regex.MatchString(identifier)
	}

	return phoneRegex.MatchString(identifier)
}

// Code is a custom validation function that is used to validate the one time passcode,
// passcodes are exactly 6 ASCII digits
func Code(fl validator.FieldLevel) bool {
	code := fl.Field().String()
	if len(code) != 6 {
		return false
	}

	for _, c := range code {
		if c < '0' || c > '9' {
			return false
		}
	}

	return true
}
