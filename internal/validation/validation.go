// Package validation checks customer contact fields submitted at checkout.
package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Result is the outcome of a single field check. Reason is empty when Valid.
type Result struct {
	Valid  bool   `json:"isValid"`
	Reason string `json:"error,omitempty"`
}

var (
	digitPattern   = regexp.MustCompile(`\d`)
	namePattern    = regexp.MustCompile(`^[\p{L}\s'-]+$`)
	emailPattern   = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern   = regexp.MustCompile(`^(\+91|91)?[6-9]\d{9}$`)
	pincodePattern = regexp.MustCompile(`^[1-8]\d{5}$`)
	phoneStrip     = regexp.MustCompile(`[\s-]`)
)

// disposableDomains are rejected by ValidateEmail.
var disposableDomains = map[string]struct{}{
	"tempmail.com":      {},
	"throwaway.email":   {},
	"guerrillamail.com": {},
	"10minutemail.com":  {},
	"mailinator.com":    {},
}

func valid() Result { return Result{Valid: true} }

func invalid(reason string) Result { return Result{Reason: reason} }

func ValidateName(name string) Result {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return invalid("Name is required")
	}

	n := utf8.RuneCountInString(trimmed)
	if n < 2 {
		return invalid("Name must be at least 2 characters long")
	}
	if n > 50 {
		return invalid("Name must not exceed 50 characters")
	}
	if digitPattern.MatchString(trimmed) {
		return invalid("Name must not contain numbers")
	}
	if !namePattern.MatchString(trimmed) {
		return invalid("Name can only contain letters, spaces, hyphens and apostrophes")
	}
	return valid()
}

// ValidateEmail lowercases the address before matching the domain denylist.
func ValidateEmail(email string) Result {
	trimmed := strings.ToLower(strings.TrimSpace(email))
	if trimmed == "" {
		return invalid("Email is required")
	}
	if !emailPattern.MatchString(trimmed) {
		return invalid("Please enter a valid email address")
	}

	domain := trimmed[strings.LastIndex(trimmed, "@")+1:]
	if _, ok := disposableDomains[domain]; ok {
		return invalid("Disposable email addresses are not allowed")
	}
	return valid()
}

// ValidatePhone accepts a 10 digit mobile number starting with 6-9, with an
// optional +91 or 91 prefix. Spaces and hyphens are ignored.
func ValidatePhone(phone string) Result {
	if strings.TrimSpace(phone) == "" {
		return invalid("Phone number is required")
	}
	if !phonePattern.MatchString(phoneStrip.ReplaceAllString(phone, "")) {
		return invalid("Please enter a valid Phone Number")
	}
	return valid()
}

// ValidatePincode accepts exactly 6 digits with the first in 1-8.
func ValidatePincode(pincode string) Result {
	trimmed := strings.TrimSpace(pincode)
	if trimmed == "" {
		return invalid("Pincode is required")
	}
	if !pincodePattern.MatchString(trimmed) {
		return invalid("Please enter a valid Pincode")
	}
	return valid()
}

// Contact holds the checkout fields covered by this package.
type Contact struct {
	Name    string
	Email   string
	Phone   string
	Pincode string
}

// FieldResult names the field a failed Result belongs to.
type FieldResult struct {
	Field string
	Result
}

// ValidateContact returns the first failing field, or a valid result.
func ValidateContact(c Contact) FieldResult {
	checks := []struct {
		field string
		res   Result
	}{
		{"customerName", ValidateName(c.Name)},
		{"customerEmail", ValidateEmail(c.Email)},
		{"customerPhone", ValidatePhone(c.Phone)},
		{"pincode", ValidatePincode(c.Pincode)},
	}
	for _, check := range checks {
		if !check.res.Valid {
			return FieldResult{Field: check.field, Result: check.res}
		}
	}
	return FieldResult{Result: valid()}
}
