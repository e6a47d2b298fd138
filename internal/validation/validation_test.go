package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePhone(t *testing.T) {
	tests := []struct {
		name  string
		phone string
		valid bool
	}{
		{"starts with 9", "9012345678", true},
		{"starts with 6", "6123456789", true},
		{"country code", "+91 90123 45678", true},
		{"bare country code", "919012345678", true},
		{"hyphenated", "901-234-5678", true},
		{"bad leading digit", "5012345678", false},
		{"eleven digits", "90123456789", false},
		{"nine digits", "901234567", false},
		{"letters and symbols", "90123ed67&", false},
		{"empty", "", false},
		{"whitespace only", "   ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidatePhone(tt.phone)
			assert.Equal(t, tt.valid, res.Valid)
			if !tt.valid {
				assert.NotEmpty(t, res.Reason)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name  string
		email string
		valid bool
	}{
		{"plain", "abc@yahoo.com", true},
		{"uppercase", "ABC@YAHOO.COM", true},
		{"padded", "  abc@yahoo.com ", true},
		{"empty", "", false},
		{"missing at", "xyz.com", false},
		{"no domain name", "user@.com", false},
		{"no tld", "user@domain", false},
		{"disposable", "user@tempmail.com", false},
		{"disposable uppercase", "User@MAILINATOR.COM", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, ValidateEmail(tt.email).Valid)
		})
	}

	assert.Equal(t, "Disposable email addresses are not allowed", ValidateEmail("user@tempmail.com").Reason)
}

func TestValidatePincode(t *testing.T) {
	tests := []struct {
		pincode string
		valid   bool
	}{
		{"560001", true},
		{" 110001 ", true},
		{"899999", true},
		{"000001", false},
		{"960001", false},
		{"56001", false},
		{"5600011", false},
		{"56a001", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.pincode, func(t *testing.T) {
			assert.Equal(t, tt.valid, ValidatePincode(tt.pincode).Valid)
		})
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{"simple", "Asha Rao", true},
		{"hyphen and apostrophe", "Mary-Jane O'Neil", true},
		{"unicode letters", "Zoë Šimić", true},
		{"too short", "s", false},
		{"too long", strings.Repeat("a", 51), false},
		{"digits", "Agent 47", false},
		{"symbols", "Bob!", false},
		{"whitespace only", "   ", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, ValidateName(tt.input).Valid)
		})
	}
}

func TestValidateContact(t *testing.T) {
	ok := ValidateContact(Contact{Name: "Asha Rao", Email: "asha@example.com", Phone: "9012345678", Pincode: "560001"})
	assert.True(t, ok.Valid)
	assert.Empty(t, ok.Field)

	bad := ValidateContact(Contact{Name: "Asha Rao", Email: "asha@example.com", Phone: "5012345678", Pincode: "000001"})
	assert.False(t, bad.Valid)
	assert.Equal(t, "customerPhone", bad.Field)
}
