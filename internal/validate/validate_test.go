package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsername(t *testing.T) {
	tests := []struct {
		name  string
		value string
		valid bool
	}{
		{"plain", "Alice", true},
		{"underscore and hyphen", "Al_ic-e", true},
		{"minimum length", "ab1x", true},
		{"maximum length", "A" + strings.Repeat("b", 23), true},
		{"too short", "Ali", false},
		{"too long", "A" + strings.Repeat("b", 24), false},
		{"starts with digit", "1lice", false},
		{"starts with underscore", "_lice", false},
		{"space inside", "Al ice", false},
		{"empty", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.valid, Username(tc.value).Valid)
		})
	}
}

func TestEmail(t *testing.T) {
	tests := []struct {
		name  string
		value string
		valid bool
	}{
		{"simple", "a@b.com", true},
		{"dots and plus", "first.last+tag@mail.example.org", true},
		{"subdomain", "x@a.b.co", true},
		{"missing tld", "a@b", false},
		{"missing local", "@b.com", false},
		{"missing at", "ab.com", false},
		{"one letter tld", "a@b.c", false},
		{"empty", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.valid, Email(tc.value).Valid)
		})
	}
}

func TestPassword(t *testing.T) {
	tests := []struct {
		name  string
		value string
		valid bool
	}{
		{"all classes", "Password1!", true},
		{"dot as symbol", "Abcdefg1.", true},
		{"minimum length", "Aa1!aaaa", true},
		{"no symbol", "Password1", false},
		{"no digit", "Password!", false},
		{"no uppercase", "password1!", false},
		{"no lowercase", "PASSWORD1!", false},
		{"too short", "Aa1!aaa", false},
		{"too short in runes despite byte length", "Aa1!ééé", false},
		{"multibyte runes count toward minimum", "Aa1!éééé", true},
		{"too long", "Aa1!" + strings.Repeat("a", 21), false},
		{"too long in runes", "Aa1!" + strings.Repeat("é", 21), false},
		{"empty", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := Password(tc.value)
			assert.Equal(t, tc.valid, r.Valid)
			if !tc.valid {
				assert.NotEmpty(t, r.Reason)
			}
		})
	}
}

func TestPasswordConfirmation(t *testing.T) {
	assert.True(t, PasswordConfirmation("Password1!", "Password1!").Valid)
	assert.False(t, PasswordConfirmation("Password1!", "Password2!").Valid)
	assert.False(t, PasswordConfirmation("Password1!", "").Valid)

	// confirmation cannot be valid when the password itself is invalid,
	// even if the two inputs match
	assert.False(t, PasswordConfirmation("short", "short").Valid)
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "a@b.com", NormalizeEmail("  A@B.Com "))
}

func TestForm_Submittable(t *testing.T) {
	form := Form{
		Username:             "Al_ice",
		Email:                "a@b.com",
		Password:             "Password1!",
		PasswordConfirmation: "Password1!",
	}
	require.True(t, form.Submittable())

	results := form.Results()
	for field, r := range results {
		assert.True(t, r.Valid, "field %s", field)
	}

	form.PasswordConfirmation = "Password2!"
	assert.False(t, form.Submittable())

	results = form.Results()
	assert.True(t, results[FieldPassword].Valid)
	assert.False(t, results[FieldPasswordConfirmation].Valid)
}
