// Package validate implements pure credential-shape validation shared by the
// client (pre-submission form state) and the server (defense in depth).
// It never touches storage: a failed check must be resolvable entirely on the
// caller's side.
package validate

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	validation "github.com/go-ozzo/ozzo-validation"
)

// Field identifies a credential form field.
type Field string

const (
	FieldUsername             Field = "username"
	FieldEmail                Field = "email"
	FieldPassword             Field = "password"
	FieldPasswordConfirmation Field = "passwordConfirmation"
)

// Result is the outcome of validating one field.
type Result struct {
	Valid  bool
	Reason string
}

const (
	usernameHint = "4 to 24 characters. Must begin with a letter. Letters, numbers, underscores, hyphens allowed."
	emailHint    = "Must be a valid email address."
	passwordHint = "8 to 24 characters. Must include uppercase and lowercase letters, a number, and a special character. Allowed: !@#$%^&*."
	matchHint    = "Must match the first password input field."
)

var (
	usernameRegexp = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]{3,23}$`)
	emailRegexp    = regexp.MustCompile(`^[a-zA-Z0-9_.+-]+@([a-zA-Z0-9-]+\.)+[a-zA-Z]{2,}$`)

	passwordLower  = regexp.MustCompile(`[a-z]`)
	passwordUpper  = regexp.MustCompile(`[A-Z]`)
	passwordDigit  = regexp.MustCompile(`[0-9]`)
	passwordSymbol = regexp.MustCompile(`[!@#$%^&*.]`)
)

// checkPassword enforces the password policy. Go regexps have no lookahead,
// so each character class is matched separately.
func checkPassword(value any) error {
	s, _ := value.(string)
	// length is in characters, not bytes
	if n := utf8.RuneCountInString(s); n < 8 || n > 24 {
		return errors.New(passwordHint)
	}
	for _, re := range []*regexp.Regexp{passwordLower, passwordUpper, passwordDigit, passwordSymbol} {
		if !re.MatchString(s) {
			return errors.New(passwordHint)
		}
	}
	return nil
}

// Username reports whether v is an acceptable username.
func Username(v string) Result {
	err := validation.Validate(v,
		validation.Required.Error(usernameHint),
		validation.Match(usernameRegexp).Error(usernameHint),
	)
	return toResult(err)
}

// Email reports whether v has the local@domain.tld shape. The caller is
// expected to normalize the address to lowercase before persisting it.
func Email(v string) Result {
	err := validation.Validate(v,
		validation.Required.Error(emailHint),
		validation.Match(emailRegexp).Error(emailHint),
	)
	return toResult(err)
}

// Password reports whether v satisfies the password policy.
func Password(v string) Result {
	return toResult(validation.Validate(v, validation.By(checkPassword)))
}

// PasswordConfirmation is valid only when confirm equals pwd AND pwd itself
// is valid. A confirmation of a broken password is never "valid".
func PasswordConfirmation(pwd, confirm string) Result {
	if !Password(pwd).Valid {
		return Result{Valid: false, Reason: matchHint}
	}
	if confirm != pwd {
		return Result{Valid: false, Reason: matchHint}
	}
	return Result{Valid: true}
}

// NormalizeEmail lowercases an email address for storage and lookups.
func NormalizeEmail(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

// Form holds one signup submission's raw field values.
type Form struct {
	Username             string
	Email                string
	Password             string
	PasswordConfirmation string
}

// Results recomputes per-field validity. Callers that track reactive form
// state invoke this on every input change.
func (f Form) Results() map[Field]Result {
	return map[Field]Result{
		FieldUsername:             Username(f.Username),
		FieldEmail:                Email(f.Email),
		FieldPassword:             Password(f.Password),
		FieldPasswordConfirmation: PasswordConfirmation(f.Password, f.PasswordConfirmation),
	}
}

// Submittable reports whether every field is simultaneously valid.
func (f Form) Submittable() bool {
	for _, r := range f.Results() {
		if !r.Valid {
			return false
		}
	}
	return true
}

func toResult(err error) Result {
	if err != nil {
		return Result{Valid: false, Reason: err.Error()}
	}
	return Result{Valid: true}
}
