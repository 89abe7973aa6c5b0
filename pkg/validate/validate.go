// Package validate provides explicit, typed field checks for request structs.
//
// Each request type owns a Validate method that runs the rules it needs and
// returns the collected field errors:
//
//	func (in RegisterInput) Validate() validate.Errors {
//	    v := validate.New()
//	    v.Required("email", in.Email)
//	    v.Email("email", in.Email)
//	    v.MaxBytes("password", in.Password, 72)
//	    return v.Errors()
//	}
//
// Only the first failing rule per field is kept, so messages stay short.
package validate

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/resor-app/resor/pkg/apperr"
)

var emailRE = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Errors maps a field name (as it appears in JSON) to its error message.
type Errors map[string]string

// HasErrors returns true when errs is non-empty.
func HasErrors(errs Errors) bool { return len(errs) > 0 }

// Err converts errs into an apperr validation error, or nil when empty.
func (errs Errors) Err() error {
	if len(errs) == 0 {
		return nil
	}
	return apperr.Validation("Bad request", errs)
}

// Validator accumulates field errors.
type Validator struct {
	errs Errors
}

func New() *Validator {
	return &Validator{errs: Errors{}}
}

// Errors returns the collected errors (never nil).
func (v *Validator) Errors() Errors { return v.errs }

// Fail records msg for field unless field already has an error.
func (v *Validator) Fail(field, msg string) {
	if _, ok := v.errs[field]; ok {
		return
	}
	v.errs[field] = msg
}

// Check records msg for field when ok is false.
func (v *Validator) Check(ok bool, field, msg string) {
	if !ok {
		v.Fail(field, msg)
	}
}

// Merge copies errs into v, prefixing each field with prefix.
func (v *Validator) Merge(prefix string, errs Errors) {
	for field, msg := range errs {
		v.Fail(prefix+field, msg)
	}
}

// ─── Presence ─────────────────────────────────────────────────────────────────

func (v *Validator) Required(field, value string) {
	v.Check(strings.TrimSpace(value) != "", field, fmt.Sprintf("The %s field is required.", field))
}

// ─── Format ───────────────────────────────────────────────────────────────────

func (v *Validator) Email(field, value string) {
	if value == "" {
		return
	}
	v.Check(emailRE.MatchString(value), field, fmt.Sprintf("The %s must be a valid email address.", field))
}

func (v *Validator) URL(field, value string) {
	if value == "" {
		return
	}
	u, err := url.ParseRequestURI(value)
	v.Check(err == nil && (u.Scheme == "http" || u.Scheme == "https"), field, fmt.Sprintf("The %s must be a valid URL.", field))
}

// ObjectID checks value is a 24-hex MongoDB object id.
func (v *Validator) ObjectID(field, value string) {
	if value == "" {
		return
	}
	v.Check(primitive.IsValidObjectID(value), field, fmt.Sprintf("The %s must be a valid id.", field))
}

// AlphaNum checks value holds only ASCII letters and digits.
func (v *Validator) AlphaNum(field, value string) {
	for _, c := range value {
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9') {
			v.Fail(field, fmt.Sprintf("The %s field must contain only letters and numbers.", field))
			return
		}
	}
}

// ─── Size / range ─────────────────────────────────────────────────────────────

func (v *Validator) MaxLen(field, value string, n int) {
	v.Check(len([]rune(value)) <= n, field, fmt.Sprintf("The %s must not be greater than %d characters.", field, n))
}

// MaxBytes limits the encoded size of value rather than its character count.
func (v *Validator) MaxBytes(field, value string, n int) {
	v.Check(len(value) <= n, field, fmt.Sprintf("The %s must not be greater than %d bytes.", field, n))
}

func (v *Validator) Len(field, value string, n int) {
	v.Check(len([]rune(value)) == n, field, fmt.Sprintf("The %s must be %d characters.", field, n))
}

// Positive checks n > 0.
func (v *Validator) Positive(field string, n float64) {
	v.Check(n > 0, field, fmt.Sprintf("The %s must be a positive number.", field))
}

// Between checks min <= n <= max.
func (v *Validator) Between(field string, n, min, max float64) {
	v.Check(n >= min && n <= max, field, fmt.Sprintf("The %s must be between %g and %g.", field, min, max))
}

// Decimals checks n has at most places digits after the decimal point.
func (v *Validator) Decimals(field string, n float64, places int) {
	s := strconv.FormatFloat(n, 'f', -1, 64)
	frac := 0
	if i := strings.IndexByte(s, '.'); i >= 0 {
		frac = len(s) - i - 1
	}
	v.Check(frac <= places, field, fmt.Sprintf("The %s must have at most %d decimal places.", field, places))
}

// In checks value is one of allowed.
func (v *Validator) In(field, value string, allowed ...string) {
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	v.Fail(field, fmt.Sprintf("The selected %s is invalid.", field))
}

// NotEmpty checks a collection has at least one element.
func (v *Validator) NotEmpty(field string, n int) {
	v.Check(n > 0, field, fmt.Sprintf("The %s field must have at least 1 item.", field))
}
