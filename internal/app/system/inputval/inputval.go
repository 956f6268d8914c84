// Package inputval provides form input validation using waffle/pantry/validate.
//
// Define an input struct with validate tags, populate it from form values,
// and call Validate to get user-friendly error messages.
//
// Example:
//
//	input := inputval.LoginInput{
//	    Username: r.FormValue("username"),
//	    Password: r.FormValue("password"),
//	}
//	if res := inputval.Validate(input); res.HasErrors() {
//	    renderWithError(w, r, res.First())
//	    return
//	}
package inputval

import (
	"net/url"
	"reflect"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/dalemusser/healthdash/internal/domain/healthdata"
	"github.com/dalemusser/waffle/pantry/validate"
)

// Limits applied to account fields.
const (
	MaxUsernameLen    = 64
	MinPasswordLen    = 8
	MaxPasswordLen    = 128
	dateParamLayout   = "2006-01-02"
	usernameForbidden = "/?#%\\"
)

// LoginInput is the sign-in form.
type LoginInput struct {
	Username string `json:"username" validate:"required,username" label:"Username"`
	Password string `json:"password" validate:"required,max=128" label:"Password"`
}

// ResetPasswordInput is the admin password-reset form.
type ResetPasswordInput struct {
	Username    string `json:"username" validate:"required,username" label:"Username"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=128" label:"New password"`
}

// PreferencesInput is the dashboard preferences form.
type PreferencesInput struct {
	ChartType string `json:"chart_type" validate:"required,oneof=line bar" label:"Chart type"`
}

// Result holds validation results with user-friendly messages.
type Result struct {
	Errors []FieldError
}

// FieldError represents a validation error for a single field.
type FieldError struct {
	Field   string
	Label   string
	Message string
}

// HasErrors returns true if there are any validation errors.
func (r *Result) HasErrors() bool {
	return len(r.Errors) > 0
}

// First returns the first error message, or empty string if no errors.
func (r *Result) First() string {
	if len(r.Errors) > 0 {
		return r.Errors[0].Message
	}
	return ""
}

// Fields maps field names to their first message.
func (r *Result) Fields() map[string]string {
	out := make(map[string]string, len(r.Errors))
	for _, e := range r.Errors {
		if _, ok := out[e.Field]; !ok {
			out[e.Field] = e.Message
		}
	}
	return out
}

var (
	customValidator *validate.Validator
	validatorOnce   sync.Once
)

func stringRule(fn func(string) bool) func(any) bool {
	return func(value any) bool {
		s, ok := value.(string)
		return ok && fn(s)
	}
}

func getValidator() *validate.Validator {
	validatorOnce.Do(func() {
		customValidator = validate.New(validate.WithStopOnFirstError())
		customValidator.RegisterRuleFunc("username", stringRule(IsValidUsername), "username")
		customValidator.RegisterRuleFunc("metric", stringRule(IsValidMetric), "metric")
		customValidator.RegisterRuleFunc("ymd", stringRule(IsValidDate), "ymd")
		customValidator.RegisterRuleFunc("httpurl", stringRule(IsValidHTTPURL), "httpurl")
	})
	return customValidator
}

// Validate validates a struct and returns a Result with user-friendly errors.
//
// Besides the pantry/validate rules (required, oneof, min, max, ...) these
// rules are available:
//   - username: 1..64 printable characters, no whitespace or URL delimiters
//   - metric: a dashboard parameter key such as "systolic"
//   - ymd: a YYYY-MM-DD calendar date
//   - httpurl: an absolute http:// or https:// URL
func Validate(s any) *Result {
	result := &Result{}

	err := getValidator().Struct(s)
	if err == nil {
		return result
	}

	labels := getFieldLabels(s)
	if errs, ok := err.(validate.Errors); ok {
		for _, e := range errs {
			label := labels[e.Field]
			if label == "" {
				label = e.Field
			}
			result.Errors = append(result.Errors, FieldError{
				Field:   e.Field,
				Label:   label,
				Message: formatMessage(label, e.Rule, e.Param),
			})
		}
	}
	return result
}

// getFieldLabels maps each field's json name to its label tag.
func getFieldLabels(s any) map[string]string {
	labels := make(map[string]string)

	val := reflect.ValueOf(s)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return labels
	}

	typ := val.Type()
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		name := field.Name
		if tag, _, _ := strings.Cut(field.Tag.Get("json"), ","); tag != "" && tag != "-" {
			name = tag
		}
		if label := field.Tag.Get("label"); label != "" {
			labels[name] = label
		}
	}
	return labels
}

func formatMessage(label, rule, param string) string {
	switch rule {
	case "required":
		return label + " is required."
	case "oneof", "enum":
		return label + " must be one of: " + strings.ReplaceAll(param, " ", ", ") + "."
	case "min":
		return label + " must be at least " + param + " characters."
	case "max":
		return label + " must be at most " + param + " characters."
	case "username":
		return label + " may not contain spaces or the characters " + usernameForbidden + "."
	case "metric":
		return label + " is not a known metric."
	case "ymd":
		return label + " must be a date in YYYY-MM-DD form."
	case "httpurl":
		return label + " must be a valid URL starting with http:// or https://."
	default:
		return label + " is invalid."
	}
}

// IsValidUsername reports whether s can be sent to the health API as a
// username and embedded in an admin URL path.
func IsValidUsername(s string) bool {
	if s == "" || len(s) > MaxUsernameLen {
		return false
	}
	for _, r := range s {
		if unicode.IsSpace(r) || !unicode.IsPrint(r) || strings.ContainsRune(usernameForbidden, r) {
			return false
		}
	}
	return true
}

// IsValidMetric reports whether s is a dashboard parameter key.
func IsValidMetric(s string) bool {
	_, ok := healthdata.LookupParameter(s)
	return ok
}

// IsValidDate reports whether s is a YYYY-MM-DD calendar date.
func IsValidDate(s string) bool {
	if len(s) != len(dateParamLayout) {
		return false
	}
	_, err := time.Parse(dateParamLayout, s)
	return err == nil
}

// IsValidHTTPURL reports whether s is an absolute http:// or https:// URL with a host.
func IsValidHTTPURL(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
