package inputval

import (
	"strings"
	"testing"
)

func TestIsValidUsername(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"participant-1", true},
		{"admin", true},
		{"P001_study.b", true},
		{"", false},
		{"has space", false},
		{"tab\tname", false},
		{"slash/name", false},
		{"query?x", false},
		{"pct%20", false},
		{strings.Repeat("a", MaxUsernameLen), true},
		{strings.Repeat("a", MaxUsernameLen+1), false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := IsValidUsername(tt.in); got != tt.want {
				t.Errorf("IsValidUsername(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsValidDate(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"2024-01-15", true},
		{"2024-02-29", true},
		{"2023-02-29", false},
		{"2024-1-5", false},
		{"2024-01-15T08:00:00", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsValidDate(tt.in); got != tt.want {
			t.Errorf("IsValidDate(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestIsValidHTTPURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"http://localhost:5001", true},
		{"https://api.example.com/v1", true},
		{"", false},
		{"example.com", false},
		{"ftp://example.com", false},
		{"http://", false},
		{"javascript:alert(1)", false},
	}
	for _, tt := range tests {
		if got := IsValidHTTPURL(tt.url); got != tt.want {
			t.Errorf("IsValidHTTPURL(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestIsValidMetric(t *testing.T) {
	if !IsValidMetric("heartRate") {
		t.Error("heartRate should be a metric")
	}
	if IsValidMetric("cholesterol") {
		t.Error("cholesterol should not be a metric")
	}
}

func TestValidate_Login(t *testing.T) {
	tests := []struct {
		name    string
		input   LoginInput
		wantErr bool
	}{
		{"valid", LoginInput{Username: "participant-1", Password: "password123"}, false},
		{"missing username", LoginInput{Password: "password123"}, true},
		{"missing password", LoginInput{Username: "participant-1"}, true},
		{"bad username", LoginInput{Username: "a b", Password: "x"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(tt.input)
			if tt.wantErr && !result.HasErrors() {
				t.Errorf("Validate() expected errors, got none")
			}
			if !tt.wantErr && result.HasErrors() {
				t.Errorf("Validate() expected no errors, got: %s", result.First())
			}
		})
	}
}

func TestValidate_ResetPassword(t *testing.T) {
	result := Validate(ResetPasswordInput{Username: "p1", NewPassword: "short"})
	if !result.HasErrors() {
		t.Fatal("Validate() should reject a short password")
	}
	if got := result.First(); got != "New password must be at least 8 characters." {
		t.Errorf("First() = %q", got)
	}

	if result := Validate(ResetPasswordInput{Username: "p1", NewPassword: "long-enough"}); result.HasErrors() {
		t.Errorf("Validate() unexpected error: %s", result.First())
	}
}

func TestValidate_Preferences(t *testing.T) {
	if result := Validate(PreferencesInput{ChartType: "bar"}); result.HasErrors() {
		t.Errorf("bar should be accepted: %s", result.First())
	}
	if result := Validate(PreferencesInput{ChartType: "pie"}); !result.HasErrors() {
		t.Error("pie should be rejected")
	}
}

func TestValidate_CustomRules(t *testing.T) {
	type probe struct {
		Metric string `json:"metric" validate:"required,metric" label:"Metric"`
		Date   string `json:"date" validate:"required,ymd" label:"Date"`
	}
	if result := Validate(probe{Metric: "spo2", Date: "2024-03-01"}); result.HasErrors() {
		t.Errorf("Validate() unexpected error: %s", result.First())
	}
	result := Validate(probe{Metric: "spo2", Date: "March 1"})
	if !result.HasErrors() {
		t.Fatal("Validate() should reject a non-ISO date")
	}
	if got := result.First(); got != "Date must be a date in YYYY-MM-DD form." {
		t.Errorf("First() = %q", got)
	}
}

func TestResult(t *testing.T) {
	r := &Result{}
	if r.HasErrors() || r.First() != "" {
		t.Error("empty Result should report no errors")
	}
	r.Errors = []FieldError{
		{Field: "username", Message: "first"},
		{Field: "username", Message: "second"},
		{Field: "password", Message: "third"},
	}
	if r.First() != "first" {
		t.Errorf("First() = %q", r.First())
	}
	f := r.Fields()
	if f["username"] != "first" || f["password"] != "third" {
		t.Errorf("Fields() = %v", f)
	}
}
