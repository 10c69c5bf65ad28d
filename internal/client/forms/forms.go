// Package forms validates user input before anything is sent to the API.
// A failed validation never produces a network call.
package forms

import (
	"fmt"
	"net/mail"
	"net/url"
	"sort"
	"strings"
	"unicode"

	"github.com/dmitrijs2005/borderease/internal/client/models"
)

// ValidationError collects per-field problems.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

// Has reports whether field has at least one problem.
func (e *ValidationError) Has(field string) bool {
	return len(e.Fields[field]) > 0
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(e.Fields[k], ", ")))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// orNil returns e when it holds problems and a nil error otherwise.
func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// Registration is the sign-up form.
type Registration struct {
	Name            string
	Email           string
	PhotoURL        string
	Password        string
	ConfirmPassword string
}

// PasswordProblems lists the unmet password rules.
func PasswordProblems(password string) []string {
	var out []string
	if len([]rune(password)) < 6 {
		out = append(out, "At least 6 characters")
	}
	if !strings.ContainsFunc(password, unicode.IsUpper) {
		out = append(out, "One uppercase letter")
	}
	if !strings.ContainsFunc(password, unicode.IsLower) {
		out = append(out, "One lowercase letter")
	}
	return out
}

func ValidateRegistration(r Registration) error {
	ve := &ValidationError{}

	if strings.TrimSpace(r.Name) == "" {
		ve.add("name", "Name is required")
	}
	if strings.TrimSpace(r.Email) == "" {
		ve.add("email", "Email is required")
	}
	if r.PhotoURL != "" && !isHTTPURL(r.PhotoURL) {
		ve.add("photoURL", "Photo URL must be an http(s) address")
	}
	for _, p := range PasswordProblems(r.Password) {
		ve.add("password", p)
	}
	if r.Password != r.ConfirmPassword {
		ve.add("confirmPassword", "Passwords do not match")
	}

	return ve.orNil()
}

// ValidateLogin checks the sign-in form.
func ValidateLogin(email, password string) error {
	ve := &ValidationError{}
	if _, err := mail.ParseAddress(strings.TrimSpace(email)); err != nil {
		ve.add("email", "Please enter a valid email address.")
	}
	if password == "" {
		ve.add("password", "Password is required")
	}
	return ve.orNil()
}

// ValidateVisa checks a visa before create or update. Documents are expected
// to be normalised already.
func ValidateVisa(v models.Visa) error {
	ve := &ValidationError{}

	required := map[string]string{
		"countryName":    v.CountryName,
		"processingTime": v.ProcessingTime,
		"validity":       v.Validity,
		"description":    v.Description,
	}
	for field, val := range required {
		if strings.TrimSpace(val) == "" {
			ve.add(field, "This field is required")
		}
	}

	if !isHTTPURL(v.CountryImage) {
		ve.add("countryImage", "Country image must be an http(s) URL")
	}
	if !models.IsVisaType(v.VisaType) {
		ve.add("visaType", "Please select a visa type")
	}
	if !models.IsApplicationMethod(v.ApplicationMethod) {
		ve.add("applicationMethod", "Please select an application method")
	}
	if v.Fee < 0 {
		ve.add("fee", "Fee cannot be negative")
	}
	if v.AgeRestriction < 0 {
		ve.add("ageRestriction", "Age restriction cannot be negative")
	}
	if len(models.NormalizeDocuments(v.RequiredDocuments)) < models.MinRequiredDocuments {
		ve.add("requiredDocuments", "Please select at least 3 required documents")
	}

	return ve.orNil()
}

// ValidateApplication checks the apply sub-form.
func ValidateApplication(firstName, lastName string) error {
	ve := &ValidationError{}
	if strings.TrimSpace(firstName) == "" {
		ve.add("firstName", "First name is required")
	}
	if strings.TrimSpace(lastName) == "" {
		ve.add("lastName", "Last name is required")
	}
	return ve.orNil()
}

// ValidateProfile checks a profile update.
func ValidateProfile(name, photoURL string) error {
	ve := &ValidationError{}
	if strings.TrimSpace(name) == "" {
		ve.add("name", "Name is required")
	}
	if photoURL != "" && !isHTTPURL(photoURL) {
		ve.add("photoURL", "Photo URL must be an http(s) address")
	}
	return ve.orNil()
}

func isHTTPURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
