package models

import (
	"strings"
	"time"
)

// Application is a submitted visa application. Visa fields are copied at
// submission time and never re-synced with the visa record.
type Application struct {
	ID                 string  `json:"_id,omitempty"`
	VisaID             string  `json:"visaId"`
	CountryName        string  `json:"countryName"`
	CountryImage       string  `json:"countryImage"`
	VisaType           string  `json:"visaType"`
	ProcessingTime     string  `json:"processingTime"`
	Fee                float64 `json:"fee"`
	Validity           string  `json:"validity"`
	ApplicationMethod  string  `json:"applicationMethod"`
	ApplicantEmail     string  `json:"applicantEmail"`
	ApplicantFirstName string  `json:"applicantFirstName"`
	ApplicantLastName  string  `json:"applicantLastName"`
	AppliedDate        string  `json:"appliedDate"`
}

// NewApplication snapshots v for the given applicant.
func NewApplication(v Visa, email, firstName, lastName string, at time.Time) Application {
	return Application{
		VisaID:             v.ID,
		CountryName:        v.CountryName,
		CountryImage:       v.CountryImage,
		VisaType:           v.VisaType,
		ProcessingTime:     v.ProcessingTime,
		Fee:                v.Fee,
		Validity:           v.Validity,
		ApplicationMethod:  v.ApplicationMethod,
		ApplicantEmail:     email,
		ApplicantFirstName: strings.TrimSpace(firstName),
		ApplicantLastName:  strings.TrimSpace(lastName),
		AppliedDate:        at.UTC().Format(time.RFC3339),
	}
}

// SearchByCountry keeps applications whose country name contains term,
// case-insensitively. An empty term keeps everything.
func SearchByCountry(apps []Application, term string) []Application {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return apps
	}
	out := make([]Application, 0, len(apps))
	for _, a := range apps {
		if strings.Contains(strings.ToLower(a.CountryName), term) {
			out = append(out, a)
		}
	}
	return out
}
