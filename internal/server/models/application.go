package models

// Application is a submitted visa application. The visa fields are a
// snapshot taken by the client at submission time.
type Application struct {
	ID                 string  `json:"_id"`
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
