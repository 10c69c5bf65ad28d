// Package models defines the records stored by the visa API and exchanged
// with clients as JSON.
package models

// Visa is a visa offering. ID is assigned by the server.
type Visa struct {
	ID                string   `json:"_id"`
	CountryName       string   `json:"countryName"`
	CountryImage      string   `json:"countryImage"`
	VisaType          string   `json:"visaType"`
	ProcessingTime    string   `json:"processingTime"`
	Fee               float64  `json:"fee"`
	Validity          string   `json:"validity"`
	ApplicationMethod string   `json:"applicationMethod"`
	AgeRestriction    int      `json:"ageRestriction"`
	RequiredDocuments []string `json:"requiredDocuments"`
	Description       string   `json:"description"`
	AddedBy           string   `json:"addedBy"`
	AddedByName       string   `json:"addedByName"`
	CreatedAt         string   `json:"createdAt"`
}
