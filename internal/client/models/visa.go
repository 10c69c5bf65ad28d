// Package models defines the records exchanged with the visa API and the
// fixed catalogues the client validates against.
package models

import (
	"slices"
	"strings"
)

// Visa is a visa offering as served by GET /visas.
type Visa struct {
	ID                string   `json:"_id,omitempty"`
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
	AddedBy           string   `json:"addedBy,omitempty"`
	AddedByName       string   `json:"addedByName,omitempty"`
	CreatedAt         string   `json:"createdAt,omitempty"`
}

// Clone returns a deep copy suitable for use as an edit draft.
func (v Visa) Clone() Visa {
	v.RequiredDocuments = slices.Clone(v.RequiredDocuments)
	return v
}

// NormalizeDocuments trims entries, drops blanks and collapses duplicates
// while keeping first-seen order.
func NormalizeDocuments(docs []string) []string {
	out := make([]string, 0, len(docs))
	seen := make(map[string]struct{}, len(docs))
	for _, d := range docs {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	return out
}

// FilterByType returns visas of the given type; AllTypes returns everything.
func FilterByType(visas []Visa, visaType string) []Visa {
	if visaType == "" || visaType == AllTypes {
		return visas
	}
	out := make([]Visa, 0, len(visas))
	for _, v := range visas {
		if v.VisaType == visaType {
			out = append(out, v)
		}
	}
	return out
}
