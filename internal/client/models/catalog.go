package models

import "slices"

// AllTypes is the listing filter value that disables type filtering.
const AllTypes = "All"

// MinRequiredDocuments is the lower bound on distinct documents per visa.
const MinRequiredDocuments = 3

var VisaTypes = []string{
	"Tourist Visa",
	"Student Visa",
	"Work Visa",
	"Business Visa",
	"Transit Visa",
	"Official Visa",
}

var ApplicationMethods = []string{
	"Online",
	"Embassy",
	"Visa Center",
	"On Arrival",
}

var DocumentOptions = []string{
	"Valid passport",
	"Visa application form",
	"Recent passport-sized photograph",
	"Proof of accommodation",
	"Travel insurance",
	"Bank statements",
	"Flight itinerary",
	"Employment letter",
	"Invitation letter",
	"Educational documents",
}

func IsVisaType(s string) bool { return slices.Contains(VisaTypes, s) }

func IsApplicationMethod(s string) bool { return slices.Contains(ApplicationMethods, s) }
