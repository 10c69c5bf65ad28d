package models

// SampleVisas is the built-in development dataset served when the fallback
// policy is "sample" and the API cannot be reached.
func SampleVisas() []Visa {
	base := []string{"Valid passport", "Visa application form", "Recent passport-sized photograph"}
	mk := func(id, country, code, typ, proc string, fee float64, validity, method string) Visa {
		return Visa{
			ID:                id,
			CountryName:       country,
			CountryImage:      "https://flagcdn.com/w320/" + code + ".png",
			VisaType:          typ,
			ProcessingTime:    proc,
			Fee:               fee,
			Validity:          validity,
			ApplicationMethod: method,
			RequiredDocuments: append([]string(nil), base...),
		}
	}
	return []Visa{
		mk("1", "United States", "us", "Tourist Visa", "5-7 Business Days", 160, "10 Years", "Online"),
		mk("2", "Canada", "ca", "Student Visa", "3-4 Weeks", 150, "Duration of Study", "Online"),
		mk("3", "United Kingdom", "gb", "Work Visa", "3 Weeks", 363, "5 Years", "Online"),
		mk("4", "Australia", "au", "Tourist Visa", "20 Days", 145, "1 Year", "Online"),
		mk("5", "Japan", "jp", "Tourist Visa", "5 Days", 25, "90 Days", "Embassy"),
		mk("6", "Germany", "de", "Student Visa", "6-8 Weeks", 75, "Duration of Study", "Embassy"),
	}
}
