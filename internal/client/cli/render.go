package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dmitrijs2005/borderease/internal/client/models"
	"github.com/dmitrijs2005/borderease/internal/client/pages"
)

func formatFee(fee float64) string {
	if fee == float64(int64(fee)) {
		return fmt.Sprintf("$%d", int64(fee))
	}
	return fmt.Sprintf("$%.2f", fee)
}

func renderVisaCard(w io.Writer, v models.Visa) {
	fmt.Fprintf(w, "  [%s] %s - %s\n", v.ID, v.CountryName, v.VisaType)
	fmt.Fprintf(w, "      processing %s | fee %s | validity %s | %s\n",
		v.ProcessingTime, formatFee(v.Fee), v.Validity, v.ApplicationMethod)
}

func renderVisaDetails(w io.Writer, v models.Visa) {
	fmt.Fprintf(w, "%s - %s\n", v.CountryName, v.VisaType)
	fmt.Fprintf(w, "  Processing time:    %s\n", v.ProcessingTime)
	fmt.Fprintf(w, "  Fee:                %s\n", formatFee(v.Fee))
	fmt.Fprintf(w, "  Validity:           %s\n", v.Validity)
	fmt.Fprintf(w, "  Application method: %s\n", v.ApplicationMethod)
	if v.AgeRestriction > 0 {
		fmt.Fprintf(w, "  Minimum age:        %d\n", v.AgeRestriction)
	}
	if len(v.RequiredDocuments) > 0 {
		fmt.Fprintln(w, "  Required documents:")
		for _, d := range v.RequiredDocuments {
			fmt.Fprintf(w, "    - %s\n", d)
		}
	}
	if v.Description != "" {
		fmt.Fprintf(w, "  %s\n", v.Description)
	}
	if v.AddedByName != "" || v.AddedBy != "" {
		by := v.AddedByName
		if by == "" {
			by = v.AddedBy
		}
		fmt.Fprintf(w, "  Added by %s\n", by)
	}
}

func renderApplication(w io.Writer, a models.Application) {
	fmt.Fprintf(w, "  [%s] %s - %s\n", a.ID, a.CountryName, a.VisaType)
	fmt.Fprintf(w, "      applicant %s %s <%s> | applied %s\n",
		a.ApplicantFirstName, a.ApplicantLastName, a.ApplicantEmail, appliedOn(a.AppliedDate))
	fmt.Fprintf(w, "      processing %s | fee %s | validity %s | %s\n",
		a.ProcessingTime, formatFee(a.Fee), a.Validity, a.ApplicationMethod)
}

func appliedOn(s string) string {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return s
	}
	return t.Format("Jan 2, 2006")
}

// sourceNote explains data that did not come straight from the API.
func sourceNote(src pages.Source, cachedAt time.Time) string {
	switch src {
	case pages.SourceCache:
		return fmt.Sprintf("(offline: showing saved data from %s)", cachedAt.Local().Format("Jan 2 15:04"))
	case pages.SourceSample:
		return "(offline: showing sample data)"
	}
	return ""
}

func heading(w io.Writer, title string) {
	fmt.Fprintf(w, "\n%s\n%s\n", title, strings.Repeat("=", len(title)))
}
