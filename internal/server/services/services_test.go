package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/dmitrijs2005/borderease/internal/server/auth"
	"github.com/dmitrijs2005/borderease/internal/server/models"
	"github.com/dmitrijs2005/borderease/internal/server/repositories/repomanager"
)

var (
	alice = &auth.Principal{UID: "u-alice", Email: "alice@example.com", Name: "Alice"}
	bob   = &auth.Principal{UID: "u-bob", Email: "bob@example.com", Name: "Bob"}
)

func fixedClock() time.Time {
	return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
}

func seqIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s%d", prefix, n)
	}
}

func testOpts(prefix string) []Option {
	return []Option{WithClock(fixedClock), WithIDs(seqIDs(prefix))}
}

func memory() repomanager.RepositoryManager {
	return repomanager.NewMemoryRepositoryManager()
}

func validVisa() models.Visa {
	return models.Visa{
		CountryName:       "Japan",
		CountryImage:      "https://flagcdn.com/w320/jp.png",
		VisaType:          "Tourist Visa",
		ProcessingTime:    "5 Days",
		Fee:               25,
		Validity:          "90 Days",
		ApplicationMethod: "Embassy",
		RequiredDocuments: []string{"Valid passport", "Recent photograph", "Bank statement"},
		Description:       "Short stay tourism.",
	}
}

func seedVisa(t *testing.T, s *VisaService, p *auth.Principal) *models.Visa {
	t.Helper()
	v, err := s.Create(context.Background(), p, validVisa())
	if err != nil {
		t.Fatalf("seed visa: %v", err)
	}
	return v
}
