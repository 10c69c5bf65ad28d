package pages

import (
	"context"

	"github.com/dmitrijs2005/borderease/internal/client/models"
)

// Blurb is a static marketing paragraph on the home page.
type Blurb struct {
	Title       string
	Description string
}

var WhyChooseUs = []Blurb{
	{"Secure & Reliable", "Your personal data is protected with bank-level encryption and secure processing standards."},
	{"Fast Processing", "Get your visa processed quickly with our streamlined application system."},
	{"24/7 Support", "Our expert team is always available to assist you with any questions."},
	{"Real-time Tracking", "Track your application status instantly from anywhere."},
	{"Easy Documentation", "Clear guidelines and checklists make document preparation simple."},
	{"190+ Countries", "Access visa information and applications for countries worldwide, all in one place."},
}

var HowItWorks = []Blurb{
	{"Search & Explore", "Browse through our comprehensive database of visa requirements for 190+ countries. Filter by visa type, processing time, and more."},
	{"Prepare Documents", "Follow our detailed checklists to gather all required documents. Upload them securely through our platform."},
	{"Submit Application", "Complete the online application form and submit your documents. Pay the visa fee securely through our platform."},
	{"Track & Receive", "Monitor your application status in real-time. Receive updates and get your visa approval notification."},
}

// Home shows the latest visas.
type Home struct {
	latest *Loader[[]models.Visa]
}

func NewHome(d Deps) *Home {
	fetch := func(ctx context.Context) ([]models.Visa, error) {
		return d.API.ListVisas(ctx, LatestLimit)
	}
	return &Home{latest: newLoader(d, keyLatest(), d.LatestTimeout, sampleVisas(LatestLimit), fetch)}
}

func (h *Home) Load(ctx context.Context) (State[[]models.Visa], error) {
	return h.latest.Load(ctx)
}

func (h *Home) State() State[[]models.Visa] { return h.latest.State() }

func (h *Home) Close() { h.latest.Close() }

func sampleVisas(limit int) func() ([]models.Visa, bool) {
	return func() ([]models.Visa, bool) {
		s := models.SampleVisas()
		if limit > 0 && len(s) > limit {
			s = s[:limit]
		}
		return s, len(s) > 0
	}
}
