// Package catalogtest builds the site catalog for tests in other packages.
package catalogtest

import (
	"testing"

	"github.com/iiSmitty/my-it-services/internal/quote/catalog"
)

// Definition returns the production catalog contents.
func Definition() catalog.Definition {
	return catalog.Definition{
		Business: catalog.Business{
			Name:    "IT Services & Padel Dreams",
			Phone:   "+27723386828",
			Email:   "info@andresmit.co.za",
			Website: "https://andresmit.co.za",
		},
		Currency:     "R",
		DiscountRate: 0.1,
		DiscountRule: "count > 1",
		Services: []catalog.ServiceEntry{
			{ID: "windows", Title: "Clean Windows Install", Price: catalog.Fixed(250), Category: "installation", EstimatedTime: "2-4 hours", Popularity: "high",
				Features: []string{"Complete system format", "Fresh Windows installation"}},
			{ID: "website", Title: "One-Page Website", Price: catalog.Fixed(800), Category: "development", EstimatedTime: "1-3 days", Popularity: "medium"},
			{ID: "software", Title: "Software Installation", Price: catalog.Fixed(100), Category: "maintenance", EstimatedTime: "1-2 hours", Popularity: "high"},
			{ID: "hardware", Title: "RAM or SSD Upgrade", Price: catalog.Fixed(150), Category: "hardware", EstimatedTime: "1-2 hours", Popularity: "medium"},
			{ID: "combo", Title: "Multiple Services", Price: catalog.CustomQuote("Custom Quote"), Category: "package", EstimatedTime: "Varies", Popularity: "medium"},
		},
		Addons: []catalog.AddonEntry{
			{ID: "cleanup", Title: "PC Cleanup & Tune-up", Price: 150},
			{ID: "drivers", Title: "Driver Updates & Activation", Price: 150},
			{ID: "callout", Title: "Call-out Fee", Price: 75, Note: "Applied when I travel to your location"},
		},
		Urgency: []catalog.UrgencyOption{
			{ID: "asap", Label: "ASAP (within 1-2 days)", Icon: "🚀"},
			{ID: "week", Label: "This week", Icon: "📅", Default: true},
			{ID: "flexible", Label: "I'm flexible", Icon: "🕒"},
		},
		Features: map[string]bool{"enable_live_chat": false},
	}
}

// New builds the production catalog or fails the test.
func New(t testing.TB) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New(Definition())
	if err != nil {
		t.Fatalf("catalog.New: %v", err)
	}
	return c
}
