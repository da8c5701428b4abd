package message

import (
	"math"
	"strconv"
	"strings"

	"github.com/iiSmitty/my-it-services/internal/quote/catalog"
	"github.com/iiSmitty/my-it-services/internal/quote/pricing"
)

// Request is a quote request as submitted by the site form.
type Request struct {
	Name     string   `json:"name"`
	Services []string `json:"services"`
	Urgency  string   `json:"urgency"`
	Details  string   `json:"details"`
}

// Quote is everything the client needs to open the chat.
type Quote struct {
	Text    string         `json:"message"`
	URL     string         `json:"whatsapp_url"`
	Pricing pricing.Result `json:"pricing"`
}

// Composer turns requests into quotes using the catalog and resolver.
type Composer struct {
	cat      *catalog.Catalog
	resolver *pricing.Resolver
}

func NewComposer(cat *catalog.Catalog, resolver *pricing.Resolver) *Composer {
	return &Composer{cat: cat, resolver: resolver}
}

// Build prices the request, composes the message and wraps it in a link.
func (c *Composer) Build(req Request) (Quote, error) {
	res, err := c.resolver.Resolve(req.Services)
	if err != nil {
		return Quote{}, err
	}
	text := Compose(c.Draft(req, res))
	return Quote{
		Text:    text,
		URL:     WhatsAppURL(c.cat.Business().Phone, text),
		Pricing: res,
	}, nil
}

// Price resolves ids without composing a message.
func (c *Composer) Price(ids []string) (pricing.Result, error) {
	return c.resolver.Resolve(ids)
}

// Draft resolves display strings for req.
func (c *Composer) Draft(req Request, res pricing.Result) Draft {
	d := Draft{
		Name:     strings.TrimSpace(req.Name),
		Timeline: c.UrgencyLabel(req.Urgency),
		Details:  req.Details,
	}
	for _, id := range req.Services {
		d.Services = append(d.Services, c.ServiceDisplayName(id))
	}
	if len(req.Services) > 1 {
		d.Estimate = c.estimate(res)
	}
	return d
}

// ServiceDisplayName is "<title> (<price>)", or the raw id when unknown.
func (c *Composer) ServiceDisplayName(id string) string {
	s, ok := c.cat.Service(id)
	if !ok {
		return id
	}
	return s.Title + " (" + c.cat.FormatPrice(s.Price) + ")"
}

// UrgencyLabel resolves id to its label. Empty falls back to the default
// option, unknown ids are echoed.
func (c *Composer) UrgencyLabel(id string) string {
	if strings.TrimSpace(id) == "" {
		def, ok := c.cat.DefaultUrgency()
		if !ok {
			return ""
		}
		id = def
	}
	u, ok := c.cat.Urgency(id)
	if !ok {
		return id
	}
	return u.Label
}

func (c *Composer) estimate(res pricing.Result) string {
	out := c.cat.FormatAmount(res.Total)
	if res.RequiresCustomQuote {
		out += " + custom quote"
	}
	if res.DiscountApplied {
		pct := strconv.FormatFloat(math.Round(res.DiscountRate*1000)/10, 'f', -1, 64)
		out += " (" + pct + "% multi-service discount)"
	}
	return out
}
