package http

import (
	"strings"

	"github.com/iiSmitty/my-it-services/internal/quote/catalog"
	"github.com/iiSmitty/my-it-services/internal/quote/form"
	"github.com/iiSmitty/my-it-services/internal/quote/message"
	"github.com/iiSmitty/my-it-services/internal/quote/pricing"
)

// quoteInput accepts either a single "service" (the site's radio group) or a
// "services" list.
type quoteInput struct {
	Name     string   `json:"name"`
	Service  string   `json:"service"`
	Services []string `json:"services"`
	Urgency  string   `json:"urgency"`
	Details  string   `json:"details"`
}

func (in quoteInput) request() message.Request {
	services := in.Services
	if len(services) == 0 && strings.TrimSpace(in.Service) != "" {
		services = []string{in.Service}
	}
	return message.Request{
		Name:     in.Name,
		Services: services,
		Urgency:  in.Urgency,
		Details:  in.Details,
	}
}

type businessResponse struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Website string `json:"website"`
}

type serviceResponse struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Price         *int     `json:"price,omitempty"`
	CustomQuote   bool     `json:"custom_quote"`
	DisplayPrice  string   `json:"display_price"`
	Description   string   `json:"description,omitempty"`
	PriceNote     string   `json:"price_note,omitempty"`
	Features      []string `json:"features"`
	Category      string   `json:"category,omitempty"`
	EstimatedTime string   `json:"estimated_time,omitempty"`
	Popularity    string   `json:"popularity,omitempty"`
}

type addonResponse struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Price        int    `json:"price"`
	DisplayPrice string `json:"display_price"`
	Description  string `json:"description,omitempty"`
	Note         string `json:"note,omitempty"`
}

type urgencyResponse struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Icon    string `json:"icon,omitempty"`
	Default bool   `json:"default"`
}

type catalogResponse struct {
	Business       businessResponse  `json:"business"`
	Currency       string            `json:"currency"`
	DiscountRate   float64           `json:"discount_rate"`
	Services       []serviceResponse `json:"services"`
	Addons         []addonResponse   `json:"addons"`
	Urgency        []urgencyResponse `json:"urgency"`
	DefaultUrgency string            `json:"default_urgency,omitempty"`
	Features       map[string]bool   `json:"features"`
}

func newCatalogResponse(c *catalog.Catalog) catalogResponse {
	b := c.Business()
	resp := catalogResponse{
		Business:     businessResponse{Name: b.Name, Phone: b.Phone, Email: b.Email, Website: b.Website},
		Currency:     c.Currency(),
		DiscountRate: c.DiscountRate(),
		Services:     []serviceResponse{},
		Addons:       []addonResponse{},
		Urgency:      []urgencyResponse{},
		Features:     c.Features(),
	}
	for _, s := range c.Services() {
		item := serviceResponse{
			ID:            s.ID,
			Title:         s.Title,
			CustomQuote:   s.Price.Custom,
			DisplayPrice:  c.FormatPrice(s.Price),
			Description:   s.Description,
			PriceNote:     s.PriceNote,
			Features:      s.Features,
			Category:      s.Category,
			EstimatedTime: s.EstimatedTime,
			Popularity:    s.Popularity,
		}
		if !s.Price.Custom {
			amount := s.Price.Amount
			item.Price = &amount
		}
		if item.Features == nil {
			item.Features = []string{}
		}
		resp.Services = append(resp.Services, item)
	}
	for _, a := range c.Addons() {
		resp.Addons = append(resp.Addons, addonResponse{
			ID:           a.ID,
			Title:        a.Title,
			Price:        a.Price,
			DisplayPrice: c.FormatAmount(a.Price),
			Description:  a.Description,
			Note:         a.Note,
		})
	}
	for _, u := range c.UrgencyOptions() {
		resp.Urgency = append(resp.Urgency, urgencyResponse{ID: u.ID, Label: u.Label, Icon: u.Icon, Default: u.Default})
	}
	resp.DefaultUrgency, _ = c.DefaultUrgency()
	return resp
}

type lineResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Known        bool   `json:"known"`
	CustomQuote  bool   `json:"custom_quote"`
	DisplayPrice string `json:"display_price,omitempty"`
}

type priceResponse struct {
	Lines               []lineResponse `json:"lines"`
	Subtotal            int            `json:"subtotal"`
	Discount            int            `json:"discount"`
	DiscountRate        float64        `json:"discount_rate"`
	DiscountApplied     bool           `json:"discount_applied"`
	Total               int            `json:"total"`
	TotalDisplay        string         `json:"total_display"`
	RequiresCustomQuote bool           `json:"requires_custom_quote"`
	Unknown             []string       `json:"unknown,omitempty"`
}

func newPriceResponse(c *catalog.Catalog, res pricing.Result) priceResponse {
	out := priceResponse{
		Lines:               make([]lineResponse, 0, len(res.Lines)),
		Subtotal:            res.Subtotal,
		Discount:            res.Discount,
		DiscountRate:        res.DiscountRate,
		DiscountApplied:     res.DiscountApplied,
		Total:               res.Total,
		TotalDisplay:        c.FormatAmount(res.Total),
		RequiresCustomQuote: res.RequiresCustomQuote,
		Unknown:             res.Unknown,
	}
	for _, l := range res.Lines {
		item := lineResponse{ID: l.ID, Name: l.Name, Known: l.Known, CustomQuote: l.Price.Custom}
		if l.Known {
			item.DisplayPrice = c.FormatPrice(l.Price)
		}
		out.Lines = append(out.Lines, item)
	}
	return out
}

type messageResponse struct {
	Message             string        `json:"message"`
	WhatsAppURL         string        `json:"whatsapp_url"`
	Total               int           `json:"total"`
	RequiresCustomQuote bool          `json:"requires_custom_quote"`
	Pricing             priceResponse `json:"pricing"`
}

type validationError struct {
	Error      string      `json:"error"`
	Validation form.Result `json:"validation"`
}

type submitResponse struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	WSToken string `json:"ws_token"`
}
