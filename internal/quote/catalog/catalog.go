package catalog

import (
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/exp/slices"

	"github.com/iiSmitty/my-it-services/internal/config"
)

// DefaultCustomLabel is shown for custom-quote entries without their own label.
const DefaultCustomLabel = "Custom Quote"

// ErrInvalid wraps every catalog construction failure.
var ErrInvalid = errors.New("invalid catalog")

// Price is either a fixed amount or the custom-quote sentinel.
type Price struct {
	Amount int
	Custom bool
	Label  string
}

// Fixed returns a numeric price.
func Fixed(amount int) Price { return Price{Amount: amount} }

// CustomQuote returns the sentinel price with an optional display label.
func CustomQuote(label string) Price {
	return Price{Custom: true, Label: label}
}

type Business struct {
	Name    string
	Phone   string
	Email   string
	Website string
}

type ServiceEntry struct {
	ID            string
	Title         string
	Price         Price
	Description   string
	PriceNote     string
	Features      []string
	Category      string
	EstimatedTime string
	Popularity    string
}

type AddonEntry struct {
	ID          string
	Title       string
	Price       int
	Description string
	Note        string
}

type UrgencyOption struct {
	ID      string
	Label   string
	Icon    string
	Default bool
}

// Definition is the raw material for a Catalog.
type Definition struct {
	Business     Business
	Currency     string
	DiscountRate float64
	DiscountRule string
	Services     []ServiceEntry
	Addons       []AddonEntry
	Urgency      []UrgencyOption
	Features     map[string]bool
}

// Catalog is an immutable view over services, add-ons and urgency options.
// All accessors return copies.
type Catalog struct {
	business     Business
	currency     string
	discountRate float64
	discountRule string
	services     []ServiceEntry
	addons       []AddonEntry
	urgency      []UrgencyOption
	features     map[string]bool

	serviceIdx map[string]int
	addonIdx   map[string]int
	urgencyIdx map[string]int
	defaultUrg string
}

// New validates def and builds a Catalog.
func New(def Definition) (*Catalog, error) {
	if def.DiscountRate < 0 || def.DiscountRate >= 1 || math.IsNaN(def.DiscountRate) {
		return nil, errors.Wrapf(ErrInvalid, "discount rate %v must be in [0,1)", def.DiscountRate)
	}

	c := &Catalog{
		business:     def.Business,
		currency:     def.Currency,
		discountRate: def.DiscountRate,
		discountRule: strings.TrimSpace(def.DiscountRule),
		serviceIdx:   make(map[string]int, len(def.Services)),
		addonIdx:     make(map[string]int, len(def.Addons)),
		urgencyIdx:   make(map[string]int, len(def.Urgency)),
		features:     make(map[string]bool, len(def.Features)),
	}

	for i, s := range def.Services {
		if err := checkEntry("service", s.ID, s.Title, c.serviceIdx); err != nil {
			return nil, err
		}
		if !s.Price.Custom && s.Price.Amount < 0 {
			return nil, errors.Wrapf(ErrInvalid, "service %q has negative price", s.ID)
		}
		s.Features = slices.Clone(s.Features)
		c.serviceIdx[s.ID] = i
		c.services = append(c.services, s)
	}

	for i, a := range def.Addons {
		if err := checkEntry("addon", a.ID, a.Title, c.addonIdx); err != nil {
			return nil, err
		}
		if a.Price < 0 {
			return nil, errors.Wrapf(ErrInvalid, "addon %q has negative price", a.ID)
		}
		c.addonIdx[a.ID] = i
		c.addons = append(c.addons, a)
	}

	for i, u := range def.Urgency {
		if err := checkEntry("urgency", u.ID, u.Label, c.urgencyIdx); err != nil {
			return nil, err
		}
		if u.Default {
			if c.defaultUrg != "" {
				return nil, errors.Wrapf(ErrInvalid, "urgency %q and %q are both marked default", c.defaultUrg, u.ID)
			}
			c.defaultUrg = u.ID
		}
		c.urgencyIdx[u.ID] = i
		c.urgency = append(c.urgency, u)
	}

	for k, v := range def.Features {
		c.features[k] = v
	}
	return c, nil
}

func checkEntry(kind, id, title string, seen map[string]int) error {
	if strings.TrimSpace(id) == "" {
		return errors.Wrapf(ErrInvalid, "%s with empty id", kind)
	}
	if strings.TrimSpace(title) == "" {
		return errors.Wrapf(ErrInvalid, "%s %q has empty title", kind, id)
	}
	if _, dup := seen[id]; dup {
		return errors.Wrapf(ErrInvalid, "duplicate %s id %q", kind, id)
	}
	return nil
}

// FromConfig converts the parsed catalog file into a Catalog.
func FromConfig(cfg config.Config) (*Catalog, error) {
	def := Definition{
		Business: Business{
			Name:    cfg.Business.Name,
			Phone:   cfg.Business.Phone,
			Email:   cfg.Business.Email,
			Website: cfg.Business.Website,
		},
		Currency:     cfg.Pricing.Currency,
		DiscountRate: cfg.Pricing.Discounts.MultipleServices,
		DiscountRule: cfg.Pricing.Discounts.Rule,
		Features:     cfg.Features,
	}
	for _, s := range cfg.Services {
		price, err := parsePrice(s.Price)
		if err != nil {
			return nil, errors.Wrapf(err, "service %q", s.ID)
		}
		def.Services = append(def.Services, ServiceEntry{
			ID:            s.ID,
			Title:         s.Title,
			Price:         price,
			Description:   s.Description,
			PriceNote:     s.PriceNote,
			Features:      s.Features,
			Category:      s.Category,
			EstimatedTime: s.EstimatedTime,
			Popularity:    s.Popularity,
		})
	}
	for _, a := range cfg.Addons {
		def.Addons = append(def.Addons, AddonEntry{ID: a.ID, Title: a.Title, Price: a.Price, Description: a.Description, Note: a.Note})
	}
	for _, u := range cfg.Urgency {
		def.Urgency = append(def.Urgency, UrgencyOption{ID: u.ID, Label: u.Label, Icon: u.Icon, Default: u.Default})
	}
	return New(def)
}

func parsePrice(v interface{}) (Price, error) {
	switch p := v.(type) {
	case int:
		return Fixed(p), nil
	case int64:
		return Fixed(int(p)), nil
	case uint64:
		return Fixed(int(p)), nil
	case float64:
		if p != math.Trunc(p) {
			return Price{}, errors.Wrapf(ErrInvalid, "price %v is not a whole amount", p)
		}
		return Fixed(int(p)), nil
	case string:
		label := strings.TrimSpace(p)
		if label == "" {
			label = DefaultCustomLabel
		}
		return CustomQuote(label), nil
	case nil:
		return Price{}, errors.Wrap(ErrInvalid, "missing price")
	default:
		return Price{}, errors.Wrapf(ErrInvalid, "unsupported price %v", v)
	}
}

// Service looks up a service by id.
func (c *Catalog) Service(id string) (ServiceEntry, bool) {
	i, ok := c.serviceIdx[id]
	if !ok {
		return ServiceEntry{}, false
	}
	return cloneService(c.services[i]), true
}

// Addon looks up an add-on by id.
func (c *Catalog) Addon(id string) (AddonEntry, bool) {
	i, ok := c.addonIdx[id]
	if !ok {
		return AddonEntry{}, false
	}
	return c.addons[i], true
}

// Urgency looks up an urgency option by id.
func (c *Catalog) Urgency(id string) (UrgencyOption, bool) {
	i, ok := c.urgencyIdx[id]
	if !ok {
		return UrgencyOption{}, false
	}
	return c.urgency[i], true
}

// DefaultUrgency returns the id of the option marked default.
func (c *Catalog) DefaultUrgency() (string, bool) {
	return c.defaultUrg, c.defaultUrg != ""
}

func (c *Catalog) Services() []ServiceEntry {
	out := make([]ServiceEntry, 0, len(c.services))
	for _, s := range c.services {
		out = append(out, cloneService(s))
	}
	return out
}

func (c *Catalog) Addons() []AddonEntry { return slices.Clone(c.addons) }

func (c *Catalog) UrgencyOptions() []UrgencyOption { return slices.Clone(c.urgency) }

func (c *Catalog) Business() Business { return c.business }

func (c *Catalog) Currency() string { return c.currency }

func (c *Catalog) DiscountRate() float64 { return c.discountRate }

func (c *Catalog) DiscountRule() string { return c.discountRule }

// Features returns a copy of the feature flags.
func (c *Catalog) Features() map[string]bool {
	out := make(map[string]bool, len(c.features))
	for k, v := range c.features {
		out[k] = v
	}
	return out
}

// FormatPrice renders a price the way the site shows it: R250 or the custom label.
func (c *Catalog) FormatPrice(p Price) string {
	if p.Custom {
		if p.Label == "" {
			return DefaultCustomLabel
		}
		return p.Label
	}
	return c.FormatAmount(p.Amount)
}

// FormatAmount prefixes amount with the currency symbol.
func (c *Catalog) FormatAmount(amount int) string {
	return c.currency + strconv.Itoa(amount)
}

func cloneService(s ServiceEntry) ServiceEntry {
	s.Features = slices.Clone(s.Features)
	return s
}
