package pricing

import (
	"math"

	"github.com/pkg/errors"
	"golang.org/x/exp/slices"

	"github.com/iiSmitty/my-it-services/internal/quote/catalog"
)

// ErrNoServices is returned when the selection is empty.
var ErrNoServices = errors.New("no services selected")

// Catalog is the lookup surface the resolver needs.
type Catalog interface {
	Service(id string) (catalog.ServiceEntry, bool)
	DiscountRate() float64
}

// Line is one selected service as resolved against the catalog.
type Line struct {
	ID    string        `json:"id"`
	Name  string        `json:"name"`
	Price catalog.Price `json:"-"`
	Known bool          `json:"known"`
}

// Result is the priced summary of a selection.
type Result struct {
	Lines               []Line   `json:"lines"`
	Subtotal            int      `json:"subtotal"`
	Discount            int      `json:"discount"`
	DiscountRate        float64  `json:"discount_rate"`
	DiscountApplied     bool     `json:"discount_applied"`
	Total               int      `json:"total"`
	RequiresCustomQuote bool     `json:"requires_custom_quote"`
	Unknown             []string `json:"unknown,omitempty"`
}

// Resolver prices selections against a catalog.
type Resolver struct {
	cat  Catalog
	rule *Rule
}

// NewResolver builds a resolver. A nil rule means DefaultRule.
func NewResolver(cat Catalog, rule *Rule) (*Resolver, error) {
	if cat == nil {
		return nil, errors.New("pricing: catalog is required")
	}
	if rule == nil {
		var err error
		if rule, err = CompileRule(DefaultRule); err != nil {
			return nil, err
		}
	}
	return &Resolver{cat: cat, rule: rule}, nil
}

// Resolve sums the numeric prices of ids, flags custom-quote entries and
// applies the multi-service discount when the rule allows it. Unknown ids are
// reported and skipped.
func (r *Resolver) Resolve(ids []string) (Result, error) {
	if len(ids) == 0 {
		return Result{}, ErrNoServices
	}

	res := Result{Lines: make([]Line, 0, len(ids))}
	for _, id := range ids {
		entry, ok := r.cat.Service(id)
		if !ok {
			res.Unknown = append(res.Unknown, id)
			res.Lines = append(res.Lines, Line{ID: id, Name: id})
			continue
		}
		res.Lines = append(res.Lines, Line{ID: id, Name: entry.Title, Price: entry.Price, Known: true})
		if entry.Price.Custom {
			res.RequiresCustomQuote = true
			continue
		}
		res.Subtotal += entry.Price.Amount
	}

	res.Total = res.Subtotal
	rate := r.cat.DiscountRate()
	if rate <= 0 {
		return res, nil
	}

	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	eligible, err := r.rule.Eligible(sorted)
	if err != nil {
		return Result{}, err
	}
	if eligible {
		res.Total = ApplyDiscount(res.Subtotal, rate)
		res.Discount = res.Subtotal - res.Total
		res.DiscountRate = rate
		res.DiscountApplied = true
	}
	return res, nil
}

// ApplyDiscount reduces subtotal by rate and rounds half away from zero.
func ApplyDiscount(subtotal int, rate float64) int {
	if rate <= 0 {
		return subtotal
	}
	return int(math.Round(float64(subtotal) * (1 - rate)))
}
