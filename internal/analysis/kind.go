package analysis

import (
	"errors"
	"fmt"
	"strings"
)

// Kind is one entry of the fixed analysis catalog.
type Kind int

const (
	PriceDistribution Kind = iota + 1
	PaymentCorrelation
	PaymentMethods
	CustomersByState
	PriceBoxplot
	SalesTrend
	WeekdayWeekend
	TopCategories
	TopProductsByReview
	TopSellersByRevenue
)

// ErrUnknownKind is wrapped by ParseKind and ParseSelection.
var ErrUnknownKind = errors.New("unknown analysis")

type kindInfo struct {
	name  string
	title string
}

var kinds = map[Kind]kindInfo{
	PriceDistribution:   {"price-distribution", "Product Price Distribution"},
	PaymentCorrelation:  {"payment-correlation", "Payment Correlation Heatmap"},
	PaymentMethods:      {"payment-methods", "Payment Method Distribution"},
	CustomersByState:    {"customers-by-state", "Customers per State"},
	PriceBoxplot:        {"price-boxplot", "Product Price Boxplot (Without Outliers)"},
	SalesTrend:          {"sales-trend", "Daily, Weekly and Monthly Sales Trend"},
	WeekdayWeekend:      {"weekday-weekend", "Weekday vs Weekend Sales"},
	TopCategories:       {"top-categories", "Top 10 Best-Selling Product Categories"},
	TopProductsByReview: {"top-products-by-review", "Top 10 Products by Review"},
	TopSellersByRevenue: {"top-sellers-by-revenue", "Top 10 Sellers by Revenue"},
}

// catalog is the display order.
var catalog = []Kind{
	PriceDistribution,
	PaymentCorrelation,
	PaymentMethods,
	CustomersByState,
	PriceBoxplot,
	SalesTrend,
	WeekdayWeekend,
	TopCategories,
	TopProductsByReview,
	TopSellersByRevenue,
}

// Catalog returns every analysis in display order.
func Catalog() []Kind {
	out := make([]Kind, len(catalog))
	copy(out, catalog)
	return out
}

// CatalogNames returns the names of every analysis in display order.
func CatalogNames() []string {
	names := make([]string, len(catalog))
	for i, k := range catalog {
		names[i] = k.String()
	}
	return names
}

// ParseKind resolves a catalog name such as "sales-trend".
func ParseKind(name string) (Kind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, k := range catalog {
		if kinds[k].name == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, name)
}

// Valid reports whether k is part of the catalog.
func (k Kind) Valid() bool {
	_, ok := kinds[k]
	return ok
}

func (k Kind) String() string {
	if info, ok := kinds[k]; ok {
		return info.name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Title is the heading shown above the section.
func (k Kind) Title() string {
	return kinds[k].title
}

// MarshalText encodes k by name.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText decodes a catalog name.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Selection is a subset of the catalog.
type Selection uint32

// All selects every analysis.
func All() Selection {
	return NewSelection(catalog...)
}

// NewSelection selects exactly the given kinds. Invalid kinds are ignored.
func NewSelection(ks ...Kind) Selection {
	var s Selection
	for _, k := range ks {
		if k.Valid() {
			s |= 1 << uint(k)
		}
	}
	return s
}

// ParseSelection resolves catalog names. Blank entries are skipped and an
// empty input selects everything.
func ParseSelection(names []string) (Selection, error) {
	var s Selection
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		k, err := ParseKind(name)
		if err != nil {
			return 0, err
		}
		s |= NewSelection(k)
	}
	if s == 0 {
		return All(), nil
	}
	return s, nil
}

// Has reports whether k is selected.
func (s Selection) Has(k Kind) bool {
	return k.Valid() && s&(1<<uint(k)) != 0
}

// Kinds returns the selected analyses in display order.
func (s Selection) Kinds() []Kind {
	var out []Kind
	for _, k := range catalog {
		if s.Has(k) {
			out = append(out, k)
		}
	}
	return out
}

// Names returns the selected catalog names in display order.
func (s Selection) Names() []string {
	ks := s.Kinds()
	names := make([]string, len(ks))
	for i, k := range ks {
		names[i] = k.String()
	}
	return names
}

// Len returns the number of selected analyses.
func (s Selection) Len() int {
	return len(s.Kinds())
}
