package analysis

// conclusion is the closing narrative shown after the sections. It is
// written from a reading of the full dataset and does not change with the
// selection.
var conclusion = []string{
	"Credit card is the most used payment method, so promotions or discounts can target credit card transactions.",
	"Most customers live in SP (Sao Paulo); offering same-day delivery there is worth considering.",
	"The sales trends suggest pushing weekend sales to reach new customers.",
	"The best-selling products are good candidates for promotional bundles.",
	"Highly rated product categories can be featured more prominently on the storefront.",
	"The highest-earning sellers can be recognised or rewarded.",
}

// Conclusion returns the closing remarks in display order.
func Conclusion() []string {
	out := make([]string, len(conclusion))
	copy(out, conclusion)
	return out
}
