package exporter

import (
	"fmt"

	"ecomdash/internal/analysis"
)

// Sheet is one section in tabular form. Cells hold string, int or float64.
type Sheet struct {
	Name    string
	Title   string
	Headers []string
	Rows    [][]any
	Failed  bool
}

// Records returns the rows as text, header first.
func (s Sheet) Records() [][]string {
	out := make([][]string, 0, len(s.Rows)+1)
	out = append(out, s.Headers)
	for _, row := range s.Rows {
		rec := make([]string, len(row))
		for i, v := range row {
			rec[i] = formatCell(v)
		}
		out = append(out, rec)
	}
	return out
}

// TabulateAll tabulates sections in order.
func TabulateAll(sections []analysis.Section) []Sheet {
	out := make([]Sheet, len(sections))
	for i, s := range sections {
		out[i] = Tabulate(s)
	}
	return out
}

// Tabulate flattens a section result. A failed section becomes a one-cell
// sheet carrying the error message.
func Tabulate(section analysis.Section) Sheet {
	sheet := Sheet{Name: section.Kind.String(), Title: section.Title}
	if section.Failed() {
		sheet.Failed = true
		sheet.Headers = []string{"error"}
		sheet.Rows = [][]any{{section.Error}}
		return sheet
	}

	switch r := section.Result.(type) {
	case *analysis.Histogram:
		sheet.Headers = []string{"lower", "upper", "count"}
		for _, b := range r.Bins {
			sheet.Rows = append(sheet.Rows, []any{money(b.Lower), money(b.Upper), b.Count})
		}

	case *analysis.CorrelationMatrix:
		sheet.Headers = append([]string{"column"}, r.Columns...)
		for i, name := range r.Columns {
			row := []any{name}
			for _, v := range r.Values[i] {
				row = append(row, round(v, 4))
			}
			sheet.Rows = append(sheet.Rows, row)
		}

	case *analysis.BoxSummary:
		sheet.Headers = []string{"statistic", "value"}
		sheet.Rows = [][]any{
			{"lower_fence", money(r.LowerFence)},
			{"min", money(r.Min)},
			{"q1", money(r.Q1)},
			{"median", money(r.Median)},
			{"q3", money(r.Q3)},
			{"max", money(r.Max)},
			{"upper_fence", money(r.UpperFence)},
			{"iqr", money(r.IQR)},
			{"retained", r.Retained},
			{"excluded", r.Excluded},
		}

	case *analysis.Trend:
		sheet.Headers = []string{"granularity", "period", "orders"}
		for _, g := range []struct {
			name    string
			buckets []analysis.Bucket
		}{{"daily", r.Daily}, {"weekly", r.Weekly}, {"monthly", r.Monthly}} {
			for _, b := range g.buckets {
				sheet.Rows = append(sheet.Rows, []any{g.name, b.Label, b.Count})
			}
		}

	case *analysis.WeekSplit:
		sheet.Headers = []string{"day_type", "orders"}
		for _, lc := range r.Rows() {
			sheet.Rows = append(sheet.Rows, []any{lc.Label, lc.Count})
		}

	case []analysis.LabelCount:
		sheet.Headers = []string{labelHeader(section.Kind), "count"}
		for _, lc := range r {
			sheet.Rows = append(sheet.Rows, []any{lc.Label, lc.Count})
		}

	case []analysis.ProductRating:
		sheet.Headers = []string{"product_id", "product_category_name", "mean_review_score", "purchase_count"}
		for _, p := range r {
			sheet.Rows = append(sheet.Rows, []any{p.ProductID, p.Category, round(p.MeanScore, 2), p.PurchaseCount})
		}

	case []analysis.SellerRevenue:
		sheet.Headers = []string{"seller_id", "seller_city", "seller_state", "price", "freight_value", "payment_value", "total_revenue"}
		for _, s := range r {
			sheet.Rows = append(sheet.Rows, []any{
				s.SellerID, s.City, s.State,
				money(s.Price), money(s.Freight), money(s.Payment), money(s.TotalRevenue),
			})
		}

	default:
		sheet.Headers = []string{"value"}
		sheet.Rows = [][]any{{fmt.Sprint(r)}}
	}
	return sheet
}

func labelHeader(kind analysis.Kind) string {
	switch kind {
	case analysis.TopCategories:
		return "product_category_name"
	case analysis.PaymentMethods:
		return "payment_type"
	case analysis.CustomersByState:
		return "customer_state"
	default:
		return "label"
	}
}
