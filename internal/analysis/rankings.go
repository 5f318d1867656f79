package analysis

import (
	"context"
	"math"
	"sort"

	"ecomdash/internal/dataset"
)

const (
	// TopN bounds every ranked result.
	TopN = 10
	// MinPurchases is the smallest purchase count a product needs to be
	// ranked by review score.
	MinPurchases = 50
)

// LabelCount is one row of a frequency table.
type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// ProductRating is a product ranked by its mean review score.
type ProductRating struct {
	ProductID     string  `json:"product_id"`
	Category      string  `json:"category"`
	MeanScore     float64 `json:"mean_score"`
	PurchaseCount int     `json:"purchase_count"`
}

// SellerRevenue aggregates the items a seller sold.
type SellerRevenue struct {
	SellerID     string  `json:"seller_id"`
	City         string  `json:"city"`
	State        string  `json:"state"`
	Price        float64 `json:"price"`
	Freight      float64 `json:"freight_value"`
	Payment      float64 `json:"payment_value"`
	TotalRevenue float64 `json:"total_revenue"`
}

// CountValues tallies non-empty labels by descending count. Ties keep the
// order in which labels first appear. limit <= 0 keeps every label.
func CountValues(labels []string, limit int) []LabelCount {
	index := make(map[string]int)
	rows := make([]LabelCount, 0)
	for _, l := range labels {
		if l == "" {
			continue
		}
		i, ok := index[l]
		if !ok {
			i = len(rows)
			index[l] = i
			rows = append(rows, LabelCount{Label: l})
		}
		rows[i].Count++
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Count > rows[j].Count })
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}

// multiIndex maps a key to every row position holding it, in row order.
func multiIndex(keys []string) map[string][]int {
	idx := make(map[string][]int, len(keys))
	for i, k := range keys {
		if k == "" {
			continue
		}
		idx[k] = append(idx[k], i)
	}
	return idx
}

// ComputeTopCategories counts sold items per product category.
func ComputeTopCategories(_ context.Context, snap *dataset.Snapshot) ([]LabelCount, error) {
	items, err := input(TopCategories, snap, dataset.Items, dataset.ColProductID)
	if err != nil {
		return nil, err
	}
	products, err := input(TopCategories, snap, dataset.Products, dataset.ColProductID, dataset.ColProductCategory)
	if err != nil {
		return nil, err
	}

	itemProducts := items.MustStrings(dataset.ColProductID)
	productIDs := products.MustStrings(dataset.ColProductID)
	categories := products.MustStrings(dataset.ColProductCategory)
	byProduct := multiIndex(productIDs)

	// left join: one label per matching product row, none for unmatched items
	labels := make([]string, 0, len(itemProducts))
	for _, pid := range itemProducts {
		for _, row := range byProduct[pid] {
			labels = append(labels, categories[row])
		}
	}

	return CountValues(labels, TopN), nil
}

// ComputePaymentMethods counts payments per payment type.
func ComputePaymentMethods(_ context.Context, snap *dataset.Snapshot) ([]LabelCount, error) {
	payments, err := input(PaymentMethods, snap, dataset.Payments, dataset.ColPaymentType)
	if err != nil {
		return nil, err
	}
	types := payments.MustStrings(dataset.ColPaymentType)
	return CountValues(types, 0), nil
}

// ComputeCustomersByState counts customers per state.
func ComputeCustomersByState(_ context.Context, snap *dataset.Snapshot) ([]LabelCount, error) {
	customers, err := input(CustomersByState, snap, dataset.Customers, dataset.ColCustomerState)
	if err != nil {
		return nil, err
	}
	states := customers.MustStrings(dataset.ColCustomerState)
	return CountValues(states, 0), nil
}

type productKey struct {
	productID string
	category  string
}

type scoreAcc struct {
	sum    float64
	scored int
	count  int
}

// ComputeTopProductsByReview ranks products bought at least MinPurchases
// times by mean review score, then by purchase count.
func ComputeTopProductsByReview(_ context.Context, snap *dataset.Snapshot) ([]ProductRating, error) {
	reviews, err := input(TopProductsByReview, snap, dataset.Reviews, dataset.ColOrderID, dataset.ColReviewScore)
	if err != nil {
		return nil, err
	}
	items, err := input(TopProductsByReview, snap, dataset.Items, dataset.ColOrderID, dataset.ColProductID)
	if err != nil {
		return nil, err
	}
	products, err := input(TopProductsByReview, snap, dataset.Products, dataset.ColProductID, dataset.ColProductCategory)
	if err != nil {
		return nil, err
	}

	reviewOrders := reviews.MustStrings(dataset.ColOrderID)
	scores := reviews.MustFloats(dataset.ColReviewScore)
	itemOrders := items.MustStrings(dataset.ColOrderID)
	itemProducts := items.MustStrings(dataset.ColProductID)
	productIDs := products.MustStrings(dataset.ColProductID)
	categories := products.MustStrings(dataset.ColProductCategory)

	itemsByOrder := multiIndex(itemOrders)
	productsByID := multiIndex(productIDs)

	groups := make(map[productKey]*scoreAcc)
	for r, order := range reviewOrders {
		for _, i := range itemsByOrder[order] {
			pid := itemProducts[i]
			for _, p := range productsByID[pid] {
				if categories[p] == "" {
					continue
				}
				key := productKey{productID: pid, category: categories[p]}
				acc, ok := groups[key]
				if !ok {
					acc = &scoreAcc{}
					groups[key] = acc
				}
				acc.count++
				if !math.IsNaN(scores[r]) {
					acc.sum += scores[r]
					acc.scored++
				}
			}
		}
	}

	rows := make([]ProductRating, 0, len(groups))
	for key, acc := range groups {
		// a group whose scores are all missing has no mean to rank by
		if acc.count < MinPurchases || acc.scored == 0 {
			continue
		}
		rows = append(rows, ProductRating{
			ProductID:     key.productID,
			Category:      key.category,
			MeanScore:     acc.sum / float64(acc.scored),
			PurchaseCount: acc.count,
		})
	}

	// group-by order first, then the ranking keys
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].ProductID != rows[j].ProductID {
			return rows[i].ProductID < rows[j].ProductID
		}
		return rows[i].Category < rows[j].Category
	})
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.MeanScore != b.MeanScore {
			return a.MeanScore > b.MeanScore
		}
		return a.PurchaseCount > b.PurchaseCount
	})

	if len(rows) > TopN {
		rows = rows[:TopN]
	}
	return rows, nil
}

// ComputeTopSellersByRevenue ranks sellers by the payments on the orders
// their items belong to.
func ComputeTopSellersByRevenue(_ context.Context, snap *dataset.Snapshot) ([]SellerRevenue, error) {
	items, err := input(TopSellersByRevenue, snap, dataset.Items,
		dataset.ColOrderID, dataset.ColSellerID, dataset.ColPrice, dataset.ColFreightValue)
	if err != nil {
		return nil, err
	}
	payments, err := input(TopSellersByRevenue, snap, dataset.Payments, dataset.ColOrderID, dataset.ColPaymentValue)
	if err != nil {
		return nil, err
	}
	sellers, err := input(TopSellersByRevenue, snap, dataset.Sellers,
		dataset.ColSellerID, dataset.ColSellerCity, dataset.ColSellerState)
	if err != nil {
		return nil, err
	}

	itemOrders := items.MustStrings(dataset.ColOrderID)
	itemSellers := items.MustStrings(dataset.ColSellerID)
	prices := items.MustFloats(dataset.ColPrice)
	freights := items.MustFloats(dataset.ColFreightValue)
	paymentOrders := payments.MustStrings(dataset.ColOrderID)
	paymentValues := payments.MustFloats(dataset.ColPaymentValue)

	paymentsByOrder := multiIndex(paymentOrders)

	add := func(sum *float64, v float64) {
		if !math.IsNaN(v) {
			*sum += v
		}
	}

	groups := make(map[string]*SellerRevenue)
	for i, sid := range itemSellers {
		if sid == "" {
			continue
		}
		acc, ok := groups[sid]
		if !ok {
			acc = &SellerRevenue{SellerID: sid}
			groups[sid] = acc
		}

		// left join: an item with no payment still contributes price and freight
		matches := paymentsByOrder[itemOrders[i]]
		if len(matches) == 0 {
			add(&acc.Price, prices[i])
			add(&acc.Freight, freights[i])
			continue
		}
		for _, p := range matches {
			add(&acc.Price, prices[i])
			add(&acc.Freight, freights[i])
			add(&acc.Payment, paymentValues[p])
		}
	}

	rows := make([]SellerRevenue, 0, len(groups))
	for _, acc := range groups {
		acc.TotalRevenue = acc.Payment
		rows = append(rows, *acc)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].SellerID < rows[j].SellerID })
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].TotalRevenue > rows[j].TotalRevenue })
	if len(rows) > TopN {
		rows = rows[:TopN]
	}

	sellerIDs := sellers.MustStrings(dataset.ColSellerID)
	cities := sellers.MustStrings(dataset.ColSellerCity)
	states := sellers.MustStrings(dataset.ColSellerState)
	sellerRows := multiIndex(sellerIDs)
	for i := range rows {
		if match := sellerRows[rows[i].SellerID]; len(match) > 0 {
			rows[i].City = cities[match[0]]
			rows[i].State = states[match[0]]
		}
	}

	return rows, nil
}
