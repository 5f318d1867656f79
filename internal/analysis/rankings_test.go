package analysis

import (
	"context"
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecomdash/internal/dataset"
)

var (
	itemsHeader    = []string{"order_id", "product_id", "seller_id", "price", "freight_value"}
	paymentsHeader = []string{"order_id", "payment_type", "payment_value"}
	productsHeader = []string{"product_id", "product_category_name"}
	reviewsHeader  = []string{"order_id", "review_score"}
	sellersHeader  = []string{"seller_id", "seller_city", "seller_state"}
)

func TestCountValues(t *testing.T) {
	rows := CountValues([]string{"b", "a", "", "c", "a", "b", "d"}, 0)

	// ties keep first appearance
	assert.Equal(t, []LabelCount{{"b", 2}, {"a", 2}, {"c", 1}, {"d", 1}}, rows)
	assert.Len(t, CountValues([]string{"b", "a", "c"}, 2), 2)
	assert.NotNil(t, CountValues(nil, 0))
}

func TestComputeTopCategories(t *testing.T) {
	var itemRows [][]string
	// category k sold k+1 times, twelve categories
	for k := 0; k < 12; k++ {
		for n := 0; n <= k; n++ {
			itemRows = append(itemRows, []string{"o", fmt.Sprintf("p%d", k), "s", "1", "1"})
		}
	}
	itemRows = append(itemRows,
		[]string{"o", "unknown", "s", "1", "1"}, // no product row
		[]string{"o", "nolabel", "s", "1", "1"}, // product without category
	)

	productRows := repeat(12, func(k int) []string { return []string{fmt.Sprintf("p%d", k), fmt.Sprintf("cat%02d", k)} })
	productRows = append(productRows, []string{"nolabel", ""})

	snap := snapshot(t,
		table(t, dataset.Items, itemsHeader, itemRows...),
		table(t, dataset.Products, productsHeader, productRows...),
	)

	rows, err := ComputeTopCategories(context.Background(), snap)
	require.NoError(t, err)

	require.Len(t, rows, TopN)
	assert.Equal(t, LabelCount{"cat11", 12}, rows[0])
	assert.Equal(t, LabelCount{"cat02", 3}, rows[9])
	assert.True(t, sort.SliceIsSorted(rows, func(i, j int) bool { return rows[i].Count > rows[j].Count }))
}

func TestComputeTopCategories_DuplicateProductRows(t *testing.T) {
	snap := snapshot(t,
		table(t, dataset.Items, itemsHeader, []string{"o1", "p1", "s1", "1", "1"}),
		table(t, dataset.Products, productsHeader, []string{"p1", "a"}, []string{"p1", "b"}),
	)

	rows, err := ComputeTopCategories(context.Background(), snap)
	require.NoError(t, err)
	assert.Equal(t, []LabelCount{{"a", 1}, {"b", 1}}, rows)
}

func TestComputePaymentMethods(t *testing.T) {
	rows, err := ComputePaymentMethods(context.Background(), fullSnapshot(t))
	require.NoError(t, err)
	assert.Equal(t, []LabelCount{{"credit_card", 2}, {"boleto", 1}}, rows)
}

func TestComputeCustomersByState(t *testing.T) {
	rows, err := ComputeCustomersByState(context.Background(), fullSnapshot(t))
	require.NoError(t, err)
	assert.Equal(t, []LabelCount{{"SP", 2}, {"RJ", 1}}, rows)
}

// reviewFixture gives product pN exactly counts[N] reviewed purchases with
// the given score.
func reviewFixture(t *testing.T, counts []int, scores []float64) *dataset.Snapshot {
	t.Helper()
	var itemRows, reviewRows, productRows [][]string
	order := 0
	for p := range counts {
		pid := fmt.Sprintf("p%02d", p)
		productRows = append(productRows, []string{pid, "cat_" + pid})
		for n := 0; n < counts[p]; n++ {
			oid := fmt.Sprintf("o%d", order)
			order++
			itemRows = append(itemRows, []string{oid, pid, "s1", "10", "1"})
			reviewRows = append(reviewRows, []string{oid, ftoa(scores[p])})
		}
	}
	return snapshot(t,
		table(t, dataset.Items, itemsHeader, itemRows...),
		table(t, dataset.Reviews, reviewsHeader, reviewRows...),
		table(t, dataset.Products, productsHeader, productRows...),
	)
}

func TestComputeTopProductsByReview(t *testing.T) {
	counts := []int{49, 50, 80, 60, 50, 120, 55, 70, 51, 52, 53, 54, 56, 10}
	scores := []float64{5, 4, 4, 4.5, 3, 2, 4.5, 1, 3.5, 3.5, 3.5, 3.5, 3.5, 5}

	rows, err := ComputeTopProductsByReview(context.Background(), reviewFixture(t, counts, scores))
	require.NoError(t, err)

	require.Len(t, rows, TopN)
	for _, r := range rows {
		assert.GreaterOrEqual(t, r.PurchaseCount, MinPurchases, r.ProductID)
	}

	// p00 (49 purchases) and p13 (10) never qualify despite perfect scores
	assert.Equal(t, "p03", rows[0].ProductID) // 4.5 with 60
	assert.Equal(t, "p06", rows[1].ProductID) // 4.5 with 55
	assert.Equal(t, "p02", rows[2].ProductID) // 4.0 with 80
	assert.Equal(t, "p01", rows[3].ProductID) // 4.0 with 50
	assert.Equal(t, "p12", rows[4].ProductID) // 3.5 with 56
	assert.Equal(t, "cat_p12", rows[4].Category)

	for i := 1; i < len(rows); i++ {
		prev, cur := rows[i-1], rows[i]
		ordered := prev.MeanScore > cur.MeanScore ||
			(prev.MeanScore == cur.MeanScore && prev.PurchaseCount >= cur.PurchaseCount)
		assert.True(t, ordered, "rows %d and %d out of order", i-1, i)
	}
}

func TestComputeTopProductsByReview_MeanScore(t *testing.T) {
	var itemRows, reviewRows [][]string
	for n := 0; n < 60; n++ {
		oid := fmt.Sprintf("o%d", n)
		itemRows = append(itemRows, []string{oid, "p1", "s1", "10", "1"})
		score := "4"
		if n%2 == 0 {
			score = "5"
		}
		reviewRows = append(reviewRows, []string{oid, score})
	}
	// an unreviewed order contributes nothing
	itemRows = append(itemRows, []string{"unreviewed", "p1", "s1", "10", "1"})

	snap := snapshot(t,
		table(t, dataset.Items, itemsHeader, itemRows...),
		table(t, dataset.Reviews, reviewsHeader, reviewRows...),
		table(t, dataset.Products, productsHeader, []string{"p1", "beleza_saude"}),
	)

	rows, err := ComputeTopProductsByReview(context.Background(), snap)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 60, rows[0].PurchaseCount)
	assert.InDelta(t, 4.5, rows[0].MeanScore, 1e-9)
}

// Seller A receives 500 in payments and B 700: B ranks first.
func TestComputeTopSellersByRevenue_RanksByPayments(t *testing.T) {
	snap := snapshot(t,
		table(t, dataset.Items, itemsHeader,
			[]string{"o1", "p1", "A", "900", "10"},
			[]string{"o2", "p2", "B", "100", "5"},
			[]string{"o3", "p3", "A", "50", "5"},
		),
		table(t, dataset.Payments, paymentsHeader,
			[]string{"o1", "credit_card", "300"},
			[]string{"o2", "boleto", "700"},
			[]string{"o3", "voucher", "200"},
		),
		table(t, dataset.Sellers, sellersHeader,
			[]string{"A", "campinas", "SP"},
			[]string{"B", "curitiba", "PR"},
		),
	)

	rows, err := ComputeTopSellersByRevenue(context.Background(), snap)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, SellerRevenue{
		SellerID: "B", City: "curitiba", State: "PR",
		Price: 100, Freight: 5, Payment: 700, TotalRevenue: 700,
	}, rows[0])
	assert.Equal(t, "A", rows[1].SellerID)
	assert.Equal(t, 500.0, rows[1].TotalRevenue)
	// listed price does not decide the ranking
	assert.Equal(t, 950.0, rows[1].Price)
}

func TestComputeTopSellersByRevenue_JoinShapes(t *testing.T) {
	snap := snapshot(t,
		table(t, dataset.Items, itemsHeader,
			[]string{"o1", "p1", "s1", "10", "1"},
			[]string{"o2", "p2", "s2", "20", "2"},
		),
		table(t, dataset.Payments, paymentsHeader,
			// o1 paid in two parts; o2 has no payment at all
			[]string{"o1", "credit_card", "6"},
			[]string{"o1", "voucher", "5"},
		),
		table(t, dataset.Sellers, sellersHeader,
			[]string{"s1", "santos", "SP"},
			[]string{"s1", "duplicate", "XX"},
		),
	)

	rows, err := ComputeTopSellersByRevenue(context.Background(), snap)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "s1", rows[0].SellerID)
	assert.Equal(t, 11.0, rows[0].TotalRevenue)
	assert.Equal(t, 20.0, rows[0].Price, "each payment row repeats the item")
	assert.Equal(t, "santos", rows[0].City, "first seller row wins")

	assert.Equal(t, "s2", rows[1].SellerID)
	assert.Equal(t, 0.0, rows[1].TotalRevenue)
	assert.Equal(t, 20.0, rows[1].Price)
	assert.Empty(t, rows[1].City)
}

func TestComputeTopSellersByRevenue_TopTenStable(t *testing.T) {
	var itemRows, paymentRows, sellerRows [][]string
	for s := 0; s < 15; s++ {
		sid := fmt.Sprintf("s%02d", s)
		oid := fmt.Sprintf("o%02d", s)
		itemRows = append(itemRows, []string{oid, "p", sid, "1", "1"})
		// three sellers tie on 100
		value := float64(10 * s)
		if s >= 12 {
			value = 100
		}
		paymentRows = append(paymentRows, []string{oid, "boleto", ftoa(value)})
		sellerRows = append(sellerRows, []string{sid, "city", "ST"})
	}

	snap := snapshot(t,
		table(t, dataset.Items, itemsHeader, itemRows...),
		table(t, dataset.Payments, paymentsHeader, paymentRows...),
		table(t, dataset.Sellers, sellersHeader, sellerRows...),
	)

	rows, err := ComputeTopSellersByRevenue(context.Background(), snap)
	require.NoError(t, err)
	require.Len(t, rows, TopN)

	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.SellerID
	}
	assert.Equal(t, []string{"s11", "s10", "s12", "s13", "s14", "s09", "s08", "s07", "s06", "s05"}, ids)
}

func TestRankings_MissingColumns(t *testing.T) {
	snap := snapshot(t,
		table(t, dataset.Items, []string{"order_id", "product_id"}, []string{"o1", "p1"}),
		table(t, dataset.Products, []string{"product_id"}, []string{"p1"}),
		table(t, dataset.Reviews, reviewsHeader, []string{"o1", "5"}),
		table(t, dataset.Payments, []string{"order_id"}, []string{"o1"}),
		table(t, dataset.Customers, []string{"customer_id"}, []string{"c1"}),
		table(t, dataset.Sellers, sellersHeader, []string{"s1", "x", "Y"}),
	)
	ctx := context.Background()

	tests := []struct {
		name   string
		run    func() error
		column string
	}{
		{"top categories", func() error { _, err := ComputeTopCategories(ctx, snap); return err }, "product_category_name"},
		{"top products", func() error { _, err := ComputeTopProductsByReview(ctx, snap); return err }, "product_category_name"},
		{"top sellers", func() error { _, err := ComputeTopSellersByRevenue(ctx, snap); return err }, "seller_id"},
		{"payment methods", func() error { _, err := ComputePaymentMethods(ctx, snap); return err }, "payment_type"},
		{"customers by state", func() error { _, err := ComputeCustomersByState(ctx, snap); return err }, "customer_state"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			var ce *ComputationError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.column, ce.Column)
		})
	}
}
