package analysis

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"ecomdash/internal/dataset"
)

func table(t *testing.T, name dataset.Name, header []string, rows ...[]string) *dataset.Table {
	t.Helper()
	records := append([][]string{header}, rows...)
	tbl, err := dataset.FromRecords(name, "test", records)
	require.NoError(t, err)
	return tbl
}

func snapshot(t *testing.T, tables ...*dataset.Table) *dataset.Snapshot {
	t.Helper()
	snap, err := dataset.NewSnapshot(tables...)
	require.NoError(t, err)
	return snap
}

// fullSnapshot holds a small but complete set of all seven tables.
func fullSnapshot(t *testing.T) *dataset.Snapshot {
	t.Helper()

	customers := table(t, dataset.Customers,
		[]string{"customer_id", "customer_state"},
		[]string{"c1", "SP"}, []string{"c2", "RJ"}, []string{"c3", "SP"},
	)
	items := table(t, dataset.Items,
		[]string{"order_id", "product_id", "seller_id", "price", "freight_value"},
		[]string{"o1", "p1", "s1", "10", "1"},
		[]string{"o2", "p2", "s2", "20", "2"},
		[]string{"o3", "p1", "s1", "30", "3"},
	)
	payments := table(t, dataset.Payments,
		[]string{"order_id", "payment_sequential", "payment_type", "payment_installments", "payment_value"},
		[]string{"o1", "1", "credit_card", "1", "11"},
		[]string{"o2", "1", "boleto", "3", "22"},
		[]string{"o3", "2", "credit_card", "2", "33"},
	)
	orders := table(t, dataset.Orders,
		[]string{"order_id", "order_purchase_timestamp"},
		[]string{"o1", "2024-01-06 10:00:00"},
		[]string{"o2", "2024-01-08 09:15:00"},
		[]string{"o3", "2024-02-01 18:45:00"},
	)
	products := table(t, dataset.Products,
		[]string{"product_id", "product_category_name"},
		[]string{"p1", "perfumaria"}, []string{"p2", "esporte_lazer"},
	)
	reviews := table(t, dataset.Reviews,
		[]string{"order_id", "review_score"},
		[]string{"o1", "5"}, []string{"o2", "3"}, []string{"o3", "4"},
	)
	sellers := table(t, dataset.Sellers,
		[]string{"seller_id", "seller_city", "seller_state"},
		[]string{"s1", "campinas", "SP"}, []string{"s2", "curitiba", "PR"},
	)

	return snapshot(t, customers, items, payments, orders, products, reviews, sellers)
}

// repeat builds n rows by calling row with each index.
func repeat(n int, row func(i int) []string) [][]string {
	out := make([][]string, n)
	for i := range out {
		out[i] = row(i)
	}
	return out
}

func ftoa(f float64) string {
	return fmt.Sprintf("%g", f)
}
