package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// fixtureCSV holds a minimal valid CSV for every table.
var fixtureCSV = map[Name]string{
	Customers: "customer_id,customer_unique_id,customer_zip_code_prefix,customer_city,customer_state\n" +
		"c1,u1,01001,sao paulo,SP\n" +
		"c2,u2,20000,rio de janeiro,RJ\n",
	Items: "order_id,order_item_id,product_id,seller_id,price,freight_value\n" +
		"o1,1,1,s1,10,2.5\n" +
		"o2,1,2,s2,12.5,3\n",
	Payments: "order_id,payment_sequential,payment_type,payment_installments,payment_value\n" +
		"o1,1,credit_card,1,12.5\n" +
		"o2,1,boleto,2,15.5\n",
	Orders: "order_id,customer_id,order_purchase_timestamp\n" +
		"o1,c1,2024-01-06 10:00:00\n" +
		"o2,c2,2024-01-08 11:30:00\n",
	Products: "product_id,product_category_name\n" +
		"1,cama_mesa_banho\n" +
		"2,\n",
	Reviews: "review_id,order_id,review_score\n" +
		"r1,o1,5\n" +
		"r2,o2,4\n",
	Sellers: "seller_id,seller_zip_code_prefix,seller_city,seller_state\n" +
		"s1,13023,campinas,SP\n" +
		"s2,30000,belo horizonte,MG\n",
}

// writeFixtures writes every fixture into dir and returns the locations.
func writeFixtures(t *testing.T, dir string) map[Name]string {
	t.Helper()
	sources := make(map[Name]string, len(fixtureCSV))
	for name, body := range fixtureCSV {
		path := filepath.Join(dir, string(name)+".csv")
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
		sources[name] = path
	}
	return sources
}
