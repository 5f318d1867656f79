package dataset

import (
	"github.com/go-gota/gota/series"
)

// Name identifies one of the seven source tables.
type Name string

const (
	Customers Name = "customers"
	Items     Name = "items"
	Payments  Name = "payments"
	Orders    Name = "orders"
	Products  Name = "products"
	Reviews   Name = "reviews"
	Sellers   Name = "sellers"
)

// Names lists every table in load order.
var Names = []Name{Customers, Items, Payments, Orders, Products, Reviews, Sellers}

// Column names used across the analyses.
const (
	ColCustomerID      = "customer_id"
	ColCustomerState   = "customer_state"
	ColOrderID         = "order_id"
	ColProductID       = "product_id"
	ColSellerID        = "seller_id"
	ColPrice           = "price"
	ColFreightValue    = "freight_value"
	ColPaymentType     = "payment_type"
	ColPaymentValue    = "payment_value"
	ColPurchasedAt     = "order_purchase_timestamp"
	ColProductCategory = "product_category_name"
	ColReviewScore     = "review_score"
	ColSellerCity      = "seller_city"
	ColSellerState     = "seller_state"
)

var requiredColumns = map[Name][]string{
	Customers: {ColCustomerID, ColCustomerState},
	Items:     {ColOrderID, ColProductID, ColSellerID, ColPrice, ColFreightValue},
	Payments:  {ColOrderID, ColPaymentType, ColPaymentValue},
	Orders:    {ColOrderID, ColPurchasedAt},
	Products:  {ColProductID, ColProductCategory},
	Reviews:   {ColOrderID, ColReviewScore},
	Sellers:   {ColSellerID, ColSellerCity, ColSellerState},
}

// stringColumns are never type-detected. Ids, labels and raw timestamps
// stay text even when every value happens to look numeric.
var stringColumns = map[string]series.Type{
	ColCustomerID:              series.String,
	"customer_unique_id":       series.String,
	"customer_zip_code_prefix": series.String,
	"customer_city":            series.String,
	ColCustomerState:           series.String,
	ColOrderID:                 series.String,
	ColProductID:               series.String,
	ColSellerID:                series.String,
	ColPaymentType:             series.String,
	ColPurchasedAt:             series.String,
	ColProductCategory:         series.String,
	"review_id":                series.String,
	"seller_zip_code_prefix":   series.String,
	ColSellerCity:              series.String,
	ColSellerState:             series.String,
}

// missingValues are the cell spellings read as missing.
var missingValues = []string{"", "NA", "NaN", "nan", "null", "<nil>"}

// RequiredColumns returns the columns a table must carry to be loaded.
func (n Name) RequiredColumns() []string {
	cols := requiredColumns[n]
	out := make([]string, len(cols))
	copy(out, cols)
	return out
}

// Valid reports whether n is one of the seven known tables.
func (n Name) Valid() bool {
	_, ok := requiredColumns[n]
	return ok
}

func (n Name) String() string {
	return string(n)
}
