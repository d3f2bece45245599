package analytics

import "github.com/georgemunganga/kelontong-pos/internal/modules/ledger"

const (
	DefaultDays = 7
	DefaultTop  = 5
)

// Totals are the all-time and today counters of the dashboard.
type Totals struct {
	TransactionCount int   `json:"transaction_count"`
	Revenue          int64 `json:"revenue"`
	TodayCount       int   `json:"today_count"`
	TodayRevenue     int64 `json:"today_revenue"`
	ItemsSold        int   `json:"items_sold"`
}

// DailyPoint is the revenue of one calendar day.
type DailyPoint struct {
	Date    string `json:"date"`  // 2006-01-02 in the shop's location
	Label   string `json:"label"` // "19 Okt"
	Count   int    `json:"count"`
	Revenue int64  `json:"revenue"`
}

// ProductSales aggregates a product's sold lines at their frozen prices.
type ProductSales struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Revenue   int64  `json:"revenue"`
}

// MethodCount is the number of transactions settled by one method.
type MethodCount struct {
	Method ledger.Method `json:"method"`
	Label  string        `json:"label"`
	Count  int           `json:"count"`
}

// Dashboard bundles every aggregation for one read of the ledger.
type Dashboard struct {
	Totals       Totals         `json:"totals"`
	ProductCount int            `json:"product_count"`
	Daily        []DailyPoint   `json:"daily"`
	TopProducts  []ProductSales `json:"top_products"`
	PaymentMix   []MethodCount  `json:"payment_mix"`
}
