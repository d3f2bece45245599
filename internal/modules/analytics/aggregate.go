// Package analytics derives dashboard figures from a ledger snapshot. Every
// function here is pure: the same transactions and now give the same result.
package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/georgemunganga/kelontong-pos/internal/modules/ledger"
)

var shortMonths = [...]string{"Jan", "Feb", "Mar", "Apr", "Mei", "Jun", "Jul", "Agu", "Sep", "Okt", "Nov", "Des"}

// startOfDay is local midnight of t in loc.
func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

func dayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(time.DateOnly)
}

// ComputeTotals counts all transactions and those on now's calendar day,
// where the day boundary is midnight in now's location.
func ComputeTotals(txs []*ledger.Transaction, now time.Time) Totals {
	var out Totals
	today := dayKey(now, now.Location())
	for _, tx := range txs {
		out.TransactionCount++
		out.Revenue += tx.Total
		out.ItemsSold += tx.ItemCount()
		if dayKey(tx.Timestamp, now.Location()) == today {
			out.TodayCount++
			out.TodayRevenue += tx.Total
		}
	}
	return out
}

// DailySeries returns the last n days up to and including today, oldest first.
// Days without sales are present with zero revenue.
func DailySeries(txs []*ledger.Transaction, now time.Time, n int) []DailyPoint {
	if n <= 0 {
		return []DailyPoint{}
	}
	loc := now.Location()
	today := startOfDay(now, loc)

	out := make([]DailyPoint, n)
	idx := make(map[string]int, n)
	for i := 0; i < n; i++ {
		day := today.AddDate(0, 0, i-(n-1))
		key := day.Format(time.DateOnly)
		out[i] = DailyPoint{
			Date:  key,
			Label: fmt.Sprintf("%02d %s", day.Day(), shortMonths[day.Month()-1]),
		}
		idx[key] = i
	}
	for _, tx := range txs {
		if i, ok := idx[dayKey(tx.Timestamp, loc)]; ok {
			out[i].Count++
			out[i].Revenue += tx.Total
		}
	}
	return out
}

// TopProducts ranks products by revenue, highest first, ties broken by
// ascending product id, and returns at most k entries.
func TopProducts(txs []*ledger.Transaction, k int) []ProductSales {
	byID := map[string]*ProductSales{}
	for _, tx := range txs {
		for _, l := range tx.Lines {
			ps, ok := byID[l.ProductID]
			if !ok {
				ps = &ProductSales{ProductID: l.ProductID, Name: l.Name}
				byID[l.ProductID] = ps
			}
			ps.Quantity += l.Quantity
			ps.Revenue += l.Subtotal()
		}
	}

	out := make([]ProductSales, 0, len(byID))
	for _, ps := range byID {
		out = append(out, *ps)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Revenue != out[j].Revenue {
			return out[i].Revenue > out[j].Revenue
		}
		return out[i].ProductID < out[j].ProductID
	})
	if k < 0 {
		k = 0
	}
	if len(out) > k {
		out = out[:k]
	}
	return out
}

// PaymentMix counts transactions per method in cash, debit, ewallet order.
// Methods with no transactions are omitted.
func PaymentMix(txs []*ledger.Transaction) []MethodCount {
	counts := map[ledger.Method]int{}
	for _, tx := range txs {
		if tx.Payment != nil {
			counts[tx.Payment.Method()]++
		}
	}
	out := []MethodCount{}
	for _, m := range ledger.Methods {
		if c := counts[m]; c > 0 {
			out = append(out, MethodCount{Method: m, Label: m.Label(), Count: c})
		}
	}
	return out
}
