// Package receipt renders a committed transaction as a plain-text till receipt.
package receipt

import (
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/georgemunganga/kelontong-pos/internal/modules/ledger"
)

const width = 40

var idr = message.NewPrinter(language.Indonesian)

var months = [...]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

// FormatRupiah formats whole rupiah with id-ID grouping, e.g. "Rp 47.000".
func FormatRupiah(amount int64) string {
	return idr.Sprintf("Rp %d", amount)
}

// FormatDate renders t as "19 Oktober 2026 10:15" in loc.
func FormatDate(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return fmt.Sprintf("%d %s %d %02d:%02d", t.Day(), months[t.Month()-1], t.Year(), t.Hour(), t.Minute())
}

// Printer renders receipts for one shop.
type Printer struct {
	ShopName string
	Location *time.Location
}

// Render writes the receipt for tx to w.
func (p *Printer) Render(w io.Writer, tx *ledger.Transaction) error {
	var b strings.Builder
	rule := strings.Repeat("-", width) + "\n"

	b.WriteString(center(p.ShopName))
	b.WriteString(center(FormatDate(tx.Timestamp, p.Location)))
	b.WriteString(center("No: " + tx.ID))
	if tx.Cashier != "" {
		b.WriteString(center("Kasir: " + tx.Cashier))
	}
	b.WriteString(rule)

	for _, l := range tx.Lines {
		b.WriteString(l.Name + "\n")
		b.WriteString(columns(fmt.Sprintf("  %d x %s", l.Quantity, FormatRupiah(l.Price)), FormatRupiah(l.Subtotal())))
	}
	b.WriteString(rule)
	b.WriteString(columns("Total", FormatRupiah(tx.Total)))
	b.WriteString(columns("Pembayaran", tx.Payment.Method().Label()))
	if c, ok := tx.Payment.(ledger.Cash); ok {
		b.WriteString(columns("Dibayar", FormatRupiah(c.Tendered)))
		b.WriteString(columns("Kembalian", FormatRupiah(tx.Change())))
	}
	b.WriteString(rule)
	b.WriteString(center("Terima kasih atas kunjungan Anda"))

	_, err := io.WriteString(w, b.String())
	return err
}

func center(s string) string {
	pad := (width - len(s)) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat(" ", pad) + s + "\n"
}

func columns(left, right string) string {
	gap := width - len(left) - len(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right + "\n"
}
