package pos

import (
	"context"

	"github.com/georgemunganga/kelontong-pos/internal/modules/catalog"
	"github.com/georgemunganga/kelontong-pos/internal/modules/ledger"
)

// Settler applies a built transaction to storage: every line's stock is
// decremented and the transaction is appended to the ledger, or nothing changes.
type Settler interface {
	Settle(ctx context.Context, tx *ledger.Transaction) error
}

func deductions(tx *ledger.Transaction) []catalog.Deduction {
	ds := make([]catalog.Deduction, 0, len(tx.Lines))
	for _, l := range tx.Lines {
		ds = append(ds, catalog.Deduction{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	return ds
}
