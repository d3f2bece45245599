package pos

import (
	"context"
	"errors"
	"fmt"

	"github.com/georgemunganga/kelontong-pos/internal/modules/catalog"
	"github.com/georgemunganga/kelontong-pos/internal/modules/ledger"
)

type compensatingSettler struct {
	catalog catalog.Repository
	ledger  ledger.Repository
}

// NewSettler settles against separate catalog and ledger stores. Stock is
// deducted first; if the ledger append then fails the deduction is reversed.
// Callers must serialise Settle calls, which the checkout service does.
func NewSettler(cat catalog.Repository, led ledger.Repository) Settler {
	return &compensatingSettler{catalog: cat, ledger: led}
}

func (s *compensatingSettler) Settle(ctx context.Context, tx *ledger.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	ds := deductions(tx)
	if err := s.catalog.DeductStock(ctx, ds); err != nil {
		return err
	}
	if err := s.ledger.Append(ctx, tx); err != nil {
		if rerr := s.catalog.RestockStock(ctx, ds); rerr != nil {
			return errors.Join(err, fmt.Errorf("restock after failed append: %w", rerr))
		}
		return err
	}
	return nil
}
