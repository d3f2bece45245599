package pos

import (
	"context"
	"database/sql"

	"github.com/georgemunganga/kelontong-pos/internal/modules/catalog"
	"github.com/georgemunganga/kelontong-pos/internal/modules/ledger"
)

type postgresSettler struct{ db *sql.DB }

// NewPostgresSettler settles inside one database transaction: product rows are
// locked FOR UPDATE, checked, decremented, and the ledger rows inserted before
// commit.
func NewPostgresSettler(db *sql.DB) Settler { return &postgresSettler{db: db} }

func (s *postgresSettler) Settle(ctx context.Context, t *ledger.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := catalog.DeductStockTx(ctx, tx, deductions(t)); err != nil {
		return err
	}
	if err := ledger.InsertTx(ctx, tx, t); err != nil {
		return err
	}
	return tx.Commit()
}
