package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) Append(ctx context.Context, t *Transaction) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := InsertTx(ctx, tx, t); err != nil {
		return err
	}
	return tx.Commit()
}

// InsertTx writes the transaction header and its lines inside the caller's SQL
// transaction.
func InsertTx(ctx context.Context, tx *sql.Tx, t *Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	var tendered sql.NullInt64
	if c, ok := t.Payment.(Cash); ok {
		tendered = sql.NullInt64{Int64: c.Tendered, Valid: true}
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO transactions (id, created_at, total, payment_method, cash_tendered, cashier)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		t.ID, t.Timestamp.UTC(), t.Total, string(t.Payment.Method()), tendered, t.Cashier)
	if isDuplicateKey(err) {
		return fmt.Errorf("%w: %s", ErrDuplicateID, t.ID)
	}
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	for i, l := range t.Lines {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO transaction_lines
			  (transaction_id, position, product_id, name, category, price, quantity)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			t.ID, i, l.ProductID, l.Name, l.Category, l.Price, l.Quantity)
		if err != nil {
			return fmt.Errorf("insert transaction_line: %w", err)
		}
	}
	return nil
}

func (r *postgresRepo) All(ctx context.Context) ([]*Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id,created_at,total,payment_method,cash_tendered,cashier
		FROM transactions ORDER BY seq DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []*Transaction
	byID := map[string]*Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows.Scan)
		if err != nil {
			return nil, err
		}
		txs = append(txs, t)
		byID[t.ID] = t
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(txs) == 0 {
		return txs, nil
	}

	lines, err := r.db.QueryContext(ctx, `
		SELECT transaction_id,product_id,name,category,price,quantity
		FROM transaction_lines ORDER BY transaction_id, position`)
	if err != nil {
		return nil, err
	}
	defer lines.Close()
	for lines.Next() {
		var txID string
		var l Line
		if err := lines.Scan(&txID, &l.ProductID, &l.Name, &l.Category, &l.Price, &l.Quantity); err != nil {
			return nil, err
		}
		if t, ok := byID[txID]; ok {
			t.Lines = append(t.Lines, l)
		}
	}
	return txs, lines.Err()
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*Transaction, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id,created_at,total,payment_method,cash_tendered,cashier
		FROM transactions WHERE id=$1`, id)
	t, err := scanTransaction(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT product_id,name,category,price,quantity
		FROM transaction_lines WHERE transaction_id=$1 ORDER BY position`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ProductID, &l.Name, &l.Category, &l.Price, &l.Quantity); err != nil {
			return nil, err
		}
		t.Lines = append(t.Lines, l)
	}
	return t, rows.Err()
}

func (r *postgresRepo) Len(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&n)
	return n, err
}

// ── helpers ───────────────────────────────────────────────────────────────────

func scanTransaction(scan func(...interface{}) error) (*Transaction, error) {
	t := &Transaction{}
	var method string
	var tendered sql.NullInt64
	var cashier sql.NullString
	var createdAt time.Time
	if err := scan(&t.ID, &createdAt, &t.Total, &method, &tendered, &cashier); err != nil {
		return nil, err
	}
	p, err := NewPayment(method, tendered.Int64)
	if err != nil {
		return nil, fmt.Errorf("transaction %s: %w", t.ID, err)
	}
	t.Timestamp = createdAt
	t.Payment = p
	t.Cashier = cashier.String
	return t, nil
}

// isDuplicateKey reports a PostgreSQL unique constraint violation (code 23505).
func isDuplicateKey(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
