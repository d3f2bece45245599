package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) Seed(ctx context.Context, products []*Product) error {
	for _, p := range products {
		if err := p.Validate(); err != nil {
			return err
		}
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, p := range products {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO products (id, name, price, category, stock, image_url)
			VALUES ($1,$2,$3,$4,$5,$6)
			ON CONFLICT (id) DO NOTHING`,
			p.ID, p.Name, p.Price, p.Category, p.Stock, p.ImageURL)
		if err != nil {
			return fmt.Errorf("seed product %s: %w", p.ID, err)
		}
	}
	return tx.Commit()
}

func scanProduct(scan func(...interface{}) error) (*Product, error) {
	p := &Product{}
	var image sql.NullString
	if err := scan(&p.ID, &p.Name, &p.Price, &p.Category, &p.Stock, &image); err != nil {
		return nil, err
	}
	p.ImageURL = image.String
	return p, nil
}

func (r *postgresRepo) List(ctx context.Context, f Filter) ([]*Product, error) {
	query := `SELECT id,name,price,category,stock,image_url FROM products WHERE 1=1`
	args := []interface{}{}
	n := 1
	if f.Category != "" && f.Category != AllCategories {
		query += fmt.Sprintf(` AND category=$%d`, n)
		args = append(args, f.Category)
		n++
	}
	if f.Query != "" {
		query += fmt.Sprintf(` AND name ILIKE '%%' || $%d || '%%'`, n)
		args = append(args, f.Query)
	}
	query += ` ORDER BY seq`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*Product
	for rows.Next() {
		p, err := scanProduct(rows.Scan)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*Product, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id,name,price,category,stock,image_url FROM products WHERE id=$1`, id)
	p, err := scanProduct(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return p, err
}

func (r *postgresRepo) Categories(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT category FROM products GROUP BY category ORDER BY MIN(seq)`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var cats []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

func (r *postgresRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&n)
	return n, err
}

func (r *postgresRepo) DeductStock(ctx context.Context, ds []Deduction) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := DeductStockTx(ctx, tx, ds); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *postgresRepo) RestockStock(ctx context.Context, ds []Deduction) error {
	merged, err := mergeDeductions(ds)
	if err != nil {
		return err
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, d := range merged {
		res, err := tx.ExecContext(ctx,
			`UPDATE products SET stock = stock + $1 WHERE id=$2`, d.Quantity, d.ProductID)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("%w: %s", ErrNotFound, d.ProductID)
		}
	}
	return tx.Commit()
}

// DeductStockTx locks every product row, verifies stock for all of them and only
// then applies the decrements, all inside the caller's transaction.
func DeductStockTx(ctx context.Context, tx *sql.Tx, ds []Deduction) error {
	merged, err := mergeDeductions(ds)
	if err != nil {
		return err
	}
	for _, d := range merged {
		var stock int
		err := tx.QueryRowContext(ctx,
			`SELECT stock FROM products WHERE id=$1 FOR UPDATE`, d.ProductID).Scan(&stock)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s", ErrNotFound, d.ProductID)
		}
		if err != nil {
			return fmt.Errorf("lock product %s: %w", d.ProductID, err)
		}
		if stock < d.Quantity {
			return fmt.Errorf("%w: %s requested %d, available %d", ErrStockExceeded, d.ProductID, d.Quantity, stock)
		}
	}
	for _, d := range merged {
		if _, err := tx.ExecContext(ctx,
			`UPDATE products SET stock = stock - $1 WHERE id=$2`, d.Quantity, d.ProductID); err != nil {
			return fmt.Errorf("deduct product %s: %w", d.ProductID, err)
		}
	}
	return nil
}
