package pos

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/georgemunganga/kelontong-pos/internal/modules/catalog"
	"github.com/georgemunganga/kelontong-pos/internal/modules/ledger"
)

const lockStock = `SELECT stock FROM products WHERE id=$1 FOR UPDATE`

func saleOf(lines ...ledger.Line) *ledger.Transaction {
	return &ledger.Transaction{
		ID:        "TRX-1",
		Timestamp: time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC),
		Lines:     lines,
		Total:     ledger.SumLines(lines),
		Payment:   ledger.Debit{},
		Cashier:   "kasir",
	}
}

func TestPostgresSettlerCommits(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	tx := saleOf(ledger.Line{ProductID: "3", Name: "Gula Pasir 1kg", Category: "Bahan Pokok", Price: 15000, Quantity: 2})

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockStock)).WithArgs("3").
		WillReturnRows(sqlmock.NewRows([]string{"stock"}).AddRow(40))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE products SET stock = stock - $1 WHERE id=$2`)).
		WithArgs(2, "3").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO transactions`).
		WithArgs("TRX-1", sqlmock.AnyArg(), int64(30000), "debit", nil, "kasir").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO transaction_lines`).
		WithArgs("TRX-1", 0, "3", "Gula Pasir 1kg", "Bahan Pokok", int64(15000), 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, NewPostgresSettler(db).Settle(context.Background(), tx))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSettlerStockExceededRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	tx := saleOf(
		ledger.Line{ProductID: "3", Name: "Gula Pasir 1kg", Price: 15000, Quantity: 2},
		ledger.Line{ProductID: "4", Name: "Telur Ayam 1kg", Price: 28000, Quantity: 5},
	)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockStock)).WithArgs("3").
		WillReturnRows(sqlmock.NewRows([]string{"stock"}).AddRow(40))
	mock.ExpectQuery(regexp.QuoteMeta(lockStock)).WithArgs("4").
		WillReturnRows(sqlmock.NewRows([]string{"stock"}).AddRow(1))
	mock.ExpectRollback()

	err = NewPostgresSettler(db).Settle(context.Background(), tx)
	assert.ErrorIs(t, err, catalog.ErrStockExceeded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSettlerRejectsInvalidBeforeBegin(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	tx := saleOf(ledger.Line{ProductID: "3", Price: 15000, Quantity: 1})
	tx.Total = 1

	err = NewPostgresSettler(db).Settle(context.Background(), tx)
	assert.ErrorIs(t, err, ledger.ErrInvalidTransaction)
	assert.NoError(t, mock.ExpectationsWereMet())
}
