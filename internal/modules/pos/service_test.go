package pos

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/georgemunganga/kelontong-pos/internal/modules/catalog"
	"github.com/georgemunganga/kelontong-pos/internal/modules/ledger"
	"github.com/georgemunganga/kelontong-pos/internal/pkg/metrics"
)

var fixedNow = time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)

type fixture struct {
	svc     Service
	catalog catalog.Repository
	ledger  ledger.Repository
	metrics *metrics.CheckoutMetrics
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	cat := catalog.NewMemoryRepository()
	require.NoError(t, cat.Seed(context.Background(), []*catalog.Product{
		{ID: "gula", Name: "Gula Pasir 1kg", Price: 15000, Category: "Bahan Pokok", Stock: 5},
		{ID: "telur", Name: "Telur Ayam 1kg", Price: 17000, Category: "Protein", Stock: 2},
		{ID: "habis", Name: "Kecap Manis 600ml", Price: 16000, Category: "Bumbu", Stock: 0},
	}))
	led := ledger.NewMemoryRepository()
	m := metrics.NewCheckoutMetrics(prometheus.NewRegistry())
	opts = append([]Option{WithClock(func() time.Time { return fixedNow }), WithMetrics(m)}, opts...)
	return &fixture{
		svc:     NewService(cat, led, NewSettler(cat, led), opts...),
		catalog: cat,
		ledger:  led,
		metrics: m,
	}
}

func (f *fixture) stock(t *testing.T, id string) int {
	t.Helper()
	p, err := f.catalog.GetByID(context.Background(), id)
	require.NoError(t, err)
	return p.Stock
}

func (f *fixture) ledgerLen(t *testing.T) int {
	t.Helper()
	n, err := f.ledger.Len(context.Background())
	require.NoError(t, err)
	return n
}

func TestAddToCartClampsToStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	var v *CartView
	var err error
	for i := 0; i < 4; i++ {
		v, err = f.svc.AddToCart(ctx, "telur")
		require.NoError(t, err)
	}
	require.Len(t, v.Lines, 1)
	assert.Equal(t, 2, v.Lines[0].Quantity)
	assert.Equal(t, int64(34000), v.Total)
}

func TestAddToCartRejectsOutOfStockAndUnknown(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.AddToCart(ctx, "habis")
	assert.ErrorIs(t, err, ErrOutOfStock)

	_, err = f.svc.AddToCart(ctx, "nope")
	assert.True(t, IsNotFound(err))

	v, err := f.svc.Cart(ctx)
	require.NoError(t, err)
	assert.Empty(t, v.Lines)
}

func TestSetQuantity(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.SetQuantity(ctx, "gula", 3)
	assert.True(t, IsNotFound(err), "setting an absent line must not create it")

	_, err = f.svc.AddToCart(ctx, "gula")
	require.NoError(t, err)

	v, err := f.svc.SetQuantity(ctx, "gula", 99)
	require.NoError(t, err)
	assert.Equal(t, 5, v.Lines[0].Quantity)

	v, err = f.svc.SetQuantity(ctx, "gula", -4)
	require.NoError(t, err)
	assert.Equal(t, 1, v.Lines[0].Quantity)

	v, err = f.svc.SetQuantity(ctx, "gula", 0)
	require.NoError(t, err)
	assert.Empty(t, v.Lines)
}

func TestRemoveAndClearCart(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.AddToCart(ctx, "gula")
	require.NoError(t, err)
	_, err = f.svc.AddToCart(ctx, "telur")
	require.NoError(t, err)

	v, err := f.svc.RemoveFromCart(ctx, "gula")
	require.NoError(t, err)
	require.Len(t, v.Lines, 1)
	assert.Equal(t, "telur", v.Lines[0].ProductID)

	_, err = f.svc.RemoveFromCart(ctx, "gula")
	assert.True(t, IsNotFound(err))

	require.NoError(t, f.svc.ClearCart(ctx))
	v, err = f.svc.Cart(ctx)
	require.NoError(t, err)
	assert.Empty(t, v.Lines)
	assert.Zero(t, v.Total)
}

func TestCartReflectsCurrentStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.AddToCart(ctx, "gula")
	require.NoError(t, err)
	require.NoError(t, f.catalog.DeductStock(ctx, []catalog.Deduction{{ProductID: "gula", Quantity: 1}}))

	v, err := f.svc.Cart(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, v.Lines[0].Stock)
}

func TestValidateCash(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.Validate(ctx, ledger.Cash{Tendered: 100000})
	assert.ErrorIs(t, err, ErrEmptyCart)

	_, err = f.svc.AddToCart(ctx, "gula")
	require.NoError(t, err)
	_, err = f.svc.AddToCart(ctx, "gula")
	require.NoError(t, err)
	_, err = f.svc.AddToCart(ctx, "telur")
	require.NoError(t, err)

	q, err := f.svc.Validate(ctx, ledger.Cash{Tendered: 50000})
	require.NoError(t, err)
	assert.Equal(t, int64(47000), q.Total)
	assert.Equal(t, 3, q.ItemCount)
	assert.Equal(t, int64(3000), q.Change)

	q, err = f.svc.Validate(ctx, ledger.Cash{Tendered: 47000})
	require.NoError(t, err)
	assert.Zero(t, q.Change)

	_, err = f.svc.Validate(ctx, ledger.Cash{Tendered: 46999})
	assert.ErrorIs(t, err, ErrInsufficientPayment)

	q, err = f.svc.Validate(ctx, ledger.Debit{})
	require.NoError(t, err)
	assert.Nil(t, q.CashTendered)
	assert.Zero(t, q.Change)

	assert.Equal(t, 5, f.stock(t, "gula"), "validation must not touch stock")
	assert.Zero(t, f.ledgerLen(t))
}

func TestCheckoutCommits(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	for _, id := range []string{"gula", "gula", "telur"} {
		_, err := f.svc.AddToCart(ctx, id)
		require.NoError(t, err)
	}

	tx, err := f.svc.Checkout(ctx, ledger.Cash{Tendered: 50000}, "kasir")
	require.NoError(t, err)
	assert.Regexp(t, `^TRX-\d+-[0-9A-F]{8}$`, tx.ID)
	assert.Equal(t, fixedNow, tx.Timestamp)
	assert.Equal(t, int64(47000), tx.Total)
	assert.Equal(t, int64(3000), tx.Change())
	assert.Equal(t, "kasir", tx.Cashier)
	assert.Equal(t, []ledger.Line{
		{ProductID: "gula", Name: "Gula Pasir 1kg", Category: "Bahan Pokok", Price: 15000, Quantity: 2},
		{ProductID: "telur", Name: "Telur Ayam 1kg", Category: "Protein", Price: 17000, Quantity: 1},
	}, tx.Lines)

	assert.Equal(t, 3, f.stock(t, "gula"))
	assert.Equal(t, 1, f.stock(t, "telur"))

	v, err := f.svc.Cart(ctx)
	require.NoError(t, err)
	assert.Empty(t, v.Lines)

	stored, err := f.svc.Transaction(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, tx.Total, stored.Total)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Checkouts.WithLabelValues("cash")))
	assert.Equal(t, 47000.0, testutil.ToFloat64(f.metrics.Revenue))
	assert.Equal(t, 3.0, testutil.ToFloat64(f.metrics.ItemsSold))
}

func TestCheckoutEmptyCartChangesNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.Checkout(ctx, ledger.EWallet{}, "")
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Zero(t, f.ledgerLen(t))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Rejections.WithLabelValues("empty_cart")))
}

func TestCheckoutInsufficientCashChangesNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.AddToCart(ctx, "gula")
	require.NoError(t, err)

	_, err = f.svc.Checkout(ctx, ledger.Cash{Tendered: 10000}, "")
	assert.ErrorIs(t, err, ErrInsufficientPayment)
	assert.Zero(t, f.ledgerLen(t))
	assert.Equal(t, 5, f.stock(t, "gula"))

	v, err := f.svc.Cart(ctx)
	require.NoError(t, err)
	assert.Len(t, v.Lines, 1)
}

func TestCheckoutStockExceededChangesNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.AddToCart(ctx, "telur")
	require.NoError(t, err)
	_, err = f.svc.AddToCart(ctx, "telur")
	require.NoError(t, err)
	_, err = f.svc.AddToCart(ctx, "gula")
	require.NoError(t, err)

	// stock drops underneath the staged cart
	require.NoError(t, f.catalog.DeductStock(ctx, []catalog.Deduction{{ProductID: "telur", Quantity: 1}}))

	_, err = f.svc.Checkout(ctx, ledger.Debit{}, "")
	assert.ErrorIs(t, err, ErrStockExceeded)
	assert.Zero(t, f.ledgerLen(t))
	assert.Equal(t, 1, f.stock(t, "telur"))
	assert.Equal(t, 5, f.stock(t, "gula"))

	v, err := f.svc.Cart(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, v.ItemCount)
}

func TestCheckoutDuplicateIDRestoresStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, WithIDGenerator(func(time.Time) string { return "TRX-FIXED" }))

	_, err := f.svc.AddToCart(ctx, "gula")
	require.NoError(t, err)
	_, err = f.svc.Checkout(ctx, ledger.Debit{}, "")
	require.NoError(t, err)
	require.Equal(t, 4, f.stock(t, "gula"))

	_, err = f.svc.AddToCart(ctx, "gula")
	require.NoError(t, err)
	_, err = f.svc.Checkout(ctx, ledger.Debit{}, "")
	assert.ErrorIs(t, err, ErrDuplicateID)

	assert.Equal(t, 4, f.stock(t, "gula"))
	assert.Equal(t, 1, f.ledgerLen(t))
	v, err := f.svc.Cart(ctx)
	require.NoError(t, err)
	assert.Len(t, v.Lines, 1)
}

func TestTransactionsNewestFirst(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	var ids []string
	for _, p := range []ledger.Payment{ledger.Debit{}, ledger.EWallet{}, ledger.Cash{Tendered: 15000}} {
		_, err := f.svc.AddToCart(ctx, "gula")
		require.NoError(t, err)
		tx, err := f.svc.Checkout(ctx, p, "")
		require.NoError(t, err)
		ids = append(ids, tx.ID)
	}

	txs, err := f.svc.Transactions(ctx)
	require.NoError(t, err)
	require.Len(t, txs, 3)
	assert.Equal(t, ids[2], txs[0].ID)
	assert.Equal(t, ids[0], txs[2].ID)

	_, err = f.svc.Transaction(ctx, "TRX-missing")
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestConcurrentCheckoutsNeverOversell(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 5; j++ {
				_, _ = f.svc.AddToCart(ctx, "gula")
				_, _ = f.svc.AddToCart(ctx, "telur")
				_, _ = f.svc.Checkout(ctx, ledger.Debit{}, "")
			}
		}()
	}
	wg.Wait()

	txs, err := f.svc.Transactions(ctx)
	require.NoError(t, err)

	sold := map[string]int{}
	for _, tx := range txs {
		assert.Equal(t, ledger.SumLines(tx.Lines), tx.Total)
		for _, l := range tx.Lines {
			sold[l.ProductID] += l.Quantity
		}
	}
	assert.GreaterOrEqual(t, f.stock(t, "gula"), 0)
	assert.GreaterOrEqual(t, f.stock(t, "telur"), 0)
	assert.Equal(t, 5, sold["gula"]+f.stock(t, "gula"))
	assert.Equal(t, 2, sold["telur"]+f.stock(t, "telur"))
}

func TestRejectionReason(t *testing.T) {
	assert.Equal(t, "empty_cart", rejectionReason(ErrEmptyCart))
	assert.Equal(t, "stock_exceeded", rejectionReason(catalog.ErrStockExceeded))
	assert.Equal(t, "not_found", rejectionReason(catalog.ErrNotFound))
	assert.Equal(t, "invalid_method", rejectionReason(ErrInvalidMethod))
	assert.Equal(t, "error", rejectionReason(assert.AnError))
}
