package pos

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/georgemunganga/kelontong-pos/internal/modules/cart"
	"github.com/georgemunganga/kelontong-pos/internal/modules/catalog"
	"github.com/georgemunganga/kelontong-pos/internal/modules/ledger"
	"github.com/georgemunganga/kelontong-pos/internal/pkg/metrics"
)

// Service is the till: it owns the single cart and is the only path by which
// a cart becomes a transaction and catalog stock changes.
type Service interface {
	// AddToCart stages one more unit of a product, clamped to its stock.
	AddToCart(ctx context.Context, productID string) (*CartView, error)

	// SetQuantity sets a line's quantity; 0 removes the line.
	SetQuantity(ctx context.Context, productID string, quantity int) (*CartView, error)

	RemoveFromCart(ctx context.Context, productID string) (*CartView, error)
	ClearCart(ctx context.Context) error
	Cart(ctx context.Context) (*CartView, error)

	// Validate checks a payment against the current cart without changing anything.
	Validate(ctx context.Context, payment ledger.Payment) (*Quote, error)

	// Checkout validates, settles and clears the cart as one step.
	Checkout(ctx context.Context, payment ledger.Payment, cashier string) (*ledger.Transaction, error)

	Transactions(ctx context.Context) ([]*ledger.Transaction, error)
	Transaction(ctx context.Context, id string) (*ledger.Transaction, error)
}

// Option configures the service.
type Option func(*service)

func WithClock(clock func() time.Time) Option { return func(s *service) { s.clock = clock } }

func WithIDGenerator(newID func(time.Time) string) Option {
	return func(s *service) { s.newID = newID }
}

func WithMetrics(m *metrics.CheckoutMetrics) Option { return func(s *service) { s.metrics = m } }

func WithLogger(l *slog.Logger) Option { return func(s *service) { s.log = l } }

type service struct {
	mu      sync.Mutex
	cart    *cart.Cart
	catalog catalog.Repository
	ledger  ledger.Repository
	settler Settler

	clock   func() time.Time
	newID   func(time.Time) string
	metrics *metrics.CheckoutMetrics
	log     *slog.Logger
}

func NewService(cat catalog.Repository, led ledger.Repository, settler Settler, opts ...Option) Service {
	s := &service{
		cart:    cart.New(),
		catalog: cat,
		ledger:  led,
		settler: settler,
		clock:   time.Now,
		newID:   ledger.NewID,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With("component", "pos")
	return s
}

func (s *service) AddToCart(ctx context.Context, productID string) (*CartView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.catalog.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if err := s.cart.Add(p, p.Stock); err != nil {
		return nil, err
	}
	return s.viewLocked(ctx)
}

func (s *service) SetQuantity(ctx context.Context, productID string, quantity int) (*CartView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cart.Quantity(productID) == 0 {
		return nil, fmt.Errorf("%w: %s", cart.ErrNotFound, productID)
	}
	stock := 0
	p, err := s.catalog.GetByID(ctx, productID)
	switch {
	case err == nil:
		stock = p.Stock
	case !errors.Is(err, catalog.ErrNotFound):
		return nil, err
	}
	if err := s.cart.SetQuantity(productID, quantity, stock); err != nil {
		return nil, err
	}
	return s.viewLocked(ctx)
}

func (s *service) RemoveFromCart(ctx context.Context, productID string) (*CartView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cart.Quantity(productID) == 0 {
		return nil, fmt.Errorf("%w: %s", cart.ErrNotFound, productID)
	}
	s.cart.Remove(productID)
	return s.viewLocked(ctx)
}

func (s *service) ClearCart(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.Clear()
	return nil
}

func (s *service) Cart(ctx context.Context) (*CartView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked(ctx)
}

func (s *service) Validate(ctx context.Context, payment ledger.Payment) (*Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, q, err := s.validateLocked(ctx, payment)
	if err != nil {
		return nil, err
	}
	return q, nil
}

func (s *service) Checkout(ctx context.Context, payment ledger.Payment, cashier string) (*ledger.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines, q, err := s.validateLocked(ctx, payment)
	if err != nil {
		s.reject(ctx, err)
		return nil, err
	}

	now := s.clock()
	tx := &ledger.Transaction{
		ID:        s.newID(now),
		Timestamp: now,
		Lines:     lines,
		Total:     q.Total,
		Payment:   payment,
		Cashier:   cashier,
	}
	if err := s.settler.Settle(ctx, tx); err != nil {
		s.reject(ctx, err)
		return nil, err
	}
	s.cart.Clear()

	s.metrics.ObserveCommit(string(payment.Method()), tx.Total, tx.ItemCount())
	s.log.InfoContext(ctx, "checkout committed",
		"transaction_id", tx.ID,
		"total", tx.Total,
		"items", tx.ItemCount(),
		"payment_method", payment.Method(),
		"change", tx.Change(),
	)
	return tx, nil
}

func (s *service) Transactions(ctx context.Context) ([]*ledger.Transaction, error) {
	txs, err := s.ledger.All(ctx)
	if err != nil {
		return nil, err
	}
	if txs == nil {
		txs = []*ledger.Transaction{}
	}
	return txs, nil
}

func (s *service) Transaction(ctx context.Context, id string) (*ledger.Transaction, error) {
	return s.ledger.GetByID(ctx, id)
}

// ── helpers ───────────────────────────────────────────────────────────────────

// validateLocked freezes the cart into ledger lines at current catalog values
// and checks the payment covers them. Nothing is mutated.
func (s *service) validateLocked(ctx context.Context, payment ledger.Payment) ([]ledger.Line, *Quote, error) {
	if payment == nil {
		return nil, nil, fmt.Errorf("%w: payment is required", ErrInvalidMethod)
	}
	if s.cart.Len() == 0 {
		return nil, nil, ErrEmptyCart
	}

	lines := make([]ledger.Line, 0, s.cart.Len())
	for _, l := range s.cart.Lines() {
		p, err := s.catalog.GetByID(ctx, l.ProductID)
		if err != nil {
			return nil, nil, err
		}
		lines = append(lines, ledger.Line{
			ProductID: p.ID,
			Name:      p.Name,
			Category:  p.Category,
			Price:     p.Price,
			Quantity:  l.Quantity,
		})
	}

	q := &Quote{
		Total:         ledger.SumLines(lines),
		ItemCount:     s.cart.ItemCount(),
		PaymentMethod: payment.Method(),
	}
	if c, ok := payment.(ledger.Cash); ok {
		if c.Tendered < q.Total {
			return nil, nil, fmt.Errorf("%w: tendered %d, total %d", ErrInsufficientPayment, c.Tendered, q.Total)
		}
		tendered := c.Tendered
		q.CashTendered = &tendered
		q.Change = c.Tendered - q.Total
	}
	return lines, q, nil
}

func (s *service) viewLocked(ctx context.Context) (*CartView, error) {
	v := &CartView{Lines: []CartLineView{}}
	for _, l := range s.cart.Lines() {
		p, err := s.catalog.GetByID(ctx, l.ProductID)
		if errors.Is(err, catalog.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		sub := p.Price * int64(l.Quantity)
		v.Lines = append(v.Lines, CartLineView{
			ProductID: p.ID,
			Name:      p.Name,
			Category:  p.Category,
			Price:     p.Price,
			Quantity:  l.Quantity,
			Stock:     p.Stock,
			Subtotal:  sub,
		})
		v.ItemCount += l.Quantity
		v.Total += sub
	}
	return v, nil
}

func (s *service) reject(ctx context.Context, err error) {
	reason := rejectionReason(err)
	s.metrics.ObserveRejection(reason)
	s.log.WarnContext(ctx, "checkout rejected", "reason", reason, "error", err)
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, ErrEmptyCart):
		return "empty_cart"
	case errors.Is(err, ErrInsufficientPayment):
		return "insufficient_payment"
	case errors.Is(err, ErrStockExceeded):
		return "stock_exceeded"
	case errors.Is(err, ErrDuplicateID):
		return "duplicate_id"
	case IsNotFound(err):
		return "not_found"
	case errors.Is(err, ErrInvalidMethod):
		return "invalid_method"
	}
	return "error"
}
