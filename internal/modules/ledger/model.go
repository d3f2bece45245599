package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrDuplicateID = errors.New("duplicate transaction id")
	ErrNotFound    = errors.New("transaction not found")
	// ErrInvalidMethod is returned for any payment method outside cash, debit and ewallet.
	ErrInvalidMethod      = errors.New("invalid payment_method")
	ErrInvalidTransaction = errors.New("invalid transaction")
)

// Method is how a sale was settled.
type Method string

const (
	MethodCash    Method = "cash"
	MethodDebit   Method = "debit"
	MethodEWallet Method = "ewallet"
)

// Methods lists every accepted method in display order.
var Methods = []Method{MethodCash, MethodDebit, MethodEWallet}

func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case MethodCash, MethodDebit, MethodEWallet:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q (allowed: cash, debit, ewallet)", ErrInvalidMethod, s)
}

// Label is the cashier-facing name of the method.
func (m Method) Label() string {
	switch m {
	case MethodCash:
		return "Tunai"
	case MethodDebit:
		return "Kartu Debit"
	case MethodEWallet:
		return "E-Wallet"
	}
	return string(m)
}

// Payment is one of Cash, Debit or EWallet. Only Cash carries a tendered amount.
type Payment interface {
	Method() Method
	isPayment()
}

// Cash is a payment in notes and coins.
type Cash struct {
	Tendered int64
}

// Debit is a card payment authorised outside this system.
type Debit struct{}

// EWallet is a wallet payment authorised outside this system.
type EWallet struct{}

func (Cash) Method() Method    { return MethodCash }
func (Debit) Method() Method   { return MethodDebit }
func (EWallet) Method() Method { return MethodEWallet }

func (Cash) isPayment()    {}
func (Debit) isPayment()   {}
func (EWallet) isPayment() {}

// NewPayment builds the payment variant for method. tendered is only read for cash.
func NewPayment(method string, tendered int64) (Payment, error) {
	m, err := ParseMethod(method)
	if err != nil {
		return nil, err
	}
	switch m {
	case MethodCash:
		if tendered < 0 {
			return nil, fmt.Errorf("%w: cash_tendered cannot be negative", ErrInvalidTransaction)
		}
		return Cash{Tendered: tendered}, nil
	case MethodDebit:
		return Debit{}, nil
	default:
		return EWallet{}, nil
	}
}

// Line is a cart line frozen at the price it was sold for.
type Line struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
}

func (l Line) Subtotal() int64 { return l.Price * int64(l.Quantity) }

// Transaction is a committed sale. It is never modified after it is appended.
type Transaction struct {
	ID        string
	Timestamp time.Time
	Lines     []Line
	Total     int64
	Payment   Payment
	Cashier   string
}

// NewID returns TRX-<unix millis>-<random suffix>.
func NewID(now time.Time) string {
	return fmt.Sprintf("TRX-%d-%s", now.UnixMilli(), strings.ToUpper(uuid.New().String()[:8]))
}

// SumLines totals a snapshot.
func SumLines(lines []Line) int64 {
	var total int64
	for _, l := range lines {
		total += l.Subtotal()
	}
	return total
}

// Change is the cash handed back; zero for non-cash payments.
func (t *Transaction) Change() int64 {
	if c, ok := t.Payment.(Cash); ok {
		return c.Tendered - t.Total
	}
	return 0
}

func (t *Transaction) ItemCount() int {
	n := 0
	for _, l := range t.Lines {
		n += l.Quantity
	}
	return n
}

// Validate enforces the invariants a transaction must hold before it may be stored.
func (t *Transaction) Validate() error {
	switch {
	case t.ID == "":
		return fmt.Errorf("%w: id is required", ErrInvalidTransaction)
	case len(t.Lines) == 0:
		return fmt.Errorf("%w: %s has no lines", ErrInvalidTransaction, t.ID)
	case t.Payment == nil:
		return fmt.Errorf("%w: %s has no payment", ErrInvalidTransaction, t.ID)
	}
	for _, l := range t.Lines {
		if l.Quantity < 1 || l.Price < 0 {
			return fmt.Errorf("%w: %s has a bad line for %s", ErrInvalidTransaction, t.ID, l.ProductID)
		}
	}
	if sum := SumLines(t.Lines); sum != t.Total {
		return fmt.Errorf("%w: %s total %d does not match lines %d", ErrInvalidTransaction, t.ID, t.Total, sum)
	}
	if t.Change() < 0 {
		return fmt.Errorf("%w: %s cash tendered below total", ErrInvalidTransaction, t.ID)
	}
	return nil
}

func (t *Transaction) clone() *Transaction {
	c := *t
	c.Lines = append([]Line(nil), t.Lines...)
	return &c
}

type transactionJSON struct {
	ID            string    `json:"id"`
	Timestamp     time.Time `json:"timestamp"`
	Lines         []Line    `json:"lines"`
	Total         int64     `json:"total"`
	ItemCount     int       `json:"item_count"`
	PaymentMethod Method    `json:"payment_method"`
	CashTendered  *int64    `json:"cash_tendered,omitempty"`
	Change        *int64    `json:"change,omitempty"`
	Cashier       string    `json:"cashier,omitempty"`
}

// MarshalJSON flattens the payment variant; cash_tendered and change only
// appear on cash sales.
func (t *Transaction) MarshalJSON() ([]byte, error) {
	out := transactionJSON{
		ID:        t.ID,
		Timestamp: t.Timestamp,
		Lines:     t.Lines,
		Total:     t.Total,
		ItemCount: t.ItemCount(),
		Cashier:   t.Cashier,
	}
	if t.Payment != nil {
		out.PaymentMethod = t.Payment.Method()
	}
	if c, ok := t.Payment.(Cash); ok {
		tendered, change := c.Tendered, t.Change()
		out.CashTendered, out.Change = &tendered, &change
	}
	return json.Marshal(out)
}
