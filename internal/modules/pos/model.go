package pos

import (
	"errors"

	"github.com/georgemunganga/kelontong-pos/internal/modules/cart"
	"github.com/georgemunganga/kelontong-pos/internal/modules/catalog"
	"github.com/georgemunganga/kelontong-pos/internal/modules/ledger"
)

var (
	ErrEmptyCart           = errors.New("cart is empty")
	ErrInsufficientPayment = errors.New("insufficient payment")

	ErrStockExceeded = catalog.ErrStockExceeded
	ErrOutOfStock    = cart.ErrOutOfStock
	ErrDuplicateID   = ledger.ErrDuplicateID
	ErrInvalidMethod = ledger.ErrInvalidMethod
)

// IsNotFound reports an unknown product, cart line or transaction.
func IsNotFound(err error) bool {
	return errors.Is(err, catalog.ErrNotFound) ||
		errors.Is(err, cart.ErrNotFound) ||
		errors.Is(err, ledger.ErrNotFound)
}

// CartLineView is a cart line priced at the catalog's current values.
type CartLineView struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
	Stock     int    `json:"stock"`
	Subtotal  int64  `json:"subtotal"`
}

// CartView is the read model of the cart handed to callers.
type CartView struct {
	Lines     []CartLineView `json:"lines"`
	ItemCount int            `json:"item_count"`
	Total     int64          `json:"total"`
}

// Quote is the outcome of a successful validation: what a commit would charge.
type Quote struct {
	Total         int64         `json:"total"`
	ItemCount     int           `json:"item_count"`
	PaymentMethod ledger.Method `json:"payment_method"`
	CashTendered  *int64        `json:"cash_tendered,omitempty"`
	Change        int64         `json:"change"`
}

// AddItemRequest is the payload for adding one unit of a product to the cart.
type AddItemRequest struct {
	ProductID string `json:"product_id"`
}

// SetQuantityRequest is the payload for changing a cart line's quantity.
type SetQuantityRequest struct {
	Quantity *int `json:"quantity"`
}

// CheckoutRequest is the payload for quoting or committing a sale.
type CheckoutRequest struct {
	PaymentMethod string `json:"payment_method"`
	CashTendered  int64  `json:"cash_tendered,omitempty"`
}
