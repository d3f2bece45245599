package pos

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/georgemunganga/kelontong-pos/internal/modules/auth"
	"github.com/georgemunganga/kelontong-pos/internal/modules/ledger"
	"github.com/georgemunganga/kelontong-pos/internal/modules/receipt"
	"github.com/georgemunganga/kelontong-pos/internal/pkg/cache"
)

const idempotencyTTL = 24 * time.Hour

// Handler exposes POS HTTP endpoints.
type Handler struct {
	service Service
	idem    cache.Cache // nil disables Idempotency-Key replay
	printer *receipt.Printer
}

func NewHandler(service Service, idem cache.Cache, printer *receipt.Printer) *Handler {
	return &Handler{service: service, idem: idem, printer: printer}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/pos", func(r chi.Router) {
		r.Get("/cart", h.getCart)                          // GET    /api/v1/pos/cart
		r.Delete("/cart", h.clearCart)                     // DELETE /api/v1/pos/cart
		r.Post("/cart/items", h.addItem)                   // POST   /api/v1/pos/cart/items
		r.Put("/cart/items/{product_id}", h.setQuantity)   // PUT    /api/v1/pos/cart/items/{id}
		r.Delete("/cart/items/{product_id}", h.removeItem) // DELETE /api/v1/pos/cart/items/{id}
		r.Post("/checkout/quote", h.quote)                 // POST   /api/v1/pos/checkout/quote
		r.Post("/checkout", h.checkout)                    // POST   /api/v1/pos/checkout
		r.Get("/transactions", h.listTransactions)         // GET    /api/v1/pos/transactions
		r.Get("/transactions/{id}", h.getTransaction)      // GET    /api/v1/pos/transactions/{id}
		r.Get("/transactions/{id}/receipt", h.getReceipt)  // GET    /api/v1/pos/transactions/{id}/receipt
	})
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	v, err := h.service.Cart(r.Context())
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, v)
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ClearCart(r.Context()); err != nil {
		fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if req.ProductID == "" {
		respond(w, http.StatusBadRequest, map[string]string{"error": "product_id is required"})
		return
	}
	v, err := h.service.AddToCart(r.Context(), req.ProductID)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, v)
}

func (h *Handler) setQuantity(w http.ResponseWriter, r *http.Request) {
	var req SetQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if req.Quantity == nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "quantity is required"})
		return
	}
	v, err := h.service.SetQuantity(r.Context(), chi.URLParam(r, "product_id"), *req.Quantity)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, v)
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	v, err := h.service.RemoveFromCart(r.Context(), chi.URLParam(r, "product_id"))
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, v)
}

func (h *Handler) quote(w http.ResponseWriter, r *http.Request) {
	payment, ok := decodePayment(w, r)
	if !ok {
		return
	}
	q, err := h.service.Validate(r.Context(), payment)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, q)
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	payment, ok := decodePayment(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	var idemKey string
	if key := r.Header.Get("Idempotency-Key"); key != "" && h.idem != nil {
		idemKey = h.idem.GenerateKey("checkout", key)
		id, err := h.idem.Get(ctx, idemKey)
		if err != nil {
			slog.WarnContext(ctx, "idempotency lookup failed", "error", err)
		} else if id != "" {
			tx, err := h.service.Transaction(ctx, id)
			if err == nil {
				w.Header().Set("Idempotent-Replayed", "true")
				respond(w, http.StatusOK, tx)
				return
			}
			slog.WarnContext(ctx, "idempotency key points at missing transaction", "transaction_id", id, "error", err)
		}
	}

	var cashier string
	if id, ok := auth.FromContext(ctx); ok {
		cashier = id.Username
	}
	tx, err := h.service.Checkout(ctx, payment, cashier)
	if err != nil {
		fail(w, err)
		return
	}
	if idemKey != "" {
		if err := h.idem.Set(ctx, idemKey, tx.ID, idempotencyTTL); err != nil {
			slog.WarnContext(ctx, "idempotency store failed", "transaction_id", tx.ID, "error", err)
		}
	}
	respond(w, http.StatusCreated, tx)
}

func (h *Handler) listTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := h.service.Transactions(r.Context())
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, txs)
}

func (h *Handler) getTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := h.service.Transaction(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, tx)
}

func (h *Handler) getReceipt(w http.ResponseWriter, r *http.Request) {
	tx, err := h.service.Transaction(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := h.printer.Render(w, tx); err != nil {
		slog.WarnContext(r.Context(), "render receipt", "transaction_id", tx.ID, "error", err)
	}
}

func decodePayment(w http.ResponseWriter, r *http.Request) (ledger.Payment, bool) {
	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return nil, false
	}
	payment, err := ledger.NewPayment(req.PaymentMethod, req.CashTendered)
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return nil, false
	}
	return payment, true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrInvalidMethod), errors.Is(err, ledger.ErrInvalidTransaction):
		return http.StatusBadRequest
	case IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, ErrStockExceeded), errors.Is(err, ErrOutOfStock), errors.Is(err, ErrDuplicateID):
		return http.StatusConflict
	case errors.Is(err, ErrEmptyCart), errors.Is(err, ErrInsufficientPayment):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func fail(w http.ResponseWriter, err error) {
	respond(w, statusFor(err), map[string]string{"error": err.Error()})
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
