package ledger

import (
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMethod(t *testing.T) {
	for in, want := range map[string]Method{"cash": MethodCash, " DEBIT ": MethodDebit, "EWallet": MethodEWallet} {
		got, err := ParseMethod(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseMethod("qris")
	assert.ErrorIs(t, err, ErrInvalidMethod)
}

func TestNewPaymentVariants(t *testing.T) {
	p, err := NewPayment("cash", 50000)
	require.NoError(t, err)
	assert.Equal(t, Cash{Tendered: 50000}, p)

	p, err = NewPayment("debit", 50000)
	require.NoError(t, err)
	assert.Equal(t, Debit{}, p, "non-cash payments carry no tendered amount")

	_, err = NewPayment("cash", -1)
	assert.ErrorIs(t, err, ErrInvalidTransaction)
}

func TestChange(t *testing.T) {
	tx := &Transaction{Total: 47000, Payment: Cash{Tendered: 50000}}
	assert.Equal(t, int64(3000), tx.Change())

	tx.Payment = EWallet{}
	assert.Equal(t, int64(0), tx.Change())
}

func TestNewIDFormat(t *testing.T) {
	now := time.UnixMilli(1760860800123)
	id := NewID(now)
	assert.Regexp(t, regexp.MustCompile(`^TRX-1760860800123-[0-9A-F]{8}$`), id)
	assert.NotEqual(t, id, NewID(now))
}

func TestMarshalJSONCashOnlyFields(t *testing.T) {
	lines := []Line{{ProductID: "1", Name: "Beras", Price: 47000, Quantity: 1}}
	cash := &Transaction{ID: "TRX-1", Lines: lines, Total: 47000, Payment: Cash{Tendered: 50000}}
	raw, err := json.Marshal(cash)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "cash", got["payment_method"])
	assert.EqualValues(t, 50000, got["cash_tendered"])
	assert.EqualValues(t, 3000, got["change"])

	debit := &Transaction{ID: "TRX-2", Lines: lines, Total: 47000, Payment: Debit{}}
	raw, err = json.Marshal(debit)
	require.NoError(t, err)
	got = nil
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "debit", got["payment_method"])
	assert.NotContains(t, got, "cash_tendered")
	assert.NotContains(t, got, "change")
}
