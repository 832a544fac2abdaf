package stripe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmalink/ledger/internal/config"
	ierr "github.com/pharmalink/ledger/internal/errors"
	"github.com/pharmalink/ledger/internal/interfaces"
	"github.com/pharmalink/ledger/internal/logger"
)

func newTestGateway(t *testing.T, handler http.HandlerFunc) interfaces.PaymentGateway {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.GetDefaultConfig()
	cfg.Stripe.SecretKey = "sk_test_ledger"
	return NewGatewayWithOptions(cfg, logger.NewNopLogger(), Options{
		BaseURL:    server.URL,
		HTTPClient: server.Client(),
	})
}

func TestGateway_ChargeCard(t *testing.T) {
	var gotPath, gotKey, gotForm string
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("Idempotency-Key")
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm.Get("amount")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"pi_123","object":"payment_intent","status":"succeeded"}`))
	})

	res, err := gw.ChargeCard(context.Background(), interfaces.ChargeRequest{
		Amount:         decimal.RequireFromString("125.50"),
		CustomerID:     "cust_1",
		Card:           interfaces.CardDetails{Token: "pm_card_visa"},
		IdempotencyKey: "charge-key",
	})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "pi_123", res.TransactionID)
	assert.Equal(t, "/v1/payment_intents", gotPath)
	assert.Equal(t, "charge-key", gotKey)
	assert.Equal(t, "12550", gotForm)
}

func TestGateway_ChargeCardDeclined(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(`{"error":{"type":"card_error","code":"card_declined","message":"Your card was declined."}}`))
	})

	res, err := gw.ChargeCard(context.Background(), interfaces.ChargeRequest{
		Amount: decimal.NewFromInt(10),
		Card:   interfaces.CardDetails{Token: "pm_card_declined"},
	})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "Your card was declined.", res.FailureMessage)
}

func TestGateway_ChargeCardServerError(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"type":"api_error","message":"boom"}}`))
	})

	_, err := gw.ChargeCard(context.Background(), interfaces.ChargeRequest{
		Amount: decimal.NewFromInt(10),
		Card:   interfaces.CardDetails{SavedProfileRef: "pm_saved"},
	})
	require.Error(t, err)
	assert.True(t, ierr.IsGateway(err))
}

func TestGateway_ChargeCardValidation(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("gateway must not be called")
	})

	_, err := gw.ChargeCard(context.Background(), interfaces.ChargeRequest{Amount: decimal.NewFromInt(10)})
	assert.True(t, ierr.IsValidation(err))

	_, err = gw.ChargeCard(context.Background(), interfaces.ChargeRequest{
		Amount: decimal.Zero,
		Card:   interfaces.CardDetails{Token: "pm_card_visa"},
	})
	assert.True(t, ierr.IsValidation(err))
}

func TestGateway_Refund(t *testing.T) {
	var gotIntent string
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotIntent = r.PostForm.Get("payment_intent")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"re_1","object":"refund","status":"succeeded"}`))
	})

	res, err := gw.Refund(context.Background(), interfaces.RefundRequest{
		TransactionID: "pi_123",
		Amount:        decimal.RequireFromString("20.00"),
	})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "re_1", res.RefundTransactionID)
	assert.Equal(t, "pi_123", gotIntent)
}
