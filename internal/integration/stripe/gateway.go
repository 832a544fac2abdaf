package stripe

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/stripe/stripe-go/v82"

	"github.com/pharmalink/ledger/internal/config"
	ierr "github.com/pharmalink/ledger/internal/errors"
	"github.com/pharmalink/ledger/internal/interfaces"
	"github.com/pharmalink/ledger/internal/logger"
	"github.com/pharmalink/ledger/internal/types"
)

// Gateway charges and refunds cards through Stripe PaymentIntents
type Gateway struct {
	client   *stripe.Client
	currency string
	logger   *logger.Logger
}

// Options overrides the Stripe backend, used by tests to point at a local server
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewGateway builds the Stripe gateway. Transport retries are handled by
// retryablehttp, so Stripe's own network retries are disabled and every
// write carries an idempotency key.
func NewGateway(cfg *config.Configuration, log *logger.Logger) interfaces.PaymentGateway {
	return newGateway(cfg, log, Options{})
}

func NewGatewayWithOptions(cfg *config.Configuration, log *logger.Logger, opts Options) interfaces.PaymentGateway {
	return newGateway(cfg, log, opts)
}

func newGateway(cfg *config.Configuration, log *logger.Logger, opts Options) *Gateway {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		retryClient := retryablehttp.NewClient()
		retryClient.RetryMax = cfg.Stripe.MaxRetries
		retryClient.Logger = log.GetRetryableHTTPLogger()
		httpClient = retryClient.StandardClient()
		httpClient.Timeout = cfg.Stripe.Timeout
	}

	backendCfg := &stripe.BackendConfig{
		HTTPClient:        httpClient,
		MaxNetworkRetries: stripe.Int64(0),
	}
	if opts.BaseURL != "" {
		backendCfg.URL = stripe.String(opts.BaseURL)
	}

	currency := strings.ToLower(cfg.Stripe.Currency)
	if currency == "" {
		currency = types.DefaultCurrency
	}

	return &Gateway{
		client:   stripe.NewClient(cfg.Stripe.SecretKey, stripe.WithBackends(stripe.NewBackendsWithConfig(backendCfg))),
		currency: currency,
		logger:   log,
	}
}

func (g *Gateway) ChargeCard(ctx context.Context, req interfaces.ChargeRequest) (*interfaces.ChargeResult, error) {
	if !req.Amount.IsPositive() {
		return nil, ierr.NewError("charge amount must be positive").
			WithReportableDetails(map[string]any{"amount": req.Amount}).
			Mark(ierr.ErrValidation)
	}

	currency := g.currencyFor(req.Currency)
	params := &stripe.PaymentIntentCreateParams{
		Amount:   stripe.Int64(types.ToMinorUnits(req.Amount, currency)),
		Currency: stripe.String(currency),
		Confirm:  stripe.Bool(true),
		AutomaticPaymentMethods: &stripe.PaymentIntentCreateAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
	}
	switch {
	case req.Card.Token != "":
		params.PaymentMethod = stripe.String(req.Card.Token)
	case req.Card.SavedProfileRef != "":
		params.PaymentMethod = stripe.String(req.Card.SavedProfileRef)
		params.OffSession = stripe.Bool(true)
	default:
		return nil, ierr.NewError("card token or saved profile is required").
			WithHint("Provide a card token or a saved payment profile").
			Mark(ierr.ErrValidation)
	}
	if req.Description != "" {
		params.Description = stripe.String(req.Description)
	}
	params.AddMetadata("ledger_customer_id", req.CustomerID)
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}

	intent, err := g.client.V1PaymentIntents.Create(ctx, params)
	if err != nil {
		if declined, msg := isDecline(err); declined {
			g.logger.Warnw("card charge declined",
				"customer_id", req.CustomerID,
				"amount", req.Amount.String(),
				"reason", msg)
			return &interfaces.ChargeResult{Success: false, FailureMessage: msg}, nil
		}
		g.logger.Errorw("failed to create payment intent",
			"customer_id", req.CustomerID,
			"amount", req.Amount.String(),
			"error", err)
		return nil, ierr.WithError(err).
			WithHint("Card payment could not be processed").
			Mark(ierr.ErrGateway)
	}

	if intent.Status != stripe.PaymentIntentStatusSucceeded {
		g.logger.Warnw("payment intent not settled",
			"payment_intent_id", intent.ID,
			"status", intent.Status)
		return &interfaces.ChargeResult{
			Success:        false,
			TransactionID:  intent.ID,
			FailureMessage: "payment " + string(intent.Status),
		}, nil
	}

	g.logger.Infow("charged card",
		"payment_intent_id", intent.ID,
		"customer_id", req.CustomerID,
		"amount", req.Amount.String(),
		"currency", currency)

	return &interfaces.ChargeResult{Success: true, TransactionID: intent.ID}, nil
}

func (g *Gateway) Refund(ctx context.Context, req interfaces.RefundRequest) (*interfaces.RefundResult, error) {
	if req.TransactionID == "" {
		return nil, ierr.NewError("transaction id is required").
			WithHint("The order has no gateway transaction to refund").
			Mark(ierr.ErrValidation)
	}

	currency := g.currencyFor(req.Currency)
	params := &stripe.RefundCreateParams{
		PaymentIntent: stripe.String(req.TransactionID),
		Amount:        stripe.Int64(types.ToMinorUnits(req.Amount, currency)),
	}
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}

	refund, err := g.client.V1Refunds.Create(ctx, params)
	if err != nil {
		if declined, msg := isDecline(err); declined {
			return &interfaces.RefundResult{Success: false, FailureMessage: msg}, nil
		}
		g.logger.Errorw("failed to create refund",
			"payment_intent_id", req.TransactionID,
			"amount", req.Amount.String(),
			"error", err)
		return nil, ierr.WithError(err).
			WithHint("Refund could not be processed").
			Mark(ierr.ErrGateway)
	}

	if refund.Status == stripe.RefundStatusFailed || refund.Status == stripe.RefundStatusCanceled {
		return &interfaces.RefundResult{
			Success:             false,
			RefundTransactionID: refund.ID,
			FailureMessage:      "refund " + string(refund.Status),
		}, nil
	}

	g.logger.Infow("refunded payment",
		"payment_intent_id", req.TransactionID,
		"refund_id", refund.ID,
		"amount", req.Amount.String())

	return &interfaces.RefundResult{Success: true, RefundTransactionID: refund.ID}, nil
}

func (g *Gateway) currencyFor(currency string) string {
	if currency == "" {
		return g.currency
	}
	return strings.ToLower(currency)
}

// isDecline separates card and request errors, which are answers, from
// transport and API failures
func isDecline(err error) (bool, string) {
	var stripeErr *stripe.Error
	if !errors.As(err, &stripeErr) {
		return false, ""
	}
	switch stripeErr.Type {
	case stripe.ErrorTypeCard, stripe.ErrorTypeInvalidRequest:
		return true, stripeErr.Msg
	}
	return false, ""
}
