package interfaces

import (
	"context"

	"github.com/shopspring/decimal"
)

// CardDetails identifies the card to charge. Exactly one of Token or
// SavedProfileRef is expected.
type CardDetails struct {
	Token           string `json:"token,omitempty"`
	SavedProfileRef string `json:"saved_profile_ref,omitempty"`
}

type ChargeRequest struct {
	Amount         decimal.Decimal
	Currency       string
	CustomerID     string
	Card           CardDetails
	IdempotencyKey string
	Description    string
}

type ChargeResult struct {
	Success        bool
	TransactionID  string
	FailureMessage string
}

type RefundRequest struct {
	TransactionID  string
	Amount         decimal.Decimal
	Currency       string
	IdempotencyKey string
}

type RefundResult struct {
	Success             bool
	RefundTransactionID string
	FailureMessage      string
}

// PaymentGateway is the card processor the settlement and refund flows call.
// Retries and timeouts are the adapter's concern.
type PaymentGateway interface {
	ChargeCard(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
	Refund(ctx context.Context, req RefundRequest) (*RefundResult, error)
}

// EmailSender delivers transactional email
type EmailSender interface {
	SendEmail(ctx context.Context, from, to, subject, html, text string) (string, error)
}
