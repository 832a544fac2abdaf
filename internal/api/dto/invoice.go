package dto

import (
	"github.com/shopspring/decimal"

	"github.com/pharmalink/ledger/internal/domain/invoice"
	"github.com/pharmalink/ledger/internal/validator"
)

type RecordInvoicePaymentRequest struct {
	Amount    decimal.Decimal `json:"amount" validate:"decimal_gt0"`
	Reference string          `json:"reference,omitempty"`
}

func (r *RecordInvoicePaymentRequest) Validate() error {
	return validator.ValidateRequest(r)
}

type InvoiceResponse struct {
	*invoice.Invoice
}

type ListInvoicesResponse struct {
	Items []*invoice.Invoice `json:"items"`
}

// CreateInvoiceParams are the billing inputs captured at settlement
type CreateInvoiceParams struct {
	PreDiscountSubtotal decimal.Decimal
	TaxAmount           decimal.Decimal
	// NetTerms overrides the configured default when set
	NetTerms *int
}
