package dto

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pharmalink/ledger/internal/domain/creditapplication"
	"github.com/pharmalink/ledger/internal/domain/creditline"
	ierr "github.com/pharmalink/ledger/internal/errors"
	"github.com/pharmalink/ledger/internal/types"
	"github.com/pharmalink/ledger/internal/validator"
)

type SubmitCreditApplicationRequest struct {
	CustomerID      string                             `json:"customer_id" validate:"required"`
	RequestedAmount decimal.Decimal                    `json:"requested_amount" validate:"decimal_gt0"`
	BusinessInfo    map[string]string                  `json:"business_info,omitempty"`
	BankInfo        map[string]string                  `json:"bank_info,omitempty"`
	TradeReferences []creditapplication.TradeReference `json:"trade_references,omitempty"`
	Signature       string                             `json:"signature" validate:"required"`
}

func (r *SubmitCreditApplicationRequest) Validate() error {
	return validator.ValidateRequest(r)
}

func (r *SubmitCreditApplicationRequest) ToCreditApplication(ctx context.Context) *creditapplication.CreditApplication {
	return &creditapplication.CreditApplication{
		ID:                types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CREDIT_APPLICATION),
		CustomerID:        r.CustomerID,
		RequestedAmount:   r.RequestedAmount,
		BusinessInfo:      r.BusinessInfo,
		BankInfo:          r.BankInfo,
		TradeReferences:   r.TradeReferences,
		Signature:         r.Signature,
		ApplicationStatus: types.CreditApplicationStatusPending,
		BaseModel:         types.GetDefaultBaseModel(ctx),
	}
}

// ReviewCreditApplicationRequest carries an admin decision. Optional terms fall
// back to the requested amount, net 30 and the configured interest rate.
type ReviewCreditApplicationRequest struct {
	Decision        types.ReviewDecision `json:"decision"`
	ApprovedAmount  *decimal.Decimal     `json:"approved_amount,omitempty"`
	NetTerms        *int                 `json:"net_terms,omitempty"`
	InterestRate    *decimal.Decimal     `json:"interest_rate,omitempty"`
	RejectionReason string               `json:"rejection_reason,omitempty"`
}

func (r *ReviewCreditApplicationRequest) Validate() error {
	if r.Decision == "" {
		return ierr.NewError("decision is required").
			WithHint("Review decision must be approved or rejected").
			Mark(ierr.ErrValidation)
	}
	if err := r.Decision.Validate(); err != nil {
		return err
	}

	if r.Decision == types.ReviewDecisionRejected {
		if strings.TrimSpace(r.RejectionReason) == "" {
			return ierr.NewError("rejection reason is required").
				WithHint("Please provide a reason when rejecting a credit application").
				Mark(ierr.ErrValidation)
		}
		return nil
	}

	if r.ApprovedAmount != nil && !r.ApprovedAmount.IsPositive() {
		return ierr.NewError("approved amount must be positive").
			WithHint("Approved credit limit must be greater than zero").
			WithReportableDetails(map[string]any{"approved_amount": r.ApprovedAmount}).
			Mark(ierr.ErrValidation)
	}
	if r.NetTerms != nil {
		if err := types.NetTerms(*r.NetTerms).Validate(); err != nil {
			return err
		}
	}
	if r.InterestRate != nil && r.InterestRate.IsNegative() {
		return ierr.NewError("interest rate must not be negative").
			WithHint("Interest rate must be zero or greater").
			WithReportableDetails(map[string]any{"interest_rate": r.InterestRate}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

type CreditApplicationResponse struct {
	*creditapplication.CreditApplication
}

type ReviewCreditApplicationResponse struct {
	Application *creditapplication.CreditApplication `json:"application"`
	CreditLine  *creditline.CreditLine               `json:"credit_line,omitempty"`
	Terms       *creditline.SentCreditTerms          `json:"terms,omitempty"`
}

type ListCreditApplicationsResponse struct {
	Items []*creditapplication.CreditApplication `json:"items"`
}

type ExpireCreditApplicationsRequest struct {
	AsOf *time.Time `json:"as_of,omitempty"`
}

type ExpireCreditApplicationsResponse struct {
	Expired []string `json:"expired"`
}

type CreditUsageRequest struct {
	CustomerID string          `json:"customer_id" validate:"required"`
	Amount     decimal.Decimal `json:"amount" validate:"decimal_gt0"`
}

func (r *CreditUsageRequest) Validate() error {
	return validator.ValidateRequest(r)
}

type CreditLineResponse struct {
	*creditline.CreditLine
}

type CalculatePenaltiesRequest struct {
	AsOf *time.Time `json:"as_of,omitempty"`
}

// CalculatePenaltiesResponse summarises one penalty run
type CalculatePenaltiesResponse struct {
	AsOfDate      time.Time       `json:"as_of_date"`
	MarkedOverdue int64           `json:"marked_overdue"`
	Evaluated     int             `json:"evaluated"`
	Accrued       int             `json:"accrued"`
	Skipped       int             `json:"skipped"`
	Failed        int             `json:"failed"`
	TotalPenalty  decimal.Decimal `json:"total_penalty"`
}
