package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/pharmalink/ledger/internal/api/dto"
	"github.com/pharmalink/ledger/internal/domain/creditline"
	ierr "github.com/pharmalink/ledger/internal/errors"
	"github.com/pharmalink/ledger/internal/interfaces"
	"github.com/pharmalink/ledger/internal/types"
)

type CreditLineService = interfaces.CreditLineService

type creditLineService struct {
	ServiceParams
}

func NewCreditLineService(params ServiceParams) CreditLineService {
	return &creditLineService{
		ServiceParams: params,
	}
}

func (s *creditLineService) GetCreditLine(ctx context.Context, customerID string) (*dto.CreditLineResponse, error) {
	line, err := s.CreditLineRepo.GetByCustomerID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return &dto.CreditLineResponse{CreditLine: line}, nil
}

// RecordCreditUsage draws amount from the customer's line. The check and the
// increment are a single conditional update at the store.
func (s *creditLineService) RecordCreditUsage(ctx context.Context, customerID string, amount decimal.Decimal) (*creditline.CreditLine, error) {
	req := dto.CreditUsageRequest{CustomerID: customerID, Amount: amount}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	amount = types.RoundToCurrencyPrecision(amount, types.DefaultCurrency)
	line, err := s.CreditLineRepo.IncrementUsage(ctx, customerID, amount)
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil, ierr.WithError(err).
				WithHint("Customer has no approved credit line").
				WithReportableDetails(map[string]any{"customer_id": customerID}).
				Mark(ierr.ErrInvalidOperation)
		}
		return nil, err
	}

	s.Logger.Infow("recorded credit usage",
		"customer_id", customerID,
		"amount", amount,
		"used_credit", line.UsedCredit,
		"available_credit", line.AvailableCredit,
	)
	return line, nil
}

// RecordCreditRepayment releases usage, flooring used credit at zero
func (s *creditLineService) RecordCreditRepayment(ctx context.Context, customerID string, amount decimal.Decimal) (*creditline.CreditLine, error) {
	req := dto.CreditUsageRequest{CustomerID: customerID, Amount: amount}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	amount = types.RoundToCurrencyPrecision(amount, types.DefaultCurrency)
	line, err := s.CreditLineRepo.DecrementUsage(ctx, customerID, amount)
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("recorded credit repayment",
		"customer_id", customerID,
		"amount", amount,
		"used_credit", line.UsedCredit,
		"available_credit", line.AvailableCredit,
	)
	return line, nil
}
