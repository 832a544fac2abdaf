package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/sourcegraph/conc/pool"

	"github.com/pharmalink/ledger/internal/api/dto"
	"github.com/pharmalink/ledger/internal/domain/invoice"
	ierr "github.com/pharmalink/ledger/internal/errors"
	"github.com/pharmalink/ledger/internal/interfaces"
	"github.com/pharmalink/ledger/internal/types"
)

type PenaltyService = interfaces.PenaltyService

type penaltyService struct {
	ServiceParams
}

func NewPenaltyService(params ServiceParams) PenaltyService {
	return &penaltyService{
		ServiceParams: params,
	}
}

var (
	penaltyDaysPerMonth = decimal.NewFromInt(30)
	hundred             = decimal.NewFromInt(100)
)

// CalculatePenalty is the late fee accrued on total after daysOverdue at a
// monthly percentage rate, prorated by day
func CalculatePenalty(total, monthlyRate decimal.Decimal, daysOverdue int) decimal.Decimal {
	if daysOverdue <= 0 || !monthlyRate.IsPositive() {
		return decimal.Zero
	}
	penalty := total.
		Mul(monthlyRate).Div(hundred).
		Mul(decimal.NewFromInt(int64(daysOverdue))).Div(penaltyDaysPerMonth)
	return types.RoundToCurrencyPrecision(penalty, types.DefaultCurrency)
}

// CalculatePenalties marks past-due invoices overdue and accrues the penalty
// for the calendar day of asOf. A second run on the same day changes nothing.
func (s *penaltyService) CalculatePenalties(ctx context.Context, asOf time.Time) (*dto.CalculatePenaltiesResponse, error) {
	asOf = asOf.UTC()
	day := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, time.UTC)

	if s.Locker != nil {
		key := fmt.Sprintf("%s:%s:%s", types.LockScopePenaltyRun, types.GetTenantID(ctx), day.Format(time.DateOnly))
		lock, err := s.Locker.Obtain(ctx, key, s.runLockTTL())
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
				s.Logger.Warnw("failed to release penalty run lock", "error", err, "key", key)
			}
		}()
	}

	resp := &dto.CalculatePenaltiesResponse{
		AsOfDate:     day,
		TotalPenalty: decimal.Zero,
	}

	marked, err := s.InvoiceRepo.MarkOverdue(ctx, asOf)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to mark overdue invoices").
			Mark(ierr.ErrDatabase)
	}
	resp.MarkedOverdue = marked

	filter := types.NewInvoiceFilter()
	filter.QueryFilter = types.NewNoLimitQueryFilter()
	filter.InvoiceStatuses = []types.InvoiceStatus{types.InvoiceStatusOverdue}
	overdue, err := s.InvoiceRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	resp.Evaluated = len(overdue)
	if len(overdue) == 0 {
		return resp, nil
	}

	rates, err := s.loadRates(ctx, overdue)
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	activitySvc := NewActivityService(s.ServiceParams)

	p := pool.New().WithMaxGoroutines(s.maxWorkers())
	for _, inv := range overdue {
		inv := inv
		p.Go(func() {
			penalty := CalculatePenalty(inv.TotalAmount, rates[inv.CustomerID], inv.DaysOverdue(day))
			balance := inv.BalanceWithPenalty(penalty)

			applied, err := s.InvoiceRepo.ApplyPenalty(ctx, inv.ID, penalty, balance, day)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				resp.Failed++
				s.Logger.Errorw("failed to apply penalty",
					"error", err,
					"invoice_id", inv.ID,
				)
				return
			case !applied:
				resp.Skipped++
				return
			}
			resp.Accrued++
			resp.TotalPenalty = resp.TotalPenalty.Add(penalty.Sub(inv.PenaltyAmount))

			activitySvc.LogActivity(ctx, dto.ActivityRequest{
				OrderID:     inv.OrderID,
				Type:        types.ActivityTypePenaltyAccrued,
				Description: fmt.Sprintf("late penalty on %s is now %s", inv.InvoiceNumber, penalty.StringFixed(2)),
				Metadata: map[string]interface{}{
					"invoice_id":   inv.ID,
					"days_overdue": inv.DaysOverdue(day),
					"penalty":      penalty,
					"balance_due":  balance,
				},
			})
		})
	}
	p.Wait()

	s.Logger.Infow("penalty run complete",
		"as_of", day.Format(time.DateOnly),
		"marked_overdue", resp.MarkedOverdue,
		"evaluated", resp.Evaluated,
		"accrued", resp.Accrued,
		"skipped", resp.Skipped,
		"failed", resp.Failed,
	)
	return resp, nil
}

// loadRates resolves each customer's monthly rate once, before the pool starts
func (s *penaltyService) loadRates(ctx context.Context, invoices []*invoice.Invoice) (map[string]decimal.Decimal, error) {
	customerIDs := lo.Uniq(lo.Map(invoices, func(inv *invoice.Invoice, _ int) string {
		return inv.CustomerID
	}))

	rates := make(map[string]decimal.Decimal, len(customerIDs))
	for _, customerID := range customerIDs {
		line, err := s.CreditLineRepo.GetByCustomerID(ctx, customerID)
		switch {
		case err == nil:
			rates[customerID] = line.InterestRate
		case ierr.IsNotFound(err):
			rates[customerID] = s.Config.Credit.DefaultInterestRate
		default:
			return nil, err
		}
	}
	return rates, nil
}

func (s *penaltyService) maxWorkers() int {
	if s.Config.Penalty.MaxWorkers > 0 {
		return s.Config.Penalty.MaxWorkers
	}
	return 1
}

func (s *penaltyService) runLockTTL() time.Duration {
	if s.Config.Penalty.RunLockTTL > 0 {
		return s.Config.Penalty.RunLockTTL
	}
	return 10 * time.Minute
}
