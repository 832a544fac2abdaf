package service

import (
	"context"
	"io"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/pharmalink/ledger/internal/api/dto"
	"github.com/pharmalink/ledger/internal/domain/invoice"
	ierr "github.com/pharmalink/ledger/internal/errors"
	"github.com/pharmalink/ledger/internal/interfaces"
	"github.com/pharmalink/ledger/internal/types"
)

type ARAgingService = interfaces.ARAgingService

type arAgingService struct {
	ServiceParams
}

func NewARAgingService(params ServiceParams) ARAgingService {
	return &arAgingService{
		ServiceParams: params,
	}
}

const (
	bucket0To30   = "0-30"
	bucket31To60  = "31-60"
	bucket61To90  = "61-90"
	bucket90Plus  = "90+"
	agingDateForm = "2006-01-02"
)

// AgeDays is the number of whole days between invoice creation and asOf
func AgeDays(inv *invoice.Invoice, asOf time.Time) int {
	if !asOf.After(inv.CreatedAt) {
		return 0
	}
	return int(asOf.Sub(inv.CreatedAt).Hours() / 24)
}

func bucketFor(ageDays int) string {
	switch {
	case ageDays <= 30:
		return bucket0To30
	case ageDays <= 60:
		return bucket31To60
	case ageDays <= 90:
		return bucket61To90
	default:
		return bucket90Plus
	}
}

// Bucketize sums outstanding balances by invoice age
func Bucketize(invoices []*invoice.Invoice, asOf time.Time) dto.AgingBuckets {
	b := dto.AgingBuckets{
		Days0To30:  decimal.Zero,
		Days31To60: decimal.Zero,
		Days61To90: decimal.Zero,
		Days90Plus: decimal.Zero,
		Total:      decimal.Zero,
	}
	for _, inv := range invoices {
		if !inv.BalanceDue.IsPositive() {
			continue
		}
		switch bucketFor(AgeDays(inv, asOf)) {
		case bucket0To30:
			b.Days0To30 = b.Days0To30.Add(inv.BalanceDue)
		case bucket31To60:
			b.Days31To60 = b.Days31To60.Add(inv.BalanceDue)
		case bucket61To90:
			b.Days61To90 = b.Days61To90.Add(inv.BalanceDue)
		default:
			b.Days90Plus = b.Days90Plus.Add(inv.BalanceDue)
		}
		b.Total = b.Total.Add(inv.BalanceDue)
		b.InvoiceRows++
	}
	return b
}

func (s *arAgingService) GetAging(ctx context.Context, req dto.AgingReportRequest) (*dto.AgingReportResponse, error) {
	asOf := s.asOf(req)
	invoices, err := s.outstanding(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}

	return &dto.AgingReportResponse{
		AsOf:       asOf,
		CustomerID: req.CustomerID,
		Buckets:    Bucketize(invoices, asOf),
	}, nil
}

// ExportAgingCSV writes one row per outstanding invoice
func (s *arAgingService) ExportAgingCSV(ctx context.Context, req dto.AgingReportRequest, w io.Writer) error {
	asOf := s.asOf(req)
	invoices, err := s.outstanding(ctx, req.CustomerID)
	if err != nil {
		return err
	}

	rows := lo.FilterMap(invoices, func(inv *invoice.Invoice, _ int) (dto.AgingRow, bool) {
		if !inv.BalanceDue.IsPositive() {
			return dto.AgingRow{}, false
		}
		age := AgeDays(inv, asOf)
		return dto.AgingRow{
			InvoiceNumber: inv.InvoiceNumber,
			CustomerID:    inv.CustomerID,
			OrderID:       inv.OrderID,
			InvoiceDate:   inv.CreatedAt.UTC().Format(agingDateForm),
			DueDate:       inv.DueDate.UTC().Format(agingDateForm),
			AgeDays:       age,
			Bucket:        bucketFor(age),
			BalanceDue:    inv.BalanceDue.StringFixed(2),
			Status:        string(inv.InvoiceStatus),
		}, true
	})

	if err := gocsv.Marshal(rows, w); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to write aging report").
			Mark(ierr.ErrInternal)
	}

	s.Logger.Debugw("exported aging report",
		"customer_id", req.CustomerID,
		"as_of", asOf,
		"rows", len(rows),
	)
	return nil
}

func (s *arAgingService) asOf(req dto.AgingReportRequest) time.Time {
	if req.AsOf != nil {
		return req.AsOf.UTC()
	}
	return time.Now().UTC()
}

func (s *arAgingService) outstanding(ctx context.Context, customerID string) ([]*invoice.Invoice, error) {
	filter := types.NewInvoiceFilter()
	filter.QueryFilter = types.NewNoLimitQueryFilter()
	filter.CustomerID = customerID
	filter.OnlyOutstanding = true

	return s.InvoiceRepo.List(ctx, filter)
}
