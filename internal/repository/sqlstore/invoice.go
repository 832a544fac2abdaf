package sqlstore

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domainInvoice "github.com/pharmalink/ledger/internal/domain/invoice"
	ierr "github.com/pharmalink/ledger/internal/errors"
	"github.com/pharmalink/ledger/internal/logger"
	"github.com/pharmalink/ledger/internal/postgres"
	"github.com/pharmalink/ledger/internal/types"
)

type invoiceRepository struct {
	client *postgres.Client
	log    *logger.Logger
}

func NewInvoiceRepository(client *postgres.Client, log *logger.Logger) domainInvoice.Repository {
	return &invoiceRepository{client: client, log: log}
}

func (r *invoiceRepository) Create(ctx context.Context, inv *domainInvoice.Invoice) error {
	span := StartRepositorySpan(ctx, "invoice", "create", map[string]interface{}{
		"invoice_id": inv.ID,
		"order_id":   inv.OrderID,
	})
	defer FinishSpan(span)

	if err := r.client.Writer(ctx).Create(inv).Error; err != nil {
		SetSpanError(span, err)
		switch {
		case postgres.IsUniqueViolation(err, "order_id"):
			return ierr.WithError(err).
				WithHint("An invoice already exists for this order").
				WithReportableDetails(map[string]any{"order_id": inv.OrderID}).
				Mark(ierr.ErrDuplicateInvoice)
		case postgres.IsUniqueViolation(err, "invoice_number"):
			return ierr.WithError(err).
				WithHint("Invoice number was allocated concurrently").
				WithReportableDetails(map[string]any{"invoice_number": inv.InvoiceNumber}).
				Mark(ierr.ErrConcurrencyConflict)
		}
		return dbError(err, "Failed to create invoice", map[string]any{"order_id": inv.OrderID})
	}
	SetSpanSuccess(span)
	return nil
}

func (r *invoiceRepository) Get(ctx context.Context, id string) (*domainInvoice.Invoice, error) {
	var inv domainInvoice.Invoice
	if err := scoped(ctx, r.client.Reader(ctx)).Where("id = ?", id).First(&inv).Error; err != nil {
		return nil, notFoundOr(err, "invoice", id)
	}
	return &inv, nil
}

func (r *invoiceRepository) GetByOrderID(ctx context.Context, orderID string) (*domainInvoice.Invoice, error) {
	var inv domainInvoice.Invoice
	if err := scoped(ctx, r.client.Reader(ctx)).Where("order_id = ?", orderID).First(&inv).Error; err != nil {
		return nil, notFoundOr(err, "invoice for order", orderID)
	}
	return &inv, nil
}

func (r *invoiceRepository) Update(ctx context.Context, inv *domainInvoice.Invoice) error {
	touch(ctx, &inv.BaseModel)
	if err := r.client.Writer(ctx).Save(inv).Error; err != nil {
		return dbError(err, "Failed to update invoice", map[string]any{"invoice_id": inv.ID})
	}
	return nil
}

func (r *invoiceRepository) List(ctx context.Context, filter *types.InvoiceFilter) ([]*domainInvoice.Invoice, error) {
	if filter == nil {
		filter = types.NewInvoiceFilter()
	}

	q := scoped(ctx, r.client.Reader(ctx))
	if filter.CustomerID != "" {
		q = q.Where("customer_id = ?", filter.CustomerID)
	}
	if len(filter.OrderIDs) > 0 {
		q = q.Where("order_id IN ?", filter.OrderIDs)
	}
	if len(filter.InvoiceStatuses) > 0 {
		q = q.Where("invoice_status IN ?", filter.InvoiceStatuses)
	}
	if filter.OnlyOutstanding {
		q = q.Where("balance_due > 0")
	}
	if filter.TimeRangeFilter != nil {
		if filter.StartTime != nil {
			q = q.Where("created_at >= ?", *filter.StartTime)
		}
		if filter.EndTime != nil {
			q = q.Where("created_at < ?", *filter.EndTime)
		}
	}

	var invoices []*domainInvoice.Invoice
	if err := applyQueryFilter(q, filter.QueryFilter).Find(&invoices).Error; err != nil {
		return nil, dbError(err, "Failed to list invoices", nil)
	}
	return invoices, nil
}

func (r *invoiceRepository) MarkOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	updates := updateAudit(ctx)
	updates["invoice_status"] = types.InvoiceStatusOverdue

	res := scoped(ctx, r.client.Writer(ctx).Model(&domainInvoice.Invoice{})).
		Where("invoice_status = ?", types.InvoiceStatusPending).
		Where("due_date < ?", asOf).
		Where("balance_due > 0").
		Updates(updates)
	if res.Error != nil {
		return 0, dbError(res.Error, "Failed to mark overdue invoices", nil)
	}
	return res.RowsAffected, nil
}

func (r *invoiceRepository) ApplyPenalty(ctx context.Context, id string, penalty, balanceDue decimal.Decimal, day time.Time) (bool, error) {
	updates := updateAudit(ctx)
	updates["penalty_amount"] = penalty
	updates["balance_due"] = balanceDue
	updates["last_penalty_date"] = day

	res := scoped(ctx, r.client.Writer(ctx).Model(&domainInvoice.Invoice{})).
		Where("id = ?", id).
		Where("invoice_status = ?", types.InvoiceStatusOverdue).
		Where("(last_penalty_date IS NULL OR last_penalty_date < ?)", day).
		Updates(updates)
	if res.Error != nil {
		return false, dbError(res.Error, "Failed to apply invoice penalty", map[string]any{"invoice_id": id})
	}
	return res.RowsAffected > 0, nil
}

type sequenceRepository struct {
	client *postgres.Client
	log    *logger.Logger
}

func NewSequenceRepository(client *postgres.Client, log *logger.Logger) domainInvoice.SequenceRepository {
	return &sequenceRepository{client: client, log: log}
}

// Next upserts the counter row and reads it back inside one transaction. The
// upsert holds the row lock until commit so concurrent callers serialize.
func (r *sequenceRepository) Next(ctx context.Context, key string) (int64, error) {
	tenantID := types.GetTenantID(ctx)
	var value int64

	err := r.client.WithTx(ctx, func(txCtx context.Context) error {
		db := r.client.Writer(txCtx)

		seq := domainInvoice.Sequence{
			SequenceKey: key,
			TenantID:    tenantID,
			LastValue:   1,
			UpdatedAt:   time.Now().UTC(),
		}
		if err := db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "sequence_key"}, {Name: "tenant_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"last_value": gorm.Expr("invoice_sequences.last_value + 1"),
				"updated_at": time.Now().UTC(),
			}),
		}).Create(&seq).Error; err != nil {
			return err
		}

		var current domainInvoice.Sequence
		if err := db.Where("sequence_key = ? AND tenant_id = ?", key, tenantID).First(&current).Error; err != nil {
			return err
		}
		value = current.LastValue
		return nil
	})
	if err != nil {
		return 0, dbError(err, "Failed to allocate sequence number", map[string]any{"sequence_key": key})
	}
	return value, nil
}
