package invoice

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pharmalink/ledger/internal/types"
)

type Repository interface {
	// Create inserts the invoice. A unique violation on order_id is ErrDuplicateInvoice,
	// on invoice_number it is ErrConcurrencyConflict.
	Create(ctx context.Context, inv *Invoice) error
	Get(ctx context.Context, id string) (*Invoice, error)
	GetByOrderID(ctx context.Context, orderID string) (*Invoice, error)
	Update(ctx context.Context, inv *Invoice) error
	List(ctx context.Context, filter *types.InvoiceFilter) ([]*Invoice, error)

	// MarkOverdue flips pending invoices with due_date before asOf to overdue
	MarkOverdue(ctx context.Context, asOf time.Time) (int64, error)
	// ApplyPenalty writes the accrued penalty for day unless the invoice was already
	// accrued on or after day. Returns false when nothing changed.
	ApplyPenalty(ctx context.Context, id string, penalty, balanceDue decimal.Decimal, day time.Time) (bool, error)
}

type SequenceRepository interface {
	// Next atomically increments and returns the counter for key
	Next(ctx context.Context, key string) (int64, error)
}
