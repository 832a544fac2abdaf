package types

type InvoiceStatus string

const (
	InvoiceStatusPending InvoiceStatus = "pending"
	InvoiceStatusPaid    InvoiceStatus = "paid"
	InvoiceStatusOverdue InvoiceStatus = "overdue"
)

// IsOutstanding reports whether the invoice still carries a balance to collect.
func (s InvoiceStatus) IsOutstanding() bool {
	return s == InvoiceStatusPending || s == InvoiceStatusOverdue
}

const (
	InvoiceNumberPrefix    = "INV"
	AdjustmentNumberPrefix = "ADJ"

	SequenceScopeInvoice    = "invoice"
	SequenceScopeAdjustment = "adjustment"
)

// InvoiceFilter is used by list and aging queries
type InvoiceFilter struct {
	*QueryFilter
	*TimeRangeFilter
	CustomerID      string          `json:"customer_id,omitempty" form:"customer_id"`
	OrderIDs        []string        `json:"order_ids,omitempty" form:"order_ids"`
	InvoiceStatuses []InvoiceStatus `json:"invoice_statuses,omitempty" form:"invoice_statuses"`
	OnlyOutstanding bool            `json:"only_outstanding,omitempty" form:"only_outstanding"`
}

func NewInvoiceFilter() *InvoiceFilter {
	return &InvoiceFilter{
		QueryFilter: NewDefaultQueryFilter(),
	}
}

func (f *InvoiceFilter) Validate() error {
	if f.QueryFilter == nil {
		f.QueryFilter = NewDefaultQueryFilter()
	}
	if err := f.QueryFilter.Validate(); err != nil {
		return err
	}
	return f.TimeRangeFilter.Validate()
}
