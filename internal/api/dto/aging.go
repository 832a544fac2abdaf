package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type AgingReportRequest struct {
	AsOf       *time.Time `form:"as_of" time_format:"2006-01-02"`
	CustomerID string     `form:"customer_id"`
}

// AgingBuckets splits outstanding balances by invoice age in days
type AgingBuckets struct {
	Days0To30   decimal.Decimal `json:"0_30"`
	Days31To60  decimal.Decimal `json:"31_60"`
	Days61To90  decimal.Decimal `json:"61_90"`
	Days90Plus  decimal.Decimal `json:"90_plus"`
	Total       decimal.Decimal `json:"total"`
	InvoiceRows int             `json:"invoice_count"`
}

type AgingReportResponse struct {
	AsOf       time.Time    `json:"as_of"`
	CustomerID string       `json:"customer_id,omitempty"`
	Buckets    AgingBuckets `json:"buckets"`
}

// AgingRow is one line of the aging CSV export
type AgingRow struct {
	InvoiceNumber string `csv:"invoice_number"`
	CustomerID    string `csv:"customer_id"`
	OrderID       string `csv:"order_id"`
	InvoiceDate   string `csv:"invoice_date"`
	DueDate       string `csv:"due_date"`
	AgeDays       int    `csv:"age_days"`
	Bucket        string `csv:"bucket"`
	BalanceDue    string `csv:"balance_due"`
	Status        string `csv:"status"`
}
