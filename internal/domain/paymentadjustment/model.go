package paymentadjustment

import (
	"github.com/shopspring/decimal"

	"github.com/pharmalink/ledger/internal/types"
)

// PaymentAdjustment is a post-settlement change to what a customer owes on an order
type PaymentAdjustment struct {
	ID                   string               `json:"id" gorm:"column:id;primaryKey"`
	AdjustmentNumber     string               `json:"adjustment_number" gorm:"column:adjustment_number;uniqueIndex;not null"`
	OrderID              string               `json:"order_id" gorm:"column:order_id;index;not null"`
	CustomerID           string               `json:"customer_id" gorm:"column:customer_id;index;not null"`
	AdjustmentType       types.AdjustmentType `json:"adjustment_type" gorm:"column:adjustment_type;not null"`
	OriginalAmount       decimal.Decimal      `json:"original_amount" gorm:"column:original_amount;type:numeric(20,2);not null"`
	NewAmount            decimal.Decimal      `json:"new_amount" gorm:"column:new_amount;type:numeric(20,2);not null"`
	DifferenceAmount     decimal.Decimal      `json:"difference_amount" gorm:"column:difference_amount;type:numeric(20,2);not null"`
	PaymentStatus        types.PaymentStatus  `json:"payment_status" gorm:"column:payment_status;not null"`
	RefundMethod         types.RefundMethod   `json:"refund_method,omitempty" gorm:"column:refund_method"`
	GatewayTransactionID string               `json:"gateway_transaction_id,omitempty" gorm:"column:gateway_transaction_id"`
	CreditMemoID         string               `json:"credit_memo_id,omitempty" gorm:"column:credit_memo_id"`
	FailureReason        string               `json:"failure_reason,omitempty" gorm:"column:failure_reason"`
	Reason               string               `json:"reason" gorm:"column:reason"`
	Description          string               `json:"description" gorm:"column:description"`
	types.BaseModel
}

func (PaymentAdjustment) TableName() string { return string(types.TableNamePaymentAdjustments) }

// Classification is the outcome of comparing an order total with a revised amount
type Classification struct {
	DifferenceAmount decimal.Decimal      `json:"difference_amount"`
	AdjustmentType   types.AdjustmentType `json:"adjustment_type"`
}
