package types

import (
	"github.com/samber/lo"

	ierr "github.com/pharmalink/ledger/internal/errors"
)

type PaymentMethod string

const (
	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodCredit PaymentMethod = "credit"
	PaymentMethodManual PaymentMethod = "manual"
)

func (m PaymentMethod) Validate() error {
	allowed := []PaymentMethod{PaymentMethodCard, PaymentMethodCredit, PaymentMethodManual}
	if !lo.Contains(allowed, m) {
		return ierr.NewError("invalid payment method").
			WithHint("Payment method must be card, credit or manual").
			WithReportableDetails(map[string]any{
				"payment_method": m,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusPaid      PaymentStatus = "paid"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

type OrderStatus string

const (
	OrderStatusNew                      OrderStatus = "new"
	OrderStatusCreditApprovalProcessing OrderStatus = "credit_approval_processing"
	OrderStatusProcessing               OrderStatus = "processing"
	OrderStatusShipped                  OrderStatus = "shipped"
	OrderStatusDelivered                OrderStatus = "delivered"
	OrderStatusCancelled                OrderStatus = "cancelled"
)
