package paymentadjustment

import "context"

type Repository interface {
	Create(ctx context.Context, adj *PaymentAdjustment) error
	Get(ctx context.Context, id string) (*PaymentAdjustment, error)
	Update(ctx context.Context, adj *PaymentAdjustment) error
	ListByOrderID(ctx context.Context, orderID string) ([]*PaymentAdjustment, error)
}
