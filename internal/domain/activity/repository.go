package activity

import "context"

type Repository interface {
	Create(ctx context.Context, activity *Activity) error
	ListByOrderID(ctx context.Context, orderID string) ([]*Activity, error)
}
