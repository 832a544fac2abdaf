package discount

import "context"

type CommitRepository interface {
	// Create inserts the marker, ErrAlreadyExists when the line was committed before
	Create(ctx context.Context, commit *Commit) error
	ListByOrderID(ctx context.Context, orderID string) ([]*Commit, error)
}
