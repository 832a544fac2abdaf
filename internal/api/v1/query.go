package v1

import (
	"github.com/pharmalink/ledger/internal/types"
)

// listQuery is the pagination shared by list endpoints
type listQuery struct {
	Limit      *int   `form:"limit"`
	Offset     *int   `form:"offset"`
	CustomerID string `form:"customer_id"`
	Status     string `form:"status"`
}

func (q listQuery) toQueryFilter() *types.QueryFilter {
	filter := types.NewDefaultQueryFilter()
	if q.Limit != nil {
		filter.Limit = q.Limit
	}
	if q.Offset != nil {
		filter.Offset = q.Offset
	}
	return filter
}
