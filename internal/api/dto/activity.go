package dto

import (
	"github.com/pharmalink/ledger/internal/domain/activity"
	"github.com/pharmalink/ledger/internal/types"
)

// ActivityRequest is an audit entry to record. Before and After are snapshots
// serialised as JSON.
type ActivityRequest struct {
	OrderID     string
	Type        types.ActivityType
	Description string
	Metadata    map[string]interface{}
	Before      interface{}
	After       interface{}
}

type ListActivitiesResponse struct {
	Items []*activity.Activity `json:"items"`
}
