package types

import (
	"time"

	ierr "github.com/pharmalink/ledger/internal/errors"
)

const (
	FILTER_DEFAULT_LIMIT = 50
	FILTER_MAX_LIMIT     = 1000
)

type SortOrder string

const (
	SortOrderAsc  SortOrder = "asc"
	SortOrderDesc SortOrder = "desc"
)

// QueryFilter is the shared pagination and ordering filter for list endpoints
type QueryFilter struct {
	Limit  *int      `json:"limit,omitempty" form:"limit"`
	Offset *int      `json:"offset,omitempty" form:"offset"`
	Sort   *string   `json:"sort,omitempty" form:"sort"`
	Order  SortOrder `json:"order,omitempty" form:"order"`
}

func NewDefaultQueryFilter() *QueryFilter {
	limit := FILTER_DEFAULT_LIMIT
	offset := 0
	sort := "created_at"
	return &QueryFilter{
		Limit:  &limit,
		Offset: &offset,
		Sort:   &sort,
		Order:  SortOrderDesc,
	}
}

// NewNoLimitQueryFilter returns a filter that loads every row
func NewNoLimitQueryFilter() *QueryFilter {
	f := NewDefaultQueryFilter()
	f.Limit = nil
	return f
}

func (f *QueryFilter) Validate() error {
	if f == nil {
		return nil
	}
	if f.Limit != nil && (*f.Limit <= 0 || *f.Limit > FILTER_MAX_LIMIT) {
		return ierr.NewError("invalid limit").
			WithHintf("Limit must be between 1 and %d", FILTER_MAX_LIMIT).
			Mark(ierr.ErrValidation)
	}
	if f.Offset != nil && *f.Offset < 0 {
		return ierr.NewError("invalid offset").
			WithHint("Offset must not be negative").
			Mark(ierr.ErrValidation)
	}
	if f.Order != "" && f.Order != SortOrderAsc && f.Order != SortOrderDesc {
		return ierr.NewError("invalid order").
			WithHint("Order must be asc or desc").
			Mark(ierr.ErrValidation)
	}
	return nil
}

func (f *QueryFilter) GetLimit() int {
	if f == nil || f.Limit == nil {
		return 0
	}
	return *f.Limit
}

func (f *QueryFilter) GetOffset() int {
	if f == nil || f.Offset == nil {
		return 0
	}
	return *f.Offset
}

func (f *QueryFilter) GetOrderBy() string {
	sort := "created_at"
	if f != nil && f.Sort != nil && *f.Sort != "" {
		sort = *f.Sort
	}
	order := SortOrderDesc
	if f != nil && f.Order != "" {
		order = f.Order
	}
	return sort + " " + string(order)
}

func (f *QueryFilter) IsUnlimited() bool {
	return f == nil || f.Limit == nil
}

// TimeRangeFilter narrows list queries to a created_at window
type TimeRangeFilter struct {
	StartTime *time.Time `json:"start_time,omitempty" form:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty" form:"end_time"`
}

func (f *TimeRangeFilter) Validate() error {
	if f == nil {
		return nil
	}
	if f.StartTime != nil && f.EndTime != nil && f.EndTime.Before(*f.StartTime) {
		return ierr.NewError("end time must be after start time").
			WithHint("End time must be after start time").
			Mark(ierr.ErrValidation)
	}
	return nil
}
