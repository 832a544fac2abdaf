package activity

import (
	"time"

	"github.com/pharmalink/ledger/internal/types"
)

// Activity is an immutable audit row
type Activity struct {
	ID           string                 `json:"id" gorm:"column:id;primaryKey"`
	TenantID     string                 `json:"tenant_id" gorm:"column:tenant_id;index;not null"`
	OrderID      string                 `json:"order_id,omitempty" gorm:"column:order_id;index"`
	ActivityType types.ActivityType     `json:"activity_type" gorm:"column:activity_type;not null"`
	Description  string                 `json:"description" gorm:"column:description"`
	Metadata     map[string]interface{} `json:"metadata,omitempty" gorm:"column:metadata;serializer:json;type:text"`
	Before       interface{}            `json:"before,omitempty" gorm:"column:before_snapshot;serializer:json;type:text"`
	After        interface{}            `json:"after,omitempty" gorm:"column:after_snapshot;serializer:json;type:text"`
	CreatedBy    string                 `json:"created_by,omitempty" gorm:"column:created_by"`
	CreatedAt    time.Time              `json:"created_at" gorm:"column:created_at;not null"`
}

func (Activity) TableName() string { return string(types.TableNameActivityLogs) }
