package types

import (
	"context"
	"time"
)

// Status is the soft-delete lifecycle shared by every persisted entity.
type Status string

const (
	StatusPublished Status = "published"
	StatusDeleted   Status = "deleted"
	StatusArchived  Status = "archived"
)

// BaseModel carries the audit columns every table has.
type BaseModel struct {
	TenantID  string    `db:"tenant_id" json:"tenant_id" gorm:"column:tenant_id;index;not null"`
	Status    Status    `db:"status" json:"status" gorm:"column:status;not null;default:published"`
	CreatedAt time.Time `db:"created_at" json:"created_at" gorm:"column:created_at;not null"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at" gorm:"column:updated_at;not null"`
	CreatedBy string    `db:"created_by" json:"created_by,omitempty" gorm:"column:created_by"`
	UpdatedBy string    `db:"updated_by" json:"updated_by,omitempty" gorm:"column:updated_by"`
}

// GetDefaultBaseModel builds a BaseModel stamped with the caller on ctx.
func GetDefaultBaseModel(ctx context.Context) BaseModel {
	now := time.Now().UTC()
	return BaseModel{
		TenantID:  GetTenantID(ctx),
		Status:    StatusPublished,
		CreatedAt: now,
		UpdatedAt: now,
		CreatedBy: GetUserID(ctx),
		UpdatedBy: GetUserID(ctx),
	}
}

// Metadata is free-form string metadata attached to entities.
type Metadata map[string]string
