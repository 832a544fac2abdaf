package sqlstore

import (
	"context"
	"time"

	"gorm.io/gorm"

	ierr "github.com/pharmalink/ledger/internal/errors"
	"github.com/pharmalink/ledger/internal/postgres"
	"github.com/pharmalink/ledger/internal/types"
)

// scoped restricts a query to the caller's tenant and live rows
func scoped(ctx context.Context, db *gorm.DB) *gorm.DB {
	return db.Where("tenant_id = ?", types.GetTenantID(ctx)).
		Where("status = ?", types.StatusPublished)
}

func applyQueryFilter(db *gorm.DB, f *types.QueryFilter) *gorm.DB {
	if f == nil {
		return db.Order("created_at DESC")
	}
	db = db.Order(f.GetOrderBy())
	if !f.IsUnlimited() {
		db = db.Limit(f.GetLimit()).Offset(f.GetOffset())
	}
	return db
}

// touch stamps the update audit columns
func touch(ctx context.Context, base *types.BaseModel) {
	base.UpdatedAt = time.Now().UTC()
	base.UpdatedBy = types.GetUserID(ctx)
}

func updateAudit(ctx context.Context) map[string]interface{} {
	return map[string]interface{}{
		"updated_at": time.Now().UTC(),
		"updated_by": types.GetUserID(ctx),
	}
}

func notFoundOr(err error, entity, id string) error {
	if postgres.IsNotFound(err) {
		return ierr.WithError(err).
			WithHintf("%s %s was not found", entity, id).
			WithReportableDetails(map[string]any{
				"entity": entity,
				"id":     id,
			}).
			Mark(ierr.ErrNotFound)
	}
	return ierr.WithError(err).
		WithHintf("Failed to get %s", entity).
		WithReportableDetails(map[string]any{"id": id}).
		Mark(ierr.ErrDatabase)
}

func dbError(err error, hint string, details map[string]any) error {
	return ierr.WithError(err).
		WithHint(hint).
		WithReportableDetails(details).
		Mark(ierr.ErrDatabase)
}
