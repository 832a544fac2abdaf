package sqlstore

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/pharmalink/ledger/internal/cache"
	domainOffer "github.com/pharmalink/ledger/internal/domain/offer"
	ierr "github.com/pharmalink/ledger/internal/errors"
	"github.com/pharmalink/ledger/internal/logger"
	"github.com/pharmalink/ledger/internal/postgres"
	"github.com/pharmalink/ledger/internal/types"
)

type offerRepository struct {
	client *postgres.Client
	log    *logger.Logger
	cache  cache.Cache
	ttl    time.Duration
}

func NewOfferRepository(client *postgres.Client, log *logger.Logger, c cache.Cache, ttl time.Duration) domainOffer.Repository {
	if c == nil {
		c = cache.NoopCache{}
	}
	return &offerRepository{client: client, log: log, cache: c, ttl: ttl}
}

func (r *offerRepository) Create(ctx context.Context, o *domainOffer.Offer) error {
	if err := r.client.Writer(ctx).Create(o).Error; err != nil {
		if postgres.IsUniqueViolation(err) {
			return ierr.WithError(err).
				WithHint("An offer with this code already exists").
				WithReportableDetails(map[string]any{"code": o.Code}).
				Mark(ierr.ErrAlreadyExists)
		}
		return dbError(err, "Failed to create offer", map[string]any{"offer_id": o.ID})
	}
	return nil
}

func (r *offerRepository) Get(ctx context.Context, id string) (*domainOffer.Offer, error) {
	key := cache.GenerateKey(cache.PrefixOffer, types.GetTenantID(ctx), id)
	if v, ok := r.cache.Get(ctx, key); ok {
		if o, ok := cache.UnmarshalCacheValue[domainOffer.Offer](v); ok {
			return o, nil
		}
	}

	var o domainOffer.Offer
	if err := scoped(ctx, r.client.Reader(ctx)).Where("id = ?", id).First(&o).Error; err != nil {
		return nil, notFoundOr(err, "offer", id)
	}
	r.setCache(ctx, &o)
	return &o, nil
}

func (r *offerRepository) GetByCode(ctx context.Context, code string) (*domainOffer.Offer, error) {
	var o domainOffer.Offer
	if err := scoped(ctx, r.client.Reader(ctx)).Where("code = ?", code).First(&o).Error; err != nil {
		return nil, notFoundOr(err, "offer with code", code)
	}
	r.setCache(ctx, &o)
	return &o, nil
}

func (r *offerRepository) IncrementUsage(ctx context.Context, id string) error {
	updates := updateAudit(ctx)
	updates["used_count"] = gorm.Expr("used_count + 1")

	res := scoped(ctx, r.client.Writer(ctx).Model(&domainOffer.Offer{})).
		Where("id = ?", id).
		Where("(usage_limit = 0 OR used_count < usage_limit)").
		Updates(updates)
	if res.Error != nil {
		return dbError(res.Error, "Failed to increment offer usage", map[string]any{"offer_id": id})
	}

	r.cache.Delete(ctx, cache.GenerateKey(cache.PrefixOffer, types.GetTenantID(ctx), id))

	if res.RowsAffected == 0 {
		if _, err := r.Get(ctx, id); err != nil {
			return err
		}
		return ierr.NewError("offer usage limit reached").
			WithHint("This promo code has reached its usage limit").
			WithReportableDetails(map[string]any{"offer_id": id}).
			Mark(ierr.ErrInvalidOperation)
	}
	return nil
}

func (r *offerRepository) setCache(ctx context.Context, o *domainOffer.Offer) {
	r.cache.Set(ctx, cache.GenerateKey(cache.PrefixOffer, types.GetTenantID(ctx), o.ID), o, r.ttl)
}
