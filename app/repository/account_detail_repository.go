package repository

import (
	"context"
	"errors"
	"time"

	"github.com/ManuelReschke/SlotSync/app/models"
	"github.com/ManuelReschke/SlotSync/internal/pkg/reconcile"
	"github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const timezoneCacheTTL = 10 * time.Minute

// AccountDetailRepository reads and reconciles location details. Timezone
// lookups are cached in Redis when a client is configured.
type AccountDetailRepository struct {
	*reconcile.GormStore[models.AccountDetail, *models.AccountDetail]
	db  *gorm.DB
	rdb *redis.Client
}

func NewAccountDetailRepository(db *gorm.DB, rdb *redis.Client) *AccountDetailRepository {
	return &AccountDetailRepository{
		GormStore: reconcile.NewGormStore[models.AccountDetail](db),
		db:        db,
		rdb:       rdb,
	}
}

func timezoneCacheKey(locationID string) string {
	return "slotsync:timezone:" + locationID
}

// LocationTimezone returns the stored IANA zone of a location, or "" when the
// location has no details yet.
func (r *AccountDetailRepository) LocationTimezone(ctx context.Context, locationID string) (string, error) {
	if r.rdb != nil {
		tz, err := r.rdb.Get(ctx, timezoneCacheKey(locationID)).Result()
		if err == nil {
			return tz, nil
		}
		if !errors.Is(err, redis.Nil) {
			log.Warnf("[AccountDetails] timezone cache read failed: %v", err)
		}
	}

	var detail models.AccountDetail
	err := r.db.WithContext(ctx).
		Select(models.ColAccountDetailTimezone).
		Where(map[string]any{models.ColAccountDetailAccountID: locationID}).
		Take(&detail).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	if r.rdb != nil && detail.Timezone != "" {
		if err := r.rdb.Set(ctx, timezoneCacheKey(locationID), detail.Timezone, timezoneCacheTTL).Err(); err != nil {
			log.Warnf("[AccountDetails] timezone cache write failed: %v", err)
		}
	}
	return detail.Timezone, nil
}

// Update writes the row and drops the cached timezone.
func (r *AccountDetailRepository) Update(ctx context.Context, id uint, rec *models.AccountDetail) error {
	if err := r.GormStore.Update(ctx, id, rec); err != nil {
		return err
	}
	r.forget(ctx, rec.AccountID)
	return nil
}

func (r *AccountDetailRepository) forget(ctx context.Context, locationID string) {
	if r.rdb == nil {
		return
	}
	if err := r.rdb.Del(ctx, timezoneCacheKey(locationID)).Err(); err != nil {
		log.Warnf("[AccountDetails] timezone cache delete failed: %v", err)
	}
}
