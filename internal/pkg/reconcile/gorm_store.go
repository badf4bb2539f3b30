package reconcile

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore implements Store for a gorm model M addressed through *M.
type GormStore[M any, PM interface {
	*M
	Record
}] struct {
	db *gorm.DB
}

// NewGormStore creates a Store for the model M.
func NewGormStore[M any, PM interface {
	*M
	Record
}](db *gorm.DB) *GormStore[M, PM] {
	return &GormStore[M, PM]{db: db}
}

func (s *GormStore[M, PM]) FindOne(ctx context.Context, key map[string]any) (PM, bool, error) {
	var m M
	err := s.db.WithContext(ctx).Where(key).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return PM(&m), true, nil
}

func (s *GormStore[M, PM]) Insert(ctx context.Context, rec PM) (uint, error) {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(rec).Error; err != nil {
		return 0, err
	}
	return rec.GetID(), nil
}

// Update overwrites every column of the row with the given id, zero values included.
func (s *GormStore[M, PM]) Update(ctx context.Context, id uint, rec PM) error {
	rec.SetID(id)
	return s.db.WithContext(ctx).
		Model(rec).
		Select("*").
		Omit("id", "created_at", clause.Associations).
		Updates(rec).Error
}
