package repository

import (
	"context"
	"errors"

	"pokerpot/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MemberRepository struct {
	db *gorm.DB
}

func NewMemberRepository(db *gorm.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

// AddIfAbsent 幂等入池
// (pool_id, profile_id) 上有唯一索引，重复加入走 ON CONFLICT DO NOTHING
func (r *MemberRepository) AddIfAbsent(ctx context.Context, tx *gorm.DB, poolID string, profileID int64) error {
	if tx == nil {
		tx = r.db
	}
	member := &model.PoolMember{
		PoolID:    poolID,
		ProfileID: profileID,
	}
	return tx.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "pool_id"}, {Name: "profile_id"}},
			DoNothing: true,
		}).
		Create(member).Error
}

func (r *MemberRepository) Exists(ctx context.Context, poolID string, profileID int64) (bool, error) {
	var member model.PoolMember
	err := r.db.WithContext(ctx).
		Where("pool_id = ? AND profile_id = ?", poolID, profileID).
		First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ListByPoolID 按加入先后返回成员
func (r *MemberRepository) ListByPoolID(ctx context.Context, poolID string) ([]*model.PoolMember, error) {
	var members []*model.PoolMember
	err := r.db.WithContext(ctx).
		Where("pool_id = ?", poolID).
		Order("id ASC").
		Find(&members).Error
	return members, err
}

func (r *MemberRepository) CountByPoolID(ctx context.Context, poolID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.PoolMember{}).
		Where("pool_id = ?", poolID).
		Count(&count).Error
	return count, err
}
