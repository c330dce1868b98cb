package repository

import (
	"context"
	"errors"

	"pokerpot/internal/model"
	"pokerpot/pkg/money"

	"gorm.io/gorm"
)

var (
	ErrPoolNotFound   = errors.New("奖池不存在")
	ErrOptimisticLock = errors.New("奖池并发更新冲突，请重试")
)

type PoolRepository struct {
	db *gorm.DB
}

func NewPoolRepository(db *gorm.DB) *PoolRepository {
	return &PoolRepository{db: db}
}

func (r *PoolRepository) Create(ctx context.Context, tx *gorm.DB, pool *model.Pool) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(pool).Error
}

func (r *PoolRepository) GetByID(ctx context.Context, tx *gorm.DB, id string) (*model.Pool, error) {
	if tx == nil {
		tx = r.db
	}
	var pool model.Pool
	err := tx.WithContext(ctx).Where("id = ?", id).First(&pool).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPoolNotFound
		}
		return nil, err
	}
	return &pool, nil
}

// ApplyBalance 条件更新奖池余额（乐观锁）
//
// WHERE 带上读到的 version，RowsAffected=0 说明读改写期间有并发写入，
// 由调用方整体重试，保证并发提取不会把 available_cashout 扣成负数
func (r *PoolRepository) ApplyBalance(ctx context.Context, tx *gorm.DB, poolID string, version int, totalPot, availableCashout float64) error {
	if tx == nil {
		tx = r.db
	}

	result := tx.WithContext(ctx).
		Model(&model.Pool{}).
		Where("id = ? AND version = ?", poolID, version).
		Updates(map[string]interface{}{
			"total_pot":         money.Round2(totalPot),
			"available_cashout": money.Round2(availableCashout),
			"version":           gorm.Expr("version + 1"),
		})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&model.Pool{}).Where("id = ?", poolID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrPoolNotFound
		}
		return ErrOptimisticLock
	}

	return nil
}

// Touch 刷新最后修改时间
// 加入成员、修改设置等不动余额的变更也要让奖池排到列表前面
func (r *PoolRepository) Touch(ctx context.Context, tx *gorm.DB, poolID string) error {
	if tx == nil {
		tx = r.db
	}

	result := tx.WithContext(ctx).
		Model(&model.Pool{}).
		Where("id = ?", poolID).
		Update("version", gorm.Expr("version + 1"))

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPoolNotFound
	}
	return nil
}

// ListByUserID 查询用户加入的奖池，按最近活跃倒序分页
// expired 过滤依赖 settings 表的过期标记
func (r *PoolRepository) ListByUserID(ctx context.Context, profileID int64, expired bool, itemOffset, perPage int) ([]*model.Pool, error) {
	var pools []*model.Pool
	err := r.db.WithContext(ctx).
		Model(&model.Pool{}).
		Joins("JOIN pool_member ON pool_member.pool_id = pool.id").
		Joins("JOIN pool_settings ON pool_settings.id = pool.settings_id").
		Where("pool_member.profile_id = ? AND pool_settings.expired = ?", profileID, expired).
		Order("pool.updated_at DESC").
		Offset(itemOffset).
		Limit(perPage).
		Find(&pools).Error
	return pools, err
}

// ListByDeviceID 查询某设备创建的奖池，按最近活跃倒序分页
func (r *PoolRepository) ListByDeviceID(ctx context.Context, deviceID int64, itemOffset, perPage int) ([]*model.Pool, error) {
	var pools []*model.Pool
	err := r.db.WithContext(ctx).
		Where("device_id = ?", deviceID).
		Order("updated_at DESC").
		Offset(itemOffset).
		Limit(perPage).
		Find(&pools).Error
	return pools, err
}
