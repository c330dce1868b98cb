package repository

import (
	"context"
	"errors"

	"pokerpot/internal/model"

	"gorm.io/gorm"
)

var ErrPoolSettingsNotFound = errors.New("奖池设置不存在")

type SettingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

func (r *SettingsRepository) Create(ctx context.Context, tx *gorm.DB, settings *model.PoolSettings) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(settings).Error
}

func (r *SettingsRepository) GetByID(ctx context.Context, tx *gorm.DB, id int64) (*model.PoolSettings, error) {
	if tx == nil {
		tx = r.db
	}
	var settings model.PoolSettings
	err := tx.WithContext(ctx).Where("id = ?", id).First(&settings).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPoolSettingsNotFound
		}
		return nil, err
	}
	return &settings, nil
}

// Update 整行保存，调用方负责在一个事务里完成批量修改
func (r *SettingsRepository) Update(ctx context.Context, tx *gorm.DB, settings *model.PoolSettings) error {
	if tx == nil {
		tx = r.db
	}
	result := tx.WithContext(ctx).
		Model(&model.PoolSettings{}).
		Where("id = ?", settings.ID).
		Updates(map[string]interface{}{
			"min_buy_in":          settings.MinBuyIn,
			"max_buy_in":          settings.MaxBuyIn,
			"denominations":       settings.Denominations,
			"denomination_colors": settings.DenominationColors,
			"has_password":        settings.HasPassword,
			"hash":                settings.Hash,
			"buy_in_enabled":      settings.BuyInEnabled,
			"expired":             settings.Expired,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPoolSettingsNotFound
	}
	return nil
}

// MarkExpired 过期是单向开关，只会从 false 翻到 true
// 已过期的奖池重复标记是空操作，不算错误
func (r *SettingsRepository) MarkExpired(ctx context.Context, tx *gorm.DB, id int64) error {
	if tx == nil {
		tx = r.db
	}
	result := tx.WithContext(ctx).
		Model(&model.PoolSettings{}).
		Where("id = ? AND expired = ?", id, false).
		Update("expired", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := tx.WithContext(ctx).Model(&model.PoolSettings{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrPoolSettingsNotFound
		}
	}
	return nil
}
