package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"pokerpot/internal/config"
	"pokerpot/internal/model"
	"pokerpot/internal/repository"
	"pokerpot/pkg/money"

	"gorm.io/gorm"
)

var (
	ErrUnknownSettingsField = errors.New("无法识别的设置字段")
	ErrInvalidSettingsValue = errors.New("设置值类型不合法")
	ErrPoolExpired          = errors.New("奖池已过期，不能恢复")
)

// 可修改的设置字段是一个封闭集合
// 字段名直接来自调用方，不走反射赋值，不认识的名字直接报错
const (
	SettingsFieldMinBuyIn           = "min_buy_in"
	SettingsFieldMaxBuyIn           = "max_buy_in"
	SettingsFieldDenominations      = "denominations"
	SettingsFieldDenominationColors = "denomination_colors"
	SettingsFieldBuyInEnabled       = "buy_in_enabled"
	SettingsFieldExpired            = "expired"
)

// SettingsService 奖池设置的批量修改
type SettingsService struct {
	db           *gorm.DB
	cfg          *config.Config
	poolRepo     *repository.PoolRepository
	settingsRepo *repository.SettingsRepository
	outboxRepo   *repository.OutboxRepository
	poolService  *PoolService
}

func NewSettingsService(db *gorm.DB, cfg *config.Config) *SettingsService {
	return &SettingsService{
		db:           db,
		cfg:          cfg,
		poolRepo:     repository.NewPoolRepository(db),
		settingsRepo: repository.NewSettingsRepository(db),
		outboxRepo:   repository.NewOutboxRepository(db),
		poolService:  NewPoolService(db, cfg),
	}
}

type SettingsUpdateRequest struct {
	Attribute string      `json:"attribute" binding:"required"`
	Value     interface{} `json:"value"`
}

type UpdateSettingsRequest struct {
	PoolID         string                  `json:"pool_id" binding:"required"`
	UpdateRequests []SettingsUpdateRequest `json:"update_requests" binding:"required,min=1"`
}

// UpdateSettings 按顺序应用一批设置修改
// 整批在一个事务里提交：要么全部生效，要么全部不生效，
// 成功后返回刷新过的完整奖池视图
func (s *SettingsService) UpdateSettings(ctx context.Context, req *UpdateSettingsRequest) (*PoolView, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		pool, err := s.poolRepo.GetByID(ctx, tx, req.PoolID)
		if err != nil {
			return err
		}

		settings, err := s.settingsRepo.GetByID(ctx, tx, pool.SettingsID)
		if err != nil {
			return err
		}

		for _, update := range req.UpdateRequests {
			if err := applySettingsUpdate(settings, update); err != nil {
				return err
			}
		}

		if settings.MinBuyIn > settings.MaxBuyIn {
			return fmt.Errorf("%w: min_buy_in 不能大于 max_buy_in", ErrInvalidSettingsValue)
		}

		if err := s.settingsRepo.Update(ctx, tx, settings); err != nil {
			return err
		}

		if err := s.poolRepo.Touch(ctx, tx, req.PoolID); err != nil {
			return err
		}

		msg := newPoolUpdatedMessage(s.cfg.Kafka.Topic.PoolUpdated, req.PoolID, PoolActionSettingsUpdated, map[string]interface{}{
			"updates": len(req.UpdateRequests),
		})
		return s.outboxRepo.Create(ctx, tx, msg)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("奖池设置已更新: poolID=%s, updates=%d", req.PoolID, len(req.UpdateRequests))

	return s.poolService.GetByID(ctx, req.PoolID)
}

// applySettingsUpdate 单条修改落到内存结构上
// 每个字段走自己的类型转换，expired 只允许 false -> true
func applySettingsUpdate(settings *model.PoolSettings, update SettingsUpdateRequest) error {
	switch update.Attribute {
	case SettingsFieldMinBuyIn:
		v, ok := toFloat(update.Value)
		if !ok {
			return fmt.Errorf("%w: %s", ErrInvalidSettingsValue, update.Attribute)
		}
		settings.MinBuyIn = money.Round2(v)

	case SettingsFieldMaxBuyIn:
		v, ok := toFloat(update.Value)
		if !ok {
			return fmt.Errorf("%w: %s", ErrInvalidSettingsValue, update.Attribute)
		}
		settings.MaxBuyIn = money.Round2(v)

	case SettingsFieldDenominations:
		v, ok := toFloatSlice(update.Value)
		if !ok || len(v) == 0 {
			return fmt.Errorf("%w: %s", ErrInvalidSettingsValue, update.Attribute)
		}
		settings.Denominations = money.JoinAmounts(v)

	case SettingsFieldDenominationColors:
		v, ok := toStringSlice(update.Value)
		if !ok {
			return fmt.Errorf("%w: %s", ErrInvalidSettingsValue, update.Attribute)
		}
		settings.DenominationColors = money.JoinColors(v)

	case SettingsFieldBuyInEnabled:
		v, ok := update.Value.(bool)
		if !ok {
			return fmt.Errorf("%w: %s", ErrInvalidSettingsValue, update.Attribute)
		}
		settings.BuyInEnabled = v

	case SettingsFieldExpired:
		v, ok := update.Value.(bool)
		if !ok {
			return fmt.Errorf("%w: %s", ErrInvalidSettingsValue, update.Attribute)
		}
		if !v && settings.Expired {
			return ErrPoolExpired
		}
		settings.Expired = v

	default:
		return fmt.Errorf("%w: %s", ErrUnknownSettingsField, update.Attribute)
	}

	return nil
}

// JSON 解码出来的数字都是 float64，整数字面量也要认
func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func toFloatSlice(v interface{}) ([]float64, bool) {
	switch list := v.(type) {
	case []float64:
		return list, true
	case []interface{}:
		out := make([]float64, 0, len(list))
		for _, item := range list {
			f, ok := toFloat(item)
			if !ok {
				return nil, false
			}
			out = append(out, f)
		}
		return out, true
	}
	return nil, false
}

func toStringSlice(v interface{}) ([]string, bool) {
	switch list := v.(type) {
	case []string:
		return list, true
	case []interface{}:
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}
