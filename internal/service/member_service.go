package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"pokerpot/internal/config"
	"pokerpot/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var ErrInvalidPassword = errors.New("奖池密码错误")

// MemberService 奖池成员管理
type MemberService struct {
	db           *gorm.DB
	cfg          *config.Config
	poolRepo     *repository.PoolRepository
	settingsRepo *repository.SettingsRepository
	memberRepo   *repository.MemberRepository
	outboxRepo   *repository.OutboxRepository
}

func NewMemberService(db *gorm.DB, cfg *config.Config) *MemberService {
	return &MemberService{
		db:           db,
		cfg:          cfg,
		poolRepo:     repository.NewPoolRepository(db),
		settingsRepo: repository.NewSettingsRepository(db),
		memberRepo:   repository.NewMemberRepository(db),
		outboxRepo:   repository.NewOutboxRepository(db),
	}
}

type JoinPoolRequest struct {
	PoolID    string `json:"pool_id" binding:"required"`
	ProfileID int64  `json:"profile_id" binding:"required"`
	Password  string `json:"password"`
}

// Join 加入奖池
// 有密码的奖池先过 bcrypt 校验（恒定时间比较），
// 重复加入是幂等空操作，不算错误
func (s *MemberService) Join(ctx context.Context, req *JoinPoolRequest) error {
	pool, err := s.poolRepo.GetByID(ctx, nil, req.PoolID)
	if err != nil {
		return err
	}

	settings, err := s.settingsRepo.GetByID(ctx, nil, pool.SettingsID)
	if err != nil {
		return err
	}

	if settings.HasPassword {
		if err := bcrypt.CompareHashAndPassword([]byte(settings.Hash), []byte(req.Password)); err != nil {
			return ErrInvalidPassword
		}
	}

	// 已经是成员就到此为止，不刷新活跃时间也不发通知
	exists, err := s.memberRepo.Exists(ctx, req.PoolID, req.ProfileID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.memberRepo.AddIfAbsent(ctx, tx, req.PoolID, req.ProfileID); err != nil {
			return fmt.Errorf("加入奖池失败: %w", err)
		}

		// 入池也算奖池变更，刷新最近活跃时间
		if err := s.poolRepo.Touch(ctx, tx, req.PoolID); err != nil {
			return err
		}

		msg := newPoolUpdatedMessage(s.cfg.Kafka.Topic.PoolUpdated, req.PoolID, PoolActionMemberJoined, map[string]interface{}{
			"profile_id": req.ProfileID,
		})
		return s.outboxRepo.Create(ctx, tx, msg)
	})
	if err != nil {
		return err
	}

	log.Printf("加入奖池: poolID=%s, profileID=%d", req.PoolID, req.ProfileID)
	return nil
}

// Count 奖池当前成员数
func (s *MemberService) Count(ctx context.Context, poolID string) (int64, error) {
	if _, err := s.poolRepo.GetByID(ctx, nil, poolID); err != nil {
		return 0, err
	}
	return s.memberRepo.CountByPoolID(ctx, poolID)
}
