package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"pokerpot/internal/config"
	"pokerpot/internal/infrastructure/lock"
	"pokerpot/internal/model"
	"pokerpot/internal/repository"
	"pokerpot/pkg/idgen"
	"pokerpot/pkg/money"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

var ErrInvalidTransactionType = errors.New("无法识别的交易类型")

// TransactionService 奖池记账引擎
// 负责把买入/提取落到奖池余额上，所有余额变更都从这里走
type TransactionService struct {
	db              *gorm.DB
	redisClient     *redis.Client
	cfg             *config.Config
	poolRepo        *repository.PoolRepository
	settingsRepo    *repository.SettingsRepository
	transactionRepo *repository.TransactionRepository
	outboxRepo      *repository.OutboxRepository
}

func NewTransactionService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *TransactionService {
	return &TransactionService{
		db:              db,
		redisClient:     redisClient,
		cfg:             cfg,
		poolRepo:        repository.NewPoolRepository(db),
		settingsRepo:    repository.NewSettingsRepository(db),
		transactionRepo: repository.NewTransactionRepository(db),
		outboxRepo:      repository.NewOutboxRepository(db),
	}
}

type CreateTransactionRequest struct {
	PoolID        string    `json:"pool_id" binding:"required"`
	ProfileID     int64     `json:"profile_id" binding:"required"`
	Type          string    `json:"type" binding:"required"`
	Amount        float64   `json:"amount" binding:"gte=0"`
	Denominations []float64 `json:"denominations"`
}

type CreateTransactionResult struct {
	TransactionNo string  `json:"transaction_no"`
	Type          string  `json:"type"`
	AppliedAmount float64 `json:"applied_amount"` // 实际入账金额，提取可能小于请求值
	Expired       bool    `json:"expired"`        // 这笔交易是否把奖池清空导致过期
}

// CreateTransaction 应用一笔交易
//
// 规则：
//   - BUY_IN: total_pot 和 available_cashout 同时加上请求金额
//   - CASH_OUT: 入账金额截断到 min(请求值, available_cashout)；
//     请求值 >= 剩余可提取时视为清池，settings.expired 翻为 true
//
// 流水插入、余额更新、过期标记、变更通知在一个数据库事务里提交，
// 任何一步失败整体回滚，不会出现"有流水没余额"的半更新状态
func (s *TransactionService) CreateTransaction(ctx context.Context, req *CreateTransactionRequest) (*CreateTransactionResult, error) {
	if !model.IsValidTransactionType(req.Type) {
		return nil, ErrInvalidTransactionType
	}

	transactionNo := idgen.GenerateTransactionNo()

	// 按奖池加分布式锁，串行化同一奖池的读改写
	if s.redisClient != nil {
		poolLock := lock.NewPoolLock(s.redisClient, req.PoolID, transactionNo)
		if err := poolLock.Lock(ctx, 100*time.Millisecond, 30); err != nil {
			return nil, fmt.Errorf("系统繁忙，请稍后重试: %w", err)
		}
		defer poolLock.Unlock(ctx)
	}

	// 乐观锁冲突时整体重试，余额读和写始终在同一个事务里
	retries := s.cfg.Business.ApplyRetryCount
	if retries < 1 {
		retries = 1
	}

	var result *CreateTransactionResult
	var err error
	for i := 0; i < retries; i++ {
		result, err = s.apply(ctx, req, transactionNo)
		if !errors.Is(err, repository.ErrOptimisticLock) {
			break
		}
	}
	if err != nil {
		return nil, err
	}

	log.Printf("交易入账: transactionNo=%s, poolID=%s, type=%s, applied=%.2f",
		result.TransactionNo, req.PoolID, result.Type, result.AppliedAmount)

	return result, nil
}

// GetByTransactionNo 按流水号查询单笔交易
func (s *TransactionService) GetByTransactionNo(ctx context.Context, transactionNo string) (*model.Transaction, error) {
	return s.transactionRepo.GetByTransactionNo(ctx, transactionNo)
}

// ListByProfileID 查询某个用户的全部流水，按时间倒序分页
func (s *TransactionService) ListByProfileID(ctx context.Context, profileID int64, page, pageSize int) ([]*model.Transaction, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = s.cfg.Business.DefaultPerPage
	}
	return s.transactionRepo.ListByProfileID(ctx, profileID, page, pageSize)
}

func (s *TransactionService) apply(ctx context.Context, req *CreateTransactionRequest, transactionNo string) (*CreateTransactionResult, error) {
	var result *CreateTransactionResult

	err := s.db.Transaction(func(tx *gorm.DB) error {
		pool, err := s.poolRepo.GetByID(ctx, tx, req.PoolID)
		if err != nil {
			return err
		}

		amount := money.Round2(req.Amount)
		applied := amount
		newTotal := pool.TotalPot
		newAvailable := pool.AvailableCashout
		expire := false

		switch req.Type {
		case model.TransactionTypeBuyIn:
			newTotal = pool.TotalPot + applied
			newAvailable = pool.AvailableCashout + applied

		case model.TransactionTypeCashOut:
			// 提取不能超过剩余可提取余额，超出部分静默截断
			if amount >= pool.AvailableCashout {
				applied = money.Round2(pool.AvailableCashout)
				// 清空剩余可提取就是奖池的唯一过期触发条件
				expire = true
			}
			newAvailable = pool.AvailableCashout - applied

		default:
			return ErrInvalidTransactionType
		}

		trans := &model.Transaction{
			TransactionNo: transactionNo,
			PoolID:        pool.ID,
			ProfileID:     req.ProfileID,
			Type:          req.Type,
			Amount:        money.Round2(applied),
			Denominations: money.JoinAmounts(req.Denominations),
		}
		if err := s.transactionRepo.Create(ctx, tx, trans); err != nil {
			return fmt.Errorf("记录流水失败: %w", err)
		}

		if err := s.poolRepo.ApplyBalance(ctx, tx, pool.ID, pool.Version, newTotal, newAvailable); err != nil {
			return err
		}

		if expire {
			if err := s.settingsRepo.MarkExpired(ctx, tx, pool.SettingsID); err != nil {
				return fmt.Errorf("标记奖池过期失败: %w", err)
			}
		}

		msg := newPoolUpdatedMessage(s.cfg.Kafka.Topic.PoolUpdated, pool.ID, PoolActionTransaction, map[string]interface{}{
			"transaction_no": transactionNo,
			"profile_id":     req.ProfileID,
			"type":           req.Type,
			"amount":         money.Round2(applied),
			"expired":        expire,
		})
		if err := s.outboxRepo.Create(ctx, tx, msg); err != nil {
			return fmt.Errorf("写入变更通知失败: %w", err)
		}

		result = &CreateTransactionResult{
			TransactionNo: transactionNo,
			Type:          req.Type,
			AppliedAmount: money.Round2(applied),
			Expired:       expire,
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return result, nil
}
