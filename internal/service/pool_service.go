package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"pokerpot/internal/config"
	"pokerpot/internal/model"
	"pokerpot/internal/repository"
	"pokerpot/pkg/idgen"
	"pokerpot/pkg/money"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// PoolService 奖池的创建和读视图
// 视图永远从当前库里的流水现算，不做缓存
type PoolService struct {
	db              *gorm.DB
	cfg             *config.Config
	poolRepo        *repository.PoolRepository
	settingsRepo    *repository.SettingsRepository
	memberRepo      *repository.MemberRepository
	transactionRepo *repository.TransactionRepository
	profileRepo     *repository.ProfileRepository
	deviceRepo      *repository.DeviceRepository
	outboxRepo      *repository.OutboxRepository
}

func NewPoolService(db *gorm.DB, cfg *config.Config) *PoolService {
	return &PoolService{
		db:              db,
		cfg:             cfg,
		poolRepo:        repository.NewPoolRepository(db),
		settingsRepo:    repository.NewSettingsRepository(db),
		memberRepo:      repository.NewMemberRepository(db),
		transactionRepo: repository.NewTransactionRepository(db),
		profileRepo:     repository.NewProfileRepository(db),
		deviceRepo:      repository.NewDeviceRepository(db),
		outboxRepo:      repository.NewOutboxRepository(db),
	}
}

// ============================================================
// 请求/视图结构
// ============================================================

type PoolSettingsSpec struct {
	MinBuyIn           float64   `json:"min_buy_in" binding:"gte=0"`
	MaxBuyIn           float64   `json:"max_buy_in" binding:"gte=0"`
	Denominations      []float64 `json:"denominations" binding:"required,min=1"`
	DenominationColors []string  `json:"denomination_colors"`
	Password           string    `json:"password"`
}

type CreatePoolRequest struct {
	Name     string           `json:"name" binding:"required"`
	AdminID  int64            `json:"admin_id" binding:"required"`
	DeviceID int64            `json:"device_id"`
	Settings PoolSettingsSpec `json:"settings" binding:"required"`
}

// ProfileView 成员展示信息（只暴露姓名）
type ProfileView struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type ContributorView struct {
	Profile      ProfileView `json:"profile"`
	Contribution float64     `json:"contribution"` // 只累计 BUY_IN，提取不计入
}

type TransactionView struct {
	Profile       ProfileView `json:"profile"`
	Date          time.Time   `json:"date"`
	Type          string      `json:"type"`
	Amount        float64     `json:"amount"`
	Denominations []float64   `json:"denominations"`
}

type SettingsView struct {
	ID                 int64     `json:"id"`
	MinBuyIn           float64   `json:"min_buy_in"`
	MaxBuyIn           float64   `json:"max_buy_in"`
	Denominations      []float64 `json:"denominations"`
	DenominationColors []string  `json:"denomination_colors"`
	HasPassword        bool      `json:"has_password"`
	BuyInEnabled       bool      `json:"buy_in_enabled"`
	Expired            bool      `json:"expired"`
}

type PoolView struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	DateCreated      time.Time         `json:"date_created"`
	AvailableCashout float64           `json:"available_cashout"`
	MemberIDs        []int64           `json:"member_ids"`
	Contributors     []ContributorView `json:"contributors"`
	Transactions     []TransactionView `json:"transactions"`
	Admin            ProfileView       `json:"admin"`
	Settings         SettingsView      `json:"settings"`
}

// ============================================================
// 创建
// ============================================================

// Create 创建奖池
// 设置行、奖池行、管理员自动入池、创建通知在一个事务里落库
func (s *PoolService) Create(ctx context.Context, req *CreatePoolRequest) (*PoolView, error) {
	settings := &model.PoolSettings{
		MinBuyIn:           money.Round2(req.Settings.MinBuyIn),
		MaxBuyIn:           money.Round2(req.Settings.MaxBuyIn),
		Denominations:      money.JoinAmounts(req.Settings.Denominations),
		DenominationColors: money.JoinColors(req.Settings.DenominationColors),
		BuyInEnabled:       true,
	}

	if req.Settings.Password != "" {
		cost := s.cfg.Auth.BcryptCost
		if cost < bcrypt.MinCost {
			cost = bcrypt.DefaultCost
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Settings.Password), cost)
		if err != nil {
			return nil, fmt.Errorf("生成密码哈希失败: %w", err)
		}
		settings.HasPassword = true
		settings.Hash = string(hash)
	}

	poolID := idgen.GeneratePoolNo()

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.settingsRepo.Create(ctx, tx, settings); err != nil {
			return fmt.Errorf("创建奖池设置失败: %w", err)
		}

		pool := &model.Pool{
			ID:         poolID,
			Name:       req.Name,
			DeviceID:   req.DeviceID,
			AdminID:    req.AdminID,
			SettingsID: settings.ID,
		}
		if err := s.poolRepo.Create(ctx, tx, pool); err != nil {
			return fmt.Errorf("创建奖池失败: %w", err)
		}

		// 管理员自动成为第一个成员
		if err := s.memberRepo.AddIfAbsent(ctx, tx, poolID, req.AdminID); err != nil {
			return fmt.Errorf("添加管理员成员失败: %w", err)
		}

		msg := newPoolUpdatedMessage(s.cfg.Kafka.Topic.PoolUpdated, poolID, PoolActionCreated, map[string]interface{}{
			"admin_id": req.AdminID,
			"name":     req.Name,
		})
		return s.outboxRepo.Create(ctx, tx, msg)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("奖池创建成功: poolID=%s, adminID=%d", poolID, req.AdminID)

	return s.GetByID(ctx, poolID)
}

// ============================================================
// 视图
// ============================================================

// GetByID 组装单个奖池的完整视图
func (s *PoolService) GetByID(ctx context.Context, poolID string) (*PoolView, error) {
	pool, err := s.poolRepo.GetByID(ctx, nil, poolID)
	if err != nil {
		return nil, err
	}
	return s.buildView(ctx, pool)
}

// GetByUserID 查询用户加入的奖池，按最近活跃倒序分页
// itemOffset 是跳过的记录数，查不到任何行时返回 ErrPoolNotFound
func (s *PoolService) GetByUserID(ctx context.Context, profileID int64, expired bool, itemOffset, perPage int) ([]*PoolView, error) {
	if perPage <= 0 {
		perPage = s.cfg.Business.DefaultPerPage
	}

	pools, err := s.poolRepo.ListByUserID(ctx, profileID, expired, itemOffset, perPage)
	if err != nil {
		return nil, err
	}
	if len(pools) == 0 {
		return nil, repository.ErrPoolNotFound
	}

	return s.buildViews(ctx, pools)
}

// GetByDeviceID 查询设备创建的奖池，按最近活跃倒序分页
// 未注册的设备直接报 ErrDeviceNotFound，和"设备存在但没建过奖池"区分开
func (s *PoolService) GetByDeviceID(ctx context.Context, deviceID int64, itemOffset, perPage int) ([]*PoolView, error) {
	if _, err := s.deviceRepo.GetByID(ctx, deviceID); err != nil {
		return nil, err
	}

	if perPage <= 0 {
		perPage = s.cfg.Business.DefaultPerPage
	}

	pools, err := s.poolRepo.ListByDeviceID(ctx, deviceID, itemOffset, perPage)
	if err != nil {
		return nil, err
	}
	if len(pools) == 0 {
		return nil, repository.ErrPoolNotFound
	}

	return s.buildViews(ctx, pools)
}

func (s *PoolService) buildViews(ctx context.Context, pools []*model.Pool) ([]*PoolView, error) {
	views := make([]*PoolView, 0, len(pools))
	for _, pool := range pools {
		view, err := s.buildView(ctx, pool)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// buildView 从流水现算聚合视图
//
// 贡献者：按首次出现在流水里的顺序排列，只累计 BUY_IN 金额；
// 交易列表：按流水落库顺序原样返回
func (s *PoolService) buildView(ctx context.Context, pool *model.Pool) (*PoolView, error) {
	transactions, err := s.transactionRepo.ListByPoolID(ctx, pool.ID)
	if err != nil {
		return nil, err
	}

	// profile 展示信息在一个视图里会被反复用到，查一次缓存一次
	profileCache := map[int64]ProfileView{}
	lookupProfile := func(id int64) (ProfileView, error) {
		if v, ok := profileCache[id]; ok {
			return v, nil
		}
		profile, err := s.profileRepo.GetByID(ctx, id)
		if err != nil {
			return ProfileView{}, err
		}
		v := ProfileView{FirstName: profile.FirstName, LastName: profile.LastName}
		profileCache[id] = v
		return v, nil
	}

	contributorIndex := map[int64]int{}
	contributors := []ContributorView{}
	transactionViews := make([]TransactionView, 0, len(transactions))

	for _, trans := range transactions {
		profile, err := lookupProfile(trans.ProfileID)
		if err != nil {
			return nil, err
		}

		contribution := 0.0
		if trans.Type == model.TransactionTypeBuyIn {
			contribution = trans.Amount
		}

		if idx, ok := contributorIndex[trans.ProfileID]; ok {
			contributors[idx].Contribution = money.Round2(contributors[idx].Contribution + contribution)
		} else {
			contributorIndex[trans.ProfileID] = len(contributors)
			contributors = append(contributors, ContributorView{
				Profile:      profile,
				Contribution: money.Round2(contribution),
			})
		}

		transactionViews = append(transactionViews, TransactionView{
			Profile:       profile,
			Date:          trans.CreatedAt,
			Type:          trans.Type,
			Amount:        trans.Amount,
			Denominations: money.SplitAmounts(trans.Denominations),
		})
	}

	members, err := s.memberRepo.ListByPoolID(ctx, pool.ID)
	if err != nil {
		return nil, err
	}
	memberIDs := make([]int64, 0, len(members))
	for _, m := range members {
		memberIDs = append(memberIDs, m.ProfileID)
	}

	admin, err := lookupProfile(pool.AdminID)
	if err != nil {
		return nil, err
	}

	settings, err := s.settingsRepo.GetByID(ctx, nil, pool.SettingsID)
	if err != nil {
		return nil, err
	}

	return &PoolView{
		ID:               pool.ID,
		Name:             pool.Name,
		DateCreated:      pool.CreatedAt,
		AvailableCashout: pool.AvailableCashout,
		MemberIDs:        memberIDs,
		Contributors:     contributors,
		Transactions:     transactionViews,
		Admin:            admin,
		Settings:         buildSettingsView(settings),
	}, nil
}

func buildSettingsView(settings *model.PoolSettings) SettingsView {
	return SettingsView{
		ID:                 settings.ID,
		MinBuyIn:           settings.MinBuyIn,
		MaxBuyIn:           settings.MaxBuyIn,
		Denominations:      money.SplitAmounts(settings.Denominations),
		DenominationColors: money.SplitColors(settings.DenominationColors),
		HasPassword:        settings.HasPassword,
		BuyInEnabled:       settings.BuyInEnabled,
		Expired:            settings.Expired,
	}
}
