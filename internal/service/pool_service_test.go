package service

import (
	"context"
	"testing"
	"time"

	"pokerpot/internal/model"
	"pokerpot/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePool(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	poolService := NewPoolService(db, cfg)
	admin := seedProfile(t, db, "admin@local.com", "Alex", "Morel")

	view, err := poolService.Create(context.Background(), &CreatePoolRequest{
		Name:    "Home Game",
		AdminID: admin.ID,
		Settings: PoolSettingsSpec{
			MinBuyIn:           5.128,
			MaxBuyIn:           100,
			Denominations:      []float64{0.25, 1, 5},
			DenominationColors: []string{"red", "blue", "black"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Home Game", view.Name)
	assert.NotEmpty(t, view.ID)
	assert.Equal(t, 0.00, view.AvailableCashout)
	assert.Empty(t, view.Contributors)
	assert.Empty(t, view.Transactions)

	t.Run("管理员自动入池", func(t *testing.T) {
		assert.Equal(t, []int64{admin.ID}, view.MemberIDs)
		assert.Equal(t, "Alex", view.Admin.FirstName)
		assert.Equal(t, "Morel", view.Admin.LastName)
	})

	t.Run("设置金额创建时就保留2位小数", func(t *testing.T) {
		assert.Equal(t, 5.13, view.Settings.MinBuyIn)
		assert.Equal(t, 100.00, view.Settings.MaxBuyIn)
		assert.Equal(t, []float64{0.25, 1, 5}, view.Settings.Denominations)
		assert.Equal(t, []string{"red", "blue", "black"}, view.Settings.DenominationColors)
		assert.False(t, view.Settings.HasPassword)
		assert.True(t, view.Settings.BuyInEnabled)
		assert.False(t, view.Settings.Expired)
	})

	t.Run("带密码的奖池只存哈希", func(t *testing.T) {
		locked := seedPool(t, poolService, admin.ID, "(oolFrog45")
		assert.True(t, locked.Settings.HasPassword)

		settings := settingsRecord(t, db, locked.ID)
		assert.NotEmpty(t, settings.Hash)
		assert.NotContains(t, settings.Hash, "(oolFrog45")
	})
}

func TestGetByIDNotFound(t *testing.T) {
	db := newTestDB(t)
	poolService := NewPoolService(db, newTestConfig())

	_, err := poolService.GetByID(context.Background(), "POOL99999999999999999999")
	assert.ErrorIs(t, err, repository.ErrPoolNotFound)
}

// 贡献者只累计买入，顺序按首次出现在流水里的先后
func TestPoolViewContributors(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	poolService := NewPoolService(db, cfg)
	transactionService := NewTransactionService(db, nil, cfg)
	alex := seedProfile(t, db, "alex@local.com", "Alex", "Morel")
	landan := seedProfile(t, db, "landan@local.com", "Landan", "Butt")
	view := seedPool(t, poolService, alex.ID, "")
	ctx := context.Background()

	apply := func(profileID int64, txType string, amount float64) {
		_, err := transactionService.CreateTransaction(ctx, &CreateTransactionRequest{
			PoolID: view.ID, ProfileID: profileID, Type: txType, Amount: amount,
		})
		require.NoError(t, err)
	}

	apply(landan.ID, model.TransactionTypeBuyIn, 20.55)
	apply(alex.ID, model.TransactionTypeBuyIn, 50.51)
	apply(landan.ID, model.TransactionTypeCashOut, 10)
	apply(landan.ID, model.TransactionTypeBuyIn, 9.45)

	refreshed, err := poolService.GetByID(ctx, view.ID)
	require.NoError(t, err)

	require.Len(t, refreshed.Contributors, 2)

	// Landan 先出现在流水里，排在前面；提取不计入贡献
	assert.Equal(t, "Landan", refreshed.Contributors[0].Profile.FirstName)
	assert.Equal(t, 30.00, refreshed.Contributors[0].Contribution)
	assert.Equal(t, "Alex", refreshed.Contributors[1].Profile.FirstName)
	assert.Equal(t, 50.51, refreshed.Contributors[1].Contribution)

	t.Run("交易列表按落库顺序", func(t *testing.T) {
		require.Len(t, refreshed.Transactions, 4)
		assert.Equal(t, model.TransactionTypeBuyIn, refreshed.Transactions[0].Type)
		assert.Equal(t, 20.55, refreshed.Transactions[0].Amount)
		assert.Equal(t, model.TransactionTypeCashOut, refreshed.Transactions[2].Type)
		assert.Equal(t, 10.00, refreshed.Transactions[2].Amount)
	})
}

func TestGetByUserID(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	poolService := NewPoolService(db, cfg)
	transactionService := NewTransactionService(db, nil, cfg)
	admin := seedProfile(t, db, "admin@local.com", "Alex", "Morel")
	ctx := context.Background()

	first := seedPool(t, poolService, admin.ID, "")
	time.Sleep(10 * time.Millisecond)
	second := seedPool(t, poolService, admin.ID, "")

	t.Run("按最近活跃倒序", func(t *testing.T) {
		views, err := poolService.GetByUserID(ctx, admin.ID, false, 0, 10)
		require.NoError(t, err)
		require.Len(t, views, 2)
		assert.Equal(t, second.ID, views[0].ID)
		assert.Equal(t, first.ID, views[1].ID)
	})

	t.Run("交易会把奖池顶到最前", func(t *testing.T) {
		time.Sleep(10 * time.Millisecond)
		_, err := transactionService.CreateTransaction(ctx, &CreateTransactionRequest{
			PoolID: first.ID, ProfileID: admin.ID, Type: model.TransactionTypeBuyIn, Amount: 5,
		})
		require.NoError(t, err)

		views, err := poolService.GetByUserID(ctx, admin.ID, false, 0, 10)
		require.NoError(t, err)
		assert.Equal(t, first.ID, views[0].ID)
	})

	t.Run("分页偏移", func(t *testing.T) {
		views, err := poolService.GetByUserID(ctx, admin.ID, false, 1, 1)
		require.NoError(t, err)
		require.Len(t, views, 1)
	})

	t.Run("翻过末页报奖池不存在", func(t *testing.T) {
		_, err := poolService.GetByUserID(ctx, admin.ID, false, 10, 10)
		assert.ErrorIs(t, err, repository.ErrPoolNotFound)
	})

	t.Run("过期过滤", func(t *testing.T) {
		// 没有过期奖池时查过期列表也是奖池不存在
		_, err := poolService.GetByUserID(ctx, admin.ID, true, 0, 10)
		assert.ErrorIs(t, err, repository.ErrPoolNotFound)

		// 清池让 second 过期后能查到
		_, err = transactionService.CreateTransaction(ctx, &CreateTransactionRequest{
			PoolID: second.ID, ProfileID: admin.ID, Type: model.TransactionTypeCashOut, Amount: 1,
		})
		require.NoError(t, err)

		views, err := poolService.GetByUserID(ctx, admin.ID, true, 0, 10)
		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.Equal(t, second.ID, views[0].ID)
		assert.True(t, views[0].Settings.Expired)
	})
}

func TestGetByDeviceID(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	poolService := NewPoolService(db, cfg)
	deviceService := NewDeviceService(db)
	admin := seedProfile(t, db, "admin@local.com", "Alex", "Morel")
	ctx := context.Background()

	device, err := deviceService.Register(ctx)
	require.NoError(t, err)

	view, err := poolService.Create(ctx, &CreatePoolRequest{
		Name:     "Device Game",
		AdminID:  admin.ID,
		DeviceID: device.ID,
		Settings: PoolSettingsSpec{
			MinBuyIn:      1,
			MaxBuyIn:      10,
			Denominations: []float64{1},
		},
	})
	require.NoError(t, err)

	views, err := poolService.GetByDeviceID(ctx, device.ID, 0, 10)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, view.ID, views[0].ID)

	t.Run("未注册的设备", func(t *testing.T) {
		_, err := poolService.GetByDeviceID(ctx, device.ID+100, 0, 10)
		assert.ErrorIs(t, err, repository.ErrDeviceNotFound)
	})

	t.Run("设备存在但没建过奖池", func(t *testing.T) {
		empty, err := deviceService.Register(ctx)
		require.NoError(t, err)

		_, err = poolService.GetByDeviceID(ctx, empty.ID, 0, 10)
		assert.ErrorIs(t, err, repository.ErrPoolNotFound)
	})
}
