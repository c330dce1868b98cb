package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateSettingsBatch(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	poolService := NewPoolService(db, cfg)
	settingsService := NewSettingsService(db, cfg)
	admin := seedProfile(t, db, "admin@local.com", "Alex", "Morel")
	view := seedPool(t, poolService, admin.ID, "")
	ctx := context.Background()

	t.Run("一批修改按顺序全部生效", func(t *testing.T) {
		updated, err := settingsService.UpdateSettings(ctx, &UpdateSettingsRequest{
			PoolID: view.ID,
			UpdateRequests: []SettingsUpdateRequest{
				{Attribute: SettingsFieldMaxBuyIn, Value: float64(200)},
				{Attribute: SettingsFieldExpired, Value: true},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, 200.0, updated.Settings.MaxBuyIn)
		assert.True(t, updated.Settings.Expired)

		record := settingsRecord(t, db, view.ID)
		assert.Equal(t, 200.0, record.MaxBuyIn)
		assert.True(t, record.Expired)
	})

	t.Run("过期是单向的", func(t *testing.T) {
		_, err := settingsService.UpdateSettings(ctx, &UpdateSettingsRequest{
			PoolID: view.ID,
			UpdateRequests: []SettingsUpdateRequest{
				{Attribute: SettingsFieldExpired, Value: false},
			},
		})
		assert.ErrorIs(t, err, ErrPoolExpired)
		assert.True(t, settingsRecord(t, db, view.ID).Expired)
	})
}

func TestUpdateSettingsAtomicity(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	poolService := NewPoolService(db, cfg)
	settingsService := NewSettingsService(db, cfg)
	admin := seedProfile(t, db, "admin@local.com", "Alex", "Morel")
	view := seedPool(t, poolService, admin.ID, "")
	ctx := context.Background()

	t.Run("未知字段整批回滚", func(t *testing.T) {
		_, err := settingsService.UpdateSettings(ctx, &UpdateSettingsRequest{
			PoolID: view.ID,
			UpdateRequests: []SettingsUpdateRequest{
				{Attribute: SettingsFieldMaxBuyIn, Value: float64(500)},
				{Attribute: "color_scheme", Value: "dark"},
			},
		})
		assert.ErrorIs(t, err, ErrUnknownSettingsField)

		// 前一条合法修改也不能留下
		record := settingsRecord(t, db, view.ID)
		assert.Equal(t, 100.0, record.MaxBuyIn)
	})

	t.Run("值类型不对整批回滚", func(t *testing.T) {
		_, err := settingsService.UpdateSettings(ctx, &UpdateSettingsRequest{
			PoolID: view.ID,
			UpdateRequests: []SettingsUpdateRequest{
				{Attribute: SettingsFieldMinBuyIn, Value: "ten"},
			},
		})
		assert.ErrorIs(t, err, ErrInvalidSettingsValue)
		assert.Equal(t, 5.0, settingsRecord(t, db, view.ID).MinBuyIn)
	})

	t.Run("min 不能高于 max", func(t *testing.T) {
		_, err := settingsService.UpdateSettings(ctx, &UpdateSettingsRequest{
			PoolID: view.ID,
			UpdateRequests: []SettingsUpdateRequest{
				{Attribute: SettingsFieldMinBuyIn, Value: float64(150)},
			},
		})
		assert.ErrorIs(t, err, ErrInvalidSettingsValue)
		assert.Equal(t, 5.0, settingsRecord(t, db, view.ID).MinBuyIn)
	})
}

func TestUpdateSettingsFields(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	poolService := NewPoolService(db, cfg)
	settingsService := NewSettingsService(db, cfg)
	admin := seedProfile(t, db, "admin@local.com", "Alex", "Morel")
	view := seedPool(t, poolService, admin.ID, "")
	ctx := context.Background()

	// JSON 解码后的形态：数字是 float64，数组是 []interface{}
	updated, err := settingsService.UpdateSettings(ctx, &UpdateSettingsRequest{
		PoolID: view.ID,
		UpdateRequests: []SettingsUpdateRequest{
			{Attribute: SettingsFieldDenominations, Value: []interface{}{0.5, float64(2), float64(10)}},
			{Attribute: SettingsFieldDenominationColors, Value: []interface{}{"red", "green", "black"}},
			{Attribute: SettingsFieldBuyInEnabled, Value: false},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []float64{0.5, 2, 10}, updated.Settings.Denominations)
	assert.Equal(t, []string{"red", "green", "black"}, updated.Settings.DenominationColors)
	assert.False(t, updated.Settings.BuyInEnabled)
}
