package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"pokerpot/internal/config"
	"pokerpot/internal/model"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB 每个测试一个独立的内存 sqlite 库
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.Profile{},
		&model.Device{},
		&model.PoolSettings{},
		&model.Pool{},
		&model.PoolMember{},
		&model.Transaction{},
		&model.OutboxMessage{},
	))

	return db
}

func newTestConfig() *config.Config {
	return &config.Config{
		Kafka: config.KafkaConfig{
			Topic: config.KafkaTopicConfig{PoolUpdated: "pool_updated"},
		},
		Auth: config.AuthConfig{
			JWTSecret:     "test-secret",
			TokenTTLHours: 1,
			BcryptCost:    bcrypt.MinCost,
		},
		Business: config.BusinessConfig{
			MaxRetryCount:   3,
			ApplyRetryCount: 3,
			DefaultPerPage:  10,
		},
	}
}

func seedProfile(t *testing.T, db *gorm.DB, email, first, last string) *model.Profile {
	t.Helper()

	profile := &model.Profile{
		Email:     email,
		FirstName: first,
		LastName:  last,
		Hash:      "x",
	}
	require.NoError(t, db.Create(profile).Error)
	return profile
}

// seedPool 建一个标准测试奖池，返回完整视图
func seedPool(t *testing.T, poolService *PoolService, adminID int64, password string) *PoolView {
	t.Helper()

	view, err := poolService.Create(context.Background(), &CreatePoolRequest{
		Name:    "Friday Night",
		AdminID: adminID,
		Settings: PoolSettingsSpec{
			MinBuyIn:      5,
			MaxBuyIn:      100,
			Denominations: []float64{0.25, 1, 5},
			Password:      password,
		},
	})
	require.NoError(t, err)
	return view
}

func poolRecord(t *testing.T, db *gorm.DB, poolID string) *model.Pool {
	t.Helper()

	var pool model.Pool
	require.NoError(t, db.Where("id = ?", poolID).First(&pool).Error)
	return &pool
}

func settingsRecord(t *testing.T, db *gorm.DB, poolID string) *model.PoolSettings {
	t.Helper()

	pool := poolRecord(t, db, poolID)
	var settings model.PoolSettings
	require.NoError(t, db.Where("id = ?", pool.SettingsID).First(&settings).Error)
	return &settings
}
