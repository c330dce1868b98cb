package model

import (
	"time"
)

// Pool 奖池表
// 一个奖池就是一局游戏的共享彩池，记录累计投入和当前可提取余额，
// 是整个记账系统的核心数据
type Pool struct {
	ID               string    `gorm:"type:varchar(64);primaryKey" json:"id"`            // 奖池号（idgen 生成，创建后不变）
	Name             string    `gorm:"type:varchar(255);not null" json:"name"`           // 显示名称
	DeviceID         int64     `gorm:"index" json:"device_id"`                           // 创建奖池的设备ID
	TotalPot         float64   `gorm:"not null;default:0" json:"total_pot"`              // 累计投入（只增不减，保留2位小数）
	AvailableCashout float64   `gorm:"not null;default:0" json:"available_cashout"`      // 当前可提取余额（保留2位小数）
	AdminID          int64     `gorm:"not null;index" json:"admin_id"`                   // 管理员 Profile ID
	SettingsID       int64     `gorm:"not null;uniqueIndex" json:"settings_id"`          // 奖池设置ID（1:1）
	Version          int       `gorm:"not null;default:0" json:"version"`                // 乐观锁版本号
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime;index" json:"updated_at"`           // 任何变更都会刷新，列表按此倒序
}

func (Pool) TableName() string {
	return "pool"
}
