package model

import (
	"time"
)

// PoolSettings 奖池设置表
// 控制买入/提取行为，与 Pool 一一对应，随 Pool 一起创建
//
// 【重要】expired 是单向开关：
// 一旦提取把可提取余额清零，奖池过期，之后不允许再恢复
type PoolSettings struct {
	ID                 int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	MinBuyIn           float64   `gorm:"not null" json:"min_buy_in"`                          // 最小买入金额（保留2位小数）
	MaxBuyIn           float64   `gorm:"not null" json:"max_buy_in"`                          // 最大买入金额（保留2位小数）
	Denominations      string    `gorm:"type:varchar(255);not null" json:"denominations"`     // 允许的筹码面额，逗号分隔，保序
	DenominationColors string    `gorm:"type:varchar(255)" json:"denomination_colors"`        // 面额对应的显示颜色（可选）
	HasPassword        bool      `gorm:"not null;default:false" json:"has_password"`          // 是否需要密码才能加入
	Hash               string    `gorm:"type:text" json:"-"`                                  // 加入密码的 bcrypt 哈希
	BuyInEnabled       bool      `gorm:"not null;default:true" json:"buy_in_enabled"`         // 是否允许继续买入
	Expired            bool      `gorm:"not null;default:false" json:"expired"`               // 奖池是否已过期（单向）
	CreatedAt          time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (PoolSettings) TableName() string {
	return "pool_settings"
}
