package model

import (
	"time"
)

// Device 设备表
// 未登录客户端先注册一个设备ID，之后可以按设备查自己创建的奖池
type Device struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Device) TableName() string {
	return "device"
}
