package model

import (
	"time"
)

// PoolMember 奖池成员表
// Profile 和 Pool 的多对多关系，(pool_id, profile_id) 唯一
// 创建后不更新，重复加入是幂等操作
type PoolMember struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	PoolID    string    `gorm:"type:varchar(64);not null;uniqueIndex:uk_pool_profile" json:"pool_id"`
	ProfileID int64     `gorm:"not null;uniqueIndex:uk_pool_profile;index" json:"profile_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (PoolMember) TableName() string {
	return "pool_member"
}
