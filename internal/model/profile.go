package model

import (
	"time"
)

// Profile 用户资料表
// 记账核心只把它当作展示用途的引用，凭证校验走身份服务
type Profile struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Email     string    `gorm:"type:varchar(320);uniqueIndex;not null" json:"email"`
	FirstName string    `gorm:"type:varchar(255);not null" json:"first_name"`
	LastName  string    `gorm:"type:varchar(255);not null" json:"last_name"`
	Hash      string    `gorm:"type:text;not null" json:"-"` // 登录密码的 bcrypt 哈希
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Profile) TableName() string {
	return "profile"
}
