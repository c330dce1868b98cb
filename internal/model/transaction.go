package model

import (
	"time"
)

// ============================================================================
// 交易类型常量
// ============================================================================

const (
	TransactionTypeBuyIn   = "BUY_IN"   // 买入（投入彩池）
	TransactionTypeCashOut = "CASH_OUT" // 提取（从彩池取出）
)

// IsValidTransactionType 校验交易类型是否被记账引擎识别
func IsValidTransactionType(t string) bool {
	return t == TransactionTypeBuyIn || t == TransactionTypeCashOut
}

// ============================================================================
// 交易流水实体
// ============================================================================

// Transaction 奖池交易流水表
// 记录奖池的每一笔买入/提取，是所有聚合视图的唯一数据来源
//
// 【重要】流水表设计原则：
// 1. 只追加，不修改，不删除 —— 贡献汇总和可提取余额都由它推导/校验
// 2. 金额永远非负，提取金额是截断后的实际值，不是请求值
// 3. 金额入库前统一保留2位小数
type Transaction struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	TransactionNo string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"transaction_no"` // 流水号（全局唯一）
	PoolID        string    `gorm:"type:varchar(64);index;not null" json:"pool_id"`              // 所属奖池
	ProfileID     int64     `gorm:"index;not null" json:"profile_id"`                            // 交易发起人
	Type          string    `gorm:"type:varchar(20);not null" json:"type"`                       // BUY_IN / CASH_OUT
	Amount        float64   `gorm:"not null" json:"amount"`                                      // 实际入账金额（非负，2位小数）
	Denominations string    `gorm:"type:varchar(255)" json:"denominations"`                      // 筹码面额明细，逗号分隔（可选）
	CreatedAt     time.Time `gorm:"autoCreateTime;index" json:"created_at"`                      // 服务端落库时间
}

func (Transaction) TableName() string {
	return "pool_transaction"
}
