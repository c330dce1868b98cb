package service

import (
	"encoding/json"
	"time"

	"pokerpot/internal/model"
)

// 奖池变更动作，进 pool_updated 消息的 action 字段
const (
	PoolActionCreated         = "created"
	PoolActionMemberJoined    = "member_joined"
	PoolActionTransaction     = "transaction"
	PoolActionSettingsUpdated = "settings_updated"
)

// newPoolUpdatedMessage 组装一条 pool_updated 发件箱消息
// key 用奖池号，保证同一奖池的通知在 Kafka 分区内有序；
// 订阅方收到后按 pool_id 重新拉取完整视图，payload 只带增量线索
func newPoolUpdatedMessage(topic, poolID, action string, detail map[string]interface{}) *model.OutboxMessage {
	payload := map[string]interface{}{
		"pool_id":    poolID,
		"action":     action,
		"updated_at": time.Now().Format(time.RFC3339),
	}
	for k, v := range detail {
		payload[k] = v
	}
	payloadBytes, _ := json.Marshal(payload)

	return &model.OutboxMessage{
		MessageKey: poolID,
		Topic:      topic,
		Payload:    string(payloadBytes),
		Status:     model.OutboxStatusPending,
	}
}
