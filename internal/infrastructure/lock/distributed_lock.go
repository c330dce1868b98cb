package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// ============================================================================
// 分布式锁实现
// ============================================================================
//
// 【为什么需要分布式锁？】
//
// 场景：同一个奖池被两个成员同时提取（CASH_OUT）
//
// 如果没有分布式锁：
//   goroutine1: 读可提取余额=100 -> 提取100 -> 余额=0   OK
//   goroutine2: 读可提取余额=100 -> 提取100 -> 余额=-100 超提了！
//
// 加了分布式锁：
//   goroutine1: 获取锁 -> 读余额=100 -> 提取100 -> 余额=0，奖池过期 -> 释放锁
//   goroutine2: 获取锁失败，等待... -> 获取锁 -> 读余额=0 -> 截断为0
//
// 锁之外，奖池行上还有 version 乐观锁兜底（见 PoolRepository.ApplyBalance），
// 两层一起保证并发提取不会把 available_cashout 扣成负数
//
// 【Redis 分布式锁原理】
//
// 加锁：SET key value NX EX timeout
//   - NX: 只有 key 不存在时才设置（保证互斥）
//   - EX: 设置过期时间（防止死锁）
//   - value: 锁持有者标识（释放时验证，防止误删别人的锁）
//
// 释放锁：使用 Lua 脚本保证原子性
//
// ============================================================================

var (
	ErrLockFailed  = errors.New("获取分布式锁失败")
	ErrLockExpired = errors.New("锁已过期")
)

// DistributedLock 分布式锁
type DistributedLock struct {
	client     *redis.Client
	key        string        // 锁的 key
	value      string        // 锁的 value（用于验证锁的持有者）
	expiration time.Duration // 锁的过期时间
}

// NewDistributedLock 创建分布式锁
func NewDistributedLock(client *redis.Client, key, value string, expiration time.Duration) *DistributedLock {
	return &DistributedLock{
		client:     client,
		key:        key,
		value:      value,
		expiration: expiration,
	}
}

// TryLock 尝试获取锁（非阻塞）
//
// 【关键点】使用 SetNX 命令，只有当 key 不存在时才能设置成功
// 这保证了同一时刻只有一个客户端能获取到锁
func (l *DistributedLock) TryLock(ctx context.Context) (bool, error) {
	success, err := l.client.SetNX(ctx, l.key, l.value, l.expiration).Result()
	if err != nil {
		return false, err
	}
	return success, nil
}

// Lock 阻塞式获取锁（带重试）
func (l *DistributedLock) Lock(ctx context.Context, retryInterval time.Duration, maxRetries int) error {
	for i := 0; i < maxRetries; i++ {
		success, err := l.TryLock(ctx)
		if err != nil {
			return err
		}
		if success {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryInterval):
			// 继续重试
		}
	}
	return ErrLockFailed
}

// Unlock 释放锁
//
// 【关键点】使用 Lua 脚本保证"检查+删除"操作的原子性
// 先验证 value 是自己的再删，避免锁过期后误删其他请求的锁
func (l *DistributedLock) Unlock(ctx context.Context) error {
	script := `
		if redis.call("GET", KEYS[1]) == ARGV[1] then
			return redis.call("DEL", KEYS[1])
		else
			return 0
		end
	`
	_, err := l.client.Eval(ctx, script, []string{l.key}, l.value).Result()
	return err
}

// NewPoolLock 创建奖池锁（按奖池维度）
//
// 按奖池加锁而不是全局加锁：不同奖池的交易可以并发，
// 同一奖池的交易串行化，这正是余额读改写需要的粒度
func NewPoolLock(client *redis.Client, poolID string, transactionNo string) *DistributedLock {
	key := fmt.Sprintf("pool:lock:%s", poolID)
	// value 使用流水号，便于追踪是哪笔交易持有锁
	return NewDistributedLock(client, key, transactionNo, 30*time.Second)
}
