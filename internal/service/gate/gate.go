// Package gate 实现"单笔未决反馈"准入控制
// 每个用户同一时刻只允许存在一条未评分的交互，评分后才能提交下一个问题
package gate

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ashwinyue/recall/internal/model"
)

// ErrFeedbackPending 用户存在未评分的交互
var ErrFeedbackPending = errors.New("feedback pending: rate your previous answer before submitting a new prompt")

// pendingKeyTTL 未决标记的过期时间，防止标记泄漏导致用户被永久锁死
const pendingKeyTTL = 24 * time.Hour

// InteractionReader 查询用户最近一次交互
type InteractionReader interface {
	LatestByUser(userID string) (*model.Interaction, error)
}

// Gate 准入门
type Gate struct {
	rdb          *redis.Client
	interactions InteractionReader
	locks        sync.Map // userID -> *sync.Mutex
}

// NewGate 创建准入门
func NewGate(rdb *redis.Client, interactions InteractionReader) *Gate {
	return &Gate{
		rdb:          rdb,
		interactions: interactions,
	}
}

func (g *Gate) userLock(userID string) *sync.Mutex {
	mu, _ := g.locks.LoadOrStore(userID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func pendingKey(userID string) string {
	return fmt.Sprintf("recall:pending:%s", userID)
}

// Reserve 为用户预留一次提交资格
// 存在未决反馈时返回 ErrFeedbackPending；成功时返回释放函数，
// 调用方必须在交互创建完成（或失败）后调用它
func (g *Gate) Reserve(ctx context.Context, userID string) (func(), error) {
	mu := g.userLock(userID)
	mu.Lock()

	pending, err := g.hasPending(ctx, userID)
	if err != nil {
		mu.Unlock()
		return nil, err
	}
	if pending {
		mu.Unlock()
		return nil, ErrFeedbackPending
	}

	var once sync.Once
	release := func() {
		once.Do(mu.Unlock)
	}
	return release, nil
}

// hasPending 判断用户是否存在未评分的交互
// Redis 标记是快路径，数据库里最近一次交互的评分状态是事实来源
func (g *Gate) hasPending(ctx context.Context, userID string) (bool, error) {
	if g.rdb != nil {
		n, err := g.rdb.Exists(ctx, pendingKey(userID)).Result()
		if err == nil && n > 0 {
			return true, nil
		}
		if err != nil {
			log.Printf("Failed to check pending marker in redis, falling back to database: %v", err)
		}
	}

	latest, err := g.interactions.LatestByUser(userID)
	if err != nil {
		return false, fmt.Errorf("failed to load latest interaction: %w", err)
	}
	if latest == nil {
		return false, nil
	}
	return !latest.HasRating(), nil
}

// MarkPending 记录用户存在未决反馈
func (g *Gate) MarkPending(ctx context.Context, userID string) {
	if g.rdb == nil {
		return
	}
	if err := g.rdb.Set(ctx, pendingKey(userID), "1", pendingKeyTTL).Err(); err != nil {
		log.Printf("Failed to set pending marker for user %s: %v", userID, err)
	}
}

// ClearPending 清除用户的未决反馈标记
func (g *Gate) ClearPending(ctx context.Context, userID string) {
	if g.rdb == nil {
		return
	}
	if err := g.rdb.Del(ctx, pendingKey(userID)).Err(); err != nil {
		log.Printf("Failed to clear pending marker for user %s: %v", userID, err)
	}
}
