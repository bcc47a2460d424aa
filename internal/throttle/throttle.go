// 包 throttle：第三方服务调用节流
package throttle

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"venue-vacancy/internal/logger"
)

// Throttle：在发起外呼前阻塞直到获得配额
type Throttle interface {
	Wait(ctx context.Context) error
}

// Local：进程内令牌桶
type Local struct {
	lim *rate.Limiter
}

// NewLocal：rps<=0 时不限速
func NewLocal(rps float64) *Local {
	if rps <= 0 {
		return &Local{lim: rate.NewLimiter(rate.Inf, 1)}
	}
	return &Local{lim: rate.NewLimiter(rate.Limit(rps), 1)}
}

func (l *Local) Wait(ctx context.Context) error { return l.lim.Wait(ctx) }

// 文档注释：基于 Redis 的固定窗口节流
// 背景：同一 applicationId / User-Agent 可能被多个并行作业共用，第三方配额按账号计算，
// 需要跨进程共享计数；每个窗口一个计数键，INCR 后设置过期。
// 约束：Redis 不可用时放行（只记录告警），不阻断批处理。
type Redis struct {
	rc     *redis.Client
	name   string
	limit  int64
	window time.Duration
	now    func() time.Time
}

// NewRedis：limit 为每个窗口内允许的请求数
func NewRedis(rc *redis.Client, name string, limit int, window time.Duration) *Redis {
	if limit <= 0 {
		limit = 1
	}
	if window <= 0 {
		window = time.Second
	}
	return &Redis{rc: rc, name: name, limit: int64(limit), window: window, now: time.Now}
}

// NewRedisRate：按每秒速率换算窗口，每个窗口放行 1 次（0.5rps 即 2s 一次）
// 约束：rps<=0 时返回 nil，调用方不应叠加该节流器
func NewRedisRate(rc *redis.Client, name string, rps float64) *Redis {
	if rc == nil || rps <= 0 {
		return nil
	}
	return NewRedis(rc, name, 1, time.Duration(float64(time.Second)/rps))
}

func (r *Redis) Wait(ctx context.Context) error {
	for {
		now := r.now()
		slot := now.UnixNano() / int64(r.window)
		key := fmt.Sprintf("throttle:%s:%d", r.name, slot)
		n, err := r.rc.Incr(ctx, key).Result()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.L().Warn("throttle_redis_error", "name", r.name, "err", err)
			return nil
		}
		if n == 1 {
			_ = r.rc.Expire(ctx, key, 2*r.window).Err()
		}
		if n <= r.limit {
			return nil
		}
		next := time.Unix(0, (slot+1)*int64(r.window))
		t := time.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}

// Chain：依次等待全部节流器
type Chain []Throttle

func (c Chain) Wait(ctx context.Context) error {
	for _, t := range c {
		if t == nil {
			continue
		}
		if err := t.Wait(ctx); err != nil {
			return err
		}
	}
	return nil
}
