// Package ratelimiter は外部API呼び出しの頻度を制限します。
package ratelimiter

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Limiter は、API呼び出しなどの操作の頻度を制限するインターフェースです。
type Limiter interface {
	// Wait は上限に達している場合、次の区間まで待機します。ctxが終了した場合はそのエラーを返します。
	Wait(ctx context.Context) error
}

// RateLimiterは、interval当たりlimit回まで操作を許可する固定窓方式のリミッターです。
type RateLimiter struct {
	mu        sync.Mutex
	limit     int           // interval当たりの上限
	interval  time.Duration // どの単位でリセットするか
	count     int
	lastReset time.Time
	now       func() time.Time
}

var _ Limiter = (*RateLimiter)(nil)

// NewRateLimiterは新しいRateLimiterのインスタンスを生成します。limitが0以下の場合は1として扱います。
func NewRateLimiter(limit int, interval time.Duration) *RateLimiter {
	if limit <= 0 {
		limit = 1
	}
	return &RateLimiter{
		limit:     limit,
		interval:  interval,
		lastReset: time.Now(),
		now:       time.Now,
	}
}

// Waitはレートリミットの上限に達しているかを確認し、必要であれば待機します。
func (rl *RateLimiter) Wait(ctx context.Context) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	// interval を過ぎたらカウントリセット
	if now.Sub(rl.lastReset) >= rl.interval {
		rl.count = 0
		rl.lastReset = now
	}

	rl.count++
	if rl.count <= rl.limit {
		return nil
	}

	sleep := rl.interval - now.Sub(rl.lastReset)
	if sleep > 0 {
		slog.Info("レートリミットに到達したため待機します", "limit", rl.limit, "sleep", sleep)
		timer := time.NewTimer(sleep)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			rl.count--
			return ctx.Err()
		case <-timer.C:
		}
	}
	// リセット
	rl.count = 1
	rl.lastReset = rl.now()
	return nil
}
