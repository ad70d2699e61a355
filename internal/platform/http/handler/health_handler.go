// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
)

// Health はサービスの生存確認用 /healthz エンドポイントを処理します。
// 依存先には触れず、プロセスが応答できるかだけを返します。
func Health(c *gin.Context) {
	c.Header("Cache-Control", "no-store")

	switch c.Request.Method {
	case http.MethodHead:
		c.Status(http.StatusOK)
	case http.MethodOptions:
		c.Status(http.StatusNoContent)
	default:
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// Checker は依存先の疎通を確認する関数です。
type Checker func(ctx context.Context) error

// ReadinessResponse は /readyz のレスポンスです。
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Readiness はDBやRedisなど依存先の疎通を確認します。
type Readiness struct {
	checks  map[string]Checker
	timeout time.Duration
}

// NewReadiness はReadinessの新しいインスタンスを生成します。timeoutが0以下の場合は2秒です。
func NewReadiness(checks map[string]Checker, timeout time.Duration) *Readiness {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Readiness{checks: checks, timeout: timeout}
}

// Ready はすべての依存先が応答すれば200、1つでも失敗すれば503を返します。
func (r *Readiness) Ready(c *gin.Context) {
	c.Header("Cache-Control", "no-store")

	ctx, cancel := context.WithTimeout(c.Request.Context(), r.timeout)
	defer cancel()

	names := make([]string, 0, len(r.checks))
	for name := range r.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	res := ReadinessResponse{Status: "ok", Checks: make(map[string]string, len(names))}
	for _, name := range names {
		if err := r.checks[name](ctx); err != nil {
			slog.Warn("readiness check failed", "check", name, "error", err)
			res.Status = "unavailable"
			res.Checks[name] = err.Error()
			continue
		}
		res.Checks[name] = "ok"
	}

	status := http.StatusOK
	if res.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, res)
}
