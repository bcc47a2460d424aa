// 包 logger：外呼 HTTP 日志传输层，统一记录第三方调用的关键维度（方法、主机、路径、状态、耗时）
package logger

import (
	"log/slog"
	"net/http"
	"time"
)

// transport：包装 RoundTripper 以记录每次外呼
// 背景：地理编码与空房检索均为第三方服务，需要可追溯的调用记录以便排查配额与超时
type transport struct {
	next http.RoundTripper
	l    *slog.Logger
}

// Transport：生成外呼日志传输层
// 约束：不记录查询串，避免泄露 applicationId 等密钥；next 为空时使用默认传输层
func Transport(l *slog.Logger, next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return &transport{next: next, l: l}
}

func (t *transport) RoundTrip(r *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.next.RoundTrip(r)
	dur := time.Since(start)
	l := t.l
	if l == nil {
		l = L()
	}
	if err != nil {
		l.Debug("http_outbound_error",
			"method", r.Method,
			"host", r.URL.Host,
			"path", r.URL.Path,
			"duration_ms", dur.Milliseconds(),
			"err", err,
		)
		return nil, err
	}
	l.Debug("http_outbound",
		"method", r.Method,
		"host", r.URL.Host,
		"path", r.URL.Path,
		"status", resp.StatusCode,
		"duration_ms", dur.Milliseconds(),
	)
	return resp, nil
}

// NewClient：带超时与外呼日志的 HTTP 客户端
func NewClient(l *slog.Logger, timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{Timeout: timeout, Transport: Transport(l, nil)}
}
