package http

import (
	"net"
	"net/http"
	"time"
)

// DefaultUserAgent は外部API呼び出し時のUser-Agentです。
const DefaultUserAgent = "tree-backend/1.0 (+species-seed)"

// NewHTTPClient は外部API呼び出し用に設定されたHTTPクライアントを作成します。
//
// 設定:
//   - Proxy: 環境変数（HTTP_PROXYなど）が設定されている場合に使用
//   - Dialer.Timeout: TCP接続タイムアウト
//   - MaxIdleConns: 最大アイドル接続数
//   - TLSHandshakeTimeout: HTTPSハンドシェイクの最大時間
//   - Client.Timeout: リクエスト全体のタイムアウト（呼び出し元から渡される）
//
// User-Agentが未設定のリクエストには DefaultUserAgent を付けます。
func NewHTTPClient(timeout time.Duration) *http.Client {
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        20,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &http.Client{Timeout: timeout, Transport: &userAgentTransport{base: t, ua: DefaultUserAgent}}
}

type userAgentTransport struct {
	base http.RoundTripper
	ua   string
}

func (u *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") != "" {
		return u.base.RoundTrip(req)
	}
	// RoundTripperは元のリクエストを変更してはいけない
	r := req.Clone(req.Context())
	r.Header.Set("User-Agent", u.ua)
	return u.base.RoundTrip(r)
}
