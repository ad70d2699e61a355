// Package api はフィーチャー横断で共有するHTTPレスポンス型を定義します。
package api

// ErrorResponse はエラー時のレスポンスです。
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse は本文を持たない操作の結果メッセージです。
type MessageResponse struct {
	Message string `json:"message"`
}
