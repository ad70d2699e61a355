// Package dto はdeviceフィーチャーのHTTP APIで使うデータ転送オブジェクトを定義します。
package dto

// DeviceResponse は端末登録のレスポンスDTOです。
type DeviceResponse struct {
	DeviceID string `json:"device_id"`
	Token    string `json:"token"`
}
