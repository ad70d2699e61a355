// Package usecase はdeviceフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// TokenIssuer は端末トークンを発行するインターフェースです。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type TokenIssuer interface {
	GenerateDeviceToken(deviceID string) (string, error)
}

// Registration は発行した端末IDとトークンです。
type Registration struct {
	DeviceID string
	Token    string
}

// deviceUsecase は匿名端末の登録を行います。
type deviceUsecase struct {
	issuer TokenIssuer
	newID  func() string
}

// NewDeviceUsecase はdeviceUsecaseの新しいインスタンスを生成します。
func NewDeviceUsecase(issuer TokenIssuer) *deviceUsecase {
	return &deviceUsecase{issuer: issuer, newID: uuid.NewString}
}

// Register は新しい端末IDを採番し、そのIDを主体とするトークンを発行します。
func (u *deviceUsecase) Register(ctx context.Context) (*Registration, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id := u.newID()
	token, err := u.issuer.GenerateDeviceToken(id)
	if err != nil {
		return nil, fmt.Errorf("failed to issue device token: %w", err)
	}
	return &Registration{DeviceID: id, Token: token}, nil
}
