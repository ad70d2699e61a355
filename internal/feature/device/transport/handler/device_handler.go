// Package handler はdeviceフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"tree_backend/internal/api"
	"tree_backend/internal/feature/device/transport/http/dto"
	"tree_backend/internal/feature/device/usecase"
)

// DeviceUsecase は端末登録のユースケースインターフェースを定義します。
type DeviceUsecase interface {
	Register(ctx context.Context) (*usecase.Registration, error)
}

// DeviceHandler は端末登録のHTTPリクエストを処理します。
type DeviceHandler struct {
	uc DeviceUsecase
}

// NewDeviceHandler はDeviceHandlerの新しいインスタンスを生成します。
func NewDeviceHandler(uc DeviceUsecase) *DeviceHandler {
	return &DeviceHandler{uc: uc}
}

// Register は匿名端末IDとアクセストークンを発行します。
//
// エンドポイント: POST /v1/devices
func (h *DeviceHandler) Register(c *gin.Context) {
	reg, err := h.uc.Register(c.Request.Context())
	if err != nil {
		slog.Error("端末登録に失敗", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "端末の登録に失敗しました"})
		return
	}
	c.JSON(http.StatusCreated, dto.DeviceResponse{DeviceID: reg.DeviceID, Token: reg.Token})
}
