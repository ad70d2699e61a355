// Package handler はidentificationフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"tree_backend/internal/api"
	"tree_backend/internal/feature/identification/domain"
	"tree_backend/internal/feature/identification/domain/entity"
	"tree_backend/internal/feature/identification/transport/http/dto"
	"tree_backend/internal/feature/identification/usecase"
	jwtmw "tree_backend/internal/platform/jwt"
)

// IdentifyUsecase は樹種判定のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type IdentifyUsecase interface {
	IdentifyTree(ctx context.Context, req usecase.IdentifyRequest) (*entity.Identification, error)
}

// MaxRequestBodySize はマルチパートリクエスト全体の上限です。画像の上限に1MiBの余裕を加えます。
const MaxRequestBodySize = usecase.MaxImageSize + 1<<20

// IdentifyHandler は樹種判定のHTTPリクエストを処理します。
type IdentifyHandler struct {
	uc IdentifyUsecase
}

// NewIdentifyHandler はIdentifyHandlerの新しいインスタンスを生成します。
func NewIdentifyHandler(uc IdentifyUsecase) *IdentifyHandler {
	return &IdentifyHandler{uc: uc}
}

// Identify は画像をアップロードして樹種を判定します。
//
// エンドポイント: POST /v1/identify
// Content-Type: multipart/form-data
// フィールド: image（画像ファイル、最大10MB）、filename・lat・lng（任意）
func (h *IdentifyHandler) Identify(c *gin.Context) {
	// 画像本体とフォーム項目の余裕分を超えるボディは読み込む前に打ち切る
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxRequestBodySize)

	file, err := c.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			slog.Warn("リクエストボディが大きすぎます", "limit", tooLarge.Limit, "remote_addr", c.ClientIP())
			c.JSON(http.StatusRequestEntityTooLarge, api.ErrorResponse{Error: "画像サイズは10MB以下にしてください"})
			return
		}
		slog.Warn("画像ファイルの取得に失敗", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "画像ファイルが必要です"})
		return
	}
	if file.Size > usecase.MaxImageSize {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "画像サイズは10MB以下にしてください"})
		return
	}

	loc, err := parseLocation(c.PostForm("lat"), c.PostForm("lng"))
	if err != nil {
		slog.Warn("位置情報の形式が不正", "error", err, "lat", c.PostForm("lat"), "lng", c.PostForm("lng"))
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "位置情報の形式が正しくありません"})
		return
	}

	f, err := file.Open()
	if err != nil {
		slog.Error("画像ファイルのオープンに失敗", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "画像の読み込みに失敗しました"})
		return
	}
	defer func() {
		if err := f.Close(); err != nil {
			slog.Warn("画像ファイルのクローズに失敗", "error", err)
		}
	}()

	imageData, err := io.ReadAll(io.LimitReader(f, usecase.MaxImageSize+1))
	if err != nil {
		slog.Error("画像データの読み取りに失敗", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "画像の読み込みに失敗しました"})
		return
	}

	filename := c.PostForm("filename")
	if filename == "" {
		filename = file.Filename
	}

	ident, err := h.uc.IdentifyTree(c.Request.Context(), usecase.IdentifyRequest{
		ImageData: imageData,
		Filename:  filename,
		DeviceID:  c.GetString(jwtmw.ContextDeviceID),
		Location:  loc,
	})
	if err != nil {
		status, msg := identifyErrorStatus(err)
		slog.Error("樹種判定に失敗", "error", err, "status", status, "filename", filename)
		c.JSON(status, api.ErrorResponse{Error: msg})
		return
	}

	c.JSON(http.StatusOK, dto.FromIdentification(ident))
}

// identifyErrorStatus はユースケースのエラーをHTTPステータスとメッセージに変換します。
func identifyErrorStatus(err error) (int, string) {
	var decodeErr *domain.DecodeError
	switch {
	case errors.Is(err, usecase.ErrEmptyImage):
		return http.StatusBadRequest, "画像データが空です"
	case errors.Is(err, usecase.ErrImageTooLarge):
		return http.StatusBadRequest, "画像サイズは10MB以下にしてください"
	case errors.As(err, &decodeErr):
		return http.StatusUnprocessableEntity, "画像を読み取れませんでした"
	case errors.Is(err, usecase.ErrImageRejected):
		return http.StatusUnprocessableEntity, "この画像は受け付けられません"
	case errors.Is(err, usecase.ErrModerationFailed):
		return http.StatusBadGateway, "画像の検査に失敗しました"
	case errors.Is(err, domain.ErrNoCandidates):
		return http.StatusServiceUnavailable, "樹種データが利用できません"
	default:
		return http.StatusInternalServerError, "樹種の判定に失敗しました"
	}
}

// parseLocation はlat/lngのフォーム値を解析します。両方空の場合はnilを返します。
func parseLocation(latStr, lngStr string) (*entity.Location, error) {
	latStr, lngStr = strings.TrimSpace(latStr), strings.TrimSpace(lngStr)
	if latStr == "" && lngStr == "" {
		return nil, nil
	}
	if latStr == "" || lngStr == "" {
		return nil, errors.New("lat and lng must be given together")
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return nil, err
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return nil, errors.New("coordinates must be finite")
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil, errors.New("coordinates out of range")
	}
	return &entity.Location{Latitude: lat, Longitude: lng}, nil
}
