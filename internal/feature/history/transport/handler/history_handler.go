// Package handler はhistoryフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tree_backend/internal/api"
	"tree_backend/internal/feature/history/domain/entity"
	"tree_backend/internal/feature/history/transport/http/dto"
	"tree_backend/internal/feature/history/usecase"
	jwtmw "tree_backend/internal/platform/jwt"
)

// HistoryUsecase は判定履歴とお気に入りのユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type HistoryUsecase interface {
	ListHistory(ctx context.Context, deviceID string, limit int) ([]entity.Entry, error)
	DeleteEntry(ctx context.Context, deviceID string, id uuid.UUID) error
	AddFavorite(ctx context.Context, deviceID string, historyID uuid.UUID) (*entity.Favorite, error)
	ListFavorites(ctx context.Context, deviceID string) ([]entity.Favorite, error)
	RemoveFavorite(ctx context.Context, deviceID string, id uuid.UUID) error
}

// HistoryHandler は判定履歴とお気に入りのHTTPリクエストを処理します。
type HistoryHandler struct {
	uc HistoryUsecase
}

// NewHistoryHandler はHistoryHandlerの新しいインスタンスを生成します。
func NewHistoryHandler(uc HistoryUsecase) *HistoryHandler {
	return &HistoryHandler{uc: uc}
}

// List は端末の判定履歴を新しい順に返します。
//
// エンドポイント例:
// GET /v1/history?limit=20
func (h *HistoryHandler) List(c *gin.Context) {
	limit, err := api.OptionalQueryInt(c, "limit", usecase.MaxEntries)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "limitは整数で指定してください"})
		return
	}

	entries, err := h.uc.ListHistory(c.Request.Context(), c.GetString(jwtmw.ContextDeviceID), limit)
	if err != nil {
		respondError(c, err, "履歴の取得に失敗しました")
		return
	}
	c.JSON(http.StatusOK, dto.FromEntries(entries))
}

// Delete は履歴を1件削除します。
//
// エンドポイント: DELETE /v1/history/:id
func (h *HistoryHandler) Delete(c *gin.Context) {
	id, err := api.PathUUID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "IDの形式が正しくありません"})
		return
	}

	if err := h.uc.DeleteEntry(c.Request.Context(), c.GetString(jwtmw.ContextDeviceID), id); err != nil {
		respondError(c, err, "履歴の削除に失敗しました")
		return
	}
	c.Status(http.StatusNoContent)
}

// ListFavorites はお気に入りを返します。
//
// エンドポイント: GET /v1/favorites
func (h *HistoryHandler) ListFavorites(c *gin.Context) {
	favs, err := h.uc.ListFavorites(c.Request.Context(), c.GetString(jwtmw.ContextDeviceID))
	if err != nil {
		respondError(c, err, "お気に入りの取得に失敗しました")
		return
	}
	c.JSON(http.StatusOK, dto.FromFavorites(favs))
}

// AddFavorite は履歴をお気に入りに登録します。
//
// エンドポイント: POST /v1/favorites
// リクエストボディ: {"history_id": "..."}
func (h *HistoryHandler) AddFavorite(c *gin.Context) {
	var req dto.FavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "history_idを指定してください"})
		return
	}
	historyID, err := uuid.Parse(req.HistoryID)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "IDの形式が正しくありません"})
		return
	}

	fav, err := h.uc.AddFavorite(c.Request.Context(), c.GetString(jwtmw.ContextDeviceID), historyID)
	if err != nil {
		respondError(c, err, "お気に入りの登録に失敗しました")
		return
	}
	c.JSON(http.StatusCreated, dto.FromFavorite(*fav))
}

// RemoveFavorite はお気に入りを1件削除します。
//
// エンドポイント: DELETE /v1/favorites/:id
func (h *HistoryHandler) RemoveFavorite(c *gin.Context) {
	id, err := api.PathUUID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "IDの形式が正しくありません"})
		return
	}

	if err := h.uc.RemoveFavorite(c.Request.Context(), c.GetString(jwtmw.ContextDeviceID), id); err != nil {
		respondError(c, err, "お気に入りの削除に失敗しました")
		return
	}
	c.Status(http.StatusNoContent)
}

func respondError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, usecase.ErrEntryNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "履歴が見つかりません"})
	case errors.Is(err, usecase.ErrAlreadyFavorite):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: "既にお気に入りに登録されています"})
	case errors.Is(err, usecase.ErrDeviceRequired):
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "端末の認証が必要です"})
	default:
		slog.Error(fallback, "error", err, "path", c.FullPath())
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: fallback})
	}
}
