// Package handler はspeciesフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"tree_backend/internal/api"
	identity "tree_backend/internal/feature/identification/domain/entity"
	"tree_backend/internal/feature/species/domain/entity"
	"tree_backend/internal/feature/species/transport/http/dto"
	"tree_backend/internal/feature/species/usecase"
)

// SpeciesUsecase は樹種カタログのユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type SpeciesUsecase interface {
	ListSpecies(ctx context.Context, query string, limit int) ([]identity.CandidateSpecies, error)
	GetSpecies(ctx context.Context, id uint) (*identity.CandidateSpecies, error)
	CareGuide(ctx context.Context, id uint) (*entity.CareGuide, error)
}

// SpeciesHandler は樹種カタログのHTTPリクエストを処理します。
type SpeciesHandler struct {
	uc SpeciesUsecase
}

// NewSpeciesHandler はSpeciesHandlerの新しいインスタンスを生成します。
func NewSpeciesHandler(uc SpeciesUsecase) *SpeciesHandler {
	return &SpeciesHandler{uc: uc}
}

// List は樹種の一覧または検索結果を返します。
//
// エンドポイント例:
// GET /v1/species?q=oak&limit=20
func (h *SpeciesHandler) List(c *gin.Context) {
	limit, err := api.OptionalQueryInt(c, "limit", usecase.DefaultListLimit)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "limitは整数で指定してください"})
		return
	}

	list, err := h.uc.ListSpecies(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		if errors.Is(err, usecase.ErrQueryTooLong) {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "検索語が長すぎます"})
			return
		}
		slog.Error("樹種一覧の取得に失敗", "error", err, "q", c.Query("q"))
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "樹種一覧の取得に失敗しました"})
		return
	}

	c.JSON(http.StatusOK, dto.FromSpeciesList(list))
}

// Get はIDで指定した樹種を返します。
//
// エンドポイント: GET /v1/species/:id
func (h *SpeciesHandler) Get(c *gin.Context) {
	id, err := api.PathID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "樹種IDの形式が正しくありません"})
		return
	}

	sp, err := h.uc.GetSpecies(c.Request.Context(), id)
	if err != nil {
		h.respondLookupError(c, id, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromSpecies(*sp))
}

// Care はAIが生成した手入れガイドを返します。
//
// エンドポイント: POST /v1/species/:id/care
func (h *SpeciesHandler) Care(c *gin.Context) {
	id, err := api.PathID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "樹種IDの形式が正しくありません"})
		return
	}

	guide, err := h.uc.CareGuide(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, usecase.ErrCareAdvisorFailed) {
			slog.Error("手入れガイドの生成に失敗", "error", err, "species_id", id)
			c.JSON(http.StatusBadGateway, api.ErrorResponse{Error: "手入れガイドの生成に失敗しました"})
			return
		}
		h.respondLookupError(c, id, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromCareGuide(guide))
}

func (h *SpeciesHandler) respondLookupError(c *gin.Context, id uint, err error) {
	if errors.Is(err, usecase.ErrSpeciesNotFound) {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "樹種が見つかりません"})
		return
	}
	slog.Error("樹種の取得に失敗", "error", err, "species_id", id)
	c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "樹種の取得に失敗しました"})
}
