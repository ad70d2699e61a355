// Package dto はhistoryフィーチャーのHTTP APIで使うデータ転送オブジェクトを定義します。
package dto

import (
	"time"

	"tree_backend/internal/feature/history/domain/entity"
	identity "tree_backend/internal/feature/identification/domain/entity"
)

// EntryResponse は履歴1件のレスポンスDTOです。
type EntryResponse struct {
	ID           string             `json:"id"`
	Species      string             `json:"species"`
	CommonName   string             `json:"common_name"`
	Confidence   float64            `json:"confidence"`
	MatchScore   float64            `json:"match_score"`
	Alternatives []string           `json:"alternatives"`
	Location     *identity.Location `json:"location,omitempty"`
	Timestamp    string             `json:"timestamp"`
}

// HistoryListResponse は履歴一覧のレスポンスDTOです。
type HistoryListResponse struct {
	Entries []EntryResponse `json:"entries"`
	Count   int             `json:"count"`
}

// FavoriteRequest はお気に入り登録のリクエストDTOです。
type FavoriteRequest struct {
	HistoryID string `json:"history_id" binding:"required,uuid"`
}

// FavoriteResponse はお気に入り1件のレスポンスDTOです。
type FavoriteResponse struct {
	ID         string  `json:"id"`
	HistoryID  string  `json:"history_id"`
	Species    string  `json:"species"`
	CommonName string  `json:"common_name"`
	Confidence float64 `json:"confidence"`
	Timestamp  string  `json:"timestamp"`
	AddedAt    string  `json:"added_at"`
}

// FavoriteListResponse はお気に入り一覧のレスポンスDTOです。
type FavoriteListResponse struct {
	Favorites []FavoriteResponse `json:"favorites"`
	Count     int                `json:"count"`
}

// FromEntries は履歴一覧をレスポンスDTOに変換します。
func FromEntries(entries []entity.Entry) HistoryListResponse {
	out := make([]EntryResponse, 0, len(entries))
	for _, e := range entries {
		alts := e.Alternatives
		if alts == nil {
			alts = []string{}
		}
		out = append(out, EntryResponse{
			ID:           e.ID.String(),
			Species:      e.SpeciesName,
			CommonName:   e.CommonName,
			Confidence:   e.Confidence,
			MatchScore:   e.MatchScore,
			Alternatives: alts,
			Location:     e.Location,
			Timestamp:    e.IdentifiedAt.UTC().Format(time.RFC3339),
		})
	}
	return HistoryListResponse{Entries: out, Count: len(out)}
}

// FromFavorite はお気に入りをレスポンスDTOに変換します。
func FromFavorite(f entity.Favorite) FavoriteResponse {
	return FavoriteResponse{
		ID:         f.ID.String(),
		HistoryID:  f.HistoryID.String(),
		Species:    f.SpeciesName,
		CommonName: f.CommonName,
		Confidence: f.Confidence,
		Timestamp:  f.IdentifiedAt.UTC().Format(time.RFC3339),
		AddedAt:    f.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// FromFavorites はお気に入り一覧をレスポンスDTOに変換します。
func FromFavorites(favs []entity.Favorite) FavoriteListResponse {
	out := make([]FavoriteResponse, 0, len(favs))
	for _, f := range favs {
		out = append(out, FromFavorite(f))
	}
	return FavoriteListResponse{Favorites: out, Count: len(out)}
}
