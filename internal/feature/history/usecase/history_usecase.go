// Package usecase はhistoryフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"tree_backend/internal/feature/history/domain/entity"
	identity "tree_backend/internal/feature/identification/domain/entity"
	identusecase "tree_backend/internal/feature/identification/usecase"
)

// MaxEntries は端末ごとに保持する履歴の上限です。
const MaxEntries = 50

// HistoryRepository は判定履歴の永続化レイヤーを抽象化します。
type HistoryRepository interface {
	Insert(ctx context.Context, e entity.Entry) error
	// TrimOldest は新しい順にkeep件を残して古い履歴を削除し、削除件数を返します。
	TrimOldest(ctx context.Context, deviceID string, keep int) (int64, error)
	// List は新しい順に最大limit件を返します。
	List(ctx context.Context, deviceID string, limit int) ([]entity.Entry, error)
	// Find は存在しない場合 ErrEntryNotFound を返します。
	Find(ctx context.Context, deviceID string, id uuid.UUID) (*entity.Entry, error)
	// Delete は存在しない場合 ErrEntryNotFound を返します。
	Delete(ctx context.Context, deviceID string, id uuid.UUID) error
}

// FavoriteRepository はお気に入りの永続化レイヤーを抽象化します。
type FavoriteRepository interface {
	// Add は同じ端末・履歴の組が既にある場合 ErrAlreadyFavorite を返します。
	Add(ctx context.Context, f entity.Favorite) error
	List(ctx context.Context, deviceID string) ([]entity.Favorite, error)
	// Remove は存在しない場合 ErrEntryNotFound を返します。
	Remove(ctx context.Context, deviceID string, id uuid.UUID) error
}

type historyUsecase struct {
	history   HistoryRepository
	favorites FavoriteRepository
	newID     func() (uuid.UUID, error)
	now       func() time.Time
}

var _ identusecase.HistoryRecorder = (*historyUsecase)(nil)

// NewHistoryUsecase はhistoryUsecaseの新しいインスタンスを生成します。
func NewHistoryUsecase(history HistoryRepository, favorites FavoriteRepository) *historyUsecase {
	return &historyUsecase{
		history:   history,
		favorites: favorites,
		// v7は時刻順に並ぶため、同一時刻の履歴もIDで順序が決まる
		newID: uuid.NewV7,
		now:   time.Now,
	}
}

// Record は判定結果を端末の履歴に追加し、上限を超えた古い履歴を削除します。
func (u *historyUsecase) Record(ctx context.Context, deviceID string, ident *identity.Identification) error {
	if deviceID == "" {
		return ErrDeviceRequired
	}
	if ident == nil || ident.Match == nil {
		return ErrNothingToRecord
	}

	id, err := u.newID()
	if err != nil {
		return fmt.Errorf("failed to generate history id: %w", err)
	}

	top := ident.Match.Top
	alts := make([]string, 0, len(ident.Match.Alternatives))
	for _, a := range ident.Match.Alternatives {
		alts = append(alts, a.Candidate.CommonName)
	}
	at := ident.Timestamp
	if at.IsZero() {
		at = u.now()
	}

	entry := entity.Entry{
		ID:           id,
		DeviceID:     deviceID,
		SpeciesName:  top.Candidate.SpeciesName,
		CommonName:   top.Candidate.CommonName,
		Confidence:   top.Confidence,
		MatchScore:   top.MatchScore,
		Alternatives: alts,
		Location:     ident.Location,
		IdentifiedAt: at.UTC(),
	}
	if err := u.history.Insert(ctx, entry); err != nil {
		return fmt.Errorf("failed to insert history: %w", err)
	}

	trimmed, err := u.history.TrimOldest(ctx, deviceID, MaxEntries)
	if err != nil {
		return fmt.Errorf("failed to trim history: %w", err)
	}
	if trimmed > 0 {
		slog.Debug("古い履歴を削除", "device_id", deviceID, "trimmed", trimmed)
	}
	return nil
}

// ListHistory は新しい順に履歴を返します。limitは1〜MaxEntriesに丸めます。
func (u *historyUsecase) ListHistory(ctx context.Context, deviceID string, limit int) ([]entity.Entry, error) {
	if deviceID == "" {
		return nil, ErrDeviceRequired
	}
	if limit <= 0 || limit > MaxEntries {
		limit = MaxEntries
	}
	return u.history.List(ctx, deviceID, limit)
}

// DeleteEntry は履歴を1件削除します。お気に入りのスナップショットは残ります。
func (u *historyUsecase) DeleteEntry(ctx context.Context, deviceID string, id uuid.UUID) error {
	if deviceID == "" {
		return ErrDeviceRequired
	}
	return u.history.Delete(ctx, deviceID, id)
}

// AddFavorite は履歴をお気に入りに登録します。
func (u *historyUsecase) AddFavorite(ctx context.Context, deviceID string, historyID uuid.UUID) (*entity.Favorite, error) {
	if deviceID == "" {
		return nil, ErrDeviceRequired
	}
	entry, err := u.history.Find(ctx, deviceID, historyID)
	if err != nil {
		return nil, err
	}

	id, err := u.newID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate favorite id: %w", err)
	}
	fav := entity.Favorite{
		ID:           id,
		DeviceID:     deviceID,
		HistoryID:    entry.ID,
		SpeciesName:  entry.SpeciesName,
		CommonName:   entry.CommonName,
		Confidence:   entry.Confidence,
		IdentifiedAt: entry.IdentifiedAt,
		CreatedAt:    u.now().UTC(),
	}
	if err := u.favorites.Add(ctx, fav); err != nil {
		return nil, err
	}
	return &fav, nil
}

// ListFavorites は登録の新しい順にお気に入りを返します。
func (u *historyUsecase) ListFavorites(ctx context.Context, deviceID string) ([]entity.Favorite, error) {
	if deviceID == "" {
		return nil, ErrDeviceRequired
	}
	return u.favorites.List(ctx, deviceID)
}

// RemoveFavorite はお気に入りを1件削除します。
func (u *historyUsecase) RemoveFavorite(ctx context.Context, deviceID string, id uuid.UUID) error {
	if deviceID == "" {
		return ErrDeviceRequired
	}
	return u.favorites.Remove(ctx, deviceID, id)
}
