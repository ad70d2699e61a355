// Package adapters はhistoryフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"tree_backend/internal/feature/history/domain/entity"
	"tree_backend/internal/feature/history/usecase"
	identity "tree_backend/internal/feature/identification/domain/entity"
)

// pgUniqueViolation はPostgreSQLの一意制約違反のSQLSTATEです。
const pgUniqueViolation = "23505"

// HistoryModel は identification_history テーブルの行です。
type HistoryModel struct {
	ID           string   `gorm:"primaryKey;size:36"`
	DeviceID     string   `gorm:"size:64;not null;index:idx_history_device_time,priority:1"`
	SpeciesName  string   `gorm:"size:255;not null"`
	CommonName   string   `gorm:"size:255;not null"`
	Confidence   float64  `gorm:"not null"`
	MatchScore   float64  `gorm:"not null"`
	Alternatives []string `gorm:"serializer:json;type:text"`
	Latitude     *float64
	Longitude    *float64
	IdentifiedAt time.Time `gorm:"not null;index:idx_history_device_time,priority:2"`
	CreatedAt    time.Time
}

func (HistoryModel) TableName() string {
	return "identification_history"
}

// FavoriteModel は favorites テーブルの行です。
type FavoriteModel struct {
	ID           string    `gorm:"primaryKey;size:36"`
	DeviceID     string    `gorm:"size:64;not null;uniqueIndex:idx_favorite_device_history,priority:1"`
	HistoryID    string    `gorm:"size:36;not null;uniqueIndex:idx_favorite_device_history,priority:2"`
	SpeciesName  string    `gorm:"size:255;not null"`
	CommonName   string    `gorm:"size:255;not null"`
	Confidence   float64   `gorm:"not null"`
	IdentifiedAt time.Time `gorm:"not null"`
	CreatedAt    time.Time
}

func (FavoriteModel) TableName() string {
	return "favorites"
}

type historyGorm struct {
	db *gorm.DB
}

type favoriteGorm struct {
	db *gorm.DB
}

var (
	_ usecase.HistoryRepository  = (*historyGorm)(nil)
	_ usecase.FavoriteRepository = (*favoriteGorm)(nil)
)

// NewHistoryRepository は指定されたDB接続でhistoryGormリポジトリの新しいインスタンスを生成します。
func NewHistoryRepository(db *gorm.DB) *historyGorm {
	return &historyGorm{db: db}
}

// NewFavoriteRepository は指定されたDB接続でfavoriteGormリポジトリの新しいインスタンスを生成します。
func NewFavoriteRepository(db *gorm.DB) *favoriteGorm {
	return &favoriteGorm{db: db}
}

func (r *historyGorm) Insert(ctx context.Context, e entity.Entry) error {
	m := HistoryModel{
		ID:           e.ID.String(),
		DeviceID:     e.DeviceID,
		SpeciesName:  e.SpeciesName,
		CommonName:   e.CommonName,
		Confidence:   e.Confidence,
		MatchScore:   e.MatchScore,
		Alternatives: e.Alternatives,
		IdentifiedAt: e.IdentifiedAt,
	}
	if e.Location != nil {
		lat, lng := e.Location.Latitude, e.Location.Longitude
		m.Latitude, m.Longitude = &lat, &lng
	}
	return r.db.WithContext(ctx).Create(&m).Error
}

// newestFirst は履歴の並び順です。IDはUUIDv7のため同時刻でも作成順になります。
const newestFirst = "identified_at DESC, id DESC"

func (r *historyGorm) TrimOldest(ctx context.Context, deviceID string, keep int) (int64, error) {
	var stale []string
	err := r.db.WithContext(ctx).Model(&HistoryModel{}).
		Where("device_id = ?", deviceID).
		Order(newestFirst).
		Offset(keep).
		Pluck("id", &stale).Error
	if err != nil {
		return 0, err
	}
	if len(stale) == 0 {
		return 0, nil
	}

	res := r.db.WithContext(ctx).
		Where("device_id = ? AND id IN ?", deviceID, stale).
		Delete(&HistoryModel{})
	return res.RowsAffected, res.Error
}

func (r *historyGorm) List(ctx context.Context, deviceID string, limit int) ([]entity.Entry, error) {
	var rows []HistoryModel
	q := r.db.WithContext(ctx).Where("device_id = ?", deviceID).Order(newestFirst)
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]entity.Entry, 0, len(rows))
	for _, m := range rows {
		e, err := toEntry(m)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *historyGorm) Find(ctx context.Context, deviceID string, id uuid.UUID) (*entity.Entry, error) {
	var m HistoryModel
	err := r.db.WithContext(ctx).
		Where("device_id = ? AND id = ?", deviceID, id.String()).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrEntryNotFound
		}
		return nil, err
	}
	e, err := toEntry(m)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *historyGorm) Delete(ctx context.Context, deviceID string, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("device_id = ? AND id = ?", deviceID, id.String()).
		Delete(&HistoryModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return usecase.ErrEntryNotFound
	}
	return nil
}

func toEntry(m HistoryModel) (entity.Entry, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return entity.Entry{}, err
	}
	e := entity.Entry{
		ID:           id,
		DeviceID:     m.DeviceID,
		SpeciesName:  m.SpeciesName,
		CommonName:   m.CommonName,
		Confidence:   m.Confidence,
		MatchScore:   m.MatchScore,
		Alternatives: m.Alternatives,
		IdentifiedAt: m.IdentifiedAt.UTC(),
	}
	if m.Latitude != nil && m.Longitude != nil {
		e.Location = &identity.Location{Latitude: *m.Latitude, Longitude: *m.Longitude}
	}
	return e, nil
}

func (r *favoriteGorm) Add(ctx context.Context, f entity.Favorite) error {
	m := FavoriteModel{
		ID:           f.ID.String(),
		DeviceID:     f.DeviceID,
		HistoryID:    f.HistoryID.String(),
		SpeciesName:  f.SpeciesName,
		CommonName:   f.CommonName,
		Confidence:   f.Confidence,
		IdentifiedAt: f.IdentifiedAt,
		CreatedAt:    f.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		if isDuplicateKey(err) {
			return usecase.ErrAlreadyFavorite
		}
		return err
	}
	return nil
}

func (r *favoriteGorm) List(ctx context.Context, deviceID string) ([]entity.Favorite, error) {
	var rows []FavoriteModel
	err := r.db.WithContext(ctx).
		Where("device_id = ?", deviceID).
		Order("created_at DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]entity.Favorite, 0, len(rows))
	for _, m := range rows {
		id, err := uuid.Parse(m.ID)
		if err != nil {
			return nil, err
		}
		hid, err := uuid.Parse(m.HistoryID)
		if err != nil {
			return nil, err
		}
		out = append(out, entity.Favorite{
			ID:           id,
			DeviceID:     m.DeviceID,
			HistoryID:    hid,
			SpeciesName:  m.SpeciesName,
			CommonName:   m.CommonName,
			Confidence:   m.Confidence,
			IdentifiedAt: m.IdentifiedAt.UTC(),
			CreatedAt:    m.CreatedAt.UTC(),
		})
	}
	return out, nil
}

func (r *favoriteGorm) Remove(ctx context.Context, deviceID string, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("device_id = ? AND id = ?", deviceID, id.String()).
		Delete(&FavoriteModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return usecase.ErrEntryNotFound
	}
	return nil
}

// isDuplicateKey は一意制約違反かどうかを判定します。
// TranslateError有効時はgormのエラーに、無効時はドライバーのエラーになります。
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
