// Package adapters はspeciesフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	identity "tree_backend/internal/feature/identification/domain/entity"
	identusecase "tree_backend/internal/feature/identification/usecase"
	"tree_backend/internal/feature/species/usecase"
)

// SpeciesModel は tree_species テーブルの行です。
type SpeciesModel struct {
	ID                 uint   `gorm:"primaryKey"`
	SpeciesName        string `gorm:"size:255;not null;uniqueIndex"`
	CommonName         string `gorm:"size:255;not null;index"`
	Family             string `gorm:"size:128"`
	Genus              string `gorm:"size:128"`
	LeafType           string `gorm:"size:32"`
	HeightRange        string `gorm:"size:64"`
	BarkDescription    string `gorm:"type:text"`
	FlowerDescription  string `gorm:"type:text"`
	FruitDescription   string `gorm:"type:text"`
	Habitat            string `gorm:"type:text"`
	Distribution       string `gorm:"type:text"`
	ConservationStatus string `gorm:"size:64"`

	ImageFeatures identity.DeclaredFeatures `gorm:"serializer:json;type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (SpeciesModel) TableName() string {
	return "tree_species"
}

// upsertColumns は学名が衝突した場合に更新する列です。
var upsertColumns = []string{
	"common_name", "family", "genus", "leaf_type", "height_range",
	"bark_description", "flower_description", "fruit_description",
	"habitat", "distribution", "conservation_status", "image_features", "updated_at",
}

type speciesGorm struct {
	db *gorm.DB
}

var (
	_ usecase.SpeciesRepository        = (*speciesGorm)(nil)
	_ usecase.SpeciesWriter            = (*speciesGorm)(nil)
	_ identusecase.CandidateRepository = (*speciesGorm)(nil)
)

// NewSpeciesRepository は指定されたDB接続でspeciesGormリポジトリの新しいインスタンスを生成します。
func NewSpeciesRepository(db *gorm.DB) *speciesGorm {
	return &speciesGorm{db: db}
}

func toModel(e identity.CandidateSpecies) SpeciesModel {
	return SpeciesModel{
		SpeciesName:        e.SpeciesName,
		CommonName:         e.CommonName,
		Family:             e.Family,
		Genus:              e.Genus,
		LeafType:           string(e.LeafType),
		HeightRange:        e.HeightRange,
		BarkDescription:    e.BarkDescription,
		FlowerDescription:  e.FlowerDescription,
		FruitDescription:   e.FruitDescription,
		Habitat:            e.Habitat,
		Distribution:       e.Distribution,
		ConservationStatus: e.ConservationStatus,
		ImageFeatures:      e.Declared,
	}
}

func toEntity(m SpeciesModel) identity.CandidateSpecies {
	return identity.CandidateSpecies{
		ID:                 m.ID,
		SpeciesName:        m.SpeciesName,
		CommonName:         m.CommonName,
		Family:             m.Family,
		Genus:              m.Genus,
		LeafType:           identity.TreeType(m.LeafType),
		HeightRange:        m.HeightRange,
		BarkDescription:    m.BarkDescription,
		FlowerDescription:  m.FlowerDescription,
		FruitDescription:   m.FruitDescription,
		Habitat:            m.Habitat,
		Distribution:       m.Distribution,
		ConservationStatus: m.ConservationStatus,
		Declared:           m.ImageFeatures,
	}
}

func toEntities(rows []SpeciesModel) []identity.CandidateSpecies {
	out := make([]identity.CandidateSpecies, 0, len(rows))
	for _, m := range rows {
		out = append(out, toEntity(m))
	}
	return out
}

// ListCandidates はID順に全樹種を返します。判定時の候補一覧として使います。
func (r *speciesGorm) ListCandidates(ctx context.Context) ([]identity.CandidateSpecies, error) {
	var rows []SpeciesModel
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	return toEntities(rows), nil
}

// List は一般名順に最大limit件を返します。
func (r *speciesGorm) List(ctx context.Context, limit int) ([]identity.CandidateSpecies, error) {
	var rows []SpeciesModel
	q := r.db.WithContext(ctx).Order("common_name ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toEntities(rows), nil
}

// Search は一般名・学名・科名の部分一致で検索します。
func (r *speciesGorm) Search(ctx context.Context, query string, limit int) ([]identity.CandidateSpecies, error) {
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
	var rows []SpeciesModel
	q := r.db.WithContext(ctx).
		Where("LOWER(common_name) LIKE ? ESCAPE '\\' OR LOWER(species_name) LIKE ? ESCAPE '\\' OR LOWER(family) LIKE ? ESCAPE '\\'",
			pattern, pattern, pattern).
		Order("common_name ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toEntities(rows), nil
}

// FindByID はIDで樹種を取得します。存在しない場合は usecase.ErrSpeciesNotFound を返します。
func (r *speciesGorm) FindByID(ctx context.Context, id uint) (*identity.CandidateSpecies, error) {
	var m SpeciesModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrSpeciesNotFound
		}
		return nil, err
	}
	e := toEntity(m)
	return &e, nil
}

// UpsertBatch は学名をキーに挿入または更新します。
func (r *speciesGorm) UpsertBatch(ctx context.Context, species []identity.CandidateSpecies) error {
	if len(species) == 0 {
		return nil
	}
	ms := make([]SpeciesModel, 0, len(species))
	for _, e := range species {
		ms = append(ms, toModel(e))
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "species_name"}},
		DoUpdates: clause.AssignmentColumns(upsertColumns),
	}).CreateInBatches(&ms, 100).Error
}

// escapeLike はLIKEのワイルドカード文字をエスケープします。
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
