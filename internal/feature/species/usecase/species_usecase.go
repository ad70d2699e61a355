// Package usecase はspeciesフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	identity "tree_backend/internal/feature/identification/domain/entity"
	"tree_backend/internal/feature/species/domain/entity"
)

const (
	// DefaultListLimit は一覧取得のデフォルト件数です。
	DefaultListLimit = 50
	// MaxListLimit は一覧取得の最大件数です。
	MaxListLimit = 200
	// MaxQueryLength は検索語の最大文字数（rune数）です。
	MaxQueryLength = 100
	// CarePromptTemplate は手入れガイド生成のプロンプトテンプレートです。
	CarePromptTemplate = "日本語で、樹木「%s（学名: %s、%s科）」を庭や公園で健康に育てるための手入れのポイントを3つ挙げて。水やり、剪定、病害虫対策に触れてください。"
)

// SpeciesRepository は樹種テーブルの読み取りレイヤーを抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type SpeciesRepository interface {
	// List は一般名順に最大limit件を返します。
	List(ctx context.Context, limit int) ([]identity.CandidateSpecies, error)
	// Search は一般名・学名・科名の部分一致（大文字小文字を区別しない）で検索します。
	Search(ctx context.Context, query string, limit int) ([]identity.CandidateSpecies, error)
	// FindByID は存在しない場合 ErrSpeciesNotFound を返します。
	FindByID(ctx context.Context, id uint) (*identity.CandidateSpecies, error)
}

// CareAdvisor はプロンプトから手入れガイドを生成するインターフェースです。
type CareAdvisor interface {
	Advise(ctx context.Context, prompt string) (string, error)
}

// speciesUsecase は樹種カタログの参照と手入れガイド生成を提供します。
type speciesUsecase struct {
	repo    SpeciesRepository
	advisor CareAdvisor
}

// NewSpeciesUsecase はspeciesUsecaseの新しいインスタンスを生成します。advisorはnilを許容します。
func NewSpeciesUsecase(repo SpeciesRepository, advisor CareAdvisor) *speciesUsecase {
	return &speciesUsecase{repo: repo, advisor: advisor}
}

// ListSpecies はqueryが空なら一覧を、そうでなければ検索結果を返します。
func (u *speciesUsecase) ListSpecies(ctx context.Context, query string, limit int) ([]identity.CandidateSpecies, error) {
	if limit <= 0 || limit > MaxListLimit {
		limit = DefaultListLimit
	}
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) > MaxQueryLength {
		return nil, fmt.Errorf("%w: max %d characters", ErrQueryTooLong, MaxQueryLength)
	}
	if query == "" {
		return u.repo.List(ctx, limit)
	}
	return u.repo.Search(ctx, query, limit)
}

// GetSpecies はIDで樹種を取得します。
func (u *speciesUsecase) GetSpecies(ctx context.Context, id uint) (*identity.CandidateSpecies, error) {
	return u.repo.FindByID(ctx, id)
}

// CareGuide は樹種の手入れガイドをAIで生成します。
func (u *speciesUsecase) CareGuide(ctx context.Context, id uint) (*entity.CareGuide, error) {
	sp, err := u.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.advisor == nil {
		return nil, fmt.Errorf("%w: advisor not configured", ErrCareAdvisorFailed)
	}

	prompt := fmt.Sprintf(CarePromptTemplate, sp.CommonName, sp.SpeciesName, sp.Family)
	advice, err := u.advisor.Advise(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w for %q: %w", ErrCareAdvisorFailed, sp.SpeciesName, err)
	}

	return &entity.CareGuide{
		SpeciesID:   sp.ID,
		SpeciesName: sp.SpeciesName,
		CommonName:  sp.CommonName,
		Advice:      strings.TrimSpace(advice),
	}, nil
}
