package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	identity "tree_backend/internal/feature/identification/domain/entity"
	"tree_backend/internal/shared/ratelimiter"
)

const (
	// SeedPageSize は1回のリクエストで取得する行数です。
	SeedPageSize = 100
	// MaxSeedRows は外部データセットから取り込む最大行数です。
	MaxSeedRows = 200
)

// 取り込み元を表す値です。
const (
	SourceDataset = "dataset"
	SourceBuiltin = "builtin"
)

// DatasetSource は外部データセットから樹種を取得するリポジトリインターフェースです。
// offsetは取り込み全体での通し番号で、既定値の割り当てに使われます。
type DatasetSource interface {
	FetchSpecies(ctx context.Context, offset, length int) ([]identity.CandidateSpecies, error)
}

// FallbackSource は外部データセットが使えない場合の樹種一覧です。
type FallbackSource interface {
	ListCandidates(ctx context.Context) ([]identity.CandidateSpecies, error)
}

// SpeciesWriter は樹種を学名単位で挿入または更新します。
type SpeciesWriter interface {
	UpsertBatch(ctx context.Context, species []identity.CandidateSpecies) error
}

// SeedOptions はシード処理のオプションです。
type SeedOptions struct {
	Offline bool // trueの場合は外部データセットを使わない
	Limit   int  // 0以下またはMaxSeedRows超の場合はMaxSeedRows
}

// SeedReport はシード処理の結果です。
type SeedReport struct {
	Source string
	Count  int
}

// SeedUsecase は外部データセットまたは組み込みカタログから樹種テーブルを作成します。
type SeedUsecase struct {
	source      DatasetSource
	fallback    FallbackSource
	writer      SpeciesWriter
	rateLimiter ratelimiter.Limiter
}

// NewSeedUsecase は新しい SeedUsecase を作成します。sourceはnilを許容します（常に組み込みカタログを使用）。
func NewSeedUsecase(source DatasetSource, fallback FallbackSource, writer SpeciesWriter, rl ratelimiter.Limiter) *SeedUsecase {
	return &SeedUsecase{source: source, fallback: fallback, writer: writer, rateLimiter: rl}
}

// Seed は樹種を取得して永続化します。
// 外部データセットの取得に失敗した場合は、それまでに取得できた行を使い、1行も無ければ組み込みカタログを使います。
func (u *SeedUsecase) Seed(ctx context.Context, opts SeedOptions) (*SeedReport, error) {
	limit := opts.Limit
	if limit <= 0 || limit > MaxSeedRows {
		limit = MaxSeedRows
	}

	var species []identity.CandidateSpecies
	source := SourceDataset
	if !opts.Offline && u.source != nil {
		var err error
		species, err = u.fetchAll(ctx, limit)
		if err != nil {
			return nil, err
		}
	}
	if len(species) == 0 {
		source = SourceBuiltin
		fb, err := u.fallback.ListCandidates(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load builtin catalog: %w", err)
		}
		species = fb
	}

	species = dedupeBySpeciesName(species)
	if err := u.writer.UpsertBatch(ctx, species); err != nil {
		return nil, fmt.Errorf("failed to upsert species: %w", err)
	}

	slog.Info("樹種データを登録しました", "source", source, "count", len(species))
	return &SeedReport{Source: source, Count: len(species)}, nil
}

// fetchAll はページ単位で取得します。コンテキストのキャンセル以外のエラーは警告として扱い、取得済みの行を返します。
func (u *SeedUsecase) fetchAll(ctx context.Context, limit int) ([]identity.CandidateSpecies, error) {
	out := make([]identity.CandidateSpecies, 0, limit)
	for offset := 0; offset < limit; offset += SeedPageSize {
		if u.rateLimiter != nil {
			if err := u.rateLimiter.Wait(ctx); err != nil {
				return nil, err
			}
		}
		length := min(SeedPageSize, limit-offset)
		rows, err := u.source.FetchSpecies(ctx, offset, length)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			slog.Warn("データセットの取得に失敗", "offset", offset, "length", length, "error", err)
			break
		}
		out = append(out, rows...)
		if len(rows) < length {
			break
		}
	}
	return out, nil
}

// dedupeBySpeciesName は学名の重複を取り除きます。最初に現れた行を残します。
func dedupeBySpeciesName(in []identity.CandidateSpecies) []identity.CandidateSpecies {
	seen := make(map[string]struct{}, len(in))
	out := make([]identity.CandidateSpecies, 0, len(in))
	for _, s := range in {
		if s.SpeciesName == "" {
			continue
		}
		if _, ok := seen[s.SpeciesName]; ok {
			continue
		}
		seen[s.SpeciesName] = struct{}{}
		out = append(out, s)
	}
	return out
}
