// Package usecase はidentificationフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"tree_backend/internal/feature/identification/domain/entity"
)

const (
	// MaxImageSize は画像アップロードの最大サイズ（10MB）です。
	MaxImageSize = 10 * 1024 * 1024
)

// FeatureExtractor は画像から特徴量を抽出するインターフェースです。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type FeatureExtractor interface {
	Extract(ctx context.Context, imageData []byte, filename string) (entity.FeatureRecord, error)
}

// CandidateRepository はスコアリング対象の樹種一覧を提供するリポジトリインターフェースです。
type CandidateRepository interface {
	ListCandidates(ctx context.Context) ([]entity.CandidateSpecies, error)
}

// MatchRanker は候補樹種を採点して順位付けするインターフェースです。
type MatchRanker interface {
	ScoreAndRank(features entity.FeatureRecord, candidates []entity.CandidateSpecies) (*entity.MatchResult, error)
}

// ImageModerator はアップロード画像の内容を検査するインターフェースです。
// 不適切な画像の場合は ErrImageRejected をラップしたエラーを返します。
type ImageModerator interface {
	Check(ctx context.Context, imageData []byte) error
}

// HistoryRecorder は判定結果を端末ごとの履歴に記録するインターフェースです。
type HistoryRecorder interface {
	Record(ctx context.Context, deviceID string, ident *entity.Identification) error
}

// IdentifyRequest は樹種判定の入力です。
type IdentifyRequest struct {
	ImageData []byte
	Filename  string
	DeviceID  string           // 空の場合は履歴に記録しない
	Location  *entity.Location // 任意
}

// identifyUsecase は樹種判定のビジネスロジックを提供します。
type identifyUsecase struct {
	extractor FeatureExtractor
	ranker    MatchRanker
	primary   CandidateRepository
	fallback  CandidateRepository
	moderator ImageModerator
	recorder  HistoryRecorder
	now       func() time.Time
}

// NewIdentifyUsecase はidentifyUsecaseの新しいインスタンスを生成します。
// moderatorとrecorderはnilを許容します。fallbackはprimaryが空またはエラーのときに使われます。
func NewIdentifyUsecase(
	ex FeatureExtractor,
	rk MatchRanker,
	primary CandidateRepository,
	fallback CandidateRepository,
	mod ImageModerator,
	rec HistoryRecorder,
) *identifyUsecase {
	return &identifyUsecase{
		extractor: ex,
		ranker:    rk,
		primary:   primary,
		fallback:  fallback,
		moderator: mod,
		recorder:  rec,
		now:       time.Now,
	}
}

// WithClock は判定時刻の取得関数を差し替えます（テスト用）。
func (u *identifyUsecase) WithClock(now func() time.Time) *identifyUsecase {
	u.now = now
	return u
}

// IdentifyTree は画像から樹種を判定します。
func (u *identifyUsecase) IdentifyTree(ctx context.Context, req IdentifyRequest) (*entity.Identification, error) {
	if len(req.ImageData) == 0 {
		return nil, ErrEmptyImage
	}
	if len(req.ImageData) > MaxImageSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrImageTooLarge, len(req.ImageData), MaxImageSize)
	}

	if u.moderator != nil {
		if err := u.moderator.Check(ctx, req.ImageData); err != nil {
			if errors.Is(err, ErrImageRejected) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %w", ErrModerationFailed, err)
		}
	}

	features, err := u.extractor.Extract(ctx, req.ImageData, req.Filename)
	if err != nil {
		return nil, fmt.Errorf("failed to extract features: %w", err)
	}

	candidates, err := u.loadCandidates(ctx)
	if err != nil {
		return nil, err
	}

	match, err := u.ranker.ScoreAndRank(features, candidates)
	if err != nil {
		return nil, fmt.Errorf("failed to rank candidates: %w", err)
	}

	ident := &entity.Identification{
		Match:     match,
		Location:  req.Location,
		Timestamp: u.now().UTC(),
	}

	slog.Info("樹種判定完了",
		"species", match.Top.Candidate.SpeciesName,
		"score", match.Top.MatchScore,
		"confidence", match.Top.Confidence,
		"candidates", len(candidates),
	)

	if u.recorder != nil && req.DeviceID != "" {
		if err := u.recorder.Record(ctx, req.DeviceID, ident); err != nil {
			slog.Warn("判定履歴の保存に失敗", "error", err, "device_id", req.DeviceID)
		}
	}

	return ident, nil
}

// loadCandidates はDBの樹種一覧を取得し、エラーまたは空の場合は組み込みカタログにフォールバックします。
func (u *identifyUsecase) loadCandidates(ctx context.Context) ([]entity.CandidateSpecies, error) {
	if u.primary != nil {
		candidates, err := u.primary.ListCandidates(ctx)
		switch {
		case err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)):
			return nil, err
		case err != nil:
			slog.Warn("樹種一覧の取得に失敗、組み込みカタログを使用します", "error", err)
		case len(candidates) > 0:
			return candidates, nil
		default:
			slog.Warn("樹種テーブルが空のため組み込みカタログを使用します")
		}
	}
	if u.fallback == nil {
		return nil, nil
	}
	candidates, err := u.fallback.ListCandidates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load fallback candidates: %w", err)
	}
	return candidates, nil
}
