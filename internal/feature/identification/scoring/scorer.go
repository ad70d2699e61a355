// Package scoring は特徴量と候補樹種の一致度を採点し、順位付けと信頼度の算出を行います。
package scoring

import (
	"cmp"
	"math"
	"math/rand/v2"
	"slices"
	"strings"

	"tree_backend/internal/feature/identification/domain"
	"tree_backend/internal/feature/identification/domain/entity"
)

const (
	// DefaultJitterMax はスコアに加える揺らぎの上限です。
	DefaultJitterMax = 0.05
	// MaxAlternatives は結果に含める次点候補の最大数です。
	MaxAlternatives = 2

	// minKeywordLength より長い単語だけをファイル名照合に使います。
	minKeywordLength = 3
)

// distinctiveKeywords はファイル名と一般名の両方に含まれたときに大きく加点する語です。
var distinctiveKeywords = []string{"mango", "orange", "oak", "maple", "pine", "birch"}

// RandSource は揺らぎ用の乱数源です。*rand.Rand（math/rand/v2）がそのまま使えます。
type RandSource interface {
	Float64() float64
}

// globalRand はgoroutine安全なmath/rand/v2のグローバル乱数源です。
type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }

// Scorer は候補樹種を採点して順位付けします。
// 乱数源を除き状態を持たないため、デフォルト構成では複数のgoroutineから同時に使えます。
type Scorer struct {
	policy    ConfidencePolicy
	jitterMax float64
	rnd       RandSource
}

// Option はScorerの構成を変更します。
type Option func(*Scorer)

// WithPolicy は信頼度方針を差し替えます。
func WithPolicy(p ConfidencePolicy) Option {
	return func(s *Scorer) {
		if p != nil {
			s.policy = p
		}
	}
}

// WithJitter は揺らぎの上限と乱数源を設定します。srcがnilの場合はグローバル乱数源を使います。
// 並行呼び出しする場合、srcはgoroutine安全である必要があります。
func WithJitter(max float64, src RandSource) Option {
	return func(s *Scorer) {
		s.jitterMax = math.Max(0, max)
		if src != nil {
			s.rnd = src
		}
	}
}

// WithoutJitter は揺らぎを無効にします。同じ入力に対して同じ結果を返すようになります。
func WithoutJitter() Option {
	return func(s *Scorer) { s.jitterMax = 0 }
}

// NewScorer はScorerを生成します。デフォルトはEnhancedConfidenceと上限0.05の揺らぎです。
func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{
		policy:    EnhancedConfidence{},
		jitterMax: DefaultJitterMax,
		rnd:       globalRand{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Policy は使用中の信頼度方針を返します。
func (s *Scorer) Policy() ConfidencePolicy {
	return s.policy
}

// ScoreAndRank は全候補を採点し、スコアの降順（同点は入力順）に並べた結果を返します。
// 候補が空の場合は domain.ErrNoCandidates を返します。
func (s *Scorer) ScoreAndRank(features entity.FeatureRecord, candidates []entity.CandidateSpecies) (*entity.MatchResult, error) {
	if len(candidates) == 0 {
		return nil, domain.ErrNoCandidates
	}

	scored := make([]entity.ScoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		scored = append(scored, s.Score(features, c))
	}
	slices.SortStableFunc(scored, func(a, b entity.ScoredCandidate) int {
		return cmp.Compare(b.MatchScore, a.MatchScore)
	})

	top := scored[0]
	var second *entity.ScoredCandidate
	if len(scored) > 1 {
		second = &scored[1]
	}
	if top.MatchScore == 0 {
		// 何も一致しなかった場合も入力順で先頭の候補を下限の信頼度で返す
		top.Confidence, _ = s.policy.Bounds()
	} else {
		top.Confidence = s.policy.Top(top, second)
	}

	alternatives := make([]entity.ScoredCandidate, 0, MaxAlternatives)
	for _, c := range scored[1:min(len(scored), MaxAlternatives+1)] {
		c.Confidence = s.policy.Alternative(c)
		alternatives = append(alternatives, c)
	}

	return &entity.MatchResult{
		Top:          top,
		Alternatives: alternatives,
		Features:     features,
	}, nil
}

// Score は1件の候補を採点します。
// 加点・減点の合計に信頼度乗数を掛け、揺らぎを加えてから0未満を切り捨てます。
func (s *Scorer) Score(f entity.FeatureRecord, c entity.CandidateSpecies) entity.ScoredCandidate {
	var b entity.ScoreBreakdown
	mult := 1.0

	mult += scoreFilename(&b, f.Hint.Filename, c)
	mult += scoreTreeType(&b, f, c)
	scoreFruit(&b, f, c)
	mult += scoreLeafShape(&b, f, c)
	scoreColors(&b, f, c)
	scoreBark(&b, f, c)

	if s.jitterMax > 0 {
		b.Jitter = s.rnd.Float64() * s.jitterMax
	}

	return entity.ScoredCandidate{
		Candidate:            c,
		MatchScore:           math.Max(0, b.Raw()*mult+b.Jitter),
		ConfidenceMultiplier: mult,
		Breakdown:            b,
	}
}

// scoreFilename はファイル名と樹種名の一致を加点し、乗数の増分を返します。最も重い信号です。
func scoreFilename(b *entity.ScoreBreakdown, filename string, c entity.CandidateSpecies) float64 {
	if filename == "" {
		return 0
	}
	var mult float64
	common := strings.ToLower(c.CommonName)

	for _, w := range strings.Fields(common) {
		if len(w) > minKeywordLength && strings.Contains(filename, w) {
			b.Filename += 2.5
			mult += 0.3
		}
	}
	for _, w := range strings.Fields(strings.ToLower(c.SpeciesName)) {
		if len(w) > minKeywordLength && strings.Contains(filename, w) {
			b.Filename += 2.0
			mult += 0.2
		}
	}
	for _, w := range strings.Fields(strings.ToLower(c.Genus)) {
		if len(w) > minKeywordLength && strings.Contains(filename, w) {
			b.Filename += 1.5
			mult += 0.15
		}
	}
	for _, k := range distinctiveKeywords {
		if strings.Contains(filename, k) && strings.Contains(common, k) {
			b.Filename += 3.0
			mult += 0.4
		}
	}
	return mult
}

func scoreFruit(b *entity.ScoreBreakdown, f entity.FeatureRecord, c entity.CandidateSpecies) {
	candidateFruit := c.HasFruit()
	desc := strings.ToLower(c.FruitDescription)

	switch {
	case f.HasFruit && candidateFruit:
		b.Fruit += 1.2
		matches := 0
		for _, fc := range f.FruitColors {
			if strings.Contains(desc, string(fc)) || c.DeclaresColor(fc) {
				matches++
			}
		}
		b.Fruit += 0.8 * float64(matches)
		if strings.EqualFold(c.Declared.FruitType, "drupe") &&
			(strings.Contains(desc, "mango") || strings.Contains(desc, "cherry")) {
			b.Fruit += 1.0
		}
	case !f.HasFruit && !candidateFruit:
		b.Fruit += 0.6
	case f.HasFruit && !candidateFruit:
		b.Penalty -= 1.2
	case len(c.FruitDescription) > 10:
		// 画像に果実が無いのに候補は果実を持つ
		b.Penalty -= 0.8
	}
}

func scoreTreeType(b *entity.ScoreBreakdown, f entity.FeatureRecord, c entity.CandidateSpecies) float64 {
	var mult float64
	if c.LeafType == f.TreeTypeGuess {
		b.TreeType += 1.0
		mult += 0.1
	}
	if c.LeafType == entity.TreeEvergreen && f.HasNeedles {
		b.TreeType += 1.2
		mult += 0.15
	}
	if c.LeafType == entity.TreeTropical && f.TreeTypeGuess == entity.TreeTropical {
		b.TreeType += 1.0
		mult += 0.1
	}
	if (f.HasNeedles && c.LeafType == entity.TreeDeciduous) ||
		(!f.HasNeedles && c.LeafType == entity.TreeEvergreen) {
		b.Penalty -= 1.0
	}
	return mult
}

func scoreLeafShape(b *entity.ScoreBreakdown, f entity.FeatureRecord, c entity.CandidateSpecies) float64 {
	if c.Declared.LeafShape == "" || c.Declared.LeafShape != f.LeafShapeGuess {
		return 0
	}
	b.LeafShape += 0.8
	return 0.05
}

func scoreColors(b *entity.ScoreBreakdown, f entity.FeatureRecord, c entity.CandidateSpecies) {
	if len(c.Declared.DominantColors) == 0 {
		return
	}
	for _, color := range f.DominantColors {
		if c.DeclaresColor(color) {
			b.Color += 0.4
		}
	}
	if f.HasColor(entity.ColorWhite) && c.DeclaresColor(entity.ColorWhite) &&
		strings.Contains(strings.ToLower(c.CommonName), "birch") {
		b.Color += 1.0
	}
	if f.HasColor(entity.ColorOrange) && c.DeclaresColor(entity.ColorOrange) {
		b.Color += 0.8
	}
}

func scoreBark(b *entity.ScoreBreakdown, f entity.FeatureRecord, c entity.CandidateSpecies) {
	if !f.BarkVisible || c.BarkDescription == "" {
		return
	}
	bark := strings.ToLower(c.BarkDescription)
	texture := strings.ToLower(c.Declared.BarkTexture)

	if strings.Contains(bark, "white") && f.HasColor(entity.ColorWhite) {
		b.Bark += 0.6
	}
	if strings.Contains(bark, "smooth") && texture == "smooth" {
		b.Bark += 0.4
	}
	if strings.Contains(bark, "rough") && texture == "rough" {
		b.Bark += 0.4
	}
	if strings.Contains(bark, "shaggy") && texture == "shaggy" {
		b.Bark += 0.8
	}
}
