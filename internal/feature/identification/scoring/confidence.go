package scoring

import (
	"math"

	"tree_backend/internal/feature/identification/domain/entity"
)

const (
	// alternativeFloor / alternativeCeiling は次点候補の信頼度の範囲です。
	alternativeFloor   = 0.45
	alternativeCeiling = 0.85
)

// ConfidencePolicy は最上位候補と次点候補の信頼度を決める方針です。
type ConfidencePolicy interface {
	// Top は最上位候補の信頼度を返します。secondは次点候補が無い場合nilです。
	Top(top entity.ScoredCandidate, second *entity.ScoredCandidate) float64
	// Alternative は次点候補の信頼度を返します。
	Alternative(c entity.ScoredCandidate) float64
	// Bounds は最上位候補の信頼度の下限と上限を返します。
	Bounds() (floor, ceiling float64)
}

// BasicConfidence はスコアをそのまま [0.65, 0.95] に収める単純な方針です。
type BasicConfidence struct{}

var _ ConfidencePolicy = BasicConfidence{}

func (BasicConfidence) Bounds() (float64, float64) { return 0.65, 0.95 }

func (p BasicConfidence) Top(top entity.ScoredCandidate, _ *entity.ScoredCandidate) float64 {
	floor, ceiling := p.Bounds()
	return clamp(floor, ceiling, top.MatchScore)
}

func (BasicConfidence) Alternative(c entity.ScoredCandidate) float64 {
	return clamp(alternativeFloor, alternativeCeiling, c.MatchScore)
}

// EnhancedConfidence はスコアを急な一次式で変換し、強いファイル名一致や2位との差に応じて加点する方針です。
type EnhancedConfidence struct{}

var _ ConfidencePolicy = EnhancedConfidence{}

func (EnhancedConfidence) Bounds() (float64, float64) { return 0.70, 0.98 }

func (p EnhancedConfidence) Top(top entity.ScoredCandidate, second *entity.ScoredCandidate) float64 {
	floor, ceiling := p.Bounds()
	score := top.MatchScore
	gap := score
	if second != nil {
		gap = score - second.MatchScore
	}

	conf := clamp(floor, ceiling, score*0.15+0.75)

	// スコア5超はファイル名の強い一致
	if score > 5.0 {
		conf = math.Min(ceiling, conf+0.15)
	}

	switch {
	case gap > 1.0:
		conf = math.Min(ceiling, conf+0.10)
	case gap > 0.5 && conf < 0.95: // 既に0.95以上なら下げない
		conf = math.Min(0.95, conf+0.05)
	}

	if top.ConfidenceMultiplier > 1.5 {
		conf = math.Min(ceiling, conf+0.08)
	}

	if score > 4.0 && gap > 0.8 {
		conf = math.Max(0.90, conf)
	}

	return clamp(floor, ceiling, conf)
}

func (EnhancedConfidence) Alternative(c entity.ScoredCandidate) float64 {
	return clamp(alternativeFloor, alternativeCeiling, c.MatchScore)
}

// PolicyByName は設定値から信頼度方針を選びます。未知の値はEnhancedConfidenceになります。
func PolicyByName(name string) ConfidencePolicy {
	if name == "basic" {
		return BasicConfidence{}
	}
	return EnhancedConfidence{}
}

func clamp(lo, hi, v float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
