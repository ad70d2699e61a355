package entity

import "time"

// ScoreBreakdown はスコアの内訳です。乗数と揺らぎを適用する前の加点・減点を項目別に保持します。
type ScoreBreakdown struct {
	Filename  float64 `json:"filename"`
	Fruit     float64 `json:"fruit"`
	TreeType  float64 `json:"tree_type"`
	LeafShape float64 `json:"leaf_shape"`
	Color     float64 `json:"color"`
	Bark      float64 `json:"bark"`
	Penalty   float64 `json:"penalty"`
	Jitter    float64 `json:"jitter"`
}

// Raw は乗数適用前の合計点を返します。
func (b ScoreBreakdown) Raw() float64 {
	return b.Filename + b.Fruit + b.TreeType + b.LeafShape + b.Color + b.Bark + b.Penalty
}

// ScoredCandidate はスコア付きの候補樹種です。
type ScoredCandidate struct {
	Candidate            CandidateSpecies
	MatchScore           float64 // 0以上にクランプ済み
	ConfidenceMultiplier float64
	Confidence           float64
	Breakdown            ScoreBreakdown
}

// MatchResult は1回の判定結果です。生成後は変更せず、所有権は呼び出し元に移ります。
type MatchResult struct {
	Top          ScoredCandidate
	Alternatives []ScoredCandidate // 最大2件
	Features     FeatureRecord
}

// Location は撮影位置です。コアでは検証も変換もせずそのまま受け渡します。
type Location struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// Identification は判定結果に撮影位置と判定時刻を添えたものです。
type Identification struct {
	Match     *MatchResult
	Location  *Location
	Timestamp time.Time
}
