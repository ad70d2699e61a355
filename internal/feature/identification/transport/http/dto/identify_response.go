// Package dto はidentificationフィーチャーのHTTP APIで使うデータ転送オブジェクトを定義します。
package dto

import (
	"time"

	"tree_backend/internal/feature/identification/domain/entity"
)

// IdentifyResponse は樹種判定結果のレスポンスDTOです。
type IdentifyResponse struct {
	Species          string           `json:"species"`
	CommonName       string           `json:"common_name"`
	Confidence       float64          `json:"confidence"`
	Characteristics  []string         `json:"characteristics"`
	HealthStatus     string           `json:"health_status"`
	Description      string           `json:"description"`
	CareInstructions []string         `json:"care_instructions"`
	Location         *entity.Location `json:"location,omitempty"`
	Timestamp        string           `json:"timestamp"`
	AnalysisDetails  AnalysisDetails  `json:"analysis_details"`
}

// AnalysisDetails は判定の根拠となった特徴量とスコアです。
type AnalysisDetails struct {
	ImageFeatures      entity.FeatureRecord  `json:"image_features"`
	MatchScore         float64               `json:"match_score"`
	Breakdown          entity.ScoreBreakdown `json:"score_breakdown"`
	AlternativeMatches []AlternativeMatch    `json:"alternative_matches"`
}

// AlternativeMatch は次点候補です。
type AlternativeMatch struct {
	Name       string  `json:"name"`
	Species    string  `json:"species"`
	Confidence float64 `json:"confidence"`
}

// FromIdentification は判定結果をレスポンスDTOに変換します。
func FromIdentification(ident *entity.Identification) IdentifyResponse {
	top := ident.Match.Top
	alts := make([]AlternativeMatch, 0, len(ident.Match.Alternatives))
	for _, a := range ident.Match.Alternatives {
		alts = append(alts, AlternativeMatch{
			Name:       a.Candidate.CommonName,
			Species:    a.Candidate.SpeciesName,
			Confidence: a.Confidence,
		})
	}

	return IdentifyResponse{
		Species:          top.Candidate.SpeciesName,
		CommonName:       top.Candidate.CommonName,
		Confidence:       top.Confidence,
		Characteristics:  top.Candidate.Characteristics(),
		HealthStatus:     entity.DefaultHealthStatus,
		Description:      top.Candidate.Description(),
		CareInstructions: top.Candidate.CareInstructions(),
		Location:         ident.Location,
		Timestamp:        ident.Timestamp.UTC().Format(time.RFC3339),
		AnalysisDetails: AnalysisDetails{
			ImageFeatures:      ident.Match.Features,
			MatchScore:         top.MatchScore,
			Breakdown:          top.Breakdown,
			AlternativeMatches: alts,
		},
	}
}
