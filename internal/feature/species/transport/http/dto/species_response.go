// Package dto はspeciesフィーチャーのHTTP APIで使うデータ転送オブジェクトを定義します。
package dto

import (
	identity "tree_backend/internal/feature/identification/domain/entity"
	"tree_backend/internal/feature/species/domain/entity"
)

// SpeciesResponse は樹種1件のレスポンスDTOです。
type SpeciesResponse struct {
	ID                 uint                      `json:"id"`
	SpeciesName        string                    `json:"species_name"`
	CommonName         string                    `json:"common_name"`
	Family             string                    `json:"family"`
	Genus              string                    `json:"genus"`
	LeafType           string                    `json:"leaf_type"`
	HeightRange        string                    `json:"height_range"`
	BarkDescription    string                    `json:"bark_description"`
	FlowerDescription  string                    `json:"flower_description"`
	FruitDescription   string                    `json:"fruit_description"`
	Habitat            string                    `json:"habitat"`
	Distribution       string                    `json:"distribution"`
	ConservationStatus string                    `json:"conservation_status"`
	ImageFeatures      identity.DeclaredFeatures `json:"image_features"`
}

// SpeciesListResponse は樹種一覧のレスポンスDTOです。
type SpeciesListResponse struct {
	Species []SpeciesResponse `json:"species"`
	Count   int               `json:"count"`
}

// CareGuideResponse は手入れガイドのレスポンスDTOです。
type CareGuideResponse struct {
	SpeciesID   uint   `json:"species_id"`
	SpeciesName string `json:"species_name"`
	CommonName  string `json:"common_name"`
	Advice      string `json:"advice"`
}

// FromSpecies は候補樹種をレスポンスDTOに変換します。
func FromSpecies(s identity.CandidateSpecies) SpeciesResponse {
	return SpeciesResponse{
		ID:                 s.ID,
		SpeciesName:        s.SpeciesName,
		CommonName:         s.CommonName,
		Family:             s.Family,
		Genus:              s.Genus,
		LeafType:           string(s.LeafType),
		HeightRange:        s.HeightRange,
		BarkDescription:    s.BarkDescription,
		FlowerDescription:  s.FlowerDescription,
		FruitDescription:   s.FruitDescription,
		Habitat:            s.Habitat,
		Distribution:       s.Distribution,
		ConservationStatus: s.ConservationStatus,
		ImageFeatures:      s.Declared,
	}
}

// FromSpeciesList は一覧をレスポンスDTOに変換します。
func FromSpeciesList(list []identity.CandidateSpecies) SpeciesListResponse {
	out := make([]SpeciesResponse, 0, len(list))
	for _, s := range list {
		out = append(out, FromSpecies(s))
	}
	return SpeciesListResponse{Species: out, Count: len(out)}
}

// FromCareGuide は手入れガイドをレスポンスDTOに変換します。
func FromCareGuide(g *entity.CareGuide) CareGuideResponse {
	return CareGuideResponse{
		SpeciesID:   g.SpeciesID,
		SpeciesName: g.SpeciesName,
		CommonName:  g.CommonName,
		Advice:      g.Advice,
	}
}
