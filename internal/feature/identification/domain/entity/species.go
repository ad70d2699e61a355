package entity

import "strings"

// DeclaredFeatures は候補樹種が宣言する外観上の特徴です。スコアリングの照合に使います。
type DeclaredFeatures struct {
	LeafShape      LeafShape    `json:"leaf_shape"`
	BarkTexture    string       `json:"bark_texture"`
	DominantColors []ColorClass `json:"dominant_colors"`
	FruitType      string       `json:"fruit_type"`
	FruitColor     string       `json:"fruit_color,omitempty"`
}

// CandidateSpecies はスコアリング対象の樹種レコードです。
// 静的カタログでもDBの行でも同じ形で扱い、コア側では変更しません。
type CandidateSpecies struct {
	ID                 uint
	SpeciesName        string   // 学名（例: "Quercus alba"）
	CommonName         string   // 一般名（例: "White Oak"）
	Family             string   // 科
	Genus              string   // 属
	LeafType           TreeType // evergreen / deciduous / tropical
	HeightRange        string
	BarkDescription    string
	FlowerDescription  string
	FruitDescription   string // 自由記述、果実が無い場合は "none" または空
	Habitat            string
	Distribution       string
	ConservationStatus string
	Declared           DeclaredFeatures
}

// HasFruit は候補が果実を持つと宣言しているかを返します。
func (c CandidateSpecies) HasFruit() bool {
	d := strings.TrimSpace(strings.ToLower(c.FruitDescription))
	return d != "" && d != "none"
}

// DeclaresColor は宣言された支配色に指定色が含まれるかを返します。
func (c CandidateSpecies) DeclaresColor(color ColorClass) bool {
	return containsColor(c.Declared.DominantColors, color)
}
