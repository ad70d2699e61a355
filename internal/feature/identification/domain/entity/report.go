package entity

import (
	"fmt"
	"strings"
)

// DefaultHealthStatus は健康状態の既定値です。健康診断は行わないため常にこの値を返します。
const DefaultHealthStatus = "Healthy"

// Characteristics は樹皮・花・果実・生育環境の記述のうち空でないものを返します。
func (c CandidateSpecies) Characteristics() []string {
	out := make([]string, 0, 4)
	for _, s := range []string{c.BarkDescription, c.FlowerDescription, c.FruitDescription, c.Habitat} {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}

// Description は樹種の短い説明文を組み立てます。
func (c CandidateSpecies) Description() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s) is from the %s family.", c.CommonName, c.SpeciesName, c.Family)
	if c.Habitat != "" {
		fmt.Fprintf(&b, " Typically found in %s.", c.Habitat)
	}
	if c.ConservationStatus != "" {
		fmt.Fprintf(&b, " Conservation status: %s.", c.ConservationStatus)
	}
	return b.String()
}

// CareInstructions は一般的な手入れの指針を返します。
func (c CandidateSpecies) CareInstructions() []string {
	return []string{
		"Native to: " + orDefault(c.Distribution, "Unknown region"),
		"Tree height: " + orDefault(c.HeightRange, "Variable"),
		"Leaf type: " + orDefault(string(c.LeafType), "Unknown"),
		"Water regularly and ensure proper drainage",
		"Consult local arborist for specific care needs",
	}
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
