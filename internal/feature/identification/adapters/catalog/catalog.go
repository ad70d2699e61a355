// Package catalog は組み込みの樹種カタログを提供します。
// DBが空または利用できない場合の候補一覧と、シードデータの既定値として使います。
package catalog

import (
	"context"

	"tree_backend/internal/feature/identification/domain/entity"
	"tree_backend/internal/feature/identification/usecase"
)

// Catalog は固定の樹種一覧を返すCandidateRepositoryです。
type Catalog struct {
	species []entity.CandidateSpecies
}

// CatalogがCandidateRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.CandidateRepository = (*Catalog)(nil)

// New は指定した樹種一覧からCatalogを生成します。引数のスライスは複製して保持します。
func New(species []entity.CandidateSpecies) *Catalog {
	return &Catalog{species: cloneAll(species)}
}

// Default は組み込みの15樹種を持つCatalogを生成します。
func Default() *Catalog {
	return &Catalog{species: builtin()}
}

// ListCandidates は樹種一覧の複製を返します。
func (c *Catalog) ListCandidates(ctx context.Context) ([]entity.CandidateSpecies, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return cloneAll(c.species), nil
}

// Len はカタログの件数を返します。
func (c *Catalog) Len() int {
	return len(c.species)
}

func cloneAll(src []entity.CandidateSpecies) []entity.CandidateSpecies {
	out := make([]entity.CandidateSpecies, len(src))
	for i, s := range src {
		s.Declared.DominantColors = append([]entity.ColorClass(nil), s.Declared.DominantColors...)
		out[i] = s
	}
	return out
}

// builtin は呼び出しごとに新しいスライスを返します。
func builtin() []entity.CandidateSpecies {
	return []entity.CandidateSpecies{
		{
			SpeciesName:        "Quercus alba",
			CommonName:         "White Oak",
			Family:             "Fagaceae",
			Genus:              "Quercus",
			LeafType:           entity.TreeDeciduous,
			HeightRange:        "20-30 meters",
			BarkDescription:    "light gray, scaly, distinctive whitish bark",
			FlowerDescription:  "small, greenish catkins in spring",
			FruitDescription:   "acorns with shallow cups",
			Habitat:            "mixed hardwood forests, well-drained soils",
			Distribution:       "Eastern North America",
			ConservationStatus: "least concern",
			Declared: entity.DeclaredFeatures{
				LeafShape:      entity.LeafLobed,
				BarkTexture:    "rough",
				FruitType:      "nut",
				DominantColors: []entity.ColorClass{entity.ColorGreen, entity.ColorBrown, entity.ColorGray},
			},
		},
		{
			SpeciesName:        "Acer saccharum",
			CommonName:         "Sugar Maple",
			Family:             "Sapindaceae",
			Genus:              "Acer",
			LeafType:           entity.TreeDeciduous,
			HeightRange:        "25-35 meters",
			BarkDescription:    "gray-brown, deeply furrowed with age",
			FlowerDescription:  "small, yellowish-green clusters before leaves",
			FruitDescription:   "winged samaras, helicopter seeds",
			Habitat:            "hardwood forests, rich soils",
			Distribution:       "Eastern North America",
			ConservationStatus: "least concern",
			Declared: entity.DeclaredFeatures{
				LeafShape:      entity.LeafShape("palmate"),
				BarkTexture:    "rough",
				FruitType:      "samara",
				DominantColors: []entity.ColorClass{entity.ColorGreen, entity.ColorRed, entity.ColorOrange, entity.ColorYellow},
			},
		},
		{
			SpeciesName:        "Pinus strobus",
			CommonName:         "Eastern White Pine",
			Family:             "Pinaceae",
			Genus:              "Pinus",
			LeafType:           entity.TreeEvergreen,
			HeightRange:        "25-50 meters",
			BarkDescription:    "grayish-brown, smooth when young, furrowed with age",
			FlowerDescription:  "small cones, male yellow, female reddish",
			FruitDescription:   "long narrow cones, 8-20 cm",
			Habitat:            "mixed forests, sandy or rocky soils",
			Distribution:       "Eastern North America",
			ConservationStatus: "least concern",
			Declared: entity.DeclaredFeatures{
				LeafShape:      entity.LeafNeedle,
				BarkTexture:    "smooth_to_rough",
				FruitType:      "cone",
				DominantColors: []entity.ColorClass{entity.ColorGreen, entity.ColorBrown},
			},
		},
		{
			SpeciesName:        "Betula papyrifera",
			CommonName:         "Paper Birch",
			Family:             "Betulaceae",
			Genus:              "Betula",
			LeafType:           entity.TreeDeciduous,
			HeightRange:        "15-25 meters",
			BarkDescription:    "distinctive white, papery bark that peels",
			FlowerDescription:  "catkins in early spring",
			FruitDescription:   "small winged nutlets",
			Habitat:            "northern forests, moist soils",
			Distribution:       "Northern North America",
			ConservationStatus: "least concern",
			Declared: entity.DeclaredFeatures{
				LeafShape:      entity.LeafOval,
				BarkTexture:    "smooth",
				FruitType:      "nutlet",
				DominantColors: []entity.ColorClass{entity.ColorGreen, entity.ColorWhite, entity.ColorBrown},
			},
		},
		{
			SpeciesName:        "Mangifera indica",
			CommonName:         "Mango Tree",
			Family:             "Anacardiaceae",
			Genus:              "Mangifera",
			LeafType:           entity.TreeTropical,
			HeightRange:        "10-40 meters",
			BarkDescription:    "dark gray-brown, rough and fissured",
			FlowerDescription:  "small white or pink flowers in large clusters",
			FruitDescription:   "large orange-yellow tropical fruit",
			Habitat:            "tropical and subtropical regions",
			Distribution:       "Native to South Asia, cultivated worldwide",
			ConservationStatus: "least concern",
			Declared: entity.DeclaredFeatures{
				LeafShape:      entity.LeafShape("lanceolate"),
				BarkTexture:    "rough",
				FruitType:      "drupe",
				DominantColors: []entity.ColorClass{entity.ColorGreen, entity.ColorOrange, entity.ColorYellow},
			},
		},
		{
			SpeciesName:        "Citrus sinensis",
			CommonName:         "Orange Tree",
			Family:             "Rutaceae",
			Genus:              "Citrus",
			LeafType:           entity.TreeEvergreen,
			HeightRange:        "3-10 meters",
			BarkDescription:    "smooth grayish-brown bark",
			FlowerDescription:  "fragrant white flowers",
			FruitDescription:   "round orange citrus fruits",
			Habitat:            "subtropical regions, well-drained soils",
			Distribution:       "Originally Southeast Asia, now worldwide",
			ConservationStatus: "least concern",
			Declared: entity.DeclaredFeatures{
				LeafShape:      entity.LeafOval,
				BarkTexture:    "smooth",
				FruitType:      "hesperidium",
				DominantColors: []entity.ColorClass{entity.ColorGreen, entity.ColorOrange, entity.ColorWhite},
			},
		},
		{
			SpeciesName:        "Tilia americana",
			CommonName:         "American Basswood",
			Family:             "Malvaceae",
			Genus:              "Tilia",
			LeafType:           entity.TreeDeciduous,
			HeightRange:        "20-35 meters",
			BarkDescription:    "gray, deeply furrowed",
			FlowerDescription:  "small, fragrant, yellowish flowers",
			FruitDescription:   "small round nutlets with leafy bracts",
			Habitat:            "rich, moist soils in mixed forests",
			Distribution:       "Eastern North America",
			ConservationStatus: "least concern",
			Declared: entity.DeclaredFeatures{
				LeafShape:      entity.LeafHeart,
				BarkTexture:    "rough",
				FruitType:      "nutlet",
				DominantColors: []entity.ColorClass{entity.ColorGreen, entity.ColorBrown},
			},
		},
		{
			SpeciesName:        "Picea abies",
			CommonName:         "Norway Spruce",
			Family:             "Pinaceae",
			Genus:              "Picea",
			LeafType:           entity.TreeEvergreen,
			HeightRange:        "30-60 meters",
			BarkDescription:    "reddish-brown, scaly",
			FlowerDescription:  "small cones, red female, yellow male",
			FruitDescription:   "large hanging cones, 10-20 cm",
			Habitat:            "mountainous regions, cool climates",
			Distribution:       "Northern and Central Europe",
			ConservationStatus: "least concern",
			Declared: entity.DeclaredFeatures{
				LeafShape:      entity.LeafNeedle,
				BarkTexture:    "scaly",
				FruitType:      "cone",
				DominantColors: []entity.ColorClass{entity.ColorGreen, entity.ColorBrown},
			},
		},
		{
			SpeciesName:        "Abies balsamea",
			CommonName:         "Balsam Fir",
			Family:             "Pinaceae",
			Genus:              "Abies",
			LeafType:           entity.TreeEvergreen,
			HeightRange:        "15-25 meters",
			BarkDescription:    "smooth gray bark with resin blisters",
			FlowerDescription:  "upright cones, purple when young",
			FruitDescription:   "upright cones that disintegrate on tree",
			Habitat:            "cool, moist forests",
			Distribution:       "Northeastern North America",
			ConservationStatus: "least concern",
			Declared: entity.DeclaredFeatures{
				LeafShape:      entity.LeafNeedle,
				BarkTexture:    "smooth",
				FruitType:      "cone",
				DominantColors: []entity.ColorClass{entity.ColorGreen, entity.ColorGray},
			},
		},
		{
			SpeciesName:        "Tsuga canadensis",
			CommonName:         "Eastern Hemlock",
			Family:             "Pinaceae",
			Genus:              "Tsuga",
			LeafType:           entity.TreeEvergreen,
			HeightRange:        "20-40 meters",
			BarkDescription:    "reddish-brown, deeply furrowed",
			FlowerDescription:  "small cones at branch tips",
			FruitDescription:   "small oval cones, 1.5-2.5 cm",
			Habitat:            "cool, moist forests, ravines",
			Distribution:       "Eastern North America",
			ConservationStatus: "near threatened",
			Declared: entity.DeclaredFeatures{
				LeafShape:      entity.LeafNeedle,
				BarkTexture:    "rough",
				FruitType:      "cone",
				DominantColors: []entity.ColorClass{entity.ColorGreen, entity.ColorBrown},
			},
		},
		{
			SpeciesName:        "Acer rubrum",
			CommonName:         "Red Maple",
			Family:             "Sapindaceae",
			Genus:              "Acer",
			LeafType:           entity.TreeDeciduous,
			HeightRange:        "15-25 meters",
			BarkDescription:    "smooth gray when young, darker and furrowed with age",
			FlowerDescription:  "small red flowers in early spring",
			FruitDescription:   "red winged samaras",
			Habitat:            "wetlands, swamps, various soil types",
			Distribution:       "Eastern North America",
			ConservationStatus: "least concern",
			Declared: entity.DeclaredFeatures{
				LeafShape:      entity.LeafThreeLobed,
				BarkTexture:    "smooth_to_rough",
				FruitType:      "samara",
				DominantColors: []entity.ColorClass{entity.ColorGreen, entity.ColorRed, entity.ColorOrange},
			},
		},
		{
			SpeciesName:        "Quercus rubra",
			CommonName:         "Northern Red Oak",
			Family:             "Fagaceae",
			Genus:              "Quercus",
			LeafType:           entity.TreeDeciduous,
			HeightRange:        "25-40 meters",
			BarkDescription:    "dark gray-brown, deeply ridged",
			FlowerDescription:  "yellowish-green catkins",
			FruitDescription:   "large acorns with shallow cups",
			Habitat:            "well-drained upland forests",
			Distribution:       "Eastern North America",
			ConservationStatus: "least concern",
			Declared: entity.DeclaredFeatures{
				LeafShape:      entity.LeafLobed,
				BarkTexture:    "rough",
				FruitType:      "nut",
				DominantColors: []entity.ColorClass{entity.ColorGreen, entity.ColorRed, entity.ColorBrown},
			},
		},
		{
			SpeciesName:        "Fagus grandifolia",
			CommonName:         "American Beech",
			Family:             "Fagaceae",
			Genus:              "Fagus",
			LeafType:           entity.TreeDeciduous,
			HeightRange:        "20-35 meters",
			BarkDescription:    "smooth, light gray bark",
			FlowerDescription:  "small, inconspicuous flowers",
			FruitDescription:   "triangular nuts in spiny husks",
			Habitat:            "rich, well-drained soils in mature forests",
			Distribution:       "Eastern North America",
			ConservationStatus: "least concern",
			Declared: entity.DeclaredFeatures{
				LeafShape:      entity.LeafOval,
				BarkTexture:    "smooth",
				FruitType:      "nut",
				DominantColors: []entity.ColorClass{entity.ColorGreen, entity.ColorGray, entity.ColorBrown},
			},
		},
		{
			SpeciesName:        "Carya ovata",
			CommonName:         "Shagbark Hickory",
			Family:             "Juglandaceae",
			Genus:              "Carya",
			LeafType:           entity.TreeDeciduous,
			HeightRange:        "20-30 meters",
			BarkDescription:    "distinctive shaggy, peeling bark",
			FlowerDescription:  "yellowish-green catkins",
			FruitDescription:   "large nuts in thick husks",
			Habitat:            "rich, well-drained soils",
			Distribution:       "Eastern North America",
			ConservationStatus: "least concern",
			Declared: entity.DeclaredFeatures{
				LeafShape:      entity.LeafShape("compound"),
				BarkTexture:    "shaggy",
				FruitType:      "nut",
				DominantColors: []entity.ColorClass{entity.ColorGreen, entity.ColorBrown},
			},
		},
		{
			SpeciesName:        "Prunus serotina",
			CommonName:         "Black Cherry",
			Family:             "Rosaceae",
			Genus:              "Prunus",
			LeafType:           entity.TreeDeciduous,
			HeightRange:        "15-30 meters",
			BarkDescription:    "dark, scaly bark with horizontal lines",
			FlowerDescription:  "white flowers in drooping clusters",
			FruitDescription:   "small dark purple cherries",
			Habitat:            "various forest types, disturbed areas",
			Distribution:       "Eastern North America",
			ConservationStatus: "least concern",
			Declared: entity.DeclaredFeatures{
				LeafShape:      entity.LeafOval,
				BarkTexture:    "scaly",
				FruitType:      "drupe",
				DominantColors: []entity.ColorClass{entity.ColorGreen, entity.ColorClass("dark_purple"), entity.ColorBrown},
			},
		},
	}
}
