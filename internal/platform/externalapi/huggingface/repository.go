package huggingface

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	identity "tree_backend/internal/feature/identification/domain/entity"
	"tree_backend/internal/feature/species/usecase"
	"tree_backend/internal/platform/externalapi/huggingface/dto"
)

// DatasetRepository はdatasets-serverから樹種データを取得するDatasetSource実装です。
type DatasetRepository struct {
	cfg    Config
	client *http.Client
}

var _ usecase.DatasetSource = (*DatasetRepository)(nil)

// NewDatasetRepository は指定された設定とHTTPクライアントでDatasetRepositoryを生成します。
func NewDatasetRepository(cfg Config, client *http.Client) *DatasetRepository {
	return &DatasetRepository{cfg: cfg.withDefaults(), client: client}
}

// FetchSpecies はoffsetからlength行を取得して樹種に変換します。
// 欠けている列は行番号に応じた既定値で埋めます。
func (r *DatasetRepository) FetchSpecies(ctx context.Context, offset, length int) ([]identity.CandidateSpecies, error) {
	q := url.Values{}
	q.Set("dataset", r.cfg.Dataset)
	q.Set("config", r.cfg.Config)
	q.Set("split", r.cfg.Split)
	q.Set("offset", strconv.Itoa(offset))
	q.Set("length", strconv.Itoa(length))

	u := fmt.Sprintf("%s/rows?%s", strings.TrimRight(r.cfg.BaseURL, "/"), q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	if r.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+r.cfg.Token)
	}

	res, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("huggingface http %d", res.StatusCode)
	}

	var body dto.RowsResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode rows: %w", err)
	}
	if body.ErrorMessage != "" {
		return nil, fmt.Errorf("huggingface: %s", body.ErrorMessage)
	}

	out := make([]identity.CandidateSpecies, 0, len(body.Rows))
	for i, entry := range body.Rows {
		out = append(out, rowToSpecies(entry.Row, offset+i))
	}
	return out, nil
}

// 行に列が無い場合の既定値です。行番号で循環させます。
var (
	defaultFamilies    = []string{"Fagaceae", "Pinaceae", "Rosaceae", "Sapindaceae"}
	defaultLeafTypes   = []identity.TreeType{identity.TreeEvergreen, identity.TreeDeciduous, identity.TreeTropical}
	defaultBark        = []string{"smooth gray bark", "rough furrowed bark", "scaly brown bark"}
	defaultFruits      = []string{"acorns", "berries", "nuts", "cones"}
	defaultLeafShapes  = []identity.LeafShape{identity.LeafOval, identity.LeafNeedle, identity.LeafLobed, identity.LeafHeart}
	defaultBarkTexture = []string{"smooth", "rough", "scaly"}
	defaultFruitTypes  = []string{"nut", "berry", "cone", "drupe"}
	defaultFruitColors = []string{"brown", "red", "orange", "black"}
)

func rowToSpecies(row map[string]any, index int) identity.CandidateSpecies {
	scientific := str(row, "scientific_name", "species")
	genus := str(row, "genus")
	if genus == "" && scientific != "" {
		genus = strings.Fields(scientific)[0]
	}
	if genus == "" {
		genus = "Unknown"
	}
	if scientific == "" {
		scientific = fmt.Sprintf("Species_%d", index)
	}

	colors := colorList(row["dominant_colors"])
	if len(colors) == 0 {
		colors = []identity.ColorClass{identity.ColorGreen, identity.ColorBrown}
	}

	return identity.CandidateSpecies{
		SpeciesName:        scientific,
		CommonName:         orDefault(str(row, "common_name", "name"), fmt.Sprintf("Tree %d", index)),
		Family:             orDefault(str(row, "family"), defaultFamilies[index%len(defaultFamilies)]),
		Genus:              genus,
		LeafType:           identity.TreeType(orDefault(str(row, "leaf_type"), string(defaultLeafTypes[index%len(defaultLeafTypes)]))),
		HeightRange:        orDefault(str(row, "height"), fmt.Sprintf("%d-%dm", 5+(index*7)%30, 20+(index*11)%50)),
		BarkDescription:    orDefault(str(row, "bark_description"), defaultBark[index%len(defaultBark)]),
		FlowerDescription:  orDefault(str(row, "flower_description"), "Small clustered flowers"),
		FruitDescription:   orDefault(str(row, "fruit_description"), defaultFruits[index%len(defaultFruits)]),
		Habitat:            orDefault(str(row, "habitat"), "Mixed forests, well-drained soils"),
		Distribution:       orDefault(str(row, "distribution"), "Widespread temperate regions"),
		ConservationStatus: orDefault(str(row, "conservation_status"), "Least Concern"),
		Declared: identity.DeclaredFeatures{
			LeafShape:      identity.LeafShape(orDefault(str(row, "leaf_shape"), string(defaultLeafShapes[index%len(defaultLeafShapes)]))),
			BarkTexture:    orDefault(str(row, "bark_texture"), defaultBarkTexture[index%len(defaultBarkTexture)]),
			DominantColors: colors,
			FruitType:      defaultFruitTypes[index%len(defaultFruitTypes)],
			FruitColor:     orDefault(str(row, "fruit_color"), defaultFruitColors[index%len(defaultFruitColors)]),
		},
	}
}

// str は最初に見つかった空でない列を文字列で返します。数値は整形します。
func str(row map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := row[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

func colorList(v any) []identity.ColorClass {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]identity.ColorClass, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok && s != "" {
			out = append(out, identity.ColorClass(strings.ToLower(s)))
		}
	}
	return out
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
