// Package entity はidentificationフィーチャーのドメインモデルを定義します。
package entity

// ColorClass は画素を分類する粗い色クラスです。
type ColorClass string

const (
	ColorGreen  ColorClass = "green"
	ColorOrange ColorClass = "orange"
	ColorYellow ColorClass = "yellow"
	ColorBrown  ColorClass = "brown"
	ColorGray   ColorClass = "gray"
	ColorRed    ColorClass = "red"
	ColorWhite  ColorClass = "white"
)

// LeafShape は葉の形を表します。
// 画像から推定されるのは oval / heart / three-lobed / lobed の4種類のみで、
// それ以外の値は候補樹種の宣言値としてのみ現れます。
type LeafShape string

const (
	LeafOval       LeafShape = "oval"
	LeafHeart      LeafShape = "heart"
	LeafThreeLobed LeafShape = "three-lobed"
	LeafLobed      LeafShape = "lobed"
	LeafNeedle     LeafShape = "needle"
)

// TreeType は樹木の大分類です。
type TreeType string

const (
	TreeEvergreen TreeType = "evergreen"
	TreeTropical  TreeType = "tropical"
	TreeDeciduous TreeType = "deciduous"
)

// FilenameHint はファイル名から得たヒントです。
// 画素解析ではなく文字列照合の結果なので、FeatureRecordの中でも別枠で保持します。
type FilenameHint struct {
	Filename  string    // 正規化済み（NFKC・小文字）のファイル名
	Needles   bool      // pine / fir / spruce / needle
	LeafShape LeafShape // キーワードが無い場合は空
	Tropical  bool      // mango / orange / tropical
	Fruit     bool      // mango / fruit / orange
}

// FeatureRecord は1枚の画像から抽出した特徴量です。
// 生成後は変更しない値オブジェクトとして扱い、元画像への参照は持ちません。
type FeatureRecord struct {
	DominantColors []ColorClass           `json:"dominant_colors"`
	HasNeedles     bool                   `json:"has_needles"`
	LeafShapeGuess LeafShape              `json:"leaf_shape"`
	BarkVisible    bool                   `json:"bark_visible"`
	TreeTypeGuess  TreeType               `json:"tree_type"`
	HasFruit       bool                   `json:"has_fruit"`
	FruitColors    []ColorClass           `json:"fruit_colors"`
	Coverage       map[ColorClass]float64 `json:"coverage,omitempty"`
	Hint           FilenameHint           `json:"-"`
}

// HasColor は指定した色が支配色に含まれるかを返します。
func (f FeatureRecord) HasColor(c ColorClass) bool {
	return containsColor(f.DominantColors, c)
}

// HasFruitColor は指定した色が果実色に含まれるかを返します。
func (f FeatureRecord) HasFruitColor(c ColorClass) bool {
	return containsColor(f.FruitColors, c)
}

func containsColor(colors []ColorClass, c ColorClass) bool {
	for _, x := range colors {
		if x == c {
			return true
		}
	}
	return false
}
