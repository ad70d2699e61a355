// Package extractor は画像バイト列とファイル名から特徴量（FeatureRecord）を抽出します。
//
// 画像は作業解像度（最大800×600）まで縮小してから全画素を粗い色クラスに分類し、
// 色ごとの被覆率とファイル名ヒントを組み合わせて特徴量を決定します。
package extractor

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"tree_backend/internal/feature/identification/domain"
	"tree_backend/internal/feature/identification/domain/entity"
)

const (
	// MaxWorkingWidth は解析に使う作業画像の最大幅です。
	MaxWorkingWidth = 800
	// MaxWorkingHeight は解析に使う作業画像の最大高さです。
	MaxWorkingHeight = 600
	// MaxPixels はデコードを許可する画素数の上限（幅×高さ）です。
	MaxPixels = 40_000_000
)

var errEmptyImage = errors.New("image has no pixels")

// ErrTooManyPixels は宣言された画像サイズがMaxPixelsを超える場合にDecodeErrorに包まれて返されます。
var ErrTooManyPixels = errors.New("image dimensions too large")

// Extractor は状態を持たない特徴量抽出器です。複数のgoroutineから同時に呼び出せます。
type Extractor struct {
	maxWidth  int
	maxHeight int
}

// New はデフォルトの作業解像度でExtractorを生成します。
func New() *Extractor {
	return &Extractor{maxWidth: MaxWorkingWidth, maxHeight: MaxWorkingHeight}
}

// Extract は画像を解析してFeatureRecordを1件返します。
// デコードできない場合は *domain.DecodeError を返し、FeatureRecordは生成しません。
func (e *Extractor) Extract(ctx context.Context, imageData []byte, filename string) (entity.FeatureRecord, error) {
	if err := ctx.Err(); err != nil {
		return entity.FeatureRecord{}, err
	}

	// 圧縮率の高い画像でも展開後のメモリが膨らまないよう、ヘッダーの寸法だけ先に確認する
	cfg, _, err := image.DecodeConfig(bytes.NewReader(imageData))
	if err != nil {
		return entity.FeatureRecord{}, &domain.DecodeError{Err: err}
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return entity.FeatureRecord{}, &domain.DecodeError{Err: errEmptyImage}
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return entity.FeatureRecord{}, &domain.DecodeError{Err: ErrTooManyPixels}
	}

	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return entity.FeatureRecord{}, &domain.DecodeError{Err: err}
	}
	if img.Bounds().Empty() {
		return entity.FeatureRecord{}, &domain.DecodeError{Err: errEmptyImage}
	}

	img = e.downscale(img)
	if err := ctx.Err(); err != nil {
		return entity.FeatureRecord{}, err
	}

	return buildRecord(measureCoverage(img), ParseHint(filename)), nil
}

// downscale は作業解像度を超える画像を縮小します。
// 幅と高さをそれぞれ上限で切り詰めるため、縦横比は保持しません。
func (e *Extractor) downscale(img image.Image) image.Image {
	b := img.Bounds()
	w, h := min(b.Dx(), e.maxWidth), min(b.Dy(), e.maxHeight)
	if w == b.Dx() && h == b.Dy() {
		return img
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}

// measureCoverage は色クラスごとの被覆率（0〜1）を返します。
func measureCoverage(img image.Image) map[entity.ColorClass]float64 {
	counts := make(map[entity.ColorClass]int, len(bucketOrder))
	b := img.Bounds()
	total := b.Dx() * b.Dy()

	if nrgba, ok := img.(*image.NRGBA); ok {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			row := nrgba.Pix[nrgba.PixOffset(b.Min.X, y):nrgba.PixOffset(b.Max.X, y)]
			for i := 0; i+3 < len(row); i += 4 {
				if c, ok := classifyPixel(int(row[i]), int(row[i+1]), int(row[i+2])); ok {
					counts[c]++
				}
			}
		}
	} else {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				px := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
				if c, ok := classifyPixel(int(px.R), int(px.G), int(px.B)); ok {
					counts[c]++
				}
			}
		}
	}

	coverage := make(map[entity.ColorClass]float64, len(bucketOrder))
	for _, c := range bucketOrder {
		coverage[c] = float64(counts[c]) / float64(total)
	}
	return coverage
}

// buildRecord は被覆率とファイル名ヒントからFeatureRecordを組み立てます。
// ファイル名ヒントと画素の両方が当てはまる場合はファイル名ヒントを優先します。
func buildRecord(coverage map[entity.ColorClass]float64, hint entity.FilenameHint) entity.FeatureRecord {
	dominant := make([]entity.ColorClass, 0, len(bucketOrder))
	for _, c := range bucketOrder {
		if coverage[c] > dominantThresholds[c] {
			dominant = append(dominant, c)
		}
	}

	fruitColors := make([]entity.ColorClass, 0, 2)
	for _, c := range []entity.ColorClass{entity.ColorOrange, entity.ColorYellow} {
		if coverage[c] > fruitColorCoverageThreshold {
			fruitColors = append(fruitColors, c)
		}
	}

	hasFruit := coverage[entity.ColorOrange] > fruitCoverageThreshold ||
		coverage[entity.ColorYellow] > fruitCoverageThreshold ||
		hint.Fruit

	leafShape := hint.LeafShape
	if leafShape == "" {
		leafShape = entity.LeafOval
	}

	treeType := entity.TreeDeciduous
	switch {
	case hint.Needles:
		treeType = entity.TreeEvergreen
	case hint.Tropical || hasFruit:
		treeType = entity.TreeTropical
	}

	return entity.FeatureRecord{
		DominantColors: dominant,
		HasNeedles:     hint.Needles,
		LeafShapeGuess: leafShape,
		BarkVisible: coverage[entity.ColorBrown] > barkBrownThreshold ||
			coverage[entity.ColorGray] > barkGrayThreshold,
		TreeTypeGuess: treeType,
		HasFruit:      hasFruit,
		FruitColors:   fruitColors,
		Coverage:      coverage,
		Hint:          hint,
	}
}
