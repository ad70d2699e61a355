package extractor

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"

	"tree_backend/internal/feature/identification/domain/entity"
)

var (
	needleKeywords   = []string{"pine", "fir", "spruce", "needle"}
	tropicalKeywords = []string{"mango", "orange", "tropical"}
	fruitKeywords    = []string{"mango", "fruit", "orange"}
)

// leafShapeKeywords は先頭から順に照合し、最初に一致したものを採用します。
var leafShapeKeywords = []struct {
	keyword string
	shape   entity.LeafShape
}{
	{"heart", entity.LeafHeart},
	{"maple", entity.LeafThreeLobed},
	{"oak", entity.LeafLobed},
	{"basswood", entity.LeafHeart},
}

// NormalizeFilename はファイル名をNFKC正規化して小文字にし、ディレクトリ部分を除去します。
func NormalizeFilename(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)
	return strings.ToLower(norm.NFKC.String(name))
}

// ParseHint はファイル名をキーワード表と照合してヒントを返します。
func ParseHint(filename string) entity.FilenameHint {
	f := NormalizeFilename(filename)
	h := entity.FilenameHint{
		Filename: f,
		Needles:  containsAny(f, needleKeywords),
		Tropical: containsAny(f, tropicalKeywords),
		Fruit:    containsAny(f, fruitKeywords),
	}
	for _, k := range leafShapeKeywords {
		if strings.Contains(f, k.keyword) {
			h.LeafShape = k.shape
			break
		}
	}
	return h
}

func containsAny(s string, keywords []string) bool {
	if s == "" {
		return false
	}
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
