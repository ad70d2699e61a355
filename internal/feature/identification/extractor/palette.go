package extractor

import "tree_backend/internal/feature/identification/domain/entity"

// bucketOrder は画素分類の優先順です。1画素は最初に一致した1色にだけ数えます。
var bucketOrder = []entity.ColorClass{
	entity.ColorGreen,
	entity.ColorOrange,
	entity.ColorYellow,
	entity.ColorBrown,
	entity.ColorGray,
	entity.ColorRed,
	entity.ColorWhite,
}

// dominantThresholds は支配色と判定する被覆率の下限（この値を超えたら支配色）です。
var dominantThresholds = map[entity.ColorClass]float64{
	entity.ColorGreen:  0.25,
	entity.ColorOrange: 0.05,
	entity.ColorYellow: 0.05,
	entity.ColorBrown:  0.15,
	entity.ColorGray:   0.10,
	entity.ColorRed:    0.08,
	entity.ColorWhite:  0.15,
}

const (
	fruitCoverageThreshold      = 0.08 // 果実ありと判定する橙・黄の被覆率
	fruitColorCoverageThreshold = 0.05 // 果実色として採用する橙・黄の被覆率
	barkBrownThreshold          = 0.12
	barkGrayThreshold           = 0.08
)

// classifyPixel はRGB値を色クラスに分類します。どの規則にも一致しない場合は false を返します。
func classifyPixel(r, g, b int) (entity.ColorClass, bool) {
	switch {
	case g > r && g > b && g > 80:
		return entity.ColorGreen, true
	case r > 150 && g > 100 && g < 150 && b < 100:
		return entity.ColorOrange, true
	case r > 150 && g > 150 && b < 100:
		return entity.ColorYellow, true
	case r > 100 && g > 60 && b < 80 && r > g:
		return entity.ColorBrown, true
	case abs(r-g) < 30 && abs(g-b) < 30 && r > 100:
		return entity.ColorGray, true
	case r > g && r > b && r > 120:
		return entity.ColorRed, true
	case r > 200 && g > 200 && b > 200:
		return entity.ColorWhite, true
	}
	return "", false
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
