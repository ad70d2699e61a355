// Package entity はhistoryフィーチャーのドメインモデルを定義します。
package entity

import (
	"time"

	"github.com/google/uuid"

	identity "tree_backend/internal/feature/identification/domain/entity"
)

// Entry は端末ごとの判定履歴1件です。判定結果の要約だけを保持します。
type Entry struct {
	ID           uuid.UUID
	DeviceID     string
	SpeciesName  string
	CommonName   string
	Confidence   float64
	MatchScore   float64
	Alternatives []string // 次点候補の一般名
	Location     *identity.Location
	IdentifiedAt time.Time
}

// Favorite はお気に入り登録された履歴のスナップショットです。
// 元の履歴が上限超過で消えても残ります。
type Favorite struct {
	ID           uuid.UUID
	DeviceID     string
	HistoryID    uuid.UUID
	SpeciesName  string
	CommonName   string
	Confidence   float64
	IdentifiedAt time.Time
	CreatedAt    time.Time
}
