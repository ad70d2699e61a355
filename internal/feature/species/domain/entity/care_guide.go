// Package entity はspeciesフィーチャーのドメインモデルを定義します。
package entity

// CareGuide はAIが生成した樹種の手入れガイドです。
type CareGuide struct {
	SpeciesID   uint
	SpeciesName string
	CommonName  string
	Advice      string // AI生成の本文
}
