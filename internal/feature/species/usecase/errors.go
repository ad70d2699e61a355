package usecase

import "errors"

var (
	// ErrSpeciesNotFound は指定した樹種が存在しない場合に返されます。
	ErrSpeciesNotFound = errors.New("species not found")
	// ErrQueryTooLong は検索語が長すぎる場合に返されます。
	ErrQueryTooLong = errors.New("search query too long")
	// ErrCareAdvisorFailed はAIによる手入れガイド生成に失敗した場合に返されます。
	ErrCareAdvisorFailed = errors.New("care advisor failed")
)
