package usecase

import "errors"

var (
	// ErrEntryNotFound は履歴またはお気に入りが存在しない場合に返されます。
	ErrEntryNotFound = errors.New("history entry not found")
	// ErrAlreadyFavorite は同じ履歴が既にお気に入り登録されている場合に返されます。
	ErrAlreadyFavorite = errors.New("entry already in favorites")
	// ErrDeviceRequired は端末IDが空の場合に返されます。
	ErrDeviceRequired = errors.New("device id is required")
	// ErrNothingToRecord は記録すべき判定結果がない場合に返されます。
	ErrNothingToRecord = errors.New("identification has no match")
)
