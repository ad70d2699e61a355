package usecase

import "errors"

var (
	// ErrEmptyImage は画像データが空の場合に返されます。
	ErrEmptyImage = errors.New("image data is empty")
	// ErrImageTooLarge は画像サイズが上限を超えた場合に返されます。
	ErrImageTooLarge = errors.New("image size exceeds maximum")
	// ErrImageRejected はモデレーションで画像が拒否された場合に返されます。
	ErrImageRejected = errors.New("image rejected by moderation")
	// ErrModerationFailed はモデレーションAPIの呼び出し自体が失敗した場合に返されます。
	ErrModerationFailed = errors.New("moderation check failed")
)
