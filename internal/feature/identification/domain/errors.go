// Package domain はidentificationフィーチャーのドメインエラーを定義します。
package domain

import (
	"errors"
	"fmt"
)

// ErrNoCandidates は候補樹種が1件も無い場合に返されます。
var ErrNoCandidates = errors.New("no candidate species available")

// DecodeError は画像をデコードまたはサンプリングできなかったことを表します。
// コアはリトライせず、呼び出し元に「別の画像を試す」案内を委ねます。
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode image: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
