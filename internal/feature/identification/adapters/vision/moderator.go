// Package vision はGoogle Cloud Vision APIのSafeSearch検出を使った画像モデレーションを提供します。
// 樹種の判定には使わず、アップロード画像の受付可否だけを判断します。
package vision

import (
	"context"
	"fmt"

	gvision "cloud.google.com/go/vision/v2/apiv1"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/googleapis/gax-go/v2"

	"tree_backend/internal/feature/identification/usecase"
)

// annotator はImageAnnotatorClientのうち本パッケージが使うメソッドです。
type annotator interface {
	BatchAnnotateImages(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest, opts ...gax.CallOption) (*visionpb.BatchAnnotateImagesResponse, error)
	Close() error
}

// SafeSearchModerator はSafeSearch検出で成人向け・暴力的な画像を拒否します。
type SafeSearchModerator struct {
	client    annotator
	threshold visionpb.Likelihood
}

// SafeSearchModeratorがImageModeratorを実装していることをコンパイル時に検証します。
var _ usecase.ImageModerator = (*SafeSearchModerator)(nil)

// NewSafeSearchModerator はADCを使用してSafeSearchModeratorの新しいインスタンスを生成します。
func NewSafeSearchModerator(ctx context.Context) (*SafeSearchModerator, error) {
	client, err := gvision.NewImageAnnotatorClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create vision client: %w", err)
	}
	return newModerator(client), nil
}

func newModerator(client annotator) *SafeSearchModerator {
	return &SafeSearchModerator{client: client, threshold: visionpb.Likelihood_LIKELY}
}

// Close はVision APIクライアントを解放します。
func (m *SafeSearchModerator) Close() error {
	return m.client.Close()
}

// Check は画像を検査し、成人向けまたは暴力的な内容がLIKELY以上なら usecase.ErrImageRejected を返します。
func (m *SafeSearchModerator) Check(ctx context.Context, imageData []byte) error {
	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image: &visionpb.Image{Content: imageData},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_SAFE_SEARCH_DETECTION},
				},
			},
		},
	}

	resp, err := m.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		return fmt.Errorf("vision API request failed: %w", err)
	}
	if len(resp.Responses) == 0 {
		return nil
	}
	if resp.Responses[0].Error != nil {
		return fmt.Errorf("vision API error: %s", resp.Responses[0].Error.Message)
	}

	ss := resp.Responses[0].SafeSearchAnnotation
	if ss == nil {
		return nil
	}
	if ss.Adult >= m.threshold {
		return fmt.Errorf("%w: adult content (%s)", usecase.ErrImageRejected, ss.Adult)
	}
	if ss.Violence >= m.threshold {
		return fmt.Errorf("%w: violent content (%s)", usecase.ErrImageRejected, ss.Violence)
	}
	return nil
}
