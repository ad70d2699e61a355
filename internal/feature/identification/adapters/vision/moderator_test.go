package vision

import (
	"context"
	"errors"
	"testing"

	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/googleapis/gax-go/v2"
	"github.com/stretchr/testify/assert"
	statuspb "google.golang.org/genproto/googleapis/rpc/status"

	"tree_backend/internal/feature/identification/usecase"
)

// mockAnnotator はannotatorインターフェースのモック実装です。
type mockAnnotator struct {
	resp  *visionpb.BatchAnnotateImagesResponse
	err   error
	calls int
}

func (m *mockAnnotator) BatchAnnotateImages(_ context.Context, req *visionpb.BatchAnnotateImagesRequest, _ ...gax.CallOption) (*visionpb.BatchAnnotateImagesResponse, error) {
	m.calls++
	if len(req.Requests) != 1 || req.Requests[0].Features[0].Type != visionpb.Feature_SAFE_SEARCH_DETECTION {
		return nil, errors.New("unexpected request")
	}
	return m.resp, m.err
}

func (m *mockAnnotator) Close() error { return nil }

func safeSearch(adult, violence visionpb.Likelihood) *visionpb.BatchAnnotateImagesResponse {
	return &visionpb.BatchAnnotateImagesResponse{
		Responses: []*visionpb.AnnotateImageResponse{
			{SafeSearchAnnotation: &visionpb.SafeSearchAnnotation{Adult: adult, Violence: violence}},
		},
	}
}

func TestSafeSearchModerator_Check(t *testing.T) {
	tests := []struct {
		name         string
		resp         *visionpb.BatchAnnotateImagesResponse
		err          error
		wantRejected bool
		wantErr      bool
	}{
		{name: "success: safe image", resp: safeSearch(visionpb.Likelihood_VERY_UNLIKELY, visionpb.Likelihood_UNLIKELY)},
		{name: "success: possible is accepted", resp: safeSearch(visionpb.Likelihood_POSSIBLE, visionpb.Likelihood_POSSIBLE)},
		{name: "success: empty response", resp: &visionpb.BatchAnnotateImagesResponse{}},
		{name: "error: adult likely", resp: safeSearch(visionpb.Likelihood_LIKELY, visionpb.Likelihood_UNLIKELY), wantRejected: true, wantErr: true},
		{name: "error: violence very likely", resp: safeSearch(visionpb.Likelihood_UNLIKELY, visionpb.Likelihood_VERY_LIKELY), wantRejected: true, wantErr: true},
		{name: "error: api failure", err: errors.New("unavailable"), wantErr: true},
		{
			name: "error: per-image error",
			resp: &visionpb.BatchAnnotateImagesResponse{
				Responses: []*visionpb.AnnotateImageResponse{{Error: &statuspb.Status{Message: "bad image"}}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mockAnnotator{resp: tt.resp, err: tt.err}
			m := newModerator(client)

			err := m.Check(context.Background(), []byte("img"))

			assert.Equal(t, 1, client.calls)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			assert.Equal(t, tt.wantRejected, errors.Is(err, usecase.ErrImageRejected))
		})
	}
}
