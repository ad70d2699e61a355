package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

// mockGenerator はgeneratorインターフェースのモック実装です。
type mockGenerator struct {
	resp      *genai.GenerateContentResponse
	err       error
	gotModel  string
	gotPrompt string
}

func (m *mockGenerator) GenerateContent(_ context.Context, model string, contents []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	m.gotModel = model
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		m.gotPrompt = contents[0].Parts[0].Text
	}
	return m.resp, m.err
}

func textResponse(s string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []*genai.Part{{Text: s}}}},
		},
	}
}

func TestGeminiCareAdvisor_Advise(t *testing.T) {
	t.Run("success: returns trimmed text", func(t *testing.T) {
		m := &mockGenerator{resp: textResponse("\n剪定は冬に行う\n")}
		a := newAdvisor(m, "")

		got, err := a.Advise(context.Background(), "prompt")

		require.NoError(t, err)
		assert.Equal(t, "剪定は冬に行う", got)
		assert.Equal(t, DefaultModel, m.gotModel)
		assert.Equal(t, "prompt", m.gotPrompt)
	})

	t.Run("success: custom model", func(t *testing.T) {
		m := &mockGenerator{resp: textResponse("ok")}
		_, err := newAdvisor(m, "gemini-2.5-pro").Advise(context.Background(), "p")
		require.NoError(t, err)
		assert.Equal(t, "gemini-2.5-pro", m.gotModel)
	})

	t.Run("error: api failure", func(t *testing.T) {
		m := &mockGenerator{err: errors.New("quota exceeded")}
		_, err := newAdvisor(m, "").Advise(context.Background(), "p")
		assert.ErrorContains(t, err, "quota exceeded")
	})

	t.Run("error: empty text", func(t *testing.T) {
		m := &mockGenerator{resp: textResponse("   ")}
		_, err := newAdvisor(m, "").Advise(context.Background(), "p")
		assert.Error(t, err)
	})
}
