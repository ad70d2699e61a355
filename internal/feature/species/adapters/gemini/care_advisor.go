// Package gemini はGoogle Gemini APIを使用した樹木の手入れガイド生成クライアントを提供します。
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"tree_backend/internal/feature/species/usecase"
)

const (
	// DefaultModel はGemini APIのデフォルトモデルです。
	DefaultModel = "gemini-2.5-flash"
)

// generator はgenai.Modelsのうち本パッケージが使うメソッドです。
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiCareAdvisor はGoogle Gemini APIを使用して手入れガイドを生成します。
type GeminiCareAdvisor struct {
	models generator
	model  string
}

// GeminiCareAdvisorがCareAdvisorを実装していることをコンパイル時に検証します。
var _ usecase.CareAdvisor = (*GeminiCareAdvisor)(nil)

// NewGeminiCareAdvisor はADCを使用してGeminiCareAdvisorの新しいインスタンスを生成します。
// 環境変数 GOOGLE_GENAI_USE_VERTEXAI, GOOGLE_CLOUD_PROJECT, GOOGLE_CLOUD_LOCATION が必要です。
// modelが空の場合はDefaultModelを使います。
func NewGeminiCareAdvisor(ctx context.Context, model string) (*GeminiCareAdvisor, error) {
	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return newAdvisor(client.Models, model), nil
}

func newAdvisor(models generator, model string) *GeminiCareAdvisor {
	if model == "" {
		model = DefaultModel
	}
	return &GeminiCareAdvisor{models: models, model: model}
}

// Advise はプロンプトを使用して手入れガイドを生成します。
func (g *GeminiCareAdvisor) Advise(ctx context.Context, prompt string) (string, error) {
	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini API request failed: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.New("gemini API returned empty text")
	}
	return text, nil
}
