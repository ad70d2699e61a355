// Command treeid は手元の画像ファイルを組み込みカタログと照合し、判定結果をJSONで出力します。
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"tree_backend/internal/app/di"
	"tree_backend/internal/feature/identification/adapters/catalog"
	"tree_backend/internal/feature/identification/domain/entity"
	"tree_backend/internal/feature/identification/extractor"
	"tree_backend/internal/feature/identification/scoring"
	"tree_backend/internal/feature/identification/transport/http/dto"
	"tree_backend/internal/feature/identification/usecase"
	"tree_backend/internal/platform/config"
)

type identifier interface {
	IdentifyTree(ctx context.Context, req usecase.IdentifyRequest) (*entity.Identification, error)
}

type fileResult struct {
	File   string                `json:"file"`
	Result *dto.IdentifyResponse `json:"result,omitempty"`
	Error  string                `json:"error,omitempty"`
}

func newRootCmd() *cobra.Command {
	var (
		noJitter bool
		variant  string
	)
	cmd := &cobra.Command{
		Use:   "treeid <image>...",
		Short: "Identify tree species in local images",
		Long: `treeid extracts colour and filename features from each image and ranks
the built-in species catalogue against them. Results are printed as JSON.`,
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if variant != "basic" && variant != "enhanced" {
				return fmt.Errorf("unknown variant %q (basic|enhanced)", variant)
			}
			jitter := scoring.DefaultJitterMax
			if noJitter {
				jitter = 0
			}
			scorer := di.NewScorer(config.ScoringConfig{Variant: variant, JitterMax: jitter})
			return run(cmd.Context(), cmd.OutOrStdout(), scorer, args)
		},
	}
	cmd.Flags().BoolVar(&noJitter, "no-jitter", false, "disable score jitter for reproducible output")
	cmd.Flags().StringVar(&variant, "variant", "enhanced", "confidence variant (basic|enhanced)")
	return cmd
}

func run(ctx context.Context, out io.Writer, scorer usecase.MatchRanker, paths []string) error {
	cat := catalog.Default()
	uc := usecase.NewIdentifyUsecase(extractor.New(), scorer, cat, cat, nil, nil)

	results := make([]fileResult, 0, len(paths))
	failed := 0
	for _, path := range paths {
		res := fileResult{File: path}
		ident, err := identifyFile(ctx, uc, path)
		if err != nil {
			res.Error = err.Error()
			failed++
		} else {
			resp := dto.FromIdentification(ident)
			res.Result = &resp
		}
		results = append(results, res)
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d images could not be identified", failed, len(paths))
	}
	return nil
}

func identifyFile(ctx context.Context, uc identifier, path string) (*entity.Identification, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return uc.IdentifyTree(ctx, usecase.IdentifyRequest{ImageData: data, Filename: filepath.Base(path)})
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
