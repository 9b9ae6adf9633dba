package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/cqle/dba-virtual/backend/internal/analysis/failure"
	"github.com/cqle/dba-virtual/backend/internal/config"
	"github.com/cqle/dba-virtual/backend/internal/service/ai"
)

const probePrompt = "Oi"

type probeResult struct {
	Model string
	Reply string
	Err   error
	Kind  failure.Kind
}

func main() {
	var (
		configFile string
		timeout    time.Duration
	)

	cmd := &cobra.Command{
		Use:           "modelcheck",
		Short:         "检查 Gemini 模型及备用模型是否可用",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()

			cfg, err := config.Load(configFile)
			if err != nil {
				return fmt.Errorf("配置加载失败: %w", err)
			}
			if cfg.AI.Gemini.APIKey == "" {
				return errors.New("GEMINI_API_KEY 未配置")
			}

			cfg.AI.Provider = config.ProviderGemini
			base, err := ai.NewGeminiGenerator(cmd.Context(), cfg.AI)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "testing key %s...\n", maskKey(cfg.AI.Gemini.APIKey))

			models := append([]string{cfg.AI.Gemini.Model}, cfg.AI.Gemini.FallbackModels...)
			results := probeModels(cmd.Context(), func(model string) ai.Generator {
				return base.WithModel(model)
			}, models, timeout)

			if !report(cmd.OutOrStdout(), results) {
				return errors.New("nenhum modelo respondeu; verifique a API key e se a Generative Language API está ativada")
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&configFile, "config", "c", "", "可选的 YAML 配置文件")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "单个模型的请求超时")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// probeModels sends the probe prompt to each model in order and stops at the
// first one that answers.
func probeModels(ctx context.Context, generatorFor func(model string) ai.Generator, models []string, timeout time.Duration) []probeResult {
	results := make([]probeResult, 0, len(models))
	for _, model := range models {
		if model == "" {
			continue
		}

		reply, err := ai.NewInvoker(generatorFor(model), timeout).Invoke(ctx, nil, probePrompt)
		res := probeResult{Model: model, Reply: reply, Err: err}
		if err != nil {
			var genErr *ai.GenerationError
			if errors.As(err, &genErr) {
				res.Kind = failure.Classify(genErr.Message, genErr.Code).Kind
			} else {
				res.Kind = failure.Unknown
			}
		}
		results = append(results, res)

		if err == nil {
			break
		}
	}
	return results
}

func report(w io.Writer, results []probeResult) bool {
	ok := false
	for i, res := range results {
		if res.Err != nil {
			fmt.Fprintf(w, "FAIL %s (%s): %v\n", res.Model, res.Kind, res.Err)
			continue
		}
		ok = true
		fmt.Fprintf(w, "OK   %s: %s\n", res.Model, res.Reply)
		if i > 0 {
			fmt.Fprintf(w, "hint: set GEMINI_MODEL=%s\n", res.Model)
		}
	}
	return ok
}

func maskKey(key string) string {
	if len(key) <= 5 {
		return "*****"
	}
	return key[:5] + "..."
}
