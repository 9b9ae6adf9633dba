package ai

import (
	"context"

	"github.com/cqle/dba-virtual/backend/internal/config"
)

// NewGenerator builds the backend selected by cfg.Provider. It returns
// (nil, nil) when the provider has no credentials, so the caller can run
// with generation disabled.
func NewGenerator(ctx context.Context, cfg config.AIConfig) (Generator, error) {
	if !cfg.Enabled() {
		return nil, nil
	}

	switch cfg.Provider {
	case config.ProviderArk:
		gen, err := NewArkGenerator(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return gen, nil
	default:
		gen, err := NewGeminiGenerator(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return gen, nil
	}
}
