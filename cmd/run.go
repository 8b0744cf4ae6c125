package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/whomadeit/internal/analysis"
	"github.com/abhisek/whomadeit/internal/classifier"
	"github.com/abhisek/whomadeit/internal/config"
	"github.com/abhisek/whomadeit/internal/llm"
	"github.com/abhisek/whomadeit/internal/logging"
	"github.com/abhisek/whomadeit/internal/store"
)

// deps holds what a command needs to run the analyze pipeline.
type deps struct {
	cfg      *config.Config
	logger   *zap.Logger
	store    *store.Store
	analyzer *analysis.Analyzer
}

func (d *deps) Close() {
	d.store.Close()
	_ = d.logger.Sync()
}

// openDeps loads configuration, opens the store and builds the analyzer.
func openDeps(ctx context.Context, cmd *cobra.Command) (*deps, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, err
	}

	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	cls, err := newClassifier(ctx, cfg, st.Events(), logger)
	if err != nil {
		st.Close()
		return nil, err
	}

	return &deps{
		cfg:      cfg,
		logger:   logger,
		store:    st,
		analyzer: analysis.New(cls, st, logger),
	}, nil
}

// newClassifier builds the classifier for the configured provider. A missing
// API key yields a nil classifier so read operations keep working; any other
// provider error is returned.
func newClassifier(ctx context.Context, cfg *config.Config, events store.EventRepo, logger *zap.Logger) (analysis.Classifier, error) {
	provider, err := llm.NewProvider(ctx, cfg.LLMConfig(), events, logger)
	if errors.Is(err, llm.ErrMissingAPIKey) {
		logger.Warn("LLM provider not configured, analyze is unavailable", zap.Error(err))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("create LLM provider: %w", err)
	}

	client := classifier.New(provider, cfg.ClassifierConfig())
	logger.Info("classifier ready",
		zap.String("provider", cfg.LLM.Provider),
		zap.String("model", client.Model()))
	return client, nil
}
