package rag

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/coursechat/coursechat/pkg/config"
	"github.com/coursechat/coursechat/pkg/generator"
	"github.com/coursechat/coursechat/pkg/ingest"
	"github.com/coursechat/coursechat/pkg/llms"
	"github.com/coursechat/coursechat/pkg/session"
	"github.com/coursechat/coursechat/pkg/store"
	"github.com/coursechat/coursechat/pkg/tools"
)

// FromConfig assembles a ready-to-serve System from configuration.
func FromConfig(ctx context.Context, cfg *config.Config) (*System, error) {
	var provider store.Provider
	var err error

	switch cfg.Store.Backend {
	case "qdrant":
		provider, err = store.NewQdrantProvider(store.QdrantConfig{
			Host:   cfg.Store.Qdrant.Host,
			Port:   cfg.Store.Qdrant.Port,
			APIKey: cfg.Store.Qdrant.APIKey,
			UseTLS: cfg.Store.Qdrant.UseTLS,
		})
	default:
		provider, err = store.NewChromemProvider(store.ChromemConfig{
			PersistPath: cfg.Store.PersistPath,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open vector store: %w", err)
	}

	embed := store.NewOpenAIEmbedder(cfg.Embedding.APIKey, cfg.Embedding.Model)
	vectorStore := store.New(provider, embed, cfg.Store.MaxResults)

	// A persisted backend already holds courses; restore the catalog so
	// ingestion skips them and /api/courses reports them.
	if err := vectorStore.LoadCatalog(ctx); err != nil {
		slog.Warn("failed to restore course catalog", "error", err)
	}

	var counter ingest.TokenCounter
	if tk, err := ingest.NewTiktokenCounter(cfg.Ingest.Encoding); err != nil {
		slog.Warn("tokenizer unavailable, using approximate token counts", "error", err)
		counter = ingest.ApproxCounter{}
	} else {
		counter = tk
	}
	processor := ingest.NewProcessor(cfg.Ingest.ChunkSize, cfg.Ingest.ChunkOverlap, counter)

	registry := tools.NewRegistry()
	if err := registry.Register(tools.NewCourseSearchTool(vectorStore)); err != nil {
		vectorStore.Close()
		return nil, err
	}

	model, err := llms.NewAnthropicProvider(llms.AnthropicConfig{
		APIKey:      cfg.Anthropic.APIKey,
		Model:       cfg.Anthropic.Model,
		Host:        cfg.Anthropic.Host,
		MaxTokens:   cfg.Anthropic.MaxTokens,
		Temperature: cfg.Anthropic.Temperature,
		Timeout:     cfg.Anthropic.Timeout,
		MaxRetries:  cfg.Anthropic.MaxRetries,
	})
	if err != nil {
		vectorStore.Close()
		return nil, fmt.Errorf("failed to create model client: %w", err)
	}

	system := NewSystem(
		vectorStore,
		processor,
		registry,
		generator.New(model),
		session.NewManager(cfg.Session.MaxTurns),
	)
	system.closers = append(system.closers, model, vectorStore)

	slog.Info("system assembled",
		"store", provider.Name(),
		"model", model.ModelName(),
		"max_results", cfg.Store.MaxResults)

	return system, nil
}
