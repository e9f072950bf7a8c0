package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"edututor/config"
	"edututor/internal/adapter/cache"
	"edututor/internal/adapter/embedding"
	"edututor/internal/adapter/index"
	"edututor/internal/adapter/llm"
	"edututor/internal/adapter/store"
	"edututor/internal/adapter/websearch"
	"edututor/internal/port"
	"edututor/internal/usecase"
)

// app wires the long-lived components a command needs: the cached
// embedder, the vector index and the conversation history.
type app struct {
	cfg      *config.Config
	indexDir string

	embedder *cache.CachedEmbedder
	index    *index.Flat
	history  *store.HistoryStore
	queries  *cache.QueryCache
}

func newApp() (*app, error) {
	indexDir := cfg.Index.Dir
	if !filepath.IsAbs(indexDir) {
		indexDir = filepath.Join(GetRootDir(), indexDir)
	}
	if err := config.EnsureIndexDir(indexDir); err != nil {
		return nil, fmt.Errorf("failed to create index directory: %w", err)
	}

	base, err := newBaseEmbedder(cfg)
	if err != nil {
		return nil, err
	}
	embedder, err := cache.NewCachedEmbedder(base, filepath.Join(indexDir, "embeddings.db"))
	if err != nil {
		return nil, err
	}

	idx, err := index.Open(indexDir, embedder.Dimension())
	if err != nil {
		embedder.Close()
		return nil, fmt.Errorf("failed to open vector index: %w", err)
	}

	history, err := store.OpenHistory(config.HistoryDBPath(indexDir))
	if err != nil {
		embedder.Close()
		return nil, fmt.Errorf("failed to open conversation history: %w", err)
	}

	return &app{
		cfg:      cfg,
		indexDir: indexDir,
		embedder: embedder,
		index:    idx,
		history:  history,
		queries:  cache.NewQueryCache(128, 5*time.Minute),
	}, nil
}

func (a *app) Close() {
	a.history.Close()
	a.embedder.Close()
}

func newBaseEmbedder(cfg *config.Config) (port.Embedder, error) {
	switch cfg.Embedding.Provider {
	case "openai":
		return embedding.NewOpenAIEmbedder(
			cfg.Embedding.APIKeyEnv,
			cfg.Embedding.Model,
			cfg.Embedding.BaseURL,
			cfg.Embedding.Dimension,
			cfg.Embedding.BatchSize,
		)
	case "mock":
		return embedding.NewMockEmbedder(cfg.Embedding.Dimension), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Embedding.Provider)
	}
}

// newRetriever builds the retrieval use case. The query cache is shared
// with ingestion so new documents invalidate stale results.
func (a *app) newRetriever() *usecase.RetrieveUseCase {
	return usecase.NewRetrieveUseCase(a.embedder, a.index, a.queries)
}

// newChat assembles the full chat pipeline. Web search stays nil when
// disabled or when no credential is configured.
func (a *app) newChat(noWeb bool) (*usecase.ChatUseCase, error) {
	client, err := llm.NewClient(llm.Config{
		Model:       a.cfg.Generation.Model,
		URL:         a.cfg.Generation.URL,
		APIKeyEnv:   a.cfg.Generation.APIKeyEnv,
		MaxTokens:   a.cfg.Generation.MaxTokens,
		Temperature: a.cfg.Generation.Temperature,
		Timeout:     time.Duration(a.cfg.Generation.TimeoutSecs) * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create generation client: %w", err)
	}

	var searcher port.WebSearcher
	if !noWeb {
		if bs := websearch.NewBingSearcher(a.cfg.WebSearch.APIKeyEnv, a.cfg.WebSearch.URL); bs != nil {
			searcher = bs
		}
	}

	return usecase.NewChatUseCase(a.history, a.newRetriever(), client, searcher, usecase.ChatOptions{
		TopK:         a.cfg.Retrieve.TopK,
		SnippetChars: a.cfg.Retrieve.SnippetChars,
		MemoryTurns:  a.cfg.Retrieve.MemoryTurns,
		WebCount:     a.cfg.WebSearch.Count,
	})
}
