// Package bootstrap builds the configured embedder, index and market data provider and
// loads the market corpus into the index. Both the server and the offline tools use it.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"finwise-backend/config"
	"finwise-backend/embedding"
	"finwise-backend/marketdata"
	"finwise-backend/models"
	"finwise-backend/vectorindex"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// NewEmbedder returns the embedder selected by embedding.provider
func NewEmbedder(cfg *config.Config) (embedding.Embedder, error) {
	switch cfg.Embedding.Provider {
	case "tfidf":
		return embedding.NewTFIDFEmbedder(), nil
	case "gemini":
		e, err := embedding.NewGeminiEmbedder(embedding.GeminiConfig{
			APIKey:  cfg.Gemini.APIKey,
			Model:   cfg.Gemini.EmbeddingModel,
			Timeout: cfg.Gemini.Timeout,
		})
		if err != nil {
			return nil, err
		}
		return e, nil
	case "openai":
		e, err := embedding.NewOpenAIEmbedder(embedding.OpenAIConfig{
			BaseURL: cfg.OpenAI.BaseURL,
			APIKey:  cfg.OpenAI.APIKey,
			Model:   cfg.OpenAI.EmbeddingModel,
			Timeout: cfg.OpenAI.Timeout,
		})
		if err != nil {
			return nil, err
		}
		return e, nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", cfg.Embedding.Provider)
	}
}

// NewIndex returns the index selected by index.backend. pool is only used by pgvector.
func NewIndex(cfg *config.Config, pool *pgxpool.Pool) (vectorindex.Index, error) {
	switch cfg.Index.Backend {
	case "memory":
		return vectorindex.NewMemoryIndex(), nil
	case "pgvector":
		if pool == nil {
			return nil, errors.New("pgvector index requires a database pool")
		}
		return vectorindex.NewPgVectorIndex(pool), nil
	case "elasticsearch":
		es := cfg.Index.Elasticsearch
		idx, err := vectorindex.NewElasticsearchIndex(vectorindex.ElasticsearchConfig{
			Addresses: es.Addresses,
			Username:  es.Username,
			Password:  es.Password,
			Index:     es.Index,
		})
		if err != nil {
			return nil, err
		}
		return idx, nil
	default:
		return nil, fmt.Errorf("unknown index backend: %s", cfg.Index.Backend)
	}
}

// NewMarketDataProvider returns the provider selected by market_data.provider
func NewMarketDataProvider(cfg *config.Config) marketdata.Provider {
	switch cfg.MarketData.Provider {
	case "yahoo":
		return marketdata.NewYahooProvider(marketdata.DefaultSymbols)
	case "mock":
		return marketdata.MockProvider{}
	default:
		return NewAlphaVantageClient(cfg)
	}
}

// NewAlphaVantageClient serves both market documents and news
func NewAlphaVantageClient(cfg *config.Config) *marketdata.AlphaVantageClient {
	return marketdata.NewAlphaVantageClient(marketdata.AlphaVantageConfig{
		BaseURL: cfg.MarketData.BaseURL,
		APIKey:  cfg.MarketData.APIKey,
		Timeout: cfg.MarketData.Timeout,
	})
}

// CorpusOptions controls LoadIndex
type CorpusOptions struct {
	// Build writes the corpus into the index. When false the index is assumed to be
	// populated already and only the embedder is prepared.
	Build bool
}

// LoadIndex prepares the embedder on the corpus the index holds. With Build it fetches
// the corpus, embeds it and rebuilds the index; otherwise it reuses the stored documents
// so the embedder matches the vectors already indexed.
func LoadIndex(
	ctx context.Context,
	provider marketdata.Provider,
	embedder embedding.Embedder,
	index vectorindex.Index,
	opts CorpusOptions,
	log *zap.Logger,
) ([]models.MarketDocument, error) {
	if !opts.Build {
		docs, err := index.Documents(ctx)
		if errors.Is(err, vectorindex.ErrEmptyIndex) {
			return nil, fmt.Errorf("%s index has no documents, run build-embeddings first: %w", index.Name(), err)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s index: %w", index.Name(), err)
		}

		if err := embedding.Prepare(embedder, descriptions(docs)); err != nil {
			return nil, fmt.Errorf("failed to prepare embedder: %w", err)
		}
		log.Info("using existing index",
			zap.String("index", index.Name()),
			zap.Int("documents", len(docs)),
		)
		return docs, nil
	}

	docs := marketdata.LoadCorpus(ctx, provider, log)
	texts := descriptions(docs)

	if err := embedding.Prepare(embedder, texts); err != nil {
		return nil, fmt.Errorf("failed to prepare embedder: %w", err)
	}

	vectors, err := embedder.EmbedMany(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed corpus: %w", err)
	}

	if err := index.Build(ctx, docs, vectors); err != nil {
		return nil, fmt.Errorf("failed to build %s index: %w", index.Name(), err)
	}

	log.Info("market index built",
		zap.String("provider", provider.Name()),
		zap.String("embedder", embedder.Name()),
		zap.String("index", index.Name()),
		zap.Int("documents", len(docs)),
	)
	return docs, nil
}

func descriptions(docs []models.MarketDocument) []string {
	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Description
	}
	return texts
}

// OpenPostgres connects and enables the pgvector extension when possible
func OpenPostgres(ctx context.Context, url string, log *zap.Logger) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		// Usually already installed, or the role lacks superuser
		log.Warn("failed to create pgvector extension", zap.Error(err))
	}

	log.Info("postgres connection established")
	return pool, nil
}
