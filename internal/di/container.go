package di

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"scholarag/internal/adapter/converter"
	"scholarag/internal/adapter/httpapi"
	"scholarag/internal/adapter/metadata"
	"scholarag/internal/adapter/ollama"
	"scholarag/internal/adapter/openaiapi"
	"scholarag/internal/adapter/vectorindex"
	"scholarag/internal/domain"
	"scholarag/internal/infra/config"
	"scholarag/internal/infra/httpclient"
	"scholarag/internal/usecase"
)

const enrichmentTimeout = 30 * time.Second

// ApplicationComponents holds all wired dependencies for the application.
type ApplicationComponents struct {
	Index domain.VectorIndex
	Store domain.MetadataStore

	CorpusUsecase     usecase.CorpusUsecase
	IngestUsecase     usecase.IngestUsecase
	RetrieveUsecase   usecase.RetrieveUsecase
	AnswerUsecase     usecase.AnswerUsecase
	CompareUsecase    usecase.CompareUsecase
	SummarizeUsecase  usecase.SummarizeUsecase
	PreprocessUsecase usecase.PreprocessUsecase

	Handler *httpapi.Handler
}

// NewApplicationComponents wires all dependencies from config and database pool.
func NewApplicationComponents(cfg *config.Config, pool *pgxpool.Pool, log *slog.Logger) (*ApplicationComponents, error) {
	index, err := vectorindex.NewPgVectorIndex(pool, cfg.RAG.RRFK, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create vector index: %w", err)
	}

	store, err := metadata.NewFileStore(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create metadata store: %w", err)
	}

	// Embedding/generation backend
	var (
		encoder     domain.VectorEncoder
		llm         domain.LLMClient
		prober      usecase.DimensionProber
		backendPing func(ctx context.Context) error
	)
	switch cfg.Backend {
	case config.BackendOpenAI:
		client := openaiapi.New(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.EmbeddingModel, cfg.OpenAI.ChatModel)
		encoder, llm, prober = client, client, client
		backendPing = client.Ping
	default:
		embedder := ollama.NewEmbedder(cfg.Ollama.URL, cfg.Ollama.EmbeddingModel,
			httpclient.NewPooledClient(cfg.Ollama.Timeout), cfg.Ollama.MaxRPS)
		encoder, prober = embedder, embedder
		backendPing = embedder.Ping
		llm = ollama.NewGenerator(cfg.Ollama.URL, cfg.Ollama.ChatModel,
			httpclient.NewPooledClient(cfg.Ollama.Timeout))
	}

	var sparseEncoder domain.SparseEncoder
	if cfg.Sparse.Enabled {
		sparseEncoder = ollama.NewSparseEncoderClient(cfg.Sparse.URL,
			httpclient.NewPooledClient(cfg.Ollama.Timeout))
	}

	chunker, err := domain.NewChunker(domain.ChunkMode(cfg.Chunking.Mode),
		cfg.Chunking.Size, cfg.Chunking.Overlap, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid chunking config: %w", err)
	}

	// Conversion backends share one pooled client; instances are still
	// created per task by the factories.
	convHTTP := httpclient.NewPooledClient(cfg.Converters.Timeout)
	registry := converter.NewRegistry()
	registry.Register(converter.BackendDocling, func() domain.DocumentConverter {
		return converter.NewHTTPConverter(converter.BackendDocling, cfg.Converters.DoclingURL, convHTTP)
	})
	registry.Register(converter.BackendFastText, func() domain.DocumentConverter {
		return converter.NewHTTPConverter(converter.BackendFastText, cfg.Converters.FastTextURL, convHTTP)
	})

	var enricher domain.MetadataEnricher
	if cfg.Enrichment.Enabled {
		enricher = metadata.NewOpenAlexClient(cfg.Enrichment.OpenAlexURL,
			httpclient.NewPooledClient(enrichmentTimeout), log)
	}

	corpusUsecase := usecase.NewCorpusUsecase(index, prober, store, log)
	ingestUsecase := usecase.NewIngestUsecase(index, chunker, encoder, sparseEncoder, store, log)
	retrieveUsecase := usecase.NewRetrieveUsecase(index, encoder, sparseEncoder, log)
	answerUsecase := usecase.NewAnswerUsecase(usecase.NewPromptBuilder(), llm, store, log)
	compareUsecase := usecase.NewCompareUsecase(index, store, llm, log)
	summarizeUsecase := usecase.NewSummarizeUsecase(index, store, llm, log)
	preprocessUsecase := usecase.NewPreprocessUsecase(registry, enricher, log)

	handler := httpapi.NewHandler(
		corpusUsecase,
		ingestUsecase,
		retrieveUsecase,
		answerUsecase,
		compareUsecase,
		summarizeUsecase,
		preprocessUsecase,
		[]httpapi.HealthCheck{
			{Name: "postgres", Check: pool.Ping},
			{Name: "embedding", Check: backendPing},
		},
	)

	return &ApplicationComponents{
		Index:             index,
		Store:             store,
		CorpusUsecase:     corpusUsecase,
		IngestUsecase:     ingestUsecase,
		RetrieveUsecase:   retrieveUsecase,
		AnswerUsecase:     answerUsecase,
		CompareUsecase:    compareUsecase,
		SummarizeUsecase:  summarizeUsecase,
		PreprocessUsecase: preprocessUsecase,
		Handler:           handler,
	}, nil
}
