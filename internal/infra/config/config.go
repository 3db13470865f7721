package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Backend selects the embedding/generation provider.
const (
	BackendOllama = "ollama"
	BackendOpenAI = "openai"
)

type ServerConfig struct {
	Port            string        `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type DBConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	MaxConns int32  `yaml:"max_conns"`
	MinConns int32  `yaml:"min_conns"`
}

func (d DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

type OllamaConfig struct {
	URL            string        `yaml:"url"`
	EmbeddingModel string        `yaml:"embedding_model"`
	ChatModel      string        `yaml:"chat_model"`
	MaxRPS         float64       `yaml:"max_rps"`
	Timeout        time.Duration `yaml:"timeout"`
}

type OpenAIConfig struct {
	APIKey         string `yaml:"api_key"`
	BaseURL        string `yaml:"base_url"`
	EmbeddingModel string `yaml:"embedding_model"`
	ChatModel      string `yaml:"chat_model"`
}

type SparseConfig struct {
	URL     string `yaml:"url"`
	Enabled bool   `yaml:"enabled"`
}

type ConverterConfig struct {
	DoclingURL  string        `yaml:"docling_url"`
	FastTextURL string        `yaml:"fasttext_url"`
	Default     string        `yaml:"default"`
	Timeout     time.Duration `yaml:"timeout"`
}

type ChunkingConfig struct {
	Mode    string `yaml:"mode"`
	Size    int    `yaml:"size"`
	Overlap int    `yaml:"overlap"`
}

type RAGConfig struct {
	SearchLimit int     `yaml:"search_limit"`
	RRFK        float64 `yaml:"rrf_k"`
	WordTarget  int     `yaml:"word_target"`
}

type EnrichmentConfig struct {
	Enabled     bool   `yaml:"enabled"`
	OpenAlexURL string `yaml:"openalex_url"`
}

type OTelConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Endpoint    string  `yaml:"endpoint"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

type Config struct {
	Env        string           `yaml:"env"`
	Backend    string           `yaml:"backend"`
	DataDir    string           `yaml:"data_dir"`
	Server     ServerConfig     `yaml:"server"`
	DB         DBConfig         `yaml:"db"`
	Ollama     OllamaConfig     `yaml:"ollama"`
	OpenAI     OpenAIConfig     `yaml:"openai"`
	Sparse     SparseConfig     `yaml:"sparse"`
	Converters ConverterConfig  `yaml:"converters"`
	Chunking   ChunkingConfig   `yaml:"chunking"`
	RAG        RAGConfig        `yaml:"rag"`
	Enrichment EnrichmentConfig `yaml:"enrichment"`
	OTel       OTelConfig       `yaml:"otel"`
}

// Load builds the configuration in three layers: compiled defaults, an
// optional YAML file named by CONFIG_FILE, then environment variables.
// Later layers win. A .env file is read first when present.
func Load() *Config {
	_ = godotenv.Load()

	cfg := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if raw, err := os.ReadFile(path); err == nil {
			_ = yaml.Unmarshal(raw, cfg)
		}
	}
	applyEnv(cfg)
	return cfg
}

func defaults() *Config {
	return &Config{
		Env:     "development",
		Backend: BackendOllama,
		DataDir: "./data",
		Server: ServerConfig{
			Port:            "9020",
			ShutdownTimeout: 10 * time.Second,
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "5432",
			User:     "scholarag_user",
			Password: "scholarag_password",
			Name:     "scholarag_db",
			MaxConns: 20,
			MinConns: 5,
		},
		Ollama: OllamaConfig{
			URL:            "http://localhost:11434",
			EmbeddingModel: "bge-m3",
			ChatModel:      "llama3.1:8b",
			MaxRPS:         0,
			Timeout:        120 * time.Second,
		},
		OpenAI: OpenAIConfig{
			EmbeddingModel: "text-embedding-3-small",
			ChatModel:      "gpt-4o-mini",
		},
		Sparse: SparseConfig{
			URL:     "http://localhost:11435",
			Enabled: false,
		},
		Converters: ConverterConfig{
			DoclingURL:  "http://localhost:9030",
			FastTextURL: "http://localhost:9031",
			Default:     "docling",
			Timeout:     300 * time.Second,
		},
		Chunking: ChunkingConfig{
			Mode:    "chars",
			Size:    1500,
			Overlap: 200,
		},
		RAG: RAGConfig{
			SearchLimit: 5,
			RRFK:        60.0,
			WordTarget:  500,
		},
		Enrichment: EnrichmentConfig{
			Enabled:     true,
			OpenAlexURL: "https://api.openalex.org",
		},
		OTel: OTelConfig{
			Enabled:     false,
			Endpoint:    "localhost:4318",
			SampleRatio: 1.0,
		},
	}
}

func applyEnv(cfg *Config) {
	cfg.Env = getEnv("ENV", cfg.Env)
	cfg.Backend = getEnv("RAG_BACKEND", cfg.Backend)
	cfg.DataDir = getEnv("DATA_DIR", cfg.DataDir)

	cfg.Server.Port = getEnv("PORT", cfg.Server.Port)

	cfg.DB.Host = getEnv("DB_HOST", cfg.DB.Host)
	cfg.DB.Port = getEnv("DB_PORT", cfg.DB.Port)
	cfg.DB.User = getEnv("DB_USER", cfg.DB.User)
	cfg.DB.Password = getSecret("DB_PASSWORD", "DB_PASSWORD_FILE", cfg.DB.Password)
	cfg.DB.Name = getEnv("DB_NAME", cfg.DB.Name)
	cfg.DB.MaxConns = int32(getEnvInt("DB_MAX_CONNS", int(cfg.DB.MaxConns)))
	cfg.DB.MinConns = int32(getEnvInt("DB_MIN_CONNS", int(cfg.DB.MinConns)))

	cfg.Ollama.URL = getEnv("OLLAMA_URL", cfg.Ollama.URL)
	cfg.Ollama.EmbeddingModel = getEnv("EMBEDDING_MODEL", cfg.Ollama.EmbeddingModel)
	cfg.Ollama.ChatModel = getEnv("CHAT_MODEL", cfg.Ollama.ChatModel)
	cfg.Ollama.MaxRPS = getEnvFloat64("OLLAMA_MAX_RPS", cfg.Ollama.MaxRPS)

	cfg.OpenAI.APIKey = getSecret("OPENAI_API_KEY", "OPENAI_API_KEY_FILE", cfg.OpenAI.APIKey)
	cfg.OpenAI.BaseURL = getEnv("OPENAI_BASE_URL", cfg.OpenAI.BaseURL)
	cfg.OpenAI.EmbeddingModel = getEnv("OPENAI_EMBEDDING_MODEL", cfg.OpenAI.EmbeddingModel)
	cfg.OpenAI.ChatModel = getEnv("OPENAI_CHAT_MODEL", cfg.OpenAI.ChatModel)

	cfg.Sparse.URL = getEnv("SPARSE_ENCODER_URL", cfg.Sparse.URL)
	cfg.Sparse.Enabled = getEnvBool("SPARSE_ENCODER_ENABLED", cfg.Sparse.Enabled)

	cfg.Converters.DoclingURL = getEnv("DOCLING_URL", cfg.Converters.DoclingURL)
	cfg.Converters.FastTextURL = getEnv("FASTTEXT_URL", cfg.Converters.FastTextURL)
	cfg.Converters.Default = getEnv("CONVERTER_DEFAULT", cfg.Converters.Default)

	cfg.Chunking.Mode = getEnv("CHUNK_MODE", cfg.Chunking.Mode)
	cfg.Chunking.Size = getEnvInt("CHUNK_SIZE", cfg.Chunking.Size)
	cfg.Chunking.Overlap = getEnvInt("CHUNK_OVERLAP", cfg.Chunking.Overlap)

	cfg.RAG.SearchLimit = getEnvInt("RAG_SEARCH_LIMIT", cfg.RAG.SearchLimit)
	cfg.RAG.RRFK = getEnvFloat64("RAG_RRF_K", cfg.RAG.RRFK)
	cfg.RAG.WordTarget = getEnvInt("RAG_WORD_TARGET", cfg.RAG.WordTarget)

	cfg.Enrichment.Enabled = getEnvBool("ENRICHMENT_ENABLED", cfg.Enrichment.Enabled)
	cfg.Enrichment.OpenAlexURL = getEnv("OPENALEX_URL", cfg.Enrichment.OpenAlexURL)

	cfg.OTel.Enabled = getEnvBool("OTEL_ENABLED", cfg.OTel.Enabled)
	cfg.OTel.Endpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.OTel.Endpoint)
	cfg.OTel.SampleRatio = getEnvFloat64("OTEL_TRACE_SAMPLE_RATIO", cfg.OTel.SampleRatio)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getSecret(envKey, fileEnvKey, fallback string) string {
	if value, ok := os.LookupEnv(envKey); ok {
		return value
	}
	if filePath, ok := os.LookupEnv(fileEnvKey); ok {
		if content, err := os.ReadFile(filePath); err == nil {
			return strings.TrimSpace(string(content))
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvFloat64(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}
