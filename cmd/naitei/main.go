// Package main is the naitei service entry point.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/campushq/naitei/internal/certificate"
	"github.com/campushq/naitei/internal/chat"
	"github.com/campushq/naitei/internal/config"
	"github.com/campushq/naitei/internal/embedding"
	"github.com/campushq/naitei/internal/jobs"
	"github.com/campushq/naitei/internal/knowledge"
	"github.com/campushq/naitei/internal/server"
	"github.com/campushq/naitei/internal/similarity"
	"github.com/campushq/naitei/internal/storage"
	"github.com/campushq/naitei/internal/vector"
	"github.com/campushq/naitei/internal/watcher"
	"github.com/campushq/naitei/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/naitei/config.yaml"

// loadConfig loads config from path. When path is the default, a config.yaml
// in the current directory takes precedence so running from the project dir
// picks up the project config.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	switch os.Args[1] {
	case "server":
		runServer()
	case "seed":
		runSeed()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("naitei version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// Components holds the initialized service graph.
type Components struct {
	Storage      storage.Storage
	Embedder     embedding.Embedder
	VectorIndex  *vector.FlatIndex
	KeywordIndex *knowledge.KeywordIndex
	Similarity   *similarity.Service
	Catalog      *jobs.Catalog
	Retriever    *knowledge.Retriever
	Chat         *chat.Service
	Certificates *certificate.Generator
}

// Close releases everything in reverse initialization order.
func (c *Components) Close() {
	if c.KeywordIndex != nil {
		_ = c.KeywordIndex.Close()
	}
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
}

// newEmbedder selects the embedder from config. The hash embedder is only
// used when explicitly configured; a model that fails to load stays
// unavailable so every call reports the condition instead of degrading to
// hash vectors.
func newEmbedder(cfg *config.Config, logger *zap.Logger) embedding.Embedder {
	if cfg.Embedding.Provider == "hash" {
		logger.Info("hash embedder selected",
			zap.Int("dimensions", cfg.Embedding.Dimensions))
		return embedding.NewHashEmbedder(cfg.Embedding.Dimensions)
	}

	onnxEmbedder, err := embedding.NewONNXEmbedder(
		cfg.Embedding.ModelPath,
		cfg.Embedding.Dimensions,
		cfg.Embedding.MaxTokens,
		cfg.Embedding.CacheSize,
	)
	if err != nil {
		logger.Error("embedding model failed to load, embedding endpoints degraded",
			zap.String("model_path", cfg.Embedding.ModelPath), zap.Error(err))
		return embedding.NewUnavailableEmbedder(cfg.Embedding.Dimensions, err)
	}
	return onnxEmbedder
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	embedder := newEmbedder(cfg, logger)

	index, err := vector.NewFlatIndex(cfg.Embedding.Dimensions, cfg.Storage.VectorIndexPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize vector index: %w", err)
	}
	logger.Info("vector index initialized",
		zap.Int("dimensions", index.Dimensions()), zap.Int("vectors", index.Size()))

	keywordIndex, err := knowledge.NewKeywordIndex(cfg.Storage.KeywordIndexPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize keyword index: %w", err)
	}

	sim := similarity.NewService(embedder, index)
	catalog := jobs.NewCatalog(store, sim, cfg.Search.TopK, logger)
	retriever := knowledge.NewRetriever(store, sim, keywordIndex, cfg.Search.TopK, logger)
	chatSvc := chat.NewService(retriever, newGenerator(cfg, logger), store, logger)
	certs := certificate.NewGenerator(store, cfg.Storage.UploadPath,
		cfg.Certificate.VerificationBaseURL, cfg.Certificate.QRSize, logger)

	return &Components{
		Storage:      store,
		Embedder:     embedder,
		VectorIndex:  index,
		KeywordIndex: keywordIndex,
		Similarity:   sim,
		Catalog:      catalog,
		Retriever:    retriever,
		Chat:         chatSvc,
		Certificates: certs,
	}, nil
}

// newGenerator picks the chat provider. OpenAI needs a key in the configured
// environment variable; anything else falls back to the offline template.
func newGenerator(cfg *config.Config, logger *zap.Logger) chat.Generator {
	if cfg.Chat.Provider == "openai" {
		apiKey := os.Getenv(cfg.Chat.APIKeyEnv)
		gen, err := chat.NewOpenAIGenerator(chat.OpenAIConfig{
			APIKey:      apiKey,
			Model:       cfg.Chat.Model,
			MaxTokens:   cfg.Chat.MaxTokens,
			Temperature: cfg.Chat.Temperature,
		})
		if err != nil {
			logger.Warn("openai provider unavailable, using template generator", zap.Error(err))
			return chat.NewTemplateGenerator()
		}
		return gen
	}
	return chat.NewTemplateGenerator()
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	seedDatasets(cfg, components, logger)

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	var watchSvc *watcher.Watcher
	if cfg.Datasets.Watch && cfg.Datasets.Dir != "" {
		watchSvc = watcher.New(
			cfg.Datasets.Dir,
			[]string{cfg.Datasets.JobsFile, cfg.Datasets.KnowledgeFile},
			func(name string) { reloadDataset(cfg, components, logger, name) },
			logger,
		)
		if err := watchSvc.Start(watchCtx); err != nil {
			logger.Warn("Failed to start dataset watcher", zap.Error(err))
			watchSvc = nil
		}
	}

	srv := server.NewServer(
		components.Similarity,
		components.Catalog,
		components.Chat,
		components.Certificates,
		components.Storage,
		cfg,
		logger,
	)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	if err := components.VectorIndex.Save(); err != nil {
		logger.Warn("vector index save failed",
			zap.String("path", cfg.Storage.VectorIndexPath), zap.Error(err))
	}
	if watchSvc != nil {
		watchSvc.Stop()
	}
	watchCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// seedDatasets loads the configured dataset files if present. Missing files
// are skipped, not fatal.
func seedDatasets(cfg *config.Config, components *Components, logger *zap.Logger) {
	ctx := context.Background()
	if path := datasetPath(cfg, cfg.Datasets.JobsFile); path != "" {
		if n, err := seedJobsFile(ctx, components.Catalog, path); err != nil {
			logger.Warn("seeding jobs failed", zap.String("path", path), zap.Error(err))
		} else {
			logger.Info("seeded jobs", zap.String("path", path), zap.Int("count", n))
		}
	}
	if path := datasetPath(cfg, cfg.Datasets.KnowledgeFile); path != "" {
		entries, err := knowledge.LoadKnowledgeFile(path)
		if err != nil {
			logger.Warn("loading knowledge failed", zap.String("path", path), zap.Error(err))
			return
		}
		if n, err := components.Retriever.Seed(ctx, entries); err != nil {
			logger.Warn("seeding knowledge failed", zap.String("path", path), zap.Error(err))
		} else {
			logger.Info("seeded knowledge", zap.String("path", path), zap.Int("count", n))
		}
	}
}

// datasetPath resolves name inside the dataset dir, returning "" when the
// file does not exist.
func datasetPath(cfg *config.Config, name string) string {
	if cfg.Datasets.Dir == "" || name == "" {
		return ""
	}
	path := filepath.Join(cfg.Datasets.Dir, name)
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// seedJobsFile loads a YAML or XLSX job dataset and seeds the catalog.
func seedJobsFile(ctx context.Context, catalog *jobs.Catalog, path string) (int, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		loaded, err := jobs.LoadJobsXLSX(path)
		if err != nil {
			return 0, err
		}
		return catalog.Seed(ctx, loaded)
	}
	loaded, err := jobs.LoadJobsFile(path)
	if err != nil {
		return 0, err
	}
	return catalog.Seed(ctx, loaded)
}

func reloadDataset(cfg *config.Config, components *Components, logger *zap.Logger, name string) {
	ctx := context.Background()
	path := datasetPath(cfg, name)
	if path == "" {
		return
	}
	switch name {
	case cfg.Datasets.JobsFile:
		if n, err := seedJobsFile(ctx, components.Catalog, path); err != nil {
			logger.Warn("reloading jobs failed", zap.String("path", path), zap.Error(err))
		} else {
			logger.Info("reloaded jobs", zap.Int("count", n))
		}
	case cfg.Datasets.KnowledgeFile:
		entries, err := knowledge.LoadKnowledgeFile(path)
		if err != nil {
			logger.Warn("reloading knowledge failed", zap.String("path", path), zap.Error(err))
			return
		}
		if n, err := components.Retriever.Seed(ctx, entries); err != nil {
			logger.Warn("reseeding knowledge failed", zap.String("path", path), zap.Error(err))
		} else {
			logger.Info("reloaded knowledge", zap.Int("count", n))
		}
	}
}

func runSeed() {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	jobsPath := fs.String("jobs", "", "jobs dataset file (YAML or XLSX), overrides config")
	knowledgePath := fs.String("knowledge", "", "knowledge dataset file (YAML), overrides config")
	_ = fs.Parse(os.Args[2:])

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	ctx := context.Background()
	jp := *jobsPath
	if jp == "" {
		jp = datasetPath(cfg, cfg.Datasets.JobsFile)
	}
	if jp != "" {
		n, err := seedJobsFile(ctx, components.Catalog, jp)
		if err != nil {
			logger.Fatal("Seeding jobs failed", zap.String("path", jp), zap.Error(err))
		}
		fmt.Printf("Seeded %d jobs from %s\n", n, jp)
	}

	kp := *knowledgePath
	if kp == "" {
		kp = datasetPath(cfg, cfg.Datasets.KnowledgeFile)
	}
	if kp != "" {
		entries, err := knowledge.LoadKnowledgeFile(kp)
		if err != nil {
			logger.Fatal("Loading knowledge failed", zap.String("path", kp), zap.Error(err))
		}
		n, err := components.Retriever.Seed(ctx, entries)
		if err != nil {
			logger.Fatal("Seeding knowledge failed", zap.String("path", kp), zap.Error(err))
		}
		fmt.Printf("Seeded %d knowledge entries from %s\n", n, kp)
	}

	if err := components.VectorIndex.Save(); err != nil {
		logger.Fatal("Saving vector index failed", zap.Error(err))
	}
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := zap.NewNop()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		fmt.Printf("Failed to initialize components: %v\n", err)
		os.Exit(1)
	}
	defer components.Close()

	ctx := context.Background()
	jobCount, _ := components.Storage.CountJobs(ctx)
	entries, _ := components.Storage.ListKnowledge(ctx)
	docCount, _ := components.KeywordIndex.DocCount()

	fmt.Printf("Config:           %s\n", resolvedConfigPath)
	fmt.Printf("Database:         %s\n", cfg.Storage.DatabasePath)
	fmt.Printf("Jobs:             %d\n", jobCount)
	fmt.Printf("Knowledge:        %d (keyword index: %d)\n", len(entries), docCount)
	fmt.Printf("Vectors:          %d (%d dimensions)\n",
		components.Similarity.IndexSize(), components.Similarity.Dimensions())
	fmt.Printf("Chat provider:    %s\n", components.Chat.Provider())
}

func printUsage() {
	fmt.Println(`naitei - campus placement AI service

Usage:
  naitei server [flags]    Start the HTTP server
  naitei seed [flags]      Seed jobs and knowledge datasets
  naitei status [flags]    Show storage and index status
  naitei version           Show version
  naitei help              Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/naitei/config.yaml)
  --debug            Enable debug logging

Seed Flags:
  --config string      Config file path
  --jobs string        Jobs dataset file (YAML or XLSX), overrides config
  --knowledge string   Knowledge dataset file (YAML), overrides config`)
}
