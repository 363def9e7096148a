package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vsignlabs/vsignd/internal/agent"
	"github.com/vsignlabs/vsignd/internal/checkpoint"
	"github.com/vsignlabs/vsignd/internal/compactor"
	"github.com/vsignlabs/vsignd/internal/config"
	"github.com/vsignlabs/vsignd/internal/embeddings"
	"github.com/vsignlabs/vsignd/internal/httpapi"
	"github.com/vsignlabs/vsignd/internal/intent"
	"github.com/vsignlabs/vsignd/internal/llm"
	"github.com/vsignlabs/vsignd/internal/logging"
	"github.com/vsignlabs/vsignd/internal/reranker"
	"github.com/vsignlabs/vsignd/internal/retrieval"
	"github.com/vsignlabs/vsignd/internal/tools"
	"github.com/vsignlabs/vsignd/internal/vectorstore"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the conversation engine",
	RunE:  runServe,
}

func runServe(_ *cobra.Command, _ []string) error {
	if err := config.EnsureConfigDir(); err != nil {
		return err
	}
	cfg, err := config.LoadWithFile(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return err
	}
	defer func() { _ = logging.Sync(logger) }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := llm.New(cfg.LLM, logger)
	if err != nil {
		return fmt.Errorf("init llm client: %w", err)
	}

	pipeline, err := buildRetrieval(ctx, cfg, client, logger)
	if err != nil {
		return err
	}

	registry := tools.NewRegistry(logger)
	if err := registry.Register(tools.NewClockTool(nil)); err != nil {
		return err
	}
	if err := registry.Register(tools.NewKnowledgeTool(pipeline, logger)); err != nil {
		return err
	}
	if err := registry.Register(tools.NewPracticeTool()); err != nil {
		return err
	}

	proxy, err := tools.NewMCPProxy(ctx, cfg.MCP.Servers, registry, logger)
	if err != nil {
		return fmt.Errorf("init mcp proxy: %w", err)
	}
	defer func() { _ = proxy.Close() }()

	store, err := buildStore(ctx, cfg, logger)
	if err != nil {
		return err
	}

	var judge *agent.SafetyJudge
	if cfg.Safety.Enabled {
		judge = agent.NewSafetyJudge(client, logger)
	}

	controller, err := agent.NewController(
		cfg.Agent,
		client,
		intent.New(client, logger),
		registry,
		tools.NewInvoker(registry, logger),
		compactor.New(client, logger),
		store,
		judge,
		logger,
	)
	if err != nil {
		return fmt.Errorf("init controller: %w", err)
	}

	server, err := httpapi.NewServer(controller, logger, &httpapi.Config{
		Host: cfg.Server.Host,
		Port: cfg.Server.Port,
	})
	if err != nil {
		return fmt.Errorf("init http server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	logger.Info("vsignd started",
		zap.String("version", version),
		zap.Int("tools", registry.Len()))

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("vsignd stopped")
	return nil
}

// buildRetrieval assembles the hybrid retrieval pipeline. Missing
// embedding config degrades to lexical-only search; a missing corpus
// file leaves retrieval empty but the engine conversational.
func buildRetrieval(ctx context.Context, cfg *config.Config, client *llm.Client, logger *zap.Logger) (*retrieval.Pipeline, error) {
	var store vectorstore.Store
	if cfg.Embeddings.BaseURL != "" {
		embedder, err := embeddings.NewService(cfg.Embeddings)
		if err != nil {
			return nil, fmt.Errorf("init embeddings: %w", err)
		}
		chromemStore, err := vectorstore.NewChromemStore(cfg.VectorStore, embedder, logger)
		if err != nil {
			return nil, fmt.Errorf("init vector store: %w", err)
		}
		store = chromemStore
	} else {
		logger.Warn("no embeddings endpoint configured, dense search disabled")
	}

	lexical := retrieval.NewLexicalIndex(logger)
	if cfg.Retrieval.CorpusPath != "" {
		if err := retrieval.Ingest(ctx, cfg.Retrieval.CorpusPath, store, lexical, logger); err != nil {
			logger.Warn("corpus ingest failed, retrieval will be empty",
				zap.String("corpus", cfg.Retrieval.CorpusPath),
				zap.Error(err))
		}
	} else {
		logger.Warn("no corpus configured, retrieval will be empty")
	}

	return retrieval.NewPipeline(
		cfg.Retrieval,
		store,
		lexical,
		retrieval.NewRewriter(client, logger),
		reranker.NewOverlapReranker(),
		logger,
	)
}

// buildStore picks Redis when configured, in-memory otherwise.
func buildStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (checkpoint.Store, error) {
	if cfg.Checkpoint.Addr == "" {
		logger.Warn("no redis configured, thread state is in-memory only")
		return checkpoint.NewMemoryStore(), nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	store, err := checkpoint.NewRedisStore(connectCtx, cfg.Checkpoint, logger)
	if err != nil {
		return nil, fmt.Errorf("init redis checkpoint store: %w", err)
	}
	return store, nil
}
