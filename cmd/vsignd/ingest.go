package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vsignlabs/vsignd/internal/config"
	"github.com/vsignlabs/vsignd/internal/embeddings"
	"github.com/vsignlabs/vsignd/internal/logging"
	"github.com/vsignlabs/vsignd/internal/retrieval"
	"github.com/vsignlabs/vsignd/internal/vectorstore"
)

var ingestCorpusPath string

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Embed the corpus into the vector store",
	Long: `Load the corpus JSON file, embed every entry and write it into
the persistent vector store, so serve does not need to embed at boot.

Examples:
  vsignd ingest --corpus data/corpus.json`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestCorpusPath, "corpus", "",
		"corpus JSON file (defaults to retrieval.corpus_path from config)")
}

func runIngest(_ *cobra.Command, _ []string) error {
	cfg, err := config.LoadWithFile(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(cfg.Logging.Level, "console")
	if err != nil {
		return err
	}
	defer func() { _ = logging.Sync(logger) }()

	corpus := ingestCorpusPath
	if corpus == "" {
		corpus = cfg.Retrieval.CorpusPath
	}
	if corpus == "" {
		return fmt.Errorf("no corpus file: pass --corpus or set retrieval.corpus_path")
	}

	if cfg.Embeddings.BaseURL == "" {
		return fmt.Errorf("embeddings.base_url is required for ingest")
	}
	embedder, err := embeddings.NewService(cfg.Embeddings)
	if err != nil {
		return fmt.Errorf("init embeddings: %w", err)
	}
	store, err := vectorstore.NewChromemStore(cfg.VectorStore, embedder, logger)
	if err != nil {
		return fmt.Errorf("init vector store: %w", err)
	}

	docs, err := retrieval.LoadCorpus(corpus)
	if err != nil {
		return err
	}
	if _, err := store.AddDocuments(context.Background(), docs); err != nil {
		return fmt.Errorf("ingest corpus: %w", err)
	}

	logger.Info("corpus ingested",
		zap.String("corpus", corpus),
		zap.Int("documents", len(docs)),
		zap.String("path", cfg.VectorStore.Path))
	return nil
}
