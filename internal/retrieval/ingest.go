package retrieval

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/vsignlabs/vsignd/internal/vectorstore"
)

// corpusEntry mirrors one record of the corpus JSON file. Metadata values
// are not uniformly typed, so they are decoded loosely and stringified.
type corpusEntry struct {
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata"`
}

// LoadCorpus parses the corpus JSON file into vector store documents.
// Entries with empty content are skipped. Document IDs are positional so
// re-ingesting the same file is idempotent.
func LoadCorpus(path string) ([]vectorstore.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}

	var entries []corpusEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse corpus: %w", err)
	}

	docs := make([]vectorstore.Document, 0, len(entries))
	for i, e := range entries {
		if strings.TrimSpace(e.Content) == "" {
			continue
		}
		docs = append(docs, vectorstore.Document{
			ID:       fmt.Sprintf("corpus-%d", i),
			Content:  e.Content,
			Metadata: stringifyMetadata(e.Metadata),
		})
	}
	return docs, nil
}

// Ingest loads the corpus file and populates both the lexical index and,
// when present, the vector store. The vector store is skipped if it
// already holds the corpus so startup does not re-embed on every boot.
func Ingest(ctx context.Context, path string, store vectorstore.Store, lexical *LexicalIndex, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	docs, err := LoadCorpus(path)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return fmt.Errorf("corpus %s contains no usable entries", path)
	}

	lexical.Add(docs)
	logger.Info("lexical index populated", zap.Int("documents", len(docs)))

	if store == nil {
		return nil
	}
	if count := store.Count(); count >= len(docs) {
		logger.Info("vector store already populated", zap.Int("documents", count))
		return nil
	}
	if _, err := store.AddDocuments(ctx, docs); err != nil {
		return fmt.Errorf("vector store ingest: %w", err)
	}
	logger.Info("vector store populated", zap.Int("documents", len(docs)))
	return nil
}

func stringifyMetadata(meta map[string]any) map[string]string {
	if len(meta) == 0 {
		return nil
	}
	out := make(map[string]string, len(meta))
	for k, v := range meta {
		switch val := v.(type) {
		case nil:
			continue
		case string:
			out[k] = val
		case []any:
			parts := make([]string, 0, len(val))
			for _, item := range val {
				parts = append(parts, fmt.Sprintf("%v", item))
			}
			out[k] = "[" + strings.Join(parts, ", ") + "]"
		default:
			out[k] = fmt.Sprintf("%v", val)
		}
	}
	return out
}
