// Package retrieval implements the hybrid knowledge retrieval pipeline:
// query rewriting, dense and lexical search, rank fusion, reranking and
// media extraction over the sign-language corpus.
package retrieval

import "errors"

var (
	// ErrInvalidConfig is returned when retrieval configuration is invalid.
	ErrInvalidConfig = errors.New("invalid retrieval configuration")
)

// Media holds the demonstration assets attached to a corpus entry. Either
// field may be nil when the entry carries no asset of that kind.
type Media struct {
	Image *string `json:"image"`
	Video *string `json:"video"`
}

// Result is one retrieved corpus entry. ID is the 1-based rank within the
// result set and is what answer citations refer to.
type Result struct {
	ID      int    `json:"id"`
	Content string `json:"content"`
	Media   Media  `json:"-"`
}

// Config controls the retrieval pipeline.
type Config struct {
	// DenseK is how many candidates the vector search returns.
	DenseK int `koanf:"dense_k"`
	// LexicalK is how many candidates the lexical search returns.
	LexicalK int `koanf:"lexical_k"`
	// TopK is the final result count after reranking.
	TopK int `koanf:"top_k"`
	// CorpusPath points at the corpus JSON file used for ingestion and
	// lexical index warm-up.
	CorpusPath string `koanf:"corpus_path"`
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.DenseK <= 0 || c.LexicalK <= 0 || c.TopK <= 0 {
		return ErrInvalidConfig
	}
	return nil
}
