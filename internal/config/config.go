// Package config provides configuration loading for vsignd.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/vsignlabs/vsignd/internal/agent"
	"github.com/vsignlabs/vsignd/internal/checkpoint"
	"github.com/vsignlabs/vsignd/internal/embeddings"
	"github.com/vsignlabs/vsignd/internal/llm"
	"github.com/vsignlabs/vsignd/internal/retrieval"
	"github.com/vsignlabs/vsignd/internal/tools"
	"github.com/vsignlabs/vsignd/internal/vectorstore"
)

// Config is the complete vsignd configuration.
type Config struct {
	Server      ServerConfig              `koanf:"server"`
	Logging     LoggingConfig             `koanf:"logging"`
	LLM         llm.Config                `koanf:"llm"`
	Embeddings  embeddings.Config         `koanf:"embeddings"`
	VectorStore vectorstore.ChromemConfig `koanf:"vectorstore"`
	Retrieval   retrieval.Config          `koanf:"retrieval"`
	Agent       agent.Config              `koanf:"agent"`
	Checkpoint  checkpoint.RedisConfig    `koanf:"checkpoint"`
	MCP         MCPConfig                 `koanf:"mcp"`
	Safety      SafetyConfig              `koanf:"safety"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// LoggingConfig controls the zap logger.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `koanf:"level"`
	// Format is "json" or "console".
	Format string `koanf:"format"`
}

// MCPConfig lists external MCP tool servers.
type MCPConfig struct {
	Servers []tools.MCPServerConfig `koanf:"servers"`
}

// SafetyConfig controls the background answer judge.
type SafetyConfig struct {
	Enabled bool `koanf:"enabled"`
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		// Turns wait on model backends; give them room.
		cfg.Server.WriteTimeout = 120 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "gpt-4o-mini"
	}
	if cfg.LLM.LightModel == "" {
		cfg.LLM.LightModel = cfg.LLM.Model
	}

	if cfg.Embeddings.Model == "" {
		cfg.Embeddings.Model = "text-embedding-3-small"
	}

	if cfg.VectorStore.Path == "" {
		if home, err := os.UserHomeDir(); err == nil {
			cfg.VectorStore.Path = filepath.Join(home, ".config", "vsignd", "vectorstore")
		}
	}
	if cfg.VectorStore.Collection == "" {
		cfg.VectorStore.Collection = "vsl_knowledge"
	}

	if cfg.Retrieval.DenseK == 0 {
		cfg.Retrieval.DenseK = 5
	}
	if cfg.Retrieval.LexicalK == 0 {
		cfg.Retrieval.LexicalK = 5
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 5
	}

	if cfg.Agent.MaxToolRounds == 0 {
		cfg.Agent.MaxToolRounds = 5
	}

	if cfg.Checkpoint.TTL == 0 {
		cfg.Checkpoint.TTL = 7 * 24 * time.Hour
	}
}

// Validate checks the assembled configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging format must be json or console, got %q", c.Logging.Format)
	}
	if err := c.Retrieval.Validate(); err != nil {
		return err
	}
	for _, s := range c.MCP.Servers {
		if s.Name == "" {
			return fmt.Errorf("mcp server entries need a name")
		}
	}
	return nil
}
