package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

// MCPServerConfig describes one external MCP tool server launched over
// stdio.
type MCPServerConfig struct {
	Name    string   `koanf:"name"`
	Command string   `koanf:"command"`
	Args    []string `koanf:"args"`
}

// MCPProxy connects to external MCP servers and registers their tools
// into the registry, so productivity capabilities (tasks, reminders,
// notes) ride alongside the built-ins without the controller knowing the
// difference.
type MCPProxy struct {
	sessions []*mcp.ClientSession
	logger   *zap.Logger
}

// NewMCPProxy connects to each configured server and registers its
// tools. A server that fails to start or list tools is skipped with a
// warning; the assistant still runs with whatever connected.
func NewMCPProxy(ctx context.Context, configs []MCPServerConfig, registry *Registry, logger *zap.Logger) (*MCPProxy, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &MCPProxy{logger: logger}

	for _, cfg := range configs {
		if cfg.Command == "" {
			logger.Warn("mcp server missing command, skipping", zap.String("server", cfg.Name))
			continue
		}
		session, count, err := p.connect(ctx, cfg, registry)
		if err != nil {
			logger.Warn("mcp server unavailable, continuing without it",
				zap.String("server", cfg.Name),
				zap.Error(err))
			continue
		}
		p.sessions = append(p.sessions, session)
		logger.Info("mcp server connected",
			zap.String("server", cfg.Name),
			zap.Int("tools", count))
	}
	return p, nil
}

func (p *MCPProxy) connect(ctx context.Context, cfg MCPServerConfig, registry *Registry) (*mcp.ClientSession, int, error) {
	client := mcp.NewClient(&mcp.Implementation{Name: "vsignd", Version: "1.0.0"}, nil)
	transport := &mcp.CommandTransport{Command: exec.Command(cfg.Command, cfg.Args...)}

	session, err := client.Connect(ctx, transport, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("connect %s: %w", cfg.Name, err)
	}

	listed, err := session.ListTools(ctx, nil)
	if err != nil {
		_ = session.Close()
		return nil, 0, fmt.Errorf("list tools on %s: %w", cfg.Name, err)
	}

	count := 0
	for _, t := range listed.Tools {
		tool := &mcpTool{
			session:     session,
			name:        t.Name,
			description: t.Description,
			schema:      schemaToMap(t.InputSchema),
		}
		if err := registry.Register(tool); err != nil {
			p.logger.Warn("skipping conflicting mcp tool",
				zap.String("server", cfg.Name),
				zap.String("tool", t.Name),
				zap.Error(err))
			continue
		}
		count++
	}
	return session, count, nil
}

// Close shuts down all connected sessions.
func (p *MCPProxy) Close() error {
	var errs []string
	for _, s := range p.sessions {
		if err := s.Close(); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close mcp sessions: %s", strings.Join(errs, "; "))
	}
	return nil
}

// mcpTool adapts one remote MCP tool to the Tool interface.
type mcpTool struct {
	session     *mcp.ClientSession
	name        string
	description string
	schema      map[string]any
}

func (t *mcpTool) Name() string           { return t.name }
func (t *mcpTool) Description() string    { return t.description }
func (t *mcpTool) Schema() map[string]any { return t.schema }

func (t *mcpTool) Call(ctx context.Context, args string) (string, error) {
	var arguments map[string]any
	if args != "" {
		if err := json.Unmarshal([]byte(args), &arguments); err != nil {
			return "", fmt.Errorf("parse %s arguments: %w", t.name, err)
		}
	}

	res, err := t.session.CallTool(ctx, &mcp.CallToolParams{
		Name:      t.name,
		Arguments: arguments,
	})
	if err != nil {
		return "", fmt.Errorf("call %s: %w", t.name, err)
	}

	var parts []string
	for _, c := range res.Content {
		if text, ok := c.(*mcp.TextContent); ok {
			parts = append(parts, text.Text)
		}
	}
	out := strings.Join(parts, "\n")

	if res.IsError {
		return "", fmt.Errorf("%s reported an error: %s", t.name, out)
	}
	return out, nil
}

// schemaToMap converts the SDK's schema type to the plain map the model
// request expects. A schema that fails to round-trip degrades to an
// unconstrained object.
func schemaToMap(schema any) map[string]any {
	fallback := map[string]any{"type": "object", "properties": map[string]any{}}
	if schema == nil {
		return fallback
	}
	raw, err := json.Marshal(schema)
	if err != nil {
		return fallback
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return fallback
	}
	return m
}
