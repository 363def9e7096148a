package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"

	"github.com/vsignlabs/vsignd/internal/message"
)

var (
	// ErrInvalidConfig indicates missing required configuration.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrNoChoices indicates the provider returned an empty response.
	ErrNoChoices = errors.New("model returned no choices")
)

// ToolDef describes one tool offered to the model.
type ToolDef struct {
	// Name is the tool's unique name.
	Name string

	// Description tells the model when to use the tool.
	Description string

	// Parameters is the JSON schema of the argument object.
	Parameters any
}

// Completion is the outcome of one model invocation.
type Completion struct {
	// Text is the assistant's free text, possibly empty when only tool
	// calls were requested.
	Text string

	// ToolCalls are the requested tool invocations, in request order.
	ToolCalls []message.ToolCall
}

// Generator produces assistant turns from a conversation history.
type Generator interface {
	Generate(ctx context.Context, msgs []message.Message, opts ...CallOption) (*Completion, error)
}

// Completer runs a single system+prompt exchange on the lightweight model
// and returns the raw text. Used for classification, rewriting and
// summarization.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// Config holds connection settings for the model endpoint.
type Config struct {
	// BaseURL is an OpenAI-compatible endpoint.
	BaseURL string `koanf:"base_url"`

	// APIKey authenticates requests. Some local gateways ignore it.
	APIKey string `koanf:"api_key"`

	// Model is the primary tool-calling model.
	Model string `koanf:"model"`

	// LightModel handles the cheap auxiliary calls. Defaults to Model.
	LightModel string `koanf:"light_model"`
}

// Validate validates the configuration.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%w: base URL required", ErrInvalidConfig)
	}
	if c.Model == "" {
		return fmt.Errorf("%w: model required", ErrInvalidConfig)
	}
	return nil
}

// Client implements Generator and Completer over an OpenAI-compatible
// endpoint.
type Client struct {
	model  llms.Model
	light  llms.Model
	logger *zap.Logger
}

// New creates a client from config.
func New(cfg Config, logger *zap.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	apiKey := cfg.APIKey
	if apiKey == "" {
		// langchaingo requires a token even for keyless gateways
		apiKey = "placeholder"
	}

	primary, err := openai.New(
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithModel(cfg.Model),
		openai.WithToken(apiKey),
	)
	if err != nil {
		return nil, fmt.Errorf("creating model client: %w", err)
	}

	lightModel := cfg.LightModel
	if lightModel == "" {
		lightModel = cfg.Model
	}
	light, err := openai.New(
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithModel(lightModel),
		openai.WithToken(apiKey),
	)
	if err != nil {
		return nil, fmt.Errorf("creating light model client: %w", err)
	}

	return &Client{model: primary, light: light, logger: logger}, nil
}

// callSettings collects per-call options.
type callSettings struct {
	system string
	tools  []ToolDef
}

// CallOption configures one Generate call.
type CallOption func(*callSettings)

// WithSystem prepends a system message to the invocation. The system
// message is constructed fresh per call and never persisted.
func WithSystem(text string) CallOption {
	return func(s *callSettings) { s.system = text }
}

// WithTools offers tool definitions to the model.
func WithTools(tools []ToolDef) CallOption {
	return func(s *callSettings) { s.tools = tools }
}

// Generate invokes the primary model with the given history.
func (c *Client) Generate(ctx context.Context, msgs []message.Message, opts ...CallOption) (*Completion, error) {
	var settings callSettings
	for _, opt := range opts {
		opt(&settings)
	}

	content := make([]llms.MessageContent, 0, len(msgs)+1)
	if settings.system != "" {
		content = append(content, llms.TextParts(llms.ChatMessageTypeSystem, settings.system))
	}
	for _, m := range msgs {
		content = append(content, toContent(m))
	}

	callOpts := []llms.CallOption{llms.WithTemperature(0)}
	if len(settings.tools) > 0 {
		callOpts = append(callOpts, llms.WithTools(toTools(settings.tools)))
	}

	resp, err := c.model.GenerateContent(ctx, content, callOpts...)
	if err != nil {
		return nil, fmt.Errorf("generating content: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrNoChoices
	}

	choice := resp.Choices[0]
	completion := &Completion{
		Text:      choice.Content,
		ToolCalls: fromToolCalls(choice.ToolCalls),
	}

	c.logger.Debug("model turn",
		zap.Int("history_len", len(msgs)),
		zap.Int("tool_calls", len(completion.ToolCalls)),
	)

	return completion, nil
}

// Complete runs a single exchange on the lightweight model.
func (c *Client) Complete(ctx context.Context, system, prompt string) (string, error) {
	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, system),
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}

	resp, err := c.light.GenerateContent(ctx, content, llms.WithTemperature(0))
	if err != nil {
		return "", fmt.Errorf("completing: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}
	return resp.Choices[0].Content, nil
}
