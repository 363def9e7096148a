package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/vsignlabs/vsignd/internal/checkpoint"
	"github.com/vsignlabs/vsignd/internal/compactor"
	"github.com/vsignlabs/vsignd/internal/intent"
	"github.com/vsignlabs/vsignd/internal/llm"
	"github.com/vsignlabs/vsignd/internal/message"
	"github.com/vsignlabs/vsignd/internal/resolver"
	"github.com/vsignlabs/vsignd/internal/retrieval"
	"github.com/vsignlabs/vsignd/internal/tools"
)

// ErrEmptyMessage indicates a turn with no user text.
var ErrEmptyMessage = errors.New("message text is required")

// Config controls the turn loop.
type Config struct {
	// MaxToolRounds caps model/tool round trips per turn.
	MaxToolRounds int `koanf:"max_tool_rounds"`
}

func (c *Config) applyDefaults() {
	if c.MaxToolRounds <= 0 {
		c.MaxToolRounds = 5
	}
}

// TurnResult is what one completed turn hands back to the transport.
type TurnResult struct {
	// Response is the assistant's text with citation tags stripped.
	Response string `json:"response"`
	// Media is the demonstration asset for the cited entry, empty
	// fields when the turn cited nothing.
	Media retrieval.Media `json:"media"`
	// Action is a client-side action to perform, nil for plain answers.
	Action *tools.PracticeAction `json:"action,omitempty"`
}

// Controller drives a conversation turn end to end.
type Controller struct {
	cfg        Config
	generator  llm.Generator
	classifier *intent.Classifier
	registry   *tools.Registry
	invoker    *tools.Invoker
	compactor  *compactor.Compactor
	store      checkpoint.Store
	locker     *checkpoint.Locker
	judge      *SafetyJudge
	logger     *zap.Logger
	tracer     trace.Tracer
	turns      metric.Int64Counter
	now        func() time.Time
}

// NewController wires the turn loop. classifier, compactor and judge may
// be nil; the corresponding steps are then skipped.
func NewController(
	cfg Config,
	generator llm.Generator,
	classifier *intent.Classifier,
	registry *tools.Registry,
	invoker *tools.Invoker,
	comp *compactor.Compactor,
	store checkpoint.Store,
	judge *SafetyJudge,
	logger *zap.Logger,
) (*Controller, error) {
	if generator == nil {
		return nil, fmt.Errorf("generator is required")
	}
	if registry == nil || invoker == nil {
		return nil, fmt.Errorf("tool registry and invoker are required")
	}
	if store == nil {
		return nil, fmt.Errorf("checkpoint store is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.applyDefaults()

	meter := otel.Meter("vsignd.agent")
	turns, _ := meter.Int64Counter("vsignd_turns_total",
		metric.WithDescription("Completed turns by outcome"))

	return &Controller{
		cfg:        cfg,
		generator:  generator,
		classifier: classifier,
		registry:   registry,
		invoker:    invoker,
		compactor:  comp,
		store:      store,
		locker:     checkpoint.NewLocker(),
		judge:      judge,
		logger:     logger,
		tracer:     otel.Tracer("vsignd.agent"),
		turns:      turns,
		now:        time.Now,
	}, nil
}

// RunTurn processes one user message on a thread and returns the
// assistant's response. Turns on the same thread serialize; different
// threads run concurrently.
func (c *Controller) RunTurn(ctx context.Context, threadID, text string) (*TurnResult, error) {
	if text == "" {
		return nil, ErrEmptyMessage
	}

	ctx, span := c.tracer.Start(ctx, "agent.turn",
		trace.WithAttributes(attribute.String("thread.id", threadID)))
	defer span.End()

	unlock := c.locker.Lock(threadID)
	defer unlock()

	state, err := c.loadState(ctx, threadID)
	if err != nil {
		return nil, err
	}

	userMsg := message.NewUser(text)
	state.Messages = append(state.Messages, userMsg)

	verdict := intent.VerdictRelated
	if c.classifier != nil {
		verdict = c.classifier.Classify(ctx, text,
			message.LastUserTexts(state.Messages[:len(state.Messages)-1], 3),
			state.Summary)
	}
	state.Intent = verdict
	span.SetAttributes(attribute.String("turn.intent", string(verdict)))

	if routeAfterClassify(verdict) == StepRefuse {
		return c.refuse(ctx, threadID, state)
	}
	return c.generate(ctx, threadID, state, userMsg.ID)
}

// DeleteThread drops all state for a thread. Deleting an absent thread
// succeeds.
func (c *Controller) DeleteThread(ctx context.Context, threadID string) error {
	unlock := c.locker.Lock(threadID)
	defer unlock()
	return c.store.Delete(ctx, threadID)
}

func (c *Controller) loadState(ctx context.Context, threadID string) (*checkpoint.ThreadState, error) {
	state, err := c.store.Load(ctx, threadID)
	if errors.Is(err, checkpoint.ErrNotFound) {
		return &checkpoint.ThreadState{Intent: intent.VerdictUnset}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load thread %s: %w", threadID, err)
	}
	return state, nil
}

func (c *Controller) saveState(ctx context.Context, threadID string, state *checkpoint.ThreadState) {
	state.UpdatedAt = c.now().UTC()
	if err := c.store.Save(ctx, threadID, state); err != nil {
		c.logger.Error("checkpoint save failed",
			zap.String("thread_id", threadID),
			zap.Error(err))
	}
}

// refuse answers an off-domain message with a polite redirection. The
// refusal itself comes from the model so it stays conversational; a
// backend failure degrades to the canned apology.
func (c *Controller) refuse(ctx context.Context, threadID string, state *checkpoint.ThreadState) (*TurnResult, error) {
	view, _ := message.Sanitize(state.Messages)
	completion, err := c.generator.Generate(ctx, view,
		llm.WithSystem(refusalInstructions))

	text := Apology
	outcome := "apology"
	if err == nil && completion.Text != "" {
		text = completion.Text
		outcome = "refused"
	} else if err != nil {
		c.logger.Warn("refusal generation failed",
			zap.String("thread_id", threadID),
			zap.Error(err))
	}

	state.Messages = append(state.Messages, message.NewAssistant(text, nil))
	c.saveState(ctx, threadID, state)
	c.record(ctx, outcome)

	return &TurnResult{Response: text}, nil
}

// generate runs the model/tool loop until the model stops requesting
// calls, then resolves the citation and folds history when due.
func (c *Controller) generate(ctx context.Context, threadID string, state *checkpoint.ThreadState, userMsgID string) (*TurnResult, error) {
	var answer string

	for round := 0; round < c.cfg.MaxToolRounds; round++ {
		// Sanitize shapes the model's input view only; the stored
		// history shrinks solely through the compactor's deletions.
		kept, dropped := message.Sanitize(state.Messages)
		if len(dropped) > 0 {
			c.logger.Warn("skipping unsendable messages",
				zap.String("thread_id", threadID),
				zap.Strings("message_ids", dropped))
		}

		completion, err := c.generator.Generate(ctx, kept,
			llm.WithSystem(systemPrompt(c.now(), state.Summary)),
			llm.WithTools(c.registry.Defs()))
		if err != nil {
			return c.apologize(ctx, threadID, state, err)
		}

		state.Messages = append(state.Messages,
			message.NewAssistant(completion.Text, completion.ToolCalls))

		if routeAfterGenerate(len(completion.ToolCalls), state.Messages) != StepInvoke {
			answer = completion.Text
			break
		}

		results := c.invoker.Invoke(ctx, completion.ToolCalls)
		state.Messages = append(state.Messages, results...)
		c.saveState(ctx, threadID, state)
	}

	if answer == "" {
		// Tool rounds exhausted without a final answer.
		c.logger.Warn("tool round limit reached without answer",
			zap.String("thread_id", threadID))
		return c.apologize(ctx, threadID, state, errors.New("tool round limit reached"))
	}

	searchResults, action := c.scanTurn(state.Messages, userMsgID)
	resolution := resolver.Resolve(answer, searchResults)

	c.maybeCompact(ctx, threadID, state)
	c.saveState(ctx, threadID, state)
	c.record(ctx, "answered")
	c.judge.Review(threadID, resolution.Text)

	return &TurnResult{
		Response: resolution.Text,
		Media:    resolution.Media,
		Action:   action,
	}, nil
}

// apologize closes the turn with the canned apology after a backend
// failure. The user message stays in history so a retry has context.
func (c *Controller) apologize(ctx context.Context, threadID string, state *checkpoint.ThreadState, cause error) (*TurnResult, error) {
	c.logger.Error("model invocation failed",
		zap.String("thread_id", threadID),
		zap.Error(cause))

	state.Messages = append(state.Messages, message.NewAssistant(Apology, nil))
	c.saveState(ctx, threadID, state)
	c.record(ctx, "apology")

	return &TurnResult{Response: Apology}, nil
}

// scanTurn walks this turn's messages for the latest knowledge search
// results and the latest practice action.
func (c *Controller) scanTurn(msgs []message.Message, userMsgID string) ([]retrieval.Result, *tools.PracticeAction) {
	start := 0
	for i, m := range msgs {
		if m.ID == userMsgID {
			start = i + 1
			break
		}
	}

	var results []retrieval.Result
	var action *tools.PracticeAction
	for _, m := range msgs[start:] {
		if m.Role != message.RoleTool {
			continue
		}
		if r, ok := tools.DecodeKnowledgePayload(m.Text); ok {
			results = r
			continue
		}
		if a, ok := tools.DecodePracticeAction(m.Text); ok {
			action = a
		}
	}
	return results, action
}

// maybeCompact folds old history once the thread passes the threshold.
// A summarizer failure leaves the history untouched.
func (c *Controller) maybeCompact(ctx context.Context, threadID string, state *checkpoint.ThreadState) {
	if c.compactor == nil || routeAfterAnswer(state.Messages) != StepCompact {
		return
	}

	res, err := c.compactor.Compact(ctx, state.Messages, state.Summary)
	if err != nil {
		c.logger.Warn("compaction failed, keeping full history",
			zap.String("thread_id", threadID),
			zap.Error(err))
		return
	}
	if len(res.DeleteIDs) == 0 {
		return
	}

	drop := make(map[string]bool, len(res.DeleteIDs))
	for _, id := range res.DeleteIDs {
		drop[id] = true
	}
	kept := state.Messages[:0:0]
	for _, m := range state.Messages {
		if !drop[m.ID] {
			kept = append(kept, m)
		}
	}
	state.Messages = kept
	state.Summary = res.Summary
}

func (c *Controller) record(ctx context.Context, outcome string) {
	if c.turns == nil {
		return
	}
	c.turns.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
