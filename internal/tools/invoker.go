package tools

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/vsignlabs/vsignd/internal/message"
)

// Invoker executes the tool calls a model response requests and turns
// each outcome into a tool result message. Unknown tools and tool errors
// become error payloads in the result message rather than turn failures,
// so the model can see what went wrong and recover.
type Invoker struct {
	registry *Registry
	logger   *zap.Logger
	tracer   trace.Tracer
	calls    metric.Int64Counter
}

// NewInvoker creates an invoker over the registry.
func NewInvoker(registry *Registry, logger *zap.Logger) *Invoker {
	if logger == nil {
		logger = zap.NewNop()
	}
	meter := otel.Meter("vsignd.tools.invoker")
	calls, _ := meter.Int64Counter("vsignd_tool_calls_total",
		metric.WithDescription("Tool invocations by tool name and outcome"))

	return &Invoker{
		registry: registry,
		logger:   logger,
		tracer:   otel.Tracer("vsignd.tools.invoker"),
		calls:    calls,
	}
}

// Invoke runs every requested call and returns one tool result message
// per call, in the same order as the requests. Multiple calls run
// concurrently.
func (inv *Invoker) Invoke(ctx context.Context, calls []message.ToolCall) []message.Message {
	ctx, span := inv.tracer.Start(ctx, "invoker.invoke",
		trace.WithAttributes(attribute.Int("tools.call_count", len(calls))))
	defer span.End()

	if len(calls) == 0 {
		return nil
	}
	if len(calls) == 1 {
		return []message.Message{inv.invokeOne(ctx, calls[0])}
	}

	results := make([]message.Message, len(calls))
	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)
		go func(i int, call message.ToolCall) {
			defer wg.Done()
			results[i] = inv.invokeOne(ctx, call)
		}(i, call)
	}
	wg.Wait()
	return results
}

func (inv *Invoker) invokeOne(ctx context.Context, call message.ToolCall) message.Message {
	ctx, span := inv.tracer.Start(ctx, "invoker.call",
		trace.WithAttributes(attribute.String("tool.name", call.Name)))
	defer span.End()

	tool, err := inv.registry.Get(call.Name)
	if err != nil {
		inv.record(ctx, call.Name, "not_found")
		inv.logger.Warn("model requested unknown tool", zap.String("tool", call.Name))
		return message.NewToolResult(call.Name, call.ID,
			fmt.Sprintf("Error: tool %q is not available.", call.Name))
	}

	out, err := tool.Call(ctx, call.Args)
	if err != nil {
		inv.record(ctx, call.Name, "error")
		inv.logger.Warn("tool call failed",
			zap.String("tool", call.Name),
			zap.Error(err))
		return message.NewToolResult(call.Name, call.ID,
			fmt.Sprintf("Error: %s", err.Error()))
	}

	inv.record(ctx, call.Name, "ok")
	return message.NewToolResult(call.Name, call.ID, out)
}

func (inv *Invoker) record(ctx context.Context, tool, outcome string) {
	if inv.calls == nil {
		return
	}
	inv.calls.Add(ctx, 1, metric.WithAttributes(
		attribute.String("tool", tool),
		attribute.String("outcome", outcome),
	))
}
