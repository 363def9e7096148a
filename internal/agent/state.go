// Package agent runs the conversation engine: it routes each turn
// through classification, model generation, tool execution and history
// compaction, and persists thread state between turns.
package agent

import (
	"github.com/vsignlabs/vsignd/internal/intent"
	"github.com/vsignlabs/vsignd/internal/message"
)

// Step names one stage of a turn. Routing between steps is done with
// pure functions so the flow is testable without any backend.
type Step string

const (
	StepClassify Step = "classify"
	StepGenerate Step = "generate"
	StepInvoke   Step = "invoke"
	StepCompact  Step = "compact"
	StepRefuse   Step = "refuse"
	StepDone     Step = "done"
)

// compactThreshold is the user-message count at which history folding
// kicks in.
const compactThreshold = 10

// routeAfterClassify picks the next step from the intent verdict.
// Classification fails open, so only an explicit unrelated verdict
// refuses.
func routeAfterClassify(verdict intent.Verdict) Step {
	if verdict == intent.VerdictUnrelated {
		return StepRefuse
	}
	return StepGenerate
}

// routeAfterGenerate continues the tool loop while the model keeps
// requesting calls; otherwise the answer is final and the turn moves on
// to the compaction check.
func routeAfterGenerate(toolCalls int, msgs []message.Message) Step {
	if toolCalls > 0 {
		return StepInvoke
	}
	return routeAfterAnswer(msgs)
}

// routeAfterAnswer decides whether history folding runs before the turn
// finishes.
func routeAfterAnswer(msgs []message.Message) Step {
	if message.CountUserTurns(msgs) >= compactThreshold {
		return StepCompact
	}
	return StepDone
}
