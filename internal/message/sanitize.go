package message

// Sanitize builds the model-safe view of a history.
//
// Providers reject a tool result that is not preceded by the assistant turn
// that requested it, so the view keeps a RoleTool message only when the
// previously kept message is either an assistant with pending tool calls or
// another tool result (the latter supports parallel calls answered in
// sequence). Assistant messages with neither text nor tool calls are
// dropped.
//
// The input slice is never mutated; Sanitize is a pure view builder and is
// idempotent. The IDs of dropped messages are returned so callers can log a
// warning about the orphaned entries.
func Sanitize(msgs []Message) (kept []Message, dropped []string) {
	kept = make([]Message, 0, len(msgs))

	for _, m := range msgs {
		switch m.Role {
		case RoleTool:
			if len(kept) == 0 {
				dropped = append(dropped, m.ID)
				continue
			}
			prev := kept[len(kept)-1]
			prevIsCalling := prev.Role == RoleAssistant && prev.HasToolCalls()
			prevIsTool := prev.Role == RoleTool
			if prevIsCalling || prevIsTool {
				kept = append(kept, m)
			} else {
				dropped = append(dropped, m.ID)
			}

		case RoleAssistant:
			if m.Empty() {
				dropped = append(dropped, m.ID)
				continue
			}
			kept = append(kept, m)

		default:
			kept = append(kept, m)
		}
	}

	return kept, dropped
}
