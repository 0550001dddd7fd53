// Package history bounds the conversation passed to model-backed steps.
package history

import (
	"slices"

	contractx "github.com/tanpawarit/Chative-Flavia-Agent/agent/contract"
)

// Trim keeps a leading system message plus the last maxTurns other messages,
// counted by message rather than by token.
//
// The kept window always starts on a user message: when the cut lands on an
// assistant message the window grows backwards to the nearest user message.
// With no user message before the cut, the window is shrunk forward to the
// first user message instead, and left alone when it holds none.
//
// Histories that already fit, and maxTurns <= 0, are returned unchanged. The
// result never aliases the input.
func Trim(msgs []contractx.Message, maxTurns int) []contractx.Message {
	var head []contractx.Message
	body := msgs
	if len(msgs) > 0 && msgs[0].Role == contractx.RoleSystem {
		head, body = msgs[:1], msgs[1:]
	}

	if maxTurns <= 0 || len(body) <= maxTurns {
		return slices.Clone(msgs)
	}

	start := windowStart(body, len(body)-maxTurns)

	out := make([]contractx.Message, 0, len(head)+len(body)-start)
	out = append(out, head...)
	return append(out, body[start:]...)
}

func windowStart(body []contractx.Message, cut int) int {
	for i := cut; i >= 0; i-- {
		if body[i].Role == contractx.RoleUser {
			return i
		}
	}
	for i := cut; i < len(body); i++ {
		if body[i].Role == contractx.RoleUser {
			return i
		}
	}
	return cut
}
