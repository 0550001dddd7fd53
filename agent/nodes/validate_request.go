package turnnode

import (
	"strings"
	"time"

	contractx "github.com/tanpawarit/Chative-Flavia-Agent/agent/contract"
	statex "github.com/tanpawarit/Chative-Flavia-Agent/agent/state"
)

var (
	ErrInvalidMessage = contractx.ErrInvalidMessage
	ErrInvalidSession = statex.ErrInvalidSession
)

func ValidateRequest(in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	sessionID := strings.TrimSpace(in.SessionID)
	if sessionID == "" {
		return nil, ErrInvalidSession
	}

	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, ErrInvalidMessage
	}

	return &GraphState{
		SessionID: sessionID,
		Text:      text,
		Now:       nowFn().UTC(),
		Receipt:   in.Receipt,
	}, nil
}
