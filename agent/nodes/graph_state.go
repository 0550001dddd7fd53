package turnnode

import (
	"context"
	"sync"
	"time"

	contractx "github.com/tanpawarit/Chative-Flavia-Agent/agent/contract"
	statex "github.com/tanpawarit/Chative-Flavia-Agent/agent/state"
)

type GraphInput struct {
	SessionID string
	Text      string

	// Receipt, when set, records whether the turn reached the store.
	Receipt *Receipt
}

type GraphOutput struct {
	Reply string
}

// GraphState is threaded through the turn steps. Session is replaced, never
// mutated, by the take_turn step.
type GraphState struct {
	SessionID string
	Text      string
	Now       time.Time

	Session *statex.Session
	Reply   contractx.Message
	Output  GraphOutput

	Receipt *Receipt
}

// Receipt is written by the save step once the session is stored. It lets the
// caller tell a turn that failed before the save from one whose context ended
// after it.
type Receipt struct {
	mu    sync.Mutex
	saved bool
	out   GraphOutput
}

func (r *Receipt) markSaved(out GraphOutput) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = true
	r.out = out
}

// Saved returns the stored turn's output and whether the save happened.
func (r *Receipt) Saved() (GraphOutput, bool) {
	if r == nil {
		return GraphOutput{}, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.out, r.saved
}

// Turner produces the next session and the reply for one user message.
type Turner interface {
	TakeTurn(ctx context.Context, session *statex.Session, text string) (*statex.Session, contractx.Message, error)
}
