package state

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	contractx "github.com/tanpawarit/Chative-Flavia-Agent/agent/contract"
)

// Session is the persisted conversation of one session id.
// Messages is append-only: a turn adds exactly one user message followed by
// one assistant message.
type Session struct {
	ID        string              `json:"session_id"`
	Messages  []contractx.Message `json:"messages,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

var ErrInvalidHistory = errors.New("session history is malformed")

func NewSession(sessionID string, now time.Time) *Session {
	return &Session{
		ID:        sessionID,
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}
}

func (s *Session) Touch(now time.Time) {
	s.UpdatedAt = now.UTC()
}

// Clone returns a copy that shares no backing array with s.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	cp := *s
	cp.Messages = slices.Clone(s.Messages)
	return &cp
}

// History returns a copy of the messages.
func (s *Session) History() []contractx.Message {
	if s == nil {
		return nil
	}
	return slices.Clone(s.Messages)
}

// Turns counts completed user/assistant exchanges.
func (s *Session) Turns() int {
	if s == nil {
		return 0
	}
	n := 0
	for _, m := range s.Messages {
		if m.Role == contractx.RoleAssistant {
			n++
		}
	}
	return n
}

// WithTurn returns a new session with the user message and the reply appended.
// s itself is left untouched.
func (s *Session) WithTurn(user, reply contractx.Message, now time.Time) *Session {
	next := s.Clone()
	next.Messages = append(next.Messages, user, reply)
	next.Touch(now)
	return next
}

// Validate checks that a session is safe to persist: a known id, known roles,
// a system message only at the head, and strict user/assistant alternation.
func (s *Session) Validate() error {
	if s == nil {
		return ErrNilSession
	}
	if strings.TrimSpace(s.ID) == "" {
		return ErrInvalidSession
	}

	msgs := s.Messages
	if len(msgs) > 0 && msgs[0].Role == contractx.RoleSystem {
		msgs = msgs[1:]
	}
	for i, m := range msgs {
		if !m.Role.Valid() {
			return fmt.Errorf("%w: unknown role %q at %d", ErrInvalidHistory, m.Role, i)
		}
		want := contractx.RoleUser
		if i%2 == 1 {
			want = contractx.RoleAssistant
		}
		if m.Role != want {
			return fmt.Errorf("%w: expected %s at %d, got %s", ErrInvalidHistory, want, i, m.Role)
		}
	}
	if len(msgs)%2 != 0 {
		return fmt.Errorf("%w: dangling user message", ErrInvalidHistory)
	}
	return nil
}
