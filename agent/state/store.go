package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrNilSession      = errors.New("session is nil")
	ErrInvalidSession  = errors.New("session id is empty")
)

const (
	defaultKeyPrefix = "flavia:session:"
	defaultTTL       = 24 * time.Hour
)

// Store is the session persistence contract used by the dispatcher service.
// Load returns ErrSessionNotFound for unknown ids.
type Store interface {
	Load(ctx context.Context, sessionID string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, sessionID string) error
}

func checkSessionID(sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return ErrInvalidSession
	}
	return nil
}

// prepareSave validates s and normalises its timestamps before it is encoded.
func prepareSave(s *Session) error {
	if s == nil {
		return ErrNilSession
	}
	if err := s.Validate(); err != nil {
		return err
	}
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = time.Now().UTC()
	} else {
		s.UpdatedAt = s.UpdatedAt.UTC()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = s.UpdatedAt
	}
	return nil
}

func encodeSession(s *Session) ([]byte, error) {
	payload, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal session: %w", err)
	}
	return payload, nil
}

func decodeSession(payload []byte) (*Session, error) {
	var s Session
	if err := json.Unmarshal(payload, &s); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid session loaded from store: %w", err)
	}
	return &s, nil
}

func ttlSeconds(ttl time.Duration) int64 {
	seconds := ttl / time.Second
	if seconds <= 0 {
		return 1
	}
	if ttl%time.Second != 0 {
		seconds++
	}
	return int64(seconds)
}
