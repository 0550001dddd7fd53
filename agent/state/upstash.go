package state

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const maxUpstashResponseBytes = 2 << 20

var _ Store = (*UpstashRedisStore)(nil)

type UpstashRedisConfig struct {
	URL       string        `envconfig:"URL" split_words:"true" required:"true"`
	Token     string        `envconfig:"TOKEN" split_words:"true" required:"true"`
	Timeout   time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
	KeyPrefix string        `envconfig:"KEY_PREFIX" split_words:"true" default:"flavia:session:"`
	TTL       time.Duration `envconfig:"TTL" split_words:"true" default:"24h"`
}

// UpstashOption customizes UpstashRedisStore.
type UpstashOption func(*UpstashRedisStore)

func WithKeyPrefix(prefix string) UpstashOption {
	return func(s *UpstashRedisStore) {
		if trimmed := strings.TrimSpace(prefix); trimmed != "" {
			s.keyPrefix = trimmed
		}
	}
}

func WithTTL(ttl time.Duration) UpstashOption {
	return func(s *UpstashRedisStore) {
		s.ttl = ttl
	}
}

func WithHTTPClient(client *http.Client) UpstashOption {
	return func(s *UpstashRedisStore) {
		if client != nil {
			s.httpClient = client
		}
	}
}

// UpstashRedisStore persists sessions in Upstash Redis through its REST API.
type UpstashRedisStore struct {
	baseURL    string
	token      string
	httpClient *http.Client
	keyPrefix  string
	ttl        time.Duration
}

type upstashResponse struct {
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error"`
}

func NewUpstashRedisStore(cfg UpstashRedisConfig, opts ...UpstashOption) (*UpstashRedisStore, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	if baseURL == "" {
		return nil, errors.New("upstash redis url is required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid upstash rest url: %w", err)
	}
	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, errors.New("upstash redis token is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ttl := cfg.TTL
	if ttl == 0 {
		ttl = defaultTTL
	}

	store := &UpstashRedisStore{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		keyPrefix:  defaultKeyPrefix,
		ttl:        ttl,
	}
	WithKeyPrefix(cfg.KeyPrefix)(store)

	for _, opt := range opts {
		if opt != nil {
			opt(store)
		}
	}
	if store.ttl < 0 {
		return nil, errors.New("ttl must be >= 0")
	}
	return store, nil
}

func (s *UpstashRedisStore) Load(ctx context.Context, sessionID string) (*Session, error) {
	if err := checkSessionID(sessionID); err != nil {
		return nil, err
	}

	resp, err := s.do(ctx, "GET", s.keyPrefix+sessionID)
	if err != nil {
		return nil, err
	}
	result := bytes.TrimSpace(resp.Result)
	if len(result) == 0 || bytes.Equal(result, []byte("null")) {
		return nil, ErrSessionNotFound
	}

	var encoded string
	if err := json.Unmarshal(result, &encoded); err != nil {
		return nil, fmt.Errorf("decode session payload: %w", err)
	}
	return decodeSession([]byte(encoded))
}

func (s *UpstashRedisStore) Save(ctx context.Context, sess *Session) error {
	if err := prepareSave(sess); err != nil {
		return err
	}
	payload, err := encodeSession(sess)
	if err != nil {
		return err
	}

	cmd := []any{"SET", s.keyPrefix + sess.ID, string(payload)}
	if s.ttl > 0 {
		cmd = append(cmd, "EX", ttlSeconds(s.ttl))
	}
	_, err = s.do(ctx, cmd...)
	return err
}

func (s *UpstashRedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := checkSessionID(sessionID); err != nil {
		return err
	}
	_, err := s.do(ctx, "DEL", s.keyPrefix+sessionID)
	return err
}

func (s *UpstashRedisStore) do(ctx context.Context, command ...any) (*upstashResponse, error) {
	body, err := json.Marshal(command)
	if err != nil {
		return nil, fmt.Errorf("marshal redis command: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build redis request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute redis request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxUpstashResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read redis response: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("redis http status=%d body=%s", resp.StatusCode, string(raw))
	}

	var parsed upstashResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decode redis response: %w", err)
	}
	if parsed.Error != "" {
		return nil, errors.New(parsed.Error)
	}
	return &parsed, nil
}
