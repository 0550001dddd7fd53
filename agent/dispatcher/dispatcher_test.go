package dispatcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/jsonschema-go/jsonschema"

	contractx "github.com/tanpawarit/Chative-Flavia-Agent/agent/contract"
	routerx "github.com/tanpawarit/Chative-Flavia-Agent/agent/router"
	statex "github.com/tanpawarit/Chative-Flavia-Agent/agent/state"
	toolx "github.com/tanpawarit/Chative-Flavia-Agent/agent/tool"
)

type fakeTools struct {
	schemas map[string]*jsonschema.Schema
	reply   string
	err     error
	calls   []string
	args    []json.RawMessage
}

func (f *fakeTools) Invoke(ctx context.Context, name string, args json.RawMessage) (string, error) {
	f.calls = append(f.calls, name)
	f.args = append(f.args, args)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeTools) Schema(name string) (*jsonschema.Schema, bool) {
	s, ok := f.schemas[name]
	return s, ok
}

type fakeExtractor struct {
	args  json.RawMessage
	err   error
	block bool
	reqs  []contractx.ExtractRequest
}

func (f *fakeExtractor) Extract(ctx context.Context, req contractx.ExtractRequest) (json.RawMessage, error) {
	f.reqs = append(f.reqs, req)
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.args, nil
}

func newAssistantDispatcher(t *testing.T) *Dispatcher {
	t.Helper()

	ts, err := toolx.Assistant()
	if err != nil {
		t.Fatalf("Assistant() error = %v", err)
	}
	d, err := NewForToolset(ts, Config{MaxHistory: 4})
	if err != nil {
		t.Fatalf("NewForToolset() error = %v", err)
	}
	return d
}

func newSession() *statex.Session {
	return statex.NewSession("s-1", time.Date(2025, 4, 10, 9, 0, 0, 0, time.UTC))
}

func TestTakeTurnRoutesToStubs(t *testing.T) {
	t.Parallel()

	d := newAssistantDispatcher(t)

	tests := []struct {
		text string
		want []string
	}{
		{"Qual a previsão para São Paulo?", []string{"A previsão para São Paulo é: Sol com nuvens e 25°C."}},
		{"Converta 200 USD para BRL", []string{"Conversão simulada de: 200 USD para BRL. Resultado: R$ 520,00."}},
		{"Oi, o que posso fazer aqui?", []string{"previsão do tempo", "conversão de moeda", "buscar informações gerais"}},
		{"buscar o clima em Marte", []string{"o clima em Marte"}},
	}

	for _, tt := range tests {
		next, reply, err := d.TakeTurn(context.Background(), newSession(), tt.text)
		if err != nil {
			t.Fatalf("TakeTurn(%q) error = %v", tt.text, err)
		}
		if reply.Role != contractx.RoleAssistant {
			t.Fatalf("TakeTurn(%q) reply role = %s", tt.text, reply.Role)
		}
		for _, want := range tt.want {
			if !strings.Contains(reply.Content, want) {
				t.Fatalf("TakeTurn(%q) reply = %q, want it to contain %q", tt.text, reply.Content, want)
			}
		}
		if len(next.Messages) != 2 || next.Messages[0].Content != tt.text || next.Messages[1] != reply {
			t.Fatalf("TakeTurn(%q) history = %+v", tt.text, next.Messages)
		}
	}
}

func TestTakeTurnDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	d := newAssistantDispatcher(t)
	sess := newSession()

	next, _, err := d.TakeTurn(context.Background(), sess, "Qual a previsão para Recife?")
	if err != nil {
		t.Fatalf("TakeTurn() error = %v", err)
	}
	if len(sess.Messages) != 0 {
		t.Fatalf("input session mutated: %+v", sess.Messages)
	}
	if next == sess {
		t.Fatal("TakeTurn() returned the input session")
	}
}

func TestTakeTurnHistoryAlternates(t *testing.T) {
	t.Parallel()

	d := newAssistantDispatcher(t)
	sess := newSession()
	inputs := []string{
		"Oi, o que posso fazer aqui?",
		"Qual a previsão para São Paulo?",
		"Converta 200 USD para BRL",
		"buscar receitas",
		"obrigado",
	}

	for _, text := range inputs {
		var err error
		sess, _, err = d.TakeTurn(context.Background(), sess, text)
		if err != nil {
			t.Fatalf("TakeTurn(%q) error = %v", text, err)
		}
	}

	if got, want := len(sess.Messages), 2*len(inputs); got != want {
		t.Fatalf("history length = %d, want %d", got, want)
	}
	for i, m := range sess.Messages {
		want := contractx.RoleUser
		if i%2 == 1 {
			want = contractx.RoleAssistant
		}
		if m.Role != want {
			t.Fatalf("message %d role = %s, want %s", i, m.Role, want)
		}
	}
	if err := sess.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestTakeTurnUnknownToolFallsBackToCatalog(t *testing.T) {
	t.Parallel()

	tools := &fakeTools{schemas: map[string]*jsonschema.Schema{}}
	d, err := New(Config{
		Router:  routerx.MustNew(routerx.Rule{Keyword: "buscar", Tool: toolx.ToolGeneralLookup}),
		Tools:   tools,
		Catalog: "catálogo",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, reply, err := d.TakeTurn(context.Background(), newSession(), "buscar o clima em Marte")
	if err != nil {
		t.Fatalf("TakeTurn() error = %v", err)
	}
	if reply.Content != "catálogo" {
		t.Fatalf("reply = %q, want catalog", reply.Content)
	}
	if len(tools.calls) != 0 {
		t.Fatalf("tool invoked %v, want no calls", tools.calls)
	}
}

func TestTakeTurnToolErrorFallsBackToCatalog(t *testing.T) {
	t.Parallel()

	tools := &fakeTools{
		schemas: map[string]*jsonschema.Schema{"t": {Type: "object"}},
		err:     errors.New("boom"),
	}
	d, err := New(Config{
		Router:    routerx.MustNew(routerx.Rule{Keyword: "k", Tool: "t"}),
		Tools:     tools,
		Extractor: &fakeExtractor{args: json.RawMessage(`{"a":1}`)},
		Catalog:   "catálogo",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, reply, err := d.TakeTurn(context.Background(), newSession(), "k")
	if err != nil {
		t.Fatalf("TakeTurn() error = %v", err)
	}
	if reply.Content != "catálogo" {
		t.Fatalf("reply = %q, want catalog", reply.Content)
	}
	if len(tools.calls) != 1 || string(tools.args[0]) != `{"a":1}` {
		t.Fatalf("unexpected tool calls %v args %s", tools.calls, tools.args)
	}
}

func TestTakeTurnExtractionErrorUsesEmptyArgs(t *testing.T) {
	t.Parallel()

	tools := &fakeTools{schemas: map[string]*jsonschema.Schema{"t": {Type: "object"}}, reply: "ok"}
	d, err := New(Config{
		Router:    routerx.MustNew(routerx.Rule{Keyword: "k", Tool: "t"}),
		Tools:     tools,
		Extractor: &fakeExtractor{err: fmt.Errorf("%w: bad output", contractx.ErrSchemaViolation)},
		Catalog:   "catálogo",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, reply, err := d.TakeTurn(context.Background(), newSession(), "k")
	if err != nil {
		t.Fatalf("TakeTurn() error = %v", err)
	}
	if reply.Content != "ok" {
		t.Fatalf("reply = %q, want ok", reply.Content)
	}
	if string(tools.args[0]) != `{}` {
		t.Fatalf("args = %s, want {}", tools.args[0])
	}
}

func TestTakeTurnModelFailureAbortsTurn(t *testing.T) {
	t.Parallel()

	tools := &fakeTools{schemas: map[string]*jsonschema.Schema{"t": {Type: "object"}}, reply: "ok"}
	d, err := New(Config{
		Router:    routerx.MustNew(routerx.Rule{Keyword: "k", Tool: "t"}),
		Tools:     tools,
		Extractor: &fakeExtractor{err: fmt.Errorf("%w: timeout", contractx.ErrModelInvoke)},
		Catalog:   "catálogo",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	sess := newSession()
	next, _, err := d.TakeTurn(context.Background(), sess, "k")
	if !errors.Is(err, contractx.ErrModelInvoke) {
		t.Fatalf("TakeTurn() error = %v, want ErrModelInvoke", err)
	}
	if next != sess || len(next.Messages) != 0 {
		t.Fatalf("TakeTurn() changed the session on failure: %+v", next)
	}
	if len(tools.calls) != 0 {
		t.Fatalf("tool invoked %v after failed extraction", tools.calls)
	}
}

func TestTakeTurnCancelledContext(t *testing.T) {
	t.Parallel()

	d := newAssistantDispatcher(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := d.TakeTurn(ctx, newSession(), "Qual a previsão para São Paulo?")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("TakeTurn() error = %v, want context.Canceled", err)
	}
}

func TestTakeTurnInvalidInput(t *testing.T) {
	t.Parallel()

	d := newAssistantDispatcher(t)
	if _, _, err := d.TakeTurn(context.Background(), newSession(), "   "); !errors.Is(err, contractx.ErrInvalidMessage) {
		t.Fatalf("TakeTurn() error = %v, want ErrInvalidMessage", err)
	}
	if _, _, err := d.TakeTurn(context.Background(), nil, "oi"); !errors.Is(err, statex.ErrNilSession) {
		t.Fatalf("TakeTurn() error = %v, want ErrNilSession", err)
	}
}

func TestTakeTurnPassesHistoryToExtractor(t *testing.T) {
	t.Parallel()

	ts, err := toolx.Assistant()
	if err != nil {
		t.Fatalf("Assistant() error = %v", err)
	}
	extractor := &fakeExtractor{args: json.RawMessage(`{"cidade":"São Roque"}`)}
	d, err := NewForToolset(ts, Config{Extractor: extractor, MaxHistory: 4})
	if err != nil {
		t.Fatalf("NewForToolset() error = %v", err)
	}

	sess := newSession()
	sess, _, err = d.TakeTurn(context.Background(), sess, "Oi, o que posso fazer aqui?")
	if err != nil {
		t.Fatalf("TakeTurn() error = %v", err)
	}
	_, reply, err := d.TakeTurn(context.Background(), sess, "e a previsão em São Roque?")
	if err != nil {
		t.Fatalf("TakeTurn() error = %v", err)
	}

	if len(extractor.reqs) != 1 {
		t.Fatalf("extractor called %d times, want 1", len(extractor.reqs))
	}
	req := extractor.reqs[0]
	if req.Tool != toolx.ToolWeatherForecast || req.Schema == nil || len(req.History) != 2 {
		t.Fatalf("unexpected extract request: %+v", req)
	}
	if !strings.Contains(reply.Content, "São Roque") {
		t.Fatalf("reply = %q, want São Roque forecast", reply.Content)
	}
}

func TestNewValidatesConfig(t *testing.T) {
	t.Parallel()

	router := routerx.MustNew()
	tools := &fakeTools{}

	if _, err := New(Config{Tools: tools, Catalog: "c"}); err == nil {
		t.Fatal("New() without router error = nil")
	}
	if _, err := New(Config{Router: router, Catalog: "c"}); err == nil {
		t.Fatal("New() without tools error = nil")
	}
	if _, err := New(Config{Router: router, Tools: tools, Catalog: " "}); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("New() error = %v, want ErrValidation", err)
	}
}

func TestTakeTurnTrimsHistoryForExtractor(t *testing.T) {
	t.Parallel()

	ts, err := toolx.Assistant()
	if err != nil {
		t.Fatalf("Assistant() error = %v", err)
	}
	extractor := &fakeExtractor{args: json.RawMessage(`{}`)}
	d, err := NewForToolset(ts, Config{Extractor: extractor, MaxHistory: 2})
	if err != nil {
		t.Fatalf("NewForToolset() error = %v", err)
	}

	sess := newSession()
	sess.Messages = append(sess.Messages, contractx.SystemMessage("sistema"))
	for _, text := range []string{"oi", "tudo bem?", "obrigado"} {
		sess, _, err = d.TakeTurn(context.Background(), sess, text)
		if err != nil {
			t.Fatalf("TakeTurn(%q) error = %v", text, err)
		}
	}
	if _, _, err := d.TakeTurn(context.Background(), sess, "Qual a previsão para Natal?"); err != nil {
		t.Fatalf("TakeTurn() error = %v", err)
	}

	history := extractor.reqs[0].History
	if len(history) != 3 {
		t.Fatalf("extractor history = %d messages, want 3", len(history))
	}
	if history[0].Role != contractx.RoleSystem || history[1].Content != "obrigado" {
		t.Fatalf("unexpected trimmed history: %+v", history)
	}
}

func TestTakeTurnHeadsExtractorHistoryWithSystemPrompt(t *testing.T) {
	t.Parallel()

	ts, err := toolx.Assistant()
	if err != nil {
		t.Fatalf("Assistant() error = %v", err)
	}
	extractor := &fakeExtractor{args: json.RawMessage(`{}`)}
	d, err := NewForToolset(ts, Config{Extractor: extractor, MaxHistory: 2, SystemPrompt: "Você é a Flavia."})
	if err != nil {
		t.Fatalf("NewForToolset() error = %v", err)
	}

	sess := newSession()
	for _, text := range []string{"oi", "tudo bem?", "Qual a previsão para Natal?"} {
		sess, _, err = d.TakeTurn(context.Background(), sess, text)
		if err != nil {
			t.Fatalf("TakeTurn(%q) error = %v", text, err)
		}
	}

	if got := sess.History(); len(got) != 6 || got[0].Role != contractx.RoleUser {
		t.Fatalf("stored history = %+v, want 6 messages starting with user", got)
	}
	history := extractor.reqs[0].History
	if len(history) != 3 {
		t.Fatalf("extractor history = %d messages, want 3", len(history))
	}
	if history[0].Role != contractx.RoleSystem || history[0].Content != "Você é a Flavia." {
		t.Fatalf("extractor history[0] = %+v, want system prompt", history[0])
	}
	if history[1].Content != "tudo bem?" {
		t.Fatalf("unexpected trimmed history: %+v", history)
	}
}
