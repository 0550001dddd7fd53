package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/Chative-Flavia-Agent/agent/contract"
	extractx "github.com/tanpawarit/Chative-Flavia-Agent/agent/extract"
	historyx "github.com/tanpawarit/Chative-Flavia-Agent/agent/history"
	statex "github.com/tanpawarit/Chative-Flavia-Agent/agent/state"
	toolx "github.com/tanpawarit/Chative-Flavia-Agent/agent/tool"
)

type Config struct {
	Router    contractx.Router
	Tools     contractx.ToolInvoker
	Extractor contractx.Extractor
	// Catalog is the fixed reply used when no tool answers the turn.
	Catalog string
	// MaxHistory bounds the history handed to the extractor. Zero or less
	// hands over the whole history.
	MaxHistory int
	// SystemPrompt heads the history handed to the extractor. It is never
	// stored in the session.
	SystemPrompt string
}

// Dispatcher takes one conversational turn: it routes the user text to a
// tool or to the catalog reply and appends the exchange to the session.
type Dispatcher struct {
	router    contractx.Router
	tools     contractx.ToolInvoker
	extractor contractx.Extractor
	catalog   string

	systemPrompt string
	maxHistory   int

	now func() time.Time
}

func New(cfg Config) (*Dispatcher, error) {
	if cfg.Router == nil {
		return nil, errors.New("router is required")
	}
	if cfg.Tools == nil {
		return nil, errors.New("tool invoker is required")
	}
	catalog := strings.TrimSpace(cfg.Catalog)
	if catalog == "" {
		return nil, fmt.Errorf("%w: catalog message is required", contractx.ErrValidation)
	}
	extractor := cfg.Extractor
	if extractor == nil {
		extractor = extractx.NewRules()
	}

	return &Dispatcher{
		router:       cfg.Router,
		tools:        cfg.Tools,
		extractor:    extractor,
		catalog:      catalog,
		systemPrompt: strings.TrimSpace(cfg.SystemPrompt),
		maxHistory:   cfg.MaxHistory,
		now:          time.Now,
	}, nil
}

// NewForToolset wires a dispatcher to a toolset's registry, rules and catalog.
// Router, Tools and Catalog in cfg are replaced by the toolset's.
func NewForToolset(ts toolx.Toolset, cfg Config) (*Dispatcher, error) {
	router, err := ts.Router()
	if err != nil {
		return nil, err
	}
	cfg.Router = router
	cfg.Tools = ts.Registry
	cfg.Catalog = ts.Catalog
	return New(cfg)
}

// TakeTurn returns a new session with the user message and the reply
// appended, along with the reply. On error the input session is returned
// as-is and nothing is appended.
func (d *Dispatcher) TakeTurn(ctx context.Context, session *statex.Session, text string) (*statex.Session, contractx.Message, error) {
	if session == nil {
		return nil, contractx.Message{}, statex.ErrNilSession
	}
	if strings.TrimSpace(text) == "" {
		return session, contractx.Message{}, contractx.ErrInvalidMessage
	}
	if err := ctx.Err(); err != nil {
		return session, contractx.Message{}, err
	}

	decision := d.router.Route(text)
	logger := log.With().
		Str("session_id", session.ID).
		Str("route", string(decision.Route)).
		Str("tool", decision.Tool).
		Str("keyword", decision.Keyword).
		Logger()

	content, err := d.reply(ctx, logger, session, text, decision)
	if err != nil {
		logger.Error().Err(err).Msg("turn failed")
		return session, contractx.Message{}, err
	}

	now := d.now().UTC()
	user := contractx.UserMessage(text)
	user.CreatedAt = now
	reply := contractx.AssistantMessage(content)
	reply.CreatedAt = now

	logger.Debug().Msg("turn completed")
	return session.WithTurn(user, reply, now), reply, nil
}

func (d *Dispatcher) reply(
	ctx context.Context,
	logger zerolog.Logger,
	session *statex.Session,
	text string,
	decision contractx.RouteDecision,
) (string, error) {
	if decision.Route != contractx.RouteTool {
		return d.catalog, nil
	}

	schema, ok := d.tools.Schema(decision.Tool)
	if !ok {
		logger.Warn().Msg("routed to an unregistered tool, replying with catalog")
		return d.catalog, nil
	}

	args, err := d.extractor.Extract(ctx, contractx.ExtractRequest{
		Tool:    decision.Tool,
		Schema:  schema,
		History: historyx.Trim(d.promptHistory(session), d.maxHistory),
		Text:    text,
	})
	if err != nil {
		if isTurnFailure(ctx, err) {
			return "", err
		}
		logger.Warn().Err(err).Msg("argument extraction failed, using empty arguments")
		args = append([]byte(nil), contractx.EmptyArgs...)
	}

	out, err := d.tools.Invoke(ctx, decision.Tool, args)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		if isTurnFailure(ctx, err) {
			return "", err
		}
		logger.Warn().Err(err).Msg("tool failed, replying with catalog")
		return d.catalog, nil
	}

	out = strings.TrimSpace(out)
	if out == "" {
		logger.Warn().Msg("tool returned an empty reply, replying with catalog")
		return d.catalog, nil
	}
	return out, nil
}

// promptHistory is the session history headed by the system prompt, when one
// is configured and the session does not already carry its own.
func (d *Dispatcher) promptHistory(session *statex.Session) []contractx.Message {
	msgs := session.History()
	if d.systemPrompt == "" || (len(msgs) > 0 && msgs[0].Role == contractx.RoleSystem) {
		return msgs
	}
	out := make([]contractx.Message, 0, len(msgs)+1)
	out = append(out, contractx.SystemMessage(d.systemPrompt))
	return append(out, msgs...)
}

// isTurnFailure reports errors that abort the turn instead of degrading to
// the catalog reply.
func isTurnFailure(ctx context.Context, err error) bool {
	return ctx.Err() != nil ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, contractx.ErrModelInvoke)
}
