package dispatcher

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cloudwego/eino/compose"

	contractx "github.com/tanpawarit/Chative-Flavia-Agent/agent/contract"
	nodex "github.com/tanpawarit/Chative-Flavia-Agent/agent/nodes"
	statex "github.com/tanpawarit/Chative-Flavia-Agent/agent/state"
)

var (
	ErrInvalidMessage = nodex.ErrInvalidMessage
	ErrInvalidSession = nodex.ErrInvalidSession
)

var _ nodex.Turner = (*Dispatcher)(nil)

type ServiceConfig struct {
	// TurnTimeout bounds one HandleMessage call. Zero disables the bound.
	TurnTimeout time.Duration
}

// Service loads a session, takes one turn and saves the result. A failed turn
// saves nothing, so the stored history never holds a partial exchange.
type Service struct {
	store  statex.Store
	turner nodex.Turner

	turnTimeout time.Duration

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	now func() time.Time
}

func NewService(store statex.Store, turner nodex.Turner, cfg ServiceConfig) (*Service, error) {
	if store == nil {
		return nil, errors.New("session store is required")
	}
	if turner == nil {
		return nil, errors.New("turner is required")
	}

	s := &Service{
		store:       store,
		turner:      turner,
		turnTimeout: cfg.TurnTimeout,
		now:         time.Now,
	}

	graphRunner, err := s.compileHandleMessageGraph(context.Background())
	if err != nil {
		return nil, err
	}
	s.graphRunner = graphRunner

	return s, nil
}

func (s *Service) HandleMessage(ctx context.Context, sessionID string, text string) (string, error) {
	if s.turnTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.turnTimeout)
		defer cancel()
	}

	receipt := &nodex.Receipt{}
	out, err := s.graphRunner.Invoke(ctx, nodex.GraphInput{
		SessionID: sessionID,
		Text:      text,
		Receipt:   receipt,
	})
	if err != nil {
		// the exchange is stored; a context ending after the save does not
		// fail the turn
		if saved, ok := receipt.Saved(); ok && isContextErr(ctx, err) {
			return saved.Reply, nil
		}
		return "", err
	}
	return out.Reply, nil
}

func isContextErr(ctx context.Context, err error) bool {
	return ctx.Err() != nil ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// History returns the stored messages of a session.
func (s *Service) History(ctx context.Context, sessionID string) ([]contractx.Message, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, ErrInvalidSession
	}
	sess, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return sess.History(), nil
}
