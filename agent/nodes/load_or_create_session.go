package turnnode

import (
	"context"
	"errors"
	"fmt"

	contractx "github.com/tanpawarit/Chative-Flavia-Agent/agent/contract"
	statex "github.com/tanpawarit/Chative-Flavia-Agent/agent/state"
)

// LoadOrCreateSession loads the stored session or starts an empty one.
func LoadOrCreateSession(ctx context.Context, in *GraphState, store statex.Store) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	sess, err := store.Load(ctx, in.SessionID)
	switch {
	case err == nil:
	case errors.Is(err, statex.ErrSessionNotFound):
		sess = statex.NewSession(in.SessionID, in.Now)
	default:
		return nil, err
	}
	in.Session = sess
	return in, nil
}
