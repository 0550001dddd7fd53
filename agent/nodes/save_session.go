package turnnode

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/Chative-Flavia-Agent/agent/contract"
	statex "github.com/tanpawarit/Chative-Flavia-Agent/agent/state"
)

// SaveSession is the last step of a turn. Nothing after it can fail the turn
// without the receipt knowing the exchange was stored.
func SaveSession(
	ctx context.Context,
	in *GraphState,
	store statex.Store,
) (GraphOutput, error) {
	if in == nil || in.Session == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}
	// a turn that ran out of time must not be persisted
	if err := ctx.Err(); err != nil {
		return GraphOutput{}, err
	}

	in.Session.Touch(in.Now)
	if err := in.Session.Validate(); err != nil {
		return GraphOutput{}, fmt.Errorf("session validation failed: %w", err)
	}
	if err := store.Save(ctx, in.Session); err != nil {
		return GraphOutput{}, err
	}

	in.Receipt.markSaved(in.Output)
	return in.Output, nil
}
