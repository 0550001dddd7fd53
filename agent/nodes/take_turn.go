package turnnode

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/Chative-Flavia-Agent/agent/contract"
)

func TakeTurn(ctx context.Context, in *GraphState, turner Turner) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	next, reply, err := turner.TakeTurn(ctx, in.Session, in.Text)
	if err != nil {
		return nil, err
	}
	in.Session = next
	in.Reply = reply
	return in, nil
}
