package turnnode

import (
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/Chative-Flavia-Agent/agent/contract"
)

// FinalizeReply fills the graph output. It runs before the save so an empty
// reply never reaches the store.
func FinalizeReply(in *GraphState) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	reply := strings.TrimSpace(in.Reply.Content)
	if reply == "" {
		return nil, fmt.Errorf("%w: turn produced an empty reply", contractx.ErrValidation)
	}
	in.Output = GraphOutput{Reply: reply}
	return in, nil
}
