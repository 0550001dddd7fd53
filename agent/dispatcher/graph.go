package dispatcher

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	nodex "github.com/tanpawarit/Chative-Flavia-Agent/agent/nodes"
)

func (s *Service) compileHandleMessageGraph(
	ctx context.Context,
) (compose.Runnable[nodex.GraphInput, nodex.GraphOutput], error) {
	graph := compose.NewGraph[nodex.GraphInput, nodex.GraphOutput]()

	if err := graph.AddLambdaNode("validate_request",
		compose.InvokableLambda(func(ctx context.Context, in nodex.GraphInput) (*nodex.GraphState, error) {
			return nodex.ValidateRequest(in, s.now)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_request: %w", err)
	}

	if err := graph.AddLambdaNode("load_or_create_session",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.LoadOrCreateSession(ctx, in, s.store)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node load_or_create_session: %w", err)
	}

	if err := graph.AddLambdaNode("take_turn",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.TakeTurn(ctx, in, s.turner)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node take_turn: %w", err)
	}

	if err := graph.AddLambdaNode("finalize_reply",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.FinalizeReply(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node finalize_reply: %w", err)
	}

	if err := graph.AddLambdaNode("save_session",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (nodex.GraphOutput, error) {
			return nodex.SaveSession(ctx, in, s.store)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node save_session: %w", err)
	}

	edges := [][2]string{
		{compose.START, "validate_request"},
		{"validate_request", "load_or_create_session"},
		{"load_or_create_session", "take_turn"},
		{"take_turn", "finalize_reply"},
		{"finalize_reply", "save_session"},
		{"save_session", compose.END},
	}

	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("dispatcher.handle_message"))
	if err != nil {
		return nil, fmt.Errorf("compile dispatcher graph: %w", err)
	}
	return runner, nil
}
