package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/Chative-Flavia-Agent/agent/contract"
	historyx "github.com/tanpawarit/Chative-Flavia-Agent/agent/history"
	toolx "github.com/tanpawarit/Chative-Flavia-Agent/agent/tool"
)

// Model asks a chat model to fill a tool's parameters. One graph is compiled
// per tool, each with that tool bound to the model.
type Model struct {
	runners    map[string]compose.Runnable[map[string]any, json.RawMessage]
	maxHistory int
}

var _ contractx.Extractor = (*Model)(nil)

func NewModel(
	ctx context.Context,
	chatModel einomodel.ToolCallingChatModel,
	systemPrompt string,
	specs []toolx.Spec,
	maxHistory int,
) (*Model, error) {
	if strings.TrimSpace(systemPrompt) == "" {
		return nil, fmt.Errorf("%w: extractor prompt", contractx.ErrPromptMissing)
	}

	m := &Model{
		runners:    make(map[string]compose.Runnable[map[string]any, json.RawMessage], len(specs)),
		maxHistory: maxHistory,
	}
	for _, spec := range specs {
		bound, err := chatModel.WithTools([]*schema.ToolInfo{spec.ToolInfo()})
		if err != nil {
			return nil, fmt.Errorf("%w: bind tool=%s: %v", contractx.ErrModelInvoke, spec.Name, err)
		}
		runner, err := compileExtractGraph(ctx, bound, systemPrompt, spec.Name)
		if err != nil {
			return nil, fmt.Errorf("%w: compile extractor graph: %v", contractx.ErrModelInvoke, err)
		}
		m.runners[spec.Name] = runner
	}
	return m, nil
}

type extractPayload struct {
	Tool        string              `json:"tool"`
	Parameters  json.RawMessage     `json:"parameters,omitempty"`
	History     []contractx.Message `json:"history,omitempty"`
	UserMessage string              `json:"user_message"`
}

func (m *Model) Extract(ctx context.Context, req contractx.ExtractRequest) (json.RawMessage, error) {
	runner, ok := m.runners[req.Tool]
	if !ok {
		return json.RawMessage(`{}`), nil
	}

	payload := extractPayload{
		Tool:        req.Tool,
		History:     historyx.Trim(req.History, m.maxHistory),
		UserMessage: req.Text,
	}
	if req.Schema != nil {
		raw, err := json.Marshal(req.Schema)
		if err != nil {
			return nil, fmt.Errorf("%w: marshal schema for tool=%s: %v", contractx.ErrValidation, req.Tool, err)
		}
		payload.Parameters = raw
	}

	input, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal extractor payload: %v", contractx.ErrValidation, err)
	}

	out, err := runner.Invoke(ctx, map[string]any{
		"input": string(input),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: extractor invoke: %w", contractx.ErrModelInvoke, err)
	}
	return out, nil
}

func compileExtractGraph(
	ctx context.Context,
	chatModel einomodel.BaseChatModel,
	systemPrompt string,
	toolName string,
) (compose.Runnable[map[string]any, json.RawMessage], error) {
	template := einoprompt.FromMessages(
		schema.FString,
		schema.SystemMessage(systemPrompt),
		schema.UserMessage("{input}"),
	)

	graph := compose.NewGraph[map[string]any, json.RawMessage]()
	if err := graph.AddChatTemplateNode("prompt", template); err != nil {
		return nil, fmt.Errorf("add extractor prompt node: %w", err)
	}
	if err := graph.AddChatModelNode("model", chatModel); err != nil {
		return nil, fmt.Errorf("add extractor model node: %w", err)
	}
	if err := graph.AddLambdaNode("decode_args", compose.InvokableLambda(
		func(ctx context.Context, msg *schema.Message) (json.RawMessage, error) {
			return decodeArguments(toolName, msg), nil
		}),
	); err != nil {
		return nil, fmt.Errorf("add extractor decode node: %w", err)
	}

	if err := graph.AddEdge(compose.START, "prompt"); err != nil {
		return nil, fmt.Errorf("add extractor edge start->prompt: %w", err)
	}
	if err := graph.AddEdge("prompt", "model"); err != nil {
		return nil, fmt.Errorf("add extractor edge prompt->model: %w", err)
	}
	if err := graph.AddEdge("model", "decode_args"); err != nil {
		return nil, fmt.Errorf("add extractor edge model->decode: %w", err)
	}
	if err := graph.AddEdge("decode_args", compose.END); err != nil {
		return nil, fmt.Errorf("add extractor edge decode->end: %w", err)
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("extract."+toolName))
	if err != nil {
		return nil, fmt.Errorf("compile extractor graph: %w", err)
	}
	return runner, nil
}

// decodeArguments reads the tool call arguments when the model made one,
// otherwise the message content. A {"function", "parameters"} envelope is
// unwrapped. Anything undecodable becomes an empty record.
func decodeArguments(toolName string, msg *schema.Message) json.RawMessage {
	if msg == nil {
		return json.RawMessage(`{}`)
	}

	raw := msg.Content
	for _, call := range msg.ToolCalls {
		if call.Function.Name == toolName || call.Function.Name == "" {
			raw = call.Function.Arguments
			break
		}
	}
	raw = stripCodeFence(raw)

	var obj map[string]json.RawMessage
	if err := toolx.DecodeJSON([]byte(raw), &obj); err != nil || obj == nil {
		log.Debug().Err(err).Str("tool", toolName).Msg("extractor output is not a JSON object")
		return json.RawMessage(`{}`)
	}

	if inner, ok := obj["parameters"]; ok && bytes.HasPrefix(bytes.TrimSpace(inner), []byte("{")) {
		if _, hasFunction := obj["function"]; hasFunction || len(obj) == 1 {
			return inner
		}
	}

	out, err := json.Marshal(obj)
	if err != nil {
		return json.RawMessage(`{}`)
	}
	return out
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
