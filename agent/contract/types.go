package contract

import (
	"encoding/json"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	default:
		return false
	}
}

// Message is one entry of a conversation history. Messages are values and are
// never modified after they are appended to a session.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

type Route string

const (
	RouteTool    Route = "tool"
	RouteCatalog Route = "catalog"
)

// RouteDecision is derived per turn and never persisted.
type RouteDecision struct {
	Route   Route  `json:"route"`
	Tool    string `json:"tool,omitempty"`
	Keyword string `json:"keyword,omitempty"`
}

type ExtractRequest struct {
	Tool    string             `json:"tool"`
	Schema  *jsonschema.Schema `json:"-"`
	History []Message          `json:"history,omitempty"`
	Text    string             `json:"text"`
}

// EmptyArgs is the record passed to a tool when nothing could be extracted.
var EmptyArgs = json.RawMessage(`{}`)
