package router

import (
	"errors"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/Chative-Flavia-Agent/agent/contract"
)

var ErrInvalidRule = errors.New("invalid routing rule")

// Rule maps a trigger keyword to a tool name.
type Rule struct {
	Keyword string `json:"keyword"`
	Tool    string `json:"tool"`
}

// KeywordRouter routes on a case-sensitive substring match. Rules are
// evaluated in order, so the slice order is the priority order.
type KeywordRouter struct {
	rules []Rule
}

var _ contractx.Router = (*KeywordRouter)(nil)

func New(rules ...Rule) (*KeywordRouter, error) {
	kept := make([]Rule, 0, len(rules))
	for i, r := range rules {
		if r.Keyword == "" {
			return nil, fmt.Errorf("%w: rule %d has an empty keyword", ErrInvalidRule, i)
		}
		if strings.TrimSpace(r.Tool) == "" {
			return nil, fmt.Errorf("%w: keyword %q has no tool", ErrInvalidRule, r.Keyword)
		}
		kept = append(kept, r)
	}
	return &KeywordRouter{rules: kept}, nil
}

func MustNew(rules ...Rule) *KeywordRouter {
	r, err := New(rules...)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *KeywordRouter) Route(text string) contractx.RouteDecision {
	for _, rule := range r.rules {
		if strings.Contains(text, rule.Keyword) {
			return contractx.RouteDecision{
				Route:   contractx.RouteTool,
				Tool:    rule.Tool,
				Keyword: rule.Keyword,
			}
		}
	}
	return contractx.RouteDecision{Route: contractx.RouteCatalog}
}

// Rules returns a copy of the configured rules in priority order.
func (r *KeywordRouter) Rules() []Rule {
	return append([]Rule(nil), r.rules...)
}

// Keywords expands one tool into a rule per keyword, keeping keyword order.
func Keywords(tool string, keywords ...string) []Rule {
	rules := make([]Rule, 0, len(keywords))
	for _, kw := range keywords {
		rules = append(rules, Rule{Keyword: kw, Tool: tool})
	}
	return rules
}
