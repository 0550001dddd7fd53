package prompt

import (
	_ "embed"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/Chative-Flavia-Agent/agent/contract"
)

var (
	//go:embed template/system.txt
	systemRaw string

	//go:embed template/extract.txt
	extractRaw string
)

// PromptSet holds loaded prompt content.
type PromptSet struct {
	// System seeds every new session.
	System string
	// Extract instructs the model-backed argument extractor. It is used as an
	// FString template, so it must not contain single braces.
	Extract string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
func LoadPromptSet() PromptSet {
	return PromptSet{
		System:  strings.TrimSpace(systemRaw),
		Extract: strings.TrimSpace(extractRaw),
	}
}

func (p PromptSet) Validate() error {
	if p.System == "" {
		return fmt.Errorf("%w: system", contractx.ErrPromptMissing)
	}
	if p.Extract == "" {
		return fmt.Errorf("%w: extract", contractx.ErrPromptMissing)
	}
	if strings.ContainsAny(p.Extract, "{}") {
		return fmt.Errorf("%w: extract prompt must not contain braces", contractx.ErrValidation)
	}
	return nil
}
