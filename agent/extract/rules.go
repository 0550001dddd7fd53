package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	contractx "github.com/tanpawarit/Chative-Flavia-Agent/agent/contract"
	toolx "github.com/tanpawarit/Chative-Flavia-Agent/agent/tool"
)

var (
	// the last "para"/"em" wins; "de" is a fallback since it also appears
	// inside city names
	cityPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^(?:.*\s)?(?:para|em)\s+(.+?)[\s?.!]*$`),
		regexp.MustCompile(`(?:^|\s)de\s+(.+?)[\s?.!]*$`),
	}
	relativeDayPattern = regexp.MustCompile(`(?i)\s+(?:para\s+|de\s+)?(?:hoje|amanhã|agora)[\s?.!]*$`)
	amountPattern      = regexp.MustCompile(`\d+(?:[.,]\d+)?`)
	currencyPattern    = regexp.MustCompile(`\b[A-Z]{3}\b`)
	lookupPattern      = regexp.MustCompile(`(?i)buscar\s+(.+?)[\s?.!]*$`)
	namePattern        = regexp.MustCompile(`(?:para|da|do|de)\s+(?:o\s+|a\s+)?(\p{Lu}\p{L}+)`)
	payerPattern       = regexp.MustCompile(`^\s*(\p{Lu}\p{L}+)\s+pagou`)
	selfNamePattern    = regexp.MustCompile(`(?i)meu nome é\s+(\p{Lu}\p{L}+)`)
	datePattern        = regexp.MustCompile(`\d{1,2}/\d{1,2}(?:/\d{2,4})?`)
	dayPattern         = regexp.MustCompile(`dia\s+\d{1,2}`)
	paidPattern        = regexp.MustCompile(`R\$\s*(\d+(?:[.,]\d+)?)`)
)

// relative days are not cities
var notACity = map[string]bool{"hoje": true, "amanhã": true, "agora": true}

type ruleFunc func(text string) map[string]any

// Rules extracts arguments with per-tool regular expressions. Tools without a
// rule get an empty record.
type Rules struct {
	rules map[string]ruleFunc
}

var _ contractx.Extractor = (*Rules)(nil)

func NewRules() *Rules {
	return &Rules{
		rules: map[string]ruleFunc{
			toolx.ToolWeatherForecast:   weatherArgs,
			toolx.ToolCurrencyConverter: currencyArgs,
			toolx.ToolGeneralLookup:     lookupArgs,
			toolx.ToolScheduleSession:   sessionArgs,
			toolx.ToolCancelSession:     sessionArgs,
			toolx.ToolRecordPayment:     paymentArgs,
		},
	}
}

func (r *Rules) Extract(ctx context.Context, req contractx.ExtractRequest) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fn, ok := r.rules[req.Tool]
	if !ok {
		return json.RawMessage(`{}`), nil
	}

	out, err := json.Marshal(fn(req.Text))
	if err != nil {
		return nil, fmt.Errorf("marshal %s arguments: %w", req.Tool, err)
	}
	return out, nil
}

func weatherArgs(text string) map[string]any {
	args := map[string]any{}
	text = relativeDayPattern.ReplaceAllString(text, "")
	for _, p := range cityPatterns {
		m := p.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		city := strings.TrimSpace(m[1])
		if city != "" && !notACity[strings.ToLower(city)] {
			args["cidade"] = city
			return args
		}
	}
	return args
}

func currencyArgs(text string) map[string]any {
	args := map[string]any{}
	if raw := amountPattern.FindString(text); raw != "" {
		if v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64); err == nil {
			args["valor"] = v
		}
	}
	codes := currencyPattern.FindAllString(text, 2)
	if len(codes) > 0 {
		args["moeda_origem"] = codes[0]
	}
	if len(codes) > 1 {
		args["moeda_destino"] = codes[1]
	}
	return args
}

func lookupArgs(text string) map[string]any {
	query := strings.TrimSpace(text)
	if m := lookupPattern.FindStringSubmatch(text); m != nil {
		query = strings.TrimSpace(m[1])
	}
	if query == "" {
		return map[string]any{}
	}
	return map[string]any{"consulta": query}
}

func sessionArgs(text string) map[string]any {
	args := map[string]any{}
	if name := patientName(text); name != "" {
		args["nome"] = name
	}
	if date := sessionDate(text); date != "" {
		args["data"] = date
	}
	return args
}

func paymentArgs(text string) map[string]any {
	args := sessionArgs(text)
	if m := paidPattern.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64); err == nil {
			args["valor"] = v
		}
	}
	return args
}

func patientName(text string) string {
	for _, p := range []*regexp.Regexp{selfNamePattern, namePattern, payerPattern} {
		if m := p.FindStringSubmatch(text); m != nil {
			return m[1]
		}
	}
	return ""
}

func sessionDate(text string) string {
	if d := datePattern.FindString(text); d != "" {
		return d
	}
	return dayPattern.FindString(text)
}
