package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"

	contractx "github.com/tanpawarit/Chative-Flavia-Agent/agent/contract"
	openrouterx "github.com/tanpawarit/Chative-Flavia-Agent/pkg/openrouter"
)

// Config is read with the OPENROUTER prefix. The Extractor* fields override
// the defaults for the argument extractor only.
type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://openrouter.ai/api/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" required:"true"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"512"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.5"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
	SiteURL            string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName           string        `envconfig:"SITE_NAME" split_words:"true"`
	VerifyModel        bool          `envconfig:"VERIFY_MODEL" split_words:"true" default:"true"`

	ExtractorModel       string   `envconfig:"EXTRACTOR_MODEL" split_words:"true"`
	ExtractorTemperature *float32 `envconfig:"EXTRACTOR_TEMPERATURE" split_words:"true"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: openrouter api key is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: default model is required", contractx.ErrValidation)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: openrouter timeout must be >= 0", contractx.ErrValidation)
	}
	return nil
}

func (c Config) OpenRouterForExtractor() openrouterx.Config {
	modelName := strings.TrimSpace(c.Model)
	if v := strings.TrimSpace(c.ExtractorModel); v != "" {
		modelName = v
	}

	temp := c.Temperature
	if c.ExtractorTemperature != nil {
		temp = *c.ExtractorTemperature
	}

	maxCompletionToken := c.MaxCompletionToken
	return openrouterx.Config{
		BaseURL:            strings.TrimSpace(c.BaseURL),
		APIKey:             strings.TrimSpace(c.APIKey),
		Model:              modelName,
		MaxCompletionToken: &maxCompletionToken,
		Temperature:        temp,
		Timeout:            c.Timeout,
		SiteURL:            strings.TrimSpace(c.SiteURL),
		SiteName:           strings.TrimSpace(c.SiteName),
	}
}

// NewExtractorModel validates the config, optionally checks that the provider
// serves the model, and builds the chat model used for argument extraction.
func NewExtractorModel(ctx context.Context, cfg Config) (einomodel.ToolCallingChatModel, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	modelCfg := cfg.OpenRouterForExtractor()
	if cfg.VerifyModel {
		if err := openrouterx.VerifyModel(ctx, modelCfg); err != nil {
			return nil, fmt.Errorf("%w: %v", contractx.ErrValidation, err)
		}
	}

	chatModel, err := modelCfg.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create extractor model: %v", contractx.ErrModelInvoke, err)
	}
	return chatModel, nil
}
