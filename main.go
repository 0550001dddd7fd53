package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	contractx "github.com/tanpawarit/Chative-Flavia-Agent/agent/contract"
	dispatcherx "github.com/tanpawarit/Chative-Flavia-Agent/agent/dispatcher"
	extractx "github.com/tanpawarit/Chative-Flavia-Agent/agent/extract"
	llmx "github.com/tanpawarit/Chative-Flavia-Agent/agent/llm"
	promptx "github.com/tanpawarit/Chative-Flavia-Agent/agent/prompt"
	statex "github.com/tanpawarit/Chative-Flavia-Agent/agent/state"
	toolx "github.com/tanpawarit/Chative-Flavia-Agent/agent/tool"
	configx "github.com/tanpawarit/Chative-Flavia-Agent/pkg/config"
	consolex "github.com/tanpawarit/Chative-Flavia-Agent/pkg/console"
	_ "github.com/tanpawarit/Chative-Flavia-Agent/pkg/logger/autoload"
)

const (
	extractorRules = "rules"
	extractorModel = "model"
)

type AppConfig struct {
	Toolset     string        `envconfig:"TOOLSET" default:"assistant"`
	MaxHistory  int           `envconfig:"MAX_HISTORY" default:"4"`
	TurnTimeout time.Duration `envconfig:"TURN_TIMEOUT" default:"30s"`
	StoreDriver string        `envconfig:"STORE_DRIVER" default:"memory"`
	Extractor   string        `envconfig:"EXTRACTOR" default:"rules"`
	Concurrency int           `envconfig:"CONCURRENCY" default:"4"`
}

func main() {
	appCfg := configx.MustNew[AppConfig]("")

	if err := run(context.Background(), *appCfg, os.Stdout); err != nil {
		log.Error().Err(err).Msg("demo failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg AppConfig, out io.Writer) error {
	ts, err := toolx.NewToolset(cfg.Toolset)
	if err != nil {
		return err
	}

	prompts := promptx.LoadPromptSet()
	if err := prompts.Validate(); err != nil {
		return err
	}

	extractor, err := newExtractor(ctx, cfg, ts, prompts)
	if err != nil {
		return err
	}

	d, err := dispatcherx.NewForToolset(ts, dispatcherx.Config{
		Extractor:    extractor,
		MaxHistory:   cfg.MaxHistory,
		SystemPrompt: prompts.System,
	})
	if err != nil {
		return err
	}

	store, closeStore, err := openStore(ctx, cfg.StoreDriver)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Warn().Err(err).Msg("close session store")
		}
	}()

	svc, err := dispatcherx.NewService(store, d, dispatcherx.ServiceConfig{
		TurnTimeout: cfg.TurnTimeout,
	})
	if err != nil {
		return err
	}

	log.Info().
		Str("toolset", ts.Name).
		Str("store", cfg.StoreDriver).
		Str("extractor", cfg.Extractor).
		Strs("tools", ts.Registry.Names()).
		Msg("dispatcher ready")

	return runScenarios(ctx, svc, consolex.New(out), scenariosFor(ts.Name), cfg.Concurrency)
}

func runScenarios(
	ctx context.Context,
	svc *dispatcherx.Service,
	printer *consolex.Printer,
	list []scenario,
	concurrency int,
) error {
	ids := make([]string, len(list))
	for i := range list {
		ids[i] = uuid.NewString()
	}

	g, gctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}
	for i, sc := range list {
		g.Go(func() error {
			for _, text := range sc.Inputs {
				reply, err := svc.HandleMessage(gctx, ids[i], text)
				if err != nil {
					return fmt.Errorf("scenario %s: %w", sc.Name, err)
				}
				if err := printer.Reply(ids[i], text, reply); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, sc := range list {
		history, err := svc.History(ctx, ids[i])
		if err != nil {
			return fmt.Errorf("scenario %s: %w", sc.Name, err)
		}
		if err := printer.Transcript(sc.Name+" "+ids[i], history); err != nil {
			return err
		}
	}
	return nil
}

func newExtractor(ctx context.Context, cfg AppConfig, ts toolx.Toolset, prompts promptx.PromptSet) (contractx.Extractor, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Extractor)) {
	case "", extractorRules:
		return extractx.NewRules(), nil
	case extractorModel:
		llmCfg := configx.MustNew[llmx.Config]("OPENROUTER")
		chatModel, err := llmx.NewExtractorModel(ctx, *llmCfg)
		if err != nil {
			return nil, err
		}
		return extractx.NewModel(ctx, chatModel, prompts.Extract, ts.Registry.Specs(), cfg.MaxHistory)
	default:
		return nil, fmt.Errorf("%w: unknown extractor %q", contractx.ErrValidation, cfg.Extractor)
	}
}

func openStore(ctx context.Context, driver string) (statex.Store, func() error, error) {
	noop := func() error { return nil }

	d, err := statex.ParseDriver(driver)
	if err != nil {
		return nil, noop, err
	}

	switch d {
	case statex.DriverRedis:
		redisCfg := configx.MustNew[statex.RedisConfig]("REDIS")
		store := statex.NewRedisStore(*redisCfg)
		return store, store.Close, nil
	case statex.DriverUpstash:
		upstashCfg := configx.MustNew[statex.UpstashRedisConfig]("UPSTASH_REDIS")
		store, err := statex.NewUpstashRedisStore(*upstashCfg)
		if err != nil {
			return nil, noop, err
		}
		return store, noop, nil
	case statex.DriverPostgres:
		sqlCfg := configx.MustNew[statex.SQLConfig]("POSTGRES")
		store, err := statex.OpenPostgresStore(ctx, *sqlCfg)
		if err != nil {
			return nil, noop, err
		}
		return store, store.Close, nil
	case statex.DriverSQLite:
		sqlCfg := configx.MustNew[statex.SQLConfig]("SQLITE")
		store, err := statex.OpenSQLiteStore(ctx, *sqlCfg)
		if err != nil {
			return nil, noop, err
		}
		return store, store.Close, nil
	default:
		return statex.NewMemoryStore(), noop, nil
	}
}
