package main

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/c360studio/tripplanner/config"
	"github.com/c360studio/tripplanner/llm"
	"github.com/c360studio/tripplanner/model"
	tripplanner "github.com/c360studio/tripplanner/processor/trip-planner"
	"github.com/prometheus/client_golang/prometheus"
)

// App holds the wiring shared by plan and serve.
type App struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *model.Registry
	planCfg  tripplanner.Config
	metrics  *tripplanner.Metrics
}

// newApp loads configuration and the model registry.
func newApp(flags *globalFlags, logger *slog.Logger) (*App, error) {
	cfg, err := config.NewLoader(logger).Load(flags.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	planCfg := tripplanner.ConfigFrom(cfg)
	if err := planCfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid planner config: %w", err)
	}

	registry, err := loadRegistry(cfg.Model.RegistryFile)
	if err != nil {
		return nil, err
	}

	logger.Debug("Configuration loaded",
		"capability", cfg.Model.Capability,
		"registry_file", cfg.Model.RegistryFile,
		"endpoints", registry.ListEndpoints())

	return &App{cfg: cfg, logger: logger, registry: registry, planCfg: planCfg}, nil
}

func loadRegistry(path string) (*model.Registry, error) {
	if path == "" {
		return model.NewDefaultRegistry(), nil
	}
	registry, err := model.LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("load model registry %s: %w", path, err)
	}
	return registry, nil
}

// withMetrics registers planner metrics with reg.
func (a *App) withMetrics(reg prometheus.Registerer) {
	a.metrics = tripplanner.NewMetrics(reg)
}

// newPlanner builds the LLM client and planner. store may be nil.
func (a *App) newPlanner(store *llm.CallStore) *tripplanner.Planner {
	retry := llm.DefaultRetryConfig()
	retry.MaxAttempts = a.cfg.Model.MaxAttempts

	opts := []llm.ClientOption{
		llm.WithLogger(a.logger),
		llm.WithRetryConfig(retry),
		llm.WithHTTPClient(&http.Client{Timeout: a.cfg.Model.Timeout}),
	}
	if store != nil {
		opts = append(opts, llm.WithCallStore(store))
	}
	client := llm.NewClient(a.registry, opts...)

	plannerOpts := []tripplanner.Option{
		tripplanner.WithLogger(a.logger),
		tripplanner.WithPolicy(a.planCfg.Policy),
	}
	if a.metrics != nil {
		plannerOpts = append(plannerOpts, tripplanner.WithMetrics(a.metrics))
	}
	if tz, err := tripplanner.NewTZFResolver(); err != nil {
		a.logger.Warn("Timezone lookup disabled", "error", err)
	} else {
		plannerOpts = append(plannerOpts, tripplanner.WithTimezoneResolver(tz))
	}

	return tripplanner.New(tripplanner.NewLLMGenerator(client, a.planCfg), plannerOpts...)
}
