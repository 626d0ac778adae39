package cli

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/plotline/internal/config"
	"github.com/aretw0/plotline/internal/logging"
	"github.com/aretw0/plotline/pkg/adapters/file"
	"github.com/aretw0/plotline/pkg/adapters/llm"
	"github.com/aretw0/plotline/pkg/adapters/memory"
	"github.com/aretw0/plotline/pkg/adapters/process"
	redisAdapter "github.com/aretw0/plotline/pkg/adapters/redis"
	"github.com/aretw0/plotline/pkg/layout"
	"github.com/aretw0/plotline/pkg/observability"
	"github.com/aretw0/plotline/pkg/persistence/middleware"
	"github.com/aretw0/plotline/pkg/ports"
	"github.com/aretw0/plotline/pkg/scenario"
	"github.com/aretw0/plotline/pkg/schema"
	"github.com/aretw0/plotline/pkg/synth"
)

// App holds the wired components shared by every command.
type App struct {
	Config    config.Config
	Logger    *slog.Logger
	Generator ports.Generator
	Store     ports.FlowStore
	Locker    ports.DistributedLocker
	Manager   *scenario.Manager
	Metrics   *observability.Metrics

	closers []func() error
}

type appOptions struct {
	generator ports.Generator
	store     ports.FlowStore
	logOutput io.Writer
}

// AppOption overrides a component NewApp would otherwise build from the config.
type AppOption func(*appOptions)

// WithGenerator replaces the configured generator.
func WithGenerator(gen ports.Generator) AppOption {
	return func(o *appOptions) { o.generator = gen }
}

// WithStore replaces the configured flow store. Middlewares still apply.
func WithStore(store ports.FlowStore) AppOption {
	return func(o *appOptions) { o.store = store }
}

// WithLogOutput sends log records to w instead of Stderr.
func WithLogOutput(w io.Writer) AppOption {
	return func(o *appOptions) { o.logOutput = w }
}

// NewApp builds the logger, generator, store, metrics and manager from cfg.
func NewApp(cfg config.Config, opts ...AppOption) (*App, error) {
	o := appOptions{logOutput: os.Stderr}
	for _, opt := range opts {
		opt(&o)
	}

	logger, err := newLogger(cfg.Log, o.logOutput)
	if err != nil {
		return nil, err
	}
	app := &App{Config: cfg, Logger: logger}

	app.Generator = o.generator
	if app.Generator == nil {
		app.Generator, err = newGenerator(cfg.Generator)
		if err != nil {
			return nil, err
		}
	}

	store := o.store
	if store == nil {
		store, err = app.newStore(cfg.Storage)
		if err != nil {
			return nil, err
		}
	}
	app.Store, err = wrapStore(store, cfg.Storage)
	if err != nil {
		app.Close()
		return nil, err
	}

	app.Metrics, err = observability.NewMetrics(nil)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	strict := schema.WithStrict(cfg.Synthesis.StrictEdges)
	synthesizer := synth.New(app.Generator,
		synth.WithLogger(logger),
		synth.WithHooks(observability.Combine(observability.LogHooks(logger), app.Metrics.Hooks())),
		synth.WithNormalizeOptions(strict),
	)

	managerOpts := []scenario.Option{
		scenario.WithLogger(logger),
		scenario.WithLayout(layout.New(layout.WithConfig(cfg.Layout))),
		scenario.WithNormalizeOptions(strict),
	}
	if cfg.Synthesis.AutoLayout {
		managerOpts = append(managerOpts, scenario.WithAutoLayout())
	}
	if app.Locker != nil {
		managerOpts = append(managerOpts, scenario.WithLocker(app.Locker))
	}
	app.Manager = scenario.NewManager(app.Store, synthesizer, managerOpts...)

	logger.Debug("App initialized",
		"provider", cfg.Generator.Provider,
		"storage", cfg.Storage.Driver,
		"distributed_lock", app.Locker != nil,
	)
	return app, nil
}

// Close releases connections opened by NewApp.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func newLogger(cfg config.LogConfig, w io.Writer) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	if cfg.Format == "json" {
		return logging.NewJSON(w, level), nil
	}
	return logging.NewText(w, level), nil
}

func newGenerator(cfg config.GeneratorConfig) (ports.Generator, error) {
	if cfg.Provider == process.ProviderName {
		pc, err := process.FromArgv(cfg.Command)
		if err != nil {
			return nil, err
		}
		return process.New(pc)
	}
	gen, err := llm.New(llm.Provider(cfg.Provider), llm.Config{
		Model:     cfg.Model,
		BaseURL:   cfg.BaseURL,
		APIKey:    cfg.APIKey,
		MaxTokens: cfg.MaxTokens,
		Timeout:   cfg.Timeout,
		Response:  cfg.Response,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create generator: %w", err)
	}
	return gen, nil
}

func (a *App) newStore(cfg config.StorageConfig) (ports.FlowStore, error) {
	switch cfg.Driver {
	case "", "memory":
		return memory.NewStore(), nil
	case "file":
		return file.New(cfg.Path), nil
	case "redis":
		store := redisAdapter.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			redisAdapter.WithPrefix(cfg.Redis.Prefix),
			redisAdapter.WithTTL(cfg.Redis.TTL),
		)
		a.closers = append(a.closers, store.Client().Close)
		if cfg.Redis.Lock {
			a.Locker = redisAdapter.NewLocker(store.Client(), store.Prefix())
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// wrapStore applies redaction first, then encryption, so sealed flows are already masked.
func wrapStore(store ports.FlowStore, cfg config.StorageConfig) (ports.FlowStore, error) {
	var mws []middleware.Middleware
	if len(cfg.Redact) > 0 {
		pii, err := middleware.NewPIIMiddleware(cfg.Redact)
		if err != nil {
			return nil, err
		}
		mws = append(mws, pii)
	}
	if cfg.EncryptionKey != "" {
		key, err := base64.StdEncoding.DecodeString(cfg.EncryptionKey)
		if err != nil {
			return nil, fmt.Errorf("invalid encryption key: %w", err)
		}
		enc, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})
		if err != nil {
			return nil, err
		}
		mws = append(mws, enc)
	}
	return middleware.Chain(store, mws...), nil
}
