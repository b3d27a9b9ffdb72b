// Package app assembles the scorer's components with go.uber.org/fx.
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/roach88/snooker/internal/config"
	"github.com/roach88/snooker/internal/controller"
	"github.com/roach88/snooker/internal/logger"
	"github.com/roach88/snooker/internal/rules"
	"github.com/roach88/snooker/internal/store"
)

// Module provides config, logger, repository, rules engine and controller.
// The UI supplies Confirmer, Notifier and Renderer; any it leaves out
// fall back to the controller defaults.
var Module = fx.Options(
	fx.Provide(loadConfig),
	fx.Provide(newLogger),
	fx.Provide(NewRepository),
	fx.Provide(NewEngine),
	fx.Provide(NewController),
)

// Overrides replace environment values, typically from CLI flags. Empty
// fields leave the environment value in place.
type Overrides struct {
	DBPath   string
	Store    string
	LogLevel string
}

// Apply returns a copy of cfg with the overrides applied.
func (o Overrides) Apply(cfg *config.Config) (*config.Config, error) {
	out := *cfg
	if o.DBPath != "" {
		out.DBPath = o.DBPath
	}
	if o.Store != "" {
		out.Store = o.Store
	}
	if o.LogLevel != "" {
		out.LogLevel = o.LogLevel
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return &out, nil
}

func loadConfig() (*config.Config, error) {
	return config.Load()
}

func newLogger(cfg *config.Config) zerolog.Logger {
	return logger.Stderr(cfg.LogLevel)
}

// NewRepository opens the configured store and closes it when the app stops.
func NewRepository(lc fx.Lifecycle, cfg *config.Config, log zerolog.Logger) (store.Repository, error) {
	opts := []store.Option{
		store.WithLogger(log),
		store.WithHistoryLimit(cfg.HistoryLimit),
	}

	var (
		repo store.Repository
		err  error
	)
	switch cfg.Store {
	case config.StoreRedis:
		repo, err = store.OpenRedis(context.Background(), cfg.RedisURL, opts...)
	case config.StoreSQLite:
		repo, err = store.OpenSQLite(cfg.DBPath, opts...)
	default:
		err = fmt.Errorf("unknown store %q", cfg.Store)
	}
	if err != nil {
		return nil, err
	}

	log.Debug().Str("store", cfg.Store).Msg("repository opened")
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return repo.Close()
		},
	})
	return repo, nil
}

// NewEngine builds the rules engine with the configured undo depth.
func NewEngine(cfg *config.Config) *rules.Engine {
	return rules.New(rules.WithUndoLimit(cfg.UndoLimit))
}

// ControllerParams are the controller's dependencies.
type ControllerParams struct {
	fx.In

	Repo   store.Repository
	Engine *rules.Engine
	Logger zerolog.Logger

	Confirmer controller.Confirmer `optional:"true"`
	Notifier  controller.Notifier  `optional:"true"`
	Renderer  controller.Renderer  `optional:"true"`
}

// NewController builds the match controller.
func NewController(p ControllerParams) *controller.Controller {
	opts := []controller.Option{
		controller.WithEngine(p.Engine),
		controller.WithLogger(p.Logger),
	}
	if p.Confirmer != nil {
		opts = append(opts, controller.WithConfirmer(p.Confirmer))
	}
	if p.Notifier != nil {
		opts = append(opts, controller.WithNotifier(p.Notifier))
	}
	if p.Renderer != nil {
		opts = append(opts, controller.WithRenderer(p.Renderer))
	}
	return controller.New(p.Repo, opts...)
}

// Ports are the UI collaborators handed to the controller.
type Ports struct {
	Confirmer controller.Confirmer
	Notifier  controller.Notifier
	Renderer  controller.Renderer
}

func (p Ports) options() []fx.Option {
	var opts []fx.Option
	if p.Confirmer != nil {
		opts = append(opts, fx.Provide(func() controller.Confirmer { return p.Confirmer }))
	}
	if p.Notifier != nil {
		opts = append(opts, fx.Provide(func() controller.Notifier { return p.Notifier }))
	}
	if p.Renderer != nil {
		opts = append(opts, fx.Provide(func() controller.Renderer { return p.Renderer }))
	}
	return opts
}

// Session is a started application.
type Session struct {
	Config     *config.Config
	Controller *controller.Controller
	Repo       store.Repository
	Engine     *rules.Engine
	Logger     zerolog.Logger

	app *fx.App
}

// Start builds and starts the application, then loads the saved match.
// extra options are appended last, so tests can fx.Replace or fx.Decorate
// any component.
func Start(ctx context.Context, o Overrides, ports Ports, extra ...fx.Option) (*Session, error) {
	s := &Session{}
	opts := []fx.Option{
		Module,
		fx.Decorate(o.Apply),
		fx.NopLogger,
		fx.Populate(&s.Config, &s.Controller, &s.Repo, &s.Engine, &s.Logger),
	}
	opts = append(opts, ports.options()...)
	opts = append(opts, extra...)

	s.app = fx.New(opts...)
	if err := s.app.Err(); err != nil {
		return nil, err
	}
	if err := s.app.Start(ctx); err != nil {
		return nil, err
	}
	if err := s.Controller.Load(ctx); err != nil {
		_ = s.app.Stop(ctx)
		return nil, err
	}
	return s, nil
}

// Stop shuts the application down and closes the store.
func (s *Session) Stop(ctx context.Context) error {
	return s.app.Stop(ctx)
}
