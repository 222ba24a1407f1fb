package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kbukum/speechprep/logger"
	"github.com/kbukum/speechprep/observability"
)

// App runs one command with a uniform lifecycle. The type parameter C is
// the command's config type.
type App[C Config] struct {
	Name    string
	Version string
	Cfg     C
	Logger  *logger.Logger
	Summary *Summary

	gracefulTimeout time.Duration
	signals         bool
	onConfigure     []func(ctx context.Context, app *App[C]) error

	onStart []Hook
	onStop  []Hook
}

// NewApp applies defaults, validates the config and initializes the logger.
func NewApp[C Config](cfg C, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	base := cfg.GetServiceConfig()

	app := &App[C]{
		Name:            base.Name,
		Version:         base.Version,
		Cfg:             cfg,
		gracefulTimeout: 15 * time.Second,
		signals:         true,
	}

	o := resolveOptions(opts)
	if o.gracefulTimeout != nil {
		app.gracefulTimeout = *o.gracefulTimeout
	}
	app.signals = !o.noSignals

	if o.logger != nil {
		app.Logger = o.logger
	} else {
		logger.Init(base.Logging)
		app.Logger = logger.GetGlobalLogger()
	}

	app.Summary = NewSummary(base.Name, base.Version)
	return app, nil
}

// OnConfigure registers a callback to run after OnStart hooks. Use it to
// open stores and build streams from the typed config.
func (a *App[C]) OnConfigure(fn func(ctx context.Context, app *App[C]) error) {
	a.onConfigure = append(a.onConfigure, fn)
}

// RunTask executes a finite task with the full lifecycle. The task context
// is canceled on SIGINT or SIGTERM. OnStop hooks run even when the task
// fails; the task error takes precedence over shutdown errors.
func (a *App[C]) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	if err := a.startup(ctx); err != nil {
		if stopErr := a.stop(); stopErr != nil {
			a.Logger.Warn("shutdown after failed startup", logger.ErrorFields("stop", stopErr))
		}
		return err
	}

	taskCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if a.signals {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigCh)

		go func() {
			select {
			case sig := <-sigCh:
				a.Logger.Info("received signal, canceling task", logger.Fields("signal", sig.String()))
				cancel()
			case <-taskCtx.Done():
			}
		}()
	}

	taskErr := task(taskCtx)

	if stopErr := a.stop(); stopErr != nil {
		if taskErr != nil {
			return taskErr
		}
		return stopErr
	}
	return taskErr
}

// startup installs telemetry, runs OnStart hooks and configure callbacks,
// and logs the summary.
func (a *App[C]) startup(ctx context.Context) error {
	start := time.Now()

	a.Logger.Debug("starting", logger.Fields("name", a.Name, "version", a.Version))

	base := a.Cfg.GetServiceConfig()
	shutdown, err := observability.Setup(ctx, a.Name, base.Telemetry)
	if err != nil {
		return fmt.Errorf("telemetry setup failed: %w", err)
	}
	a.onStop = append([]Hook{shutdown}, a.onStop...)
	a.Summary.Track("telemetry", "enabled", base.Telemetry.Enabled)

	if err := runHooks(ctx, a.onStart); err != nil {
		return fmt.Errorf("onStart hook failed: %w", err)
	}

	for _, fn := range a.onConfigure {
		if err := fn(ctx, a); err != nil {
			return err
		}
	}

	a.Summary.SetStartupDuration(time.Since(start))
	a.Summary.DisplaySummary(a.Logger)
	return nil
}

// stop runs OnStop hooks within the graceful timeout. Every hook runs; the
// first error is returned.
func (a *App[C]) stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	var first error
	for i, h := range a.onStop {
		if err := h(ctx); err != nil {
			a.Logger.Error("onStop hook error", logger.Fields("hook", i, logger.FieldError, err.Error()))
			if first == nil {
				first = fmt.Errorf("hook %d failed: %w", i, err)
			}
		}
	}
	a.onStop = nil
	a.Logger.Debug("shutdown complete")
	return first
}
