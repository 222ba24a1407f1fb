// Package bootstrap runs a command as a finite task with a uniform lifecycle.
//
// NewApp applies defaults to a typed config, validates it and initializes
// the logger. RunTask then installs telemetry, runs OnStart hooks and
// configure callbacks, logs a startup summary, executes the task under a
// context canceled on SIGINT or SIGTERM, and finally runs OnStop hooks
// within a graceful timeout.
//
// # Quick Start
//
//	app, err := bootstrap.NewApp(&cfg)
//	if err != nil {
//	    return err
//	}
//	return app.RunTask(ctx, func(ctx context.Context) error {
//	    return drain(ctx, stream)
//	})
package bootstrap
