package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/runnerr0/dwell/internal/api"
	"github.com/runnerr0/dwell/internal/config"
	"github.com/runnerr0/dwell/internal/logger"
	"github.com/runnerr0/dwell/internal/tracker"
)

// Execute implements the go-flags Commander interface for ServeCommand.
func (c *ServeCommand) Execute(args []string) error {
	rt, err := openRuntime(c.globals, true, c.applyOverrides)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return c.executeWith(ctx, rt)
}

func (c *ServeCommand) applyOverrides(cfg *config.Config) {
	if c.Host != "" {
		cfg.Server.Host = c.Host
	}
	if c.Port != 0 {
		cfg.Server.Port = c.Port
	}
	if c.LogLevel != "" {
		cfg.Logging.Level = c.LogLevel
	}
}

// executeWith serves until ctx is cancelled.
func (c *ServeCommand) executeWith(ctx context.Context, rt *runtime) error {
	sc := rt.cfg.Server
	srv := api.NewServer(api.Config{
		Host:           sc.Host,
		Port:           sc.Port,
		AllowedOrigins: sc.AllowedOrigins,
		RequestTimeout: sc.RequestTimeout(),
		MaxRequestSize: sc.MaxRequestSize,
	}, rt.svc, tracker.NewTokenAuthenticator(rt.store), rt.log)

	rt.log.Info("Starting dwell",
		logger.String("version", c.version),
		logger.String("database", rt.dbPath),
	)
	return srv.ListenAndServe(ctx)
}
