package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/parthero/internal/server"
	"github.com/urfave/cli/v3"
)

// FixtureServe serves records from a JSON file until interrupted.
func (r *Runner) FixtureServe(ctx context.Context, cmd *cli.Command) error {
	records, err := server.LoadRecords(cmd.String("file"))
	if err != nil {
		return err
	}

	cfg := r.config.Fixture
	if host := cmd.String("host"); host != "" {
		cfg.Host = host
	}
	if port := cmd.Int("port"); port != 0 {
		cfg.Port = port
	}
	if path := cmd.String("path"); path != "" {
		cfg.Path = path
	}
	if cfg.Path == "" {
		cfg.Path = "/api/listing"
	}

	router := server.NewBasicRouter()
	router.Use(server.RequestLogger(r.logger), server.RequireJSON)
	listing := server.NewListingHandler(cfg.Path, records, server.ListingParams{})
	router.Handler(listing)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go r.reloadOnSignal(ctx, hup, listing, cmd.String("file"))

	ready := make(chan string, 1)
	go func() {
		if addr, ok := <-ready; ok {
			r.writePlain("Serving %d records at http://%s%s (Ctrl+C to stop)\n", len(records), addr, cfg.Path)
		}
	}()

	return server.NewServer(cfg, router, r.logger).Run(ctx, ready)
}

// reloadOnSignal re-reads the fixture file each time a signal arrives on sig.
func (r *Runner) reloadOnSignal(ctx context.Context, sig <-chan os.Signal, listing *server.ListingHandler, path string) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-sig:
			n, err := listing.Reload(path)
			if err != nil {
				r.logger.Warn("fixture reload failed, keeping current records", "file", path, "error", err)
				continue
			}
			r.logger.Info("fixture reloaded", "file", path, "records", n)
		}
	}
}
