package main

import (
	"context"
	"errors"
	"time"

	"nippo/internal/backend"
	"nippo/internal/cli"
	apphttp "nippo/internal/http"
	applog "nippo/internal/log"
)

func main() {
	cfg, logger, err := cli.Bootstrap(applog.ComponentApp, nil)
	if err != nil {
		cli.Fatal(nil, "Startup failed", err)
	}

	b, err := backend.Open(cfg)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize backend", err, "backend", cfg.DataBackend)
	}

	srv := apphttp.NewServer(apphttp.Config{
		Addr:               ":" + cfg.Port,
		CacheTTL:           cfg.CacheTTL,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Ready:              b.Store.Ping,
		Logger:             logger.WithComponent(applog.ComponentHTTP),
	}, b.Service)

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	done := make(chan error, 1)
	go func() {
		done <- cli.Shutdown(ctx, logger, 30*time.Second, func(c context.Context) error {
			return errors.Join(srv.Shutdown(c), b.Close())
		})
	}()

	logger.Info("Starting nippo server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"amqp", cfg.AMQPEnabled(),
		"cache_ttl", cfg.CacheTTL.String())
	if err := srv.ListenAndServe(); err != nil {
		stop()
		<-done
		cli.Fatal(logger, "Server error", err, "port", cfg.Port)
	}

	if err := <-done; err != nil {
		cli.Fatal(logger, "Unclean shutdown", err)
	}
	logger.Info("Server stopped gracefully")
}
