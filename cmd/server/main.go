// Package main - entry point for the supply-chain API server
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/browser"
	"golang.org/x/sync/errgroup"

	"github.com/0ji3/a2a-supply-chain-project/api"
	"github.com/0ji3/a2a-supply-chain-project/core/pipeline"
	"github.com/0ji3/a2a-supply-chain-project/internal/app"
	"github.com/0ji3/a2a-supply-chain-project/internal/config"
	"github.com/0ji3/a2a-supply-chain-project/internal/logging"
)

const version = "1.0.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfgPath := flag.String("config", "", "config file path")
	addr := flag.String("addr", "", "listen address (overrides config)")
	open := flag.Bool("open", false, "open the dashboard in a browser")
	flag.Parse()

	cfg := config.Get()
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			return err
		}
		cfg = loaded
		config.Set(cfg)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		return err
	}
	defer logging.Sync()

	a, err := app.New(cfg)
	if err != nil {
		return err
	}

	// The server's sink feeds live status and the SSE stream, so the
	// orchestrator is built after the server.
	var server *api.Server
	orch, err := a.Orchestrator(pipeline.WithEventSink(func(ev pipeline.Event) {
		server.Sink()(ev)
	}))
	if err != nil {
		return err
	}
	server = api.NewServer(orch, a.Client, cfg.Server.AllowOrigin, logging.Named("api"))

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		fmt.Printf("supply-chain server v%s listening on %s\n", version, cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if *open {
		url := "http://localhost" + cfg.Server.Addr
		if err := browser.OpenURL(url); err != nil {
			logging.Warn("failed to open browser")
		}
	}

	return g.Wait()
}
