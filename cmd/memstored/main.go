// Command memstored serves a striped LRU cache over HTTP.
//
// Configuration comes from MEMSTORE_* environment variables (optionally via
// a .env file); see internal/config.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/IvanBrykalov/memstore/cache"
	"github.com/IvanBrykalov/memstore/internal/config"
	"github.com/IvanBrykalov/memstore/internal/httpapi"
	"github.com/IvanBrykalov/memstore/internal/logger"
	"github.com/IvanBrykalov/memstore/metrics/prom"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "memstored:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.LogFormat, cfg.LogLevel, os.Stderr)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	opt := cfg.CacheOptions()
	opt.Metrics = prom.New(reg, "memstore", "cache", nil)
	opt.Logger = log
	c, err := cache.New(opt)
	if err != nil {
		return fmt.Errorf("build cache: %w", err)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.New(c, reg, log),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("memstored: listening",
			slog.String("addr", cfg.Addr),
			slog.Int64("memory_limit", c.Capacity()),
			slog.Int("shards", c.Shards()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("memstored: shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}
