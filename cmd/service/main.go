package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/authgate/internal/app"
	"github.com/dropDatabas3/authgate/internal/config"
	"github.com/dropDatabas3/authgate/internal/http/server"
	"github.com/dropDatabas3/authgate/internal/metrics"
	"github.com/dropDatabas3/authgate/internal/observability/logger"
	"github.com/dropDatabas3/authgate/internal/observability/tracking"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "ruta al config YAML (opcional)")
	envFile := flag.String("env-file", ".env", "archivo .env a cargar si existe")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil && !os.IsNotExist(err) {
		log.Printf("no se pudo cargar %s: %v", *envFile, err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.Log.Level,
		ServiceName: cfg.App.Name,
		Version:     cfg.App.Version,
	})
	defer func() { _ = logger.Sync() }()
	lg := logger.L()

	if err := tracking.Init(tracking.Config{
		DSN:         cfg.Sentry.DSN,
		Environment: cfg.App.Env,
		Release:     cfg.App.Version,
		SampleRate:  cfg.Sentry.SampleRate,
	}); err != nil {
		lg.Warn("sentry init failed", logger.Err(err))
	}
	defer tracking.Flush(2 * time.Second)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := app.New(ctx, cfg)
	if err != nil {
		lg.Fatal("wiring failed", logger.Err(err))
	}
	defer func() {
		if err := c.Close(); err != nil {
			lg.Warn("container close", logger.Err(err))
		}
	}()

	reg := prometheus.NewRegistry()
	extra := []prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	}
	if c.PG != nil {
		extra = append(extra, metrics.NewPoolCollector(c.PG.Pool))
	}
	if err := metrics.Register(reg, extra...); err != nil {
		lg.Fatal("metrics register failed", logger.Err(err))
	}

	h, err := server.BuildHandler(c, reg)
	if err != nil {
		lg.Fatal("handler build failed", logger.Err(err))
	}
	srv := server.New(c, h)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return server.Run(gctx, srv, cfg.Server.ShutdownTimeout) })
	if err := g.Wait(); err != nil {
		lg.Error("server stopped with error", logger.Err(err))
		return
	}
	lg.Info("bye")
}
