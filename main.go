package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/material-motion/motion-site/pkg/config"
	"github.com/material-motion/motion-site/pkg/container"
	"github.com/material-motion/motion-site/pkg/event"
	"github.com/material-motion/motion-site/pkg/metrics"
	"github.com/material-motion/motion-site/pkg/utils"
	"github.com/material-motion/motion-site/pkg/watch"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}
	cfg, cfgPath, err := config.Load()
	if err != nil {
		return err
	}

	mode := container.DetectMode(os.Getenv(cfg.ModeEnv()), cfg.DevMarker())

	utils.InitLogger(mode.IsLocal())
	logger := utils.GetLogger()

	templateDir, err := cfg.TemplateDir()
	if err != nil {
		return err
	}
	renderer, err := container.LoadRenderer(templateDir)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	paths := container.ResolveAssetPaths(mode, container.Options{
		DevServerURL:   cfg.DevServerURL(),
		DistPath:       cfg.DistPath(),
		StaticPath:     cfg.StaticPath(),
		LiveReloadPath: liveReloadPath(),
	})
	page := container.NewHandler(renderer, mode, paths, logger, m)
	emitter := event.NewEmitter(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if mode.IsLocal() {
		tw, err := watch.NewTemplateWatcher(renderer, emitter, logger, m)
		if err != nil {
			logger.Warn("template watcher unavailable, edits need a restart", "error", err)
		} else {
			defer tw.Close()
		}
	}

	server := NewServer(cfg, page, emitter, m, logger)
	if err := server.Start(ctx); err != nil {
		logger.Error("Failed to start server", "error", err)
		return err
	}

	logger.Info("serving container page",
		"addr", fmt.Sprintf("%s:%d", cfg.Host(), server.Port()),
		"mode", mode.String(),
		"template", renderer.Path(),
		"config", cfgPath,
		"dist_js_path", paths.DistJSPath,
		"static_js_path", paths.StaticJSPath,
	)

	<-server.Stopped()
	logger.Info("server stopped")
	return nil
}
