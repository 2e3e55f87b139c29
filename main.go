// Package main runs the floor-plan design service.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"floorplan/internal/api"
	"floorplan/internal/config"
	"floorplan/internal/inference"
	"floorplan/internal/logger"
	"floorplan/internal/session"
	"floorplan/internal/version"
)

const (
	sweepInterval   = time.Minute
	shutdownTimeout = 10 * time.Second
)

func main() {
	configPath := flag.String("config", "", "Path to a YAML or JSON config file")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Get().String())
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.Setup(cfg.Log.Level, cfg.Log.Format)
	log.Info("starting", "version", version.Version, "commit", version.GitCommit, "addr", cfg.Server.Addr)

	var model inference.Model
	if cfg.Model.URL != "" {
		m := inference.NewHTTPModel(cfg.Model.URL, cfg.Model.Name, &http.Client{}, log)
		log.Info("model_configured", "endpoint", m.Endpoint())
		model = m
	} else {
		log.Warn("model_not_configured", "hint", "set FLOORPLAN_MODEL_URL to enable generation")
	}

	opts := session.OptionsFromConfig(cfg)
	registry := session.NewRegistry(opts, model, cfg.Server.SessionTTL.Duration, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go registry.Run(ctx, sweepInterval)

	srv := api.NewHTTPServer(cfg.Server.Addr, api.NewServer(registry, opts, log), api.Timeouts{
		Read:  cfg.Server.ReadTimeout.Duration,
		Write: cfg.Server.WriteTimeout.Duration,
		Idle:  cfg.Server.IdleTimeout.Duration,
	}, log)
	errc := srv.Start()

	exit := 0
	select {
	case <-ctx.Done():
		log.Info("shutdown_requested")
	case err := <-errc:
		if err != nil {
			log.Error("server_failed", "error", err)
			exit = 1
		}
	}
	if err := srv.Stop(shutdownTimeout); err != nil {
		exit = 1
	}
	registry.CloseAll()
	log.Info("stopped")
	os.Exit(exit)
}
