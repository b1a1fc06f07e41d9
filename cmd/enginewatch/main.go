package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/enginewatch/enginewatch/internal/acquisition"
	"github.com/enginewatch/enginewatch/internal/alerts"
	"github.com/enginewatch/enginewatch/internal/annunciate"
	"github.com/enginewatch/enginewatch/internal/api"
	"github.com/enginewatch/enginewatch/internal/auth"
	"github.com/enginewatch/enginewatch/internal/bus"
	"github.com/enginewatch/enginewatch/internal/config"
	"github.com/enginewatch/enginewatch/internal/events"
	"github.com/enginewatch/enginewatch/internal/groundlink"
	"github.com/enginewatch/enginewatch/internal/limits"
	"github.com/enginewatch/enginewatch/internal/monitor"
	"github.com/enginewatch/enginewatch/internal/recorder"
	"github.com/enginewatch/enginewatch/internal/validate"
)

// hubForwarder hands alert events to the hub. The engine and the hub
// reference each other, so the engine side goes through this forwarder and
// the hub is attached after both exist.
type hubForwarder struct {
	hub *annunciate.Hub
}

func (f *hubForwarder) Annunciate(a alerts.Alert) error {
	if f.hub == nil {
		return nil
	}
	return f.hub.Annunciate(a)
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	// Optional .env for key material; absence is fine.
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	slog.Info("enginewatch starting", "config", *configPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	// Re-level the logger now that the config is known.
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Log.Level()})))

	slog.Info("config loaded",
		"sample_rate_hz", cfg.Monitor.SampleRateHz,
		"engines", cfg.Monitor.Engines,
		"listen", cfg.Server.Listen,
		"auth_mode", cfg.Server.Auth.Mode,
		"downlink", cfg.Downlink().Enabled(),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rep := events.Log{L: slog.Default()}

	// Range limits: static built-ins, or a hot-reloaded YAML table.
	var provider limits.Provider = limits.Static{}
	if cfg.Limits.Path != "" {
		table, err := limits.OpenFile(cfg.Limits.Path)
		if err != nil {
			slog.Error("failed to load limits table", "err", err)
			os.Exit(1)
		}
		go func() {
			if err := table.Watch(ctx); err != nil {
				slog.Error("limits watcher stopped", "err", err)
			}
		}()
		provider = table
	}

	// Acquisition manager on the simulated receiver channels.
	mgr := acquisition.New(bus.NewSim(time.Now().UnixNano()), validate.New(provider, rep), rep)
	acqCfg, err := cfg.Acquisition()
	if err != nil {
		slog.Error("invalid bus configuration", "err", err)
		os.Exit(1)
	}
	if err := mgr.Init(&acqCfg); err != nil {
		slog.Error("acquisition init failed", "err", err)
		os.Exit(1)
	}

	var wg sync.WaitGroup

	// Local maintenance store.
	rec, err := recorder.Open(cfg.Recorder.Path, cfg.Recorder.Queue)
	if err != nil {
		slog.Error("failed to open recorder", "path", cfg.Recorder.Path, "err", err)
		os.Exit(1)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		rec.Run(ctx)
	}()

	// Optional Kafka downlink to the ground station.
	recorders := []alerts.Recorder{rec}
	var downlink monitor.Downlink
	if dlCfg := cfg.Downlink(); dlCfg.Enabled() {
		link := groundlink.New(dlCfg)
		wg.Add(1)
		go func() {
			defer wg.Done()
			link.Run(ctx)
		}()
		recorders = append(recorders, link)
		downlink = link
		slog.Info("groundlink enabled", "brokers", dlCfg.Brokers)
	}

	// Alert engine with the flight deck hub and recorder fan-out as sinks.
	alertCfg, err := cfg.AlertEngine()
	if err != nil {
		slog.Error("invalid alert configuration", "err", err)
		os.Exit(1)
	}
	fwd := &hubForwarder{}
	alertEngine := alerts.New(alertCfg, fwd, alerts.MultiRecorder(recorders...), rep)

	hub := annunciate.New(mgr, alertEngine, cfg.Monitor.StatusInterval)
	fwd.hub = hub
	go hub.Run(ctx)

	// Cyclic executive.
	mon := monitor.New(mgr, alertEngine, downlink, rep, cfg.Monitor.DownlinkEvery)
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := mon.Run(ctx); err != nil {
			slog.Error("monitor loop failed", "err", err)
			cancel()
		}
	}()

	// REST API behind optional API key auth; the hub rides the same server.
	mw := auth.APIKeyMiddleware(
		cfg.Server.Auth.Mode,
		cfg.Server.Auth.EffectiveHeader(),
		cfg.Server.Auth.Key(),
	)
	apiHandler := mw(api.New(mgr, alertEngine))
	httpMux := http.NewServeMux()
	httpMux.Handle("/api/", apiHandler)
	httpMux.Handle("/metrics", apiHandler)
	httpMux.Handle("/ws/alerts", hub)

	httpSrv := &http.Server{Addr: cfg.Server.Listen, Handler: httpMux}
	go func() {
		slog.Info("http server listening", "addr", cfg.Server.Listen)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("http server stopped", "err", err)
		}
	}()

	<-ctx.Done()
	slog.Info("enginewatch shutting down")
	httpSrv.Shutdown(context.Background()) //nolint:errcheck

	// Let the recorder and downlink drain their queues.
	wg.Wait()
	if err := rec.Close(); err != nil {
		slog.Error("recorder close failed", "err", err)
	}
}
