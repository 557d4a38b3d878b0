package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	router "github.com/goliatone/go-router"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/nexusboard/nexusboard/components/dashboard/gorouter"
	"github.com/nexusboard/nexusboard/components/dashboard/httpapi"
	"github.com/nexusboard/nexusboard/pkg/config"
	dashboardpkg "github.com/nexusboard/nexusboard/pkg/dashboard"
	"github.com/nexusboard/nexusboard/pkg/telemetry"
)

type serveCmd struct {
	Config    string `type:"path" help:"YAML config file; NEXUSBOARD_* variables override it."`
	Addr      string `help:"Listen address (overrides server.addr)."`
	Transport string `help:"HTTP stack: fiber (go-router) or http (net/http); overrides server.transport."`
}

func (c *serveCmd) Run(ctx context.Context) error {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return err
	}
	if c.Addr != "" {
		cfg.Server.Addr = c.Addr
	}
	if c.Transport != "" {
		cfg.Server.Transport = c.Transport
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := telemetry.NewLogger(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder, err := telemetry.NewRecorder(logger, reg)
	if err != nil {
		return err
	}

	app, err := dashboardpkg.New(ctx, cfg, dashboardpkg.WithTelemetry(recorder))
	if err != nil {
		return err
	}
	metrics := promhttp.HandlerFor(reg, promhttp.HandlerOpts{})

	logger.Info("nexusboard starting",
		zap.String("addr", cfg.Server.Addr),
		zap.String("transport", cfg.Server.Transport),
		zap.Bool("auth", cfg.Auth.Enabled),
		zap.String("dashboard", strings.TrimSuffix(cfg.Server.BasePath, "/")+"/dashboard"),
	)

	switch cfg.Server.Transport {
	case "http":
		return serveHTTP(ctx, logger, app, metrics)
	default:
		return serveFiber(app, metrics)
	}
}

func serveFiber(app *dashboardpkg.App, metrics http.Handler) error {
	server := router.NewFiberAdapter()
	appRouter := server.Router()
	if err := gorouter.Register(gorouter.Config{
		Router:     appRouter,
		Controller: app.Controller,
		API:        app.Executor,
		Areas:      app.Areas,
		Broadcast:  app.Broadcast,
		Auth:       app.Authenticator(),
		BasePath:   app.Config.Server.BasePath,
	}); err != nil {
		return fmt.Errorf("nexusboard: register routes: %w", err)
	}
	appRouter.Get("/metrics", bridgeHTTP(metrics))
	return server.Serve(app.Config.Server.Addr)
}

func serveHTTP(ctx context.Context, logger *zap.Logger, app *dashboardpkg.App, metrics http.Handler) error {
	mux := http.NewServeMux()
	handlers := &httpapi.Handlers{
		API:        app.Executor,
		Controller: app.Controller,
		Broadcast:  app.Broadcast,
		Auth:       app.Authenticator(),
	}
	handlers.Mount(mux, strings.TrimSuffix(app.Config.Server.BasePath, "/")+"/dashboard")
	mux.Handle("GET /metrics", metrics)

	srv := &http.Server{
		Addr:              app.Config.Server.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("nexusboard shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// bridgeHTTP serves a net/http handler through a go-router route by
// buffering its response.
func bridgeHTTP(h http.Handler) router.HandlerFunc {
	return router.WrapHandler(func(ctx router.Context) error {
		req, err := http.NewRequestWithContext(ctx.Context(), http.MethodGet, "/", nil)
		if err != nil {
			return err
		}
		if accept := ctx.Header("Accept"); accept != "" {
			req.Header.Set("Accept", accept)
		}
		rec := newBufferedResponse()
		h.ServeHTTP(rec, req)
		for key := range rec.header {
			ctx.SetHeader(key, rec.header.Get(key))
		}
		return ctx.Send(rec.body.Bytes())
	})
}
