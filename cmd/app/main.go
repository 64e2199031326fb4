package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"freight/cmd"
	httpin "freight/internal/adapters/in/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func main() {
	configs, err := cmd.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := cmd.NewLogger(configs.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(configs, logger); err != nil {
		logger.Error("freight stopped", zap.Error(err))
		os.Exit(1)
	}
}

func run(configs cmd.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gormDB, err := cmd.OpenDatabase(configs.Database, logger)
	if err != nil {
		return err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer func() { _ = sqlDB.Close() }()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	pipeline, err := cmd.NewEventPipeline(ctx, configs, registry, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := pipeline.Close(); err != nil {
			logger.Warn("closing event pipeline", zap.Error(err))
		}
	}()

	app := cmd.NewCompositionRoot(configs, gormDB, pipeline.Publisher, logger)

	jobManager := app.CreateJobManager()
	if err := jobManager.StartAll(); err != nil {
		return err
	}
	defer jobManager.StopAll()

	server := httpin.NewServer(app.CreateHTTPHandlers(), app.Projector(), pipeline.Hub)
	router := httpin.NewRouter(server, httpin.RouterConfig{
		Users:     app.UserRepository(),
		Logger:    logger,
		Metrics:   httpin.NewMetrics(registry),
		Gatherer:  registry,
		RateLimit: configs.HTTP.RateLimit,
		Burst:     configs.HTTP.Burst,
		BodyLimit: configs.HTTP.BodyLimit,
	})

	return startWebServer(ctx, router, configs.HTTP, logger)
}

func startWebServer(ctx context.Context, handler http.Handler, configs cmd.HTTPConfig, logger *zap.Logger) error {
	srv := &http.Server{
		Addr:         net.JoinHostPort("0.0.0.0", configs.Port),
		Handler:      handler,
		ReadTimeout:  configs.ReadTimeout,
		WriteTimeout: configs.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), configs.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
