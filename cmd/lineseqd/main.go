// Command lineseqd serves changeover-minimizing sequencing for one
// production line over NATS.
//
// Usage:
//
//	lineseqd -config lineseqd.yaml
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/katalvlaran/lineseq/internal/logging"
	"github.com/katalvlaran/lineseq/internal/metrics"
	"github.com/katalvlaran/lineseq/sequencer"
	"github.com/katalvlaran/lineseq/transport/natsworker"
)

func main() {
	configPath := flag.String("config", "lineseqd.yaml", "Path to configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "lineseqd: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := loadDaemonConfig(configPath)
	if err != nil {
		return err
	}

	level, _ := parseLevel(cfg.LogLevel)
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	logger := logging.NewSlog(slog.New(handler)).With("line", cfg.NATS.Line)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewPrometheus(reg, "")

	srv := &http.Server{
		Addr:              cfg.MetricsAddr,
		Handler:           metricsMux(reg),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "addr", cfg.MetricsAddr, "error", err)
		}
	}()
	defer shutdownServer(srv, logger)

	nc, err := nats.Connect(cfg.NATS.URL,
		nats.Name("lineseqd-"+cfg.NATS.Line),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}
	defer nc.Close()

	engine, err := sequencer.NewEngine(cfg.Engine,
		sequencer.WithLogger(logger),
		sequencer.WithMetrics(collector),
	)
	if err != nil {
		return err
	}
	if err := engine.Start(ctx); err != nil {
		return err
	}
	defer func() { _ = engine.Stop() }()

	worker, err := natsworker.New(nc, engine, cfg.NATS.Config, logger)
	if err != nil {
		return err
	}
	if err := worker.Start(ctx); err != nil {
		return err
	}

	logger.Info("lineseqd running", "nats", nc.ConnectedUrl(), "metrics", cfg.MetricsAddr)
	<-ctx.Done()
	logger.Info("shutting down")

	if err := worker.Stop(); err != nil {
		logger.Warn("worker stop", "error", err)
	}

	return nil
}

func metricsMux(reg *prometheus.Registry) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return mux
}

func shutdownServer(srv *http.Server, logger *logging.SlogLogger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("metrics server shutdown", "error", err)
	}
}
